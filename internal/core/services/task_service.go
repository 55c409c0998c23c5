package services

import (
	"context"
	"strings"

	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
)

type TaskServiceConfig struct {
	Repository ports.TaskRepository
	Events     ports.TaskEventPublisher
	Logger     *logger.Logger
}

type taskService struct {
	repo   ports.TaskRepository
	events ports.TaskEventPublisher
	logger *logger.Logger
}

func NewTaskService(cfg TaskServiceConfig) ports.TaskService {
	events := cfg.Events
	if events == nil {
		events = noopPublisher{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &taskService{
		repo:   cfg.Repository,
		events: events,
		logger: log,
	}
}

func (s *taskService) ListTasks(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	tasks, err := s.repo.List(ctx, domain.TaskFilter{Status: status})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *taskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	if input.Title == "" {
		return nil, ErrTaskTitleRequired
	}

	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}
	task.Normalize()
	if err := task.Validate(); err != nil {
		s.logger.Warnw("task_create_validation_failed", "error", err)
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.events.Publish(domain.TaskEvent{Type: domain.TaskEventCreated, Task: *task})
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id string, input ports.UpdateTaskInput) (*domain.Task, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var changes domain.TaskChanges
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		changes.Title = &title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		changes.Description = &description
	}
	changes.Status = input.Status

	candidate := *current
	changes.Apply(&candidate)
	if err := candidate.Validate(); err != nil {
		s.logger.Warnw("task_update_validation_failed", "id", id, "error", err)
		return nil, err
	}

	task, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	s.events.Publish(domain.TaskEvent{Type: domain.TaskEventUpdated, Task: *task})
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(domain.TaskEvent{Type: domain.TaskEventDeleted, Task: domain.Task{ID: id}})
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.TaskEvent) {}
