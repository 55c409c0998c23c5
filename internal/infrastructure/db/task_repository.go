package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewTaskRepository returns a relational task store. IDs are UUID strings.
func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: db, log: log}
}

func parseUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidTaskID
	}
	return nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	task.ID = uuid.NewString()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Errorw("task_repo_create_failed", "title", task.Title, "error", err)
		return err
	}
	r.log.Infow("task_repo_create_ok", "id", task.ID)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if err := parseUUID(id); err != nil {
		return nil, err
	}
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		r.log.Errorw("task_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	query := r.db.WithContext(ctx).Order("created_at desc")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var tasks []domain.Task
	if err := query.Find(&tasks).Error; err != nil {
		r.log.Errorw("task_repo_list_failed", "status", filter.Status, "error", err)
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, id string, changes domain.TaskChanges) (*domain.Task, error) {
	if err := parseUUID(id); err != nil {
		return nil, err
	}
	if changes.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	fields := make(map[string]interface{}, 3)
	if changes.Title != nil {
		fields["title"] = *changes.Title
	}
	if changes.Description != nil {
		fields["description"] = *changes.Description
	}
	if changes.Status != nil {
		fields["status"] = *changes.Status
	}

	var task domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Task{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrTaskNotFound
		}
		return tx.Where("id = ?", id).First(&task).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		r.log.Errorw("task_repo_update_failed", "id", id, "error", err)
		return nil, err
	}
	r.log.Infow("task_repo_update_ok", "id", id, "fields", len(fields))
	return &task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if err := parseUUID(id); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Task{})
	if result.Error != nil {
		r.log.Errorw("task_repo_delete_failed", "id", id, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	r.log.Infow("task_repo_delete_ok", "id", id)
	return nil
}
