package ports

import (
	"context"

	"github.com/taskflow/backend/internal/domain"
)

type TaskService interface {
	ListTasks(ctx context.Context, status domain.Status) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.Status
}

// UpdateTaskInput carries only the fields the caller supplied.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.Status
}
