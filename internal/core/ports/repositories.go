package ports

import (
	"context"

	"github.com/taskflow/backend/internal/domain"
)

// TaskRepository persists tasks. Implementations assign ID and CreatedAt on
// Create and translate driver errors into domain.ErrInvalidTaskID and
// domain.ErrTaskNotFound. Update writes only the supplied fields in a single
// operation and returns the stored task.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id string, changes domain.TaskChanges) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// TaskEventPublisher receives task mutations after they are stored.
type TaskEventPublisher interface {
	Publish(event domain.TaskEvent)
}
