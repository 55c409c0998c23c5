package cache

import (
	"context"

	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
)

func taskKey(id string) string {
	return "task:" + id
}

func listKey(status domain.Status) string {
	if status == "" {
		return "list:all"
	}
	return "list:" + string(status)
}

type taskRepository struct {
	next  ports.TaskRepository
	cache *Cache
	log   *logger.Logger
}

// NewTaskRepository wraps next with read-through caching. Writes go to next
// first and then drop the affected keys. Cache failures are logged and never
// fail the request.
func NewTaskRepository(next ports.TaskRepository, cache *Cache, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{next: next, cache: cache, log: log}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.next.Create(ctx, task); err != nil {
		return err
	}
	r.invalidateLists(ctx)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var cached domain.Task
	hit, err := r.cache.Get(ctx, taskKey(id), &cached)
	if err != nil {
		r.log.Warnw("task_cache_get_failed", "id", id, "error", err)
	}
	if hit {
		return &cached, nil
	}

	task, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, taskKey(id), task); err != nil {
		r.log.Warnw("task_cache_set_failed", "id", id, "error", err)
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	key := listKey(filter.Status)
	var cached []domain.Task
	hit, err := r.cache.Get(ctx, key, &cached)
	if err != nil {
		r.log.Warnw("task_cache_get_failed", "key", key, "error", err)
	}
	if hit {
		return cached, nil
	}

	tasks, err := r.next.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	if err := r.cache.Set(ctx, key, tasks); err != nil {
		r.log.Warnw("task_cache_set_failed", "key", key, "error", err)
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, id string, changes domain.TaskChanges) (*domain.Task, error) {
	task, err := r.next.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *taskRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, taskKey(id)); err != nil {
		r.log.Warnw("task_cache_invalidate_failed", "id", id, "error", err)
	}
	r.invalidateLists(ctx)
}

func (r *taskRepository) invalidateLists(ctx context.Context) {
	if err := r.cache.DeletePattern(ctx, "list:*"); err != nil {
		r.log.Warnw("task_cache_invalidate_failed", "key", "list:*", "error", err)
	}
}
