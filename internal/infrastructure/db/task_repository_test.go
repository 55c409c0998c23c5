package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), config.StoreConfig{
		Driver: "sqlite",
		URI:    "file::memory:",
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

// exerciseRepository runs the shared contract against any backend.
func exerciseRepository(t *testing.T, repo ports.TaskRepository, malformedID, missingID string) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &domain.Task{Title: "Quarterly Report", Description: "draft", Status: domain.StatusPending, CreatedAt: base}
	second := &domain.Task{Title: "Shopping List", Status: domain.StatusCompleted, CreatedAt: base.Add(time.Minute)}
	third := &domain.Task{Title: "Call plumber", Status: domain.StatusPending, CreatedAt: base.Add(2 * time.Minute)}
	for _, task := range []*domain.Task{first, second, third} {
		require.NoError(t, repo.Create(ctx, task))
		require.NotEmpty(t, task.ID)
	}

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, "Quarterly Report", got.Title)
		assert.Equal(t, "draft", got.Description)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.True(t, base.Equal(got.CreatedAt), "createdAt %v", got.CreatedAt)

		_, err = repo.GetByID(ctx, malformedID)
		assert.ErrorIs(t, err, domain.ErrInvalidTaskID)
		_, err = repo.GetByID(ctx, missingID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		all, err := repo.List(ctx, domain.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

		pending, err := repo.List(ctx, domain.TaskFilter{Status: domain.StatusPending})
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, third.ID, pending[0].ID)

		unknown, err := repo.List(ctx, domain.TaskFilter{Status: "Archived"})
		require.NoError(t, err)
		assert.Empty(t, unknown)
	})

	t.Run("update", func(t *testing.T) {
		title := "Groceries"
		inProgress := domain.StatusInProgress
		updated, err := repo.Update(ctx, second.ID, domain.TaskChanges{Title: &title, Status: &inProgress})
		require.NoError(t, err)
		assert.Equal(t, "Groceries", updated.Title)
		assert.Equal(t, domain.StatusInProgress, updated.Status)

		got, err := repo.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "Groceries", got.Title)
		assert.Equal(t, domain.StatusInProgress, got.Status)
		assert.True(t, second.CreatedAt.Equal(got.CreatedAt))

		unchanged, err := repo.Update(ctx, second.ID, domain.TaskChanges{})
		require.NoError(t, err)
		assert.Equal(t, "Groceries", unchanged.Title)

		_, err = repo.Update(ctx, missingID, domain.TaskChanges{Title: &title})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
		_, err = repo.Update(ctx, malformedID, domain.TaskChanges{Title: &title})
		assert.ErrorIs(t, err, domain.ErrInvalidTaskID)
	})

	t.Run("partial updates do not overwrite each other", func(t *testing.T) {
		// Two writers that both read the original task before either writes.
		title := "Quarterly Report v2"
		completed := domain.StatusCompleted
		_, err := repo.Update(ctx, first.ID, domain.TaskChanges{Title: &title})
		require.NoError(t, err)
		_, err = repo.Update(ctx, first.ID, domain.TaskChanges{Status: &completed})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Quarterly Report v2", got.Title)
		assert.Equal(t, "draft", got.Description)
		assert.Equal(t, domain.StatusCompleted, got.Status)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, third.ID))
		assert.ErrorIs(t, repo.Delete(ctx, third.ID), domain.ErrTaskNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, malformedID), domain.ErrInvalidTaskID)

		_, err := repo.GetByID(ctx, third.ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		all, err := repo.List(ctx, domain.TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestTaskRepository_SQLite(t *testing.T) {
	store := openSQLite(t)
	assert.Equal(t, "sqlite", store.Name)
	require.NoError(t, store.Ping(context.Background()))

	exerciseRepository(t, store.Tasks, "not-a-uuid", "00000000-0000-4000-8000-000000000000")
}

func TestTaskRepository_CreateAssignsTimestamp(t *testing.T) {
	store := openSQLite(t)
	before := time.Now().UTC().Add(-time.Second)

	task := &domain.Task{Title: "Stamp me", Status: domain.StatusPending}
	require.NoError(t, store.Tasks.Create(context.Background(), task))

	assert.True(t, task.CreatedAt.After(before))
	assert.Equal(t, 0, task.CreatedAt.Nanosecond()%int(time.Millisecond))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "redis", URI: "x"}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
