package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/core/services"
	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/db"
	"github.com/taskflow/backend/internal/infrastructure/logger"
	transporthttp "github.com/taskflow/backend/internal/transport/http"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	store, err := db.Open(context.Background(), config.StoreConfig{Driver: "sqlite", URI: "file::memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	app := transporthttp.NewApp(transporthttp.RouterConfig{
		Service: services.NewTaskService(services.TaskServiceConfig{Repository: store.Tasks}),
		Health:  store,
		Logger:  logger.Nop(),
		Config: &config.Config{
			Server:   config.ServerConfig{Mode: config.ModeDevelopment},
			Features: config.FeaturesConfig{RequestIDHeader: "X-Request-ID"},
		},
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{BaseURL: srv.URL + "/api/", Timeout: 5 * time.Second})
}

func TestClient_CRUD(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	tasks, err := c.ListTasks(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	created, err := c.CreateTask(ctx, TaskInput{Title: "Quarterly Report", Description: "numbers"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)

	got, err := c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	updated, err := c.UpdateTask(ctx, created.ID, TaskInput{Title: "Quarterly Report", Description: "numbers", Status: domain.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	inProgress, err := c.ListTasks(ctx, domain.StatusInProgress)
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, created.ID, inProgress[0].ID)

	require.NoError(t, c.DeleteTask(ctx, created.ID))

	err = c.DeleteTask(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Task not found", apiErr.Message)
}

func TestClient_ServerMessagesSurface(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	_, err := c.CreateTask(ctx, TaskInput{Title: strings.Repeat("a", 101)})
	require.EqualError(t, err, "Title cannot exceed 100 characters")

	_, err = c.GetTask(ctx, "bad-id")
	require.EqualError(t, err, "Invalid task ID format")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_FallbackMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	ctx := context.Background()

	_, err := c.ListTasks(ctx, "")
	assert.EqualError(t, err, "Failed to fetch tasks")
	_, err = c.GetTask(ctx, "1")
	assert.EqualError(t, err, "Failed to fetch task")
	_, err = c.CreateTask(ctx, TaskInput{Title: "x"})
	assert.EqualError(t, err, "Failed to create task")
	_, err = c.UpdateTask(ctx, "1", TaskInput{Title: "x"})
	assert.EqualError(t, err, "Failed to update task")
	assert.EqualError(t, c.DeleteTask(ctx, "1"), "Failed to delete task")
}

func TestClient_FailureEnvelopeWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).ListTasks(context.Background(), "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, "Failed to fetch tasks", apiErr.Message)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).ListTasks(context.Background(), "")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "request failed: "), err.Error())

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_SendsBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "In Progress", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"success":true,"count":0,"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL + "/api", Token: "abc"})
	_, err := c.ListTasks(context.Background(), domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", auth)
}
