package console

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/backend/internal/app"
	"github.com/taskflow/backend/internal/client"
	"github.com/taskflow/backend/internal/domain"
)

type scriptedReader struct {
	lines   []string
	prompts []string
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) SetPrompt(prompt string) {
	r.prompts = append(r.prompts, prompt)
}

type memoryAPI struct {
	mu     sync.Mutex
	tasks  []domain.Task
	nextID int
}

func (a *memoryAPI) ListTasks(_ context.Context, status domain.Status) ([]domain.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []domain.Task{}
	for _, t := range a.tasks {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (a *memoryAPI) CreateTask(_ context.Context, in client.TaskInput) (*domain.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(strings.TrimSpace(in.Title)) > domain.TitleMaxLength {
		return nil, &client.APIError{StatusCode: 400, Message: "Title cannot exceed 100 characters"}
	}
	a.nextID++
	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	task := domain.Task{
		ID:          strconv.Itoa(a.nextID),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}
	a.tasks = append([]domain.Task{task}, a.tasks...)
	return &task, nil
}

func (a *memoryAPI) UpdateTask(_ context.Context, id string, in client.TaskInput) (*domain.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.tasks {
		if a.tasks[i].ID == id {
			a.tasks[i].Title = strings.TrimSpace(in.Title)
			a.tasks[i].Description = strings.TrimSpace(in.Description)
			a.tasks[i].Status = in.Status
			task := a.tasks[i]
			return &task, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "Task not found"}
}

func (a *memoryAPI) DeleteTask(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.tasks {
		if a.tasks[i].ID == id {
			a.tasks = append(a.tasks[:i], a.tasks[i+1:]...)
			return nil
		}
	}
	return &client.APIError{StatusCode: 404, Message: "Task not found"}
}

func runConsole(t *testing.T, api app.TaskAPI, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	reader := &scriptedReader{lines: lines}

	var c *Console
	shell := app.New(app.Config{
		API:           api,
		MinLoading:    10 * time.Millisecond,
		ConfirmWindow: time.Minute,
		OnChange:      func(s app.Snapshot) { c.OnChange(s) },
	})
	c = New(Config{Shell: shell, Reader: reader, Out: &out, Location: time.UTC, WaitTimeout: 2 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = shell.Run(ctx) }()

	require.NoError(t, c.Run(ctx))
	return out.String()
}

func TestConsole_AddListAndSearch(t *testing.T) {
	api := &memoryAPI{}
	out := runConsole(t, api,
		"add", "Quarterly Report", "numbers for Q3", "progress",
		"add", "Shopping List", "", "",
		"search report",
		"stats",
		"quit",
	)

	assert.Contains(t, out, "Get started by creating your first task!")
	assert.Contains(t, out, "Add New Task")
	assert.Contains(t, out, `Created "Quarterly Report".`)
	assert.Contains(t, out, `Created "Shopping List".`)
	assert.Contains(t, out, `1 task found for "report"`)

	require.Len(t, api.tasks, 2)
	assert.Equal(t, domain.StatusPending, api.tasks[0].Status)
	assert.Equal(t, domain.StatusInProgress, api.tasks[1].Status)
}

func TestConsole_FormRepromptsOnValidationError(t *testing.T) {
	api := &memoryAPI{}
	out := runConsole(t, api,
		"add", strings.Repeat("x", 101), "", "",
		"Fixed title", "", "",
		"quit",
	)

	assert.Contains(t, out, "title: Title cannot exceed 100 characters")
	require.Len(t, api.tasks, 1)
	assert.Equal(t, "Fixed title", api.tasks[0].Title)
}

func TestConsole_EditKeepsBlankFields(t *testing.T) {
	api := &memoryAPI{}
	_, _ = api.CreateTask(context.Background(), client.TaskInput{Title: "Draft", Description: "body"})

	out := runConsole(t, api, "edit 1", "", "", "done", "quit")

	assert.Contains(t, out, "Edit Task")
	assert.Contains(t, out, `Updated "Draft".`)
	assert.Equal(t, "body", api.tasks[0].Description)
	assert.Equal(t, domain.StatusCompleted, api.tasks[0].Status)
}

func TestConsole_DeleteNeedsConfirmation(t *testing.T) {
	api := &memoryAPI{}
	_, _ = api.CreateTask(context.Background(), client.TaskInput{Title: "Temp"})

	out := runConsole(t, api, "delete 1", "list", "delete 1", "quit")

	assert.Contains(t, out, "Run 'delete 1' again to confirm")
	assert.Contains(t, out, "Temp (delete again to confirm)")
	assert.Contains(t, out, `Deleted "Temp".`)
	assert.Empty(t, api.tasks)
}

func TestConsole_FilterAndErrors(t *testing.T) {
	api := &memoryAPI{}
	_, _ = api.CreateTask(context.Background(), client.TaskInput{Title: "Open"})

	out := runConsole(t, api, "filter completed", "filter bogus", "edit 9", "frobnicate")

	assert.Contains(t, out, `No tasks with status "Completed".`)
	assert.Contains(t, out, `unknown filter "bogus"`)
	assert.Contains(t, out, "no task number 9")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
}

func TestParseStatus(t *testing.T) {
	tests := map[string]domain.Status{
		"":            "",
		"all":         "",
		"Pending":     domain.StatusPending,
		"progress":    domain.StatusInProgress,
		"In Progress": domain.StatusInProgress,
		"done":        domain.StatusCompleted,
	}
	for in, want := range tests {
		got, ok := ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseStatus("later")
	assert.False(t, ok)
}

func TestConsole_EditClearsDescription(t *testing.T) {
	api := &memoryAPI{}
	_, _ = api.CreateTask(context.Background(), client.TaskInput{Title: "Draft", Description: "body"})

	out := runConsole(t, api, "edit 1", "", "-", "", "quit")

	assert.Contains(t, out, `Updated "Draft".`)
	assert.Equal(t, "", api.tasks[0].Description)
	assert.Equal(t, "Draft", api.tasks[0].Title)
	assert.Equal(t, domain.StatusPending, api.tasks[0].Status)
}

func TestConsole_FilterListsChoices(t *testing.T) {
	api := &memoryAPI{}

	out := runConsole(t, api, "filter completed", "filter", "quit")

	assert.Contains(t, out, "  All Tasks\n")
	assert.Contains(t, out, "* Completed\n")
	assert.Contains(t, out, "  In Progress\n")
}
