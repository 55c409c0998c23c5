package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/backend/internal/domain"
)

func sampleTasks() []domain.Task {
	return []domain.Task{
		{ID: "1", Title: "Quarterly Report", Description: "Compile numbers", Status: domain.StatusInProgress},
		{ID: "2", Title: "Shopping List", Description: "milk, eggs", Status: domain.StatusPending},
		{ID: "3", Title: "Call plumber", Description: "About the REPORTED leak", Status: domain.StatusCompleted},
	}
}

func ids(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestNewList_Search(t *testing.T) {
	list := NewList(sampleTasks(), "", "report")
	assert.Equal(t, []string{"1", "3"}, ids(list.Items))

	list = NewList(sampleTasks(), "", "")
	assert.Len(t, list.Items, 3)
}

func TestNewList_SearchAndFilterCombine(t *testing.T) {
	list := NewList(sampleTasks(), domain.StatusCompleted, "report")
	assert.Equal(t, []string{"3"}, ids(list.Items))

	list = NewList(sampleTasks(), domain.StatusPending, "report")
	assert.Empty(t, list.Items)
}

func TestList_CountLabel(t *testing.T) {
	assert.Equal(t, "3 tasks found", NewList(sampleTasks(), "", "").CountLabel())
	assert.Equal(t, "1 task found", NewList(sampleTasks(), domain.StatusPending, "").CountLabel())
	assert.Equal(t, `2 tasks found for "report"`, NewList(sampleTasks(), "", "report").CountLabel())
	assert.Equal(t, "0 tasks found", NewList(nil, "", "").CountLabel())
}

func TestList_EmptyStates(t *testing.T) {
	tests := []struct {
		name    string
		list    List
		kind    EmptyKind
		message string
	}{
		{"has items", NewList(sampleTasks(), "", ""), EmptyNone, ""},
		{"no tasks", NewList(nil, "", ""), EmptyNoTasks, "Get started by creating your first task!"},
		{"no search match", NewList(sampleTasks(), domain.StatusPending, "zzz"), EmptyNoSearchMatch, `No results for "zzz". Try a different search.`},
		{"no status match", NewList(nil, domain.StatusCompleted, ""), EmptyNoStatusMatch, `No tasks with status "Completed".`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.list.Empty())
			assert.Equal(t, tt.message, tt.list.EmptyMessage())
		})
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(sampleTasks())
	assert.Equal(t, Stats{Total: 3, Pending: 1, InProgress: 1, Completed: 1}, s)
}

func TestNewCard(t *testing.T) {
	created := time.Date(2026, 2, 5, 14, 7, 0, 0, time.UTC)
	card := NewCard(domain.Task{ID: "1", Title: "T", Status: domain.StatusInProgress, CreatedAt: created}, time.UTC)

	assert.Equal(t, "status-progress", card.BadgeClass)
	assert.Equal(t, "in-progress", card.StatusClass)
	assert.Equal(t, "Feb 5, 2026, 02:07 PM", card.Date)

	assert.Equal(t, "status-pending", BadgeClass(domain.StatusPending))
	assert.Equal(t, "status-completed", BadgeClass(domain.StatusCompleted))
}

func TestForm_Defaults(t *testing.T) {
	f := NewForm(nil)
	assert.False(t, f.Editing())
	assert.Equal(t, FormData{Status: domain.StatusPending}, f.Data)
	assert.Equal(t, "Add New Task", f.Heading())
	assert.Equal(t, "Create Task", f.SubmitLabel(false))
	assert.Equal(t, "Creating...", f.SubmitLabel(true))
	assert.Equal(t, "0/500", f.CharCount())
}

func TestForm_PrePopulates(t *testing.T) {
	f := NewForm(&domain.Task{ID: "9", Title: "Edit me", Description: "body", Status: domain.StatusCompleted})
	assert.True(t, f.Editing())
	assert.Equal(t, FormData{Title: "Edit me", Description: "body", Status: domain.StatusCompleted}, f.Data)
	assert.Equal(t, "Edit Task", f.Heading())
	assert.Equal(t, "Update Task", f.SubmitLabel(false))
	assert.Equal(t, "Updating...", f.SubmitLabel(true))
	assert.Equal(t, "4/500", f.CharCount())

	input := f.Input()
	assert.Equal(t, "Edit me", input.Title)
	assert.Equal(t, domain.StatusCompleted, input.Status)
}

func TestForm_Validate(t *testing.T) {
	f := NewForm(nil)
	assert.False(t, f.Validate())
	assert.Equal(t, "Title is required", f.Errors.Title)

	f.Set(FieldTitle, "   ")
	assert.Empty(t, f.Errors.Title, "editing a field clears its error")
	assert.False(t, f.Validate())

	f.Set(FieldTitle, strings.Repeat("a", 101))
	f.Set(FieldDescription, strings.Repeat("d", 501))
	assert.False(t, f.Validate())
	assert.Equal(t, "Title cannot exceed 100 characters", f.Errors.Title)
	assert.Equal(t, "Description cannot exceed 500 characters", f.Errors.Description)

	f.Set(FieldDescription, "ok")
	assert.Empty(t, f.Errors.Description)
	assert.Equal(t, "Title cannot exceed 100 characters", f.Errors.Title)

	f.Set(FieldTitle, "  "+strings.Repeat("a", 100)+"  ")
	f.Set(FieldStatus, string(domain.StatusInProgress))
	assert.True(t, f.Validate())
	assert.False(t, f.Errors.Any())
	assert.Equal(t, domain.StatusInProgress, f.Data.Status)
}

func TestRenderer_Tasks(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, time.UTC)

	list := NewList(sampleTasks(), "", "report")
	require.NoError(t, r.Tasks(list, "3"))

	out := buf.String()
	assert.Contains(t, out, `2 tasks found for "report"`)
	assert.Contains(t, out, "Quarterly Report")
	assert.Contains(t, out, "Call plumber (delete again to confirm)")
	assert.NotContains(t, out, "Shopping List")
}

func TestRenderer_EmptyAndPanels(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, time.UTC)

	require.NoError(t, r.Tasks(NewList(nil, "", ""), ""))
	require.NoError(t, r.ErrorPanel("Failed to fetch tasks"))
	require.NoError(t, r.FormErrors(FormErrors{Title: "Title is required"}))

	out := buf.String()
	assert.Contains(t, out, "Get started by creating your first task!")
	assert.Contains(t, out, "Failed to fetch tasks")
	assert.Contains(t, out, "title: Title is required")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b", preview("a\n  b"))
	long := strings.Repeat("x", 60)
	assert.Equal(t, strings.Repeat("x", 37)+"...", preview(long))
}
