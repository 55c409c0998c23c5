// Package view turns task state into what a front end shows: the filtered
// list, cards, the task form and their plain-text rendering.
package view

import (
	"fmt"
	"strings"

	"github.com/taskflow/backend/internal/domain"
)

type FilterOption struct {
	Value domain.Status
	Label string
}

// FilterOptions are the status filter choices in display order. The empty
// value means all tasks.
var FilterOptions = []FilterOption{
	{Value: "", Label: "All Tasks"},
	{Value: domain.StatusPending, Label: "Pending"},
	{Value: domain.StatusInProgress, Label: "In Progress"},
	{Value: domain.StatusCompleted, Label: "Completed"},
}

// Matches reports whether query occurs in the task's title or description,
// ignoring case.
func Matches(task domain.Task, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(task.Title), q) ||
		strings.Contains(strings.ToLower(task.Description), q)
}

type EmptyKind int

const (
	EmptyNone EmptyKind = iota
	EmptyNoTasks
	EmptyNoSearchMatch
	EmptyNoStatusMatch
)

// List is the visible task list after the status filter and search.
type List struct {
	Items  []domain.Task
	Filter domain.Status
	Query  string
}

func NewList(tasks []domain.Task, filter domain.Status, query string) List {
	items := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter != "" && t.Status != filter {
			continue
		}
		if !Matches(t, query) {
			continue
		}
		items = append(items, t)
	}
	return List{Items: items, Filter: filter, Query: query}
}

func (l List) CountLabel() string {
	n := len(l.Items)
	label := fmt.Sprintf("%d task", n)
	if n != 1 {
		label += "s"
	}
	label += " found"
	if l.Query != "" {
		label += fmt.Sprintf(" for %q", l.Query)
	}
	return label
}

// Empty classifies an empty list. Search wins over the status filter.
func (l List) Empty() EmptyKind {
	switch {
	case len(l.Items) > 0:
		return EmptyNone
	case l.Query != "":
		return EmptyNoSearchMatch
	case l.Filter != "":
		return EmptyNoStatusMatch
	}
	return EmptyNoTasks
}

func (l List) EmptyMessage() string {
	switch l.Empty() {
	case EmptyNoSearchMatch:
		return fmt.Sprintf("No results for %q. Try a different search.", l.Query)
	case EmptyNoStatusMatch:
		return fmt.Sprintf("No tasks with status %q.", string(l.Filter))
	case EmptyNoTasks:
		return "Get started by creating your first task!"
	}
	return ""
}

// Stats are the dashboard counters.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}

func ComputeStats(tasks []domain.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusPending:
			s.Pending++
		case domain.StatusInProgress:
			s.InProgress++
		case domain.StatusCompleted:
			s.Completed++
		}
	}
	return s
}
