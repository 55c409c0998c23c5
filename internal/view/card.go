package view

import (
	"strings"
	"time"

	"github.com/taskflow/backend/internal/domain"
)

const DateLayout = "Jan 2, 2006, 03:04 PM"

var badgeClasses = map[domain.Status]string{
	domain.StatusPending:    "status-pending",
	domain.StatusInProgress: "status-progress",
	domain.StatusCompleted:  "status-completed",
}

// Card is one task prepared for display.
type Card struct {
	ID          string
	Title       string
	Description string
	Status      domain.Status
	BadgeClass  string
	StatusClass string
	Date        string
}

// NewCard formats task for display in loc; a nil loc means local time.
func NewCard(task domain.Task, loc *time.Location) Card {
	return Card{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		BadgeClass:  BadgeClass(task.Status),
		StatusClass: strings.Replace(strings.ToLower(string(task.Status)), " ", "-", 1),
		Date:        FormatDate(task.CreatedAt, loc),
	}
}

func BadgeClass(status domain.Status) string {
	return badgeClasses[status]
}

func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
