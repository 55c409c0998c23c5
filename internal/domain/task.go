package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

const (
	TitleMaxLength       = 100
	DescriptionMaxLength = 500
)

// Statuses lists the valid statuses in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

type Task struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:500;not null;default:''" json:"description"`
	Status      Status    `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	CreatedAt   time.Time `gorm:"not null;index" json:"createdAt"`
}

func (Task) TableName() string {
	return "tasks"
}

// Normalize trims the free-text fields in place.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
}

// Validate checks the schema constraints and returns every violation, in
// field order, as a single *ValidationError. It expects a normalized task.
func (t *Task) Validate() error {
	var messages []string
	if msg := ValidateTitle(t.Title); msg != "" {
		messages = append(messages, msg)
	}
	if msg := ValidateDescription(t.Description); msg != "" {
		messages = append(messages, msg)
	}
	if !t.Status.Valid() {
		messages = append(messages, fmt.Sprintf("%s is not a valid status", t.Status))
	}
	if len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}
	return nil
}

// ValidateTitle returns the violation message for a trimmed title, or "".
func ValidateTitle(title string) string {
	if title == "" {
		return "Task title is required"
	}
	if utf8.RuneCountInString(title) > TitleMaxLength {
		return fmt.Sprintf("Title cannot exceed %d characters", TitleMaxLength)
	}
	return ""
}

// ValidateDescription returns the violation message for a trimmed
// description, or "".
func ValidateDescription(description string) string {
	if utf8.RuneCountInString(description) > DescriptionMaxLength {
		return fmt.Sprintf("Description cannot exceed %d characters", DescriptionMaxLength)
	}
	return ""
}

// TaskChanges is a partial update. Nil fields are left untouched.
type TaskChanges struct {
	Title       *string
	Description *string
	Status      *Status
}

// IsEmpty reports whether no field is supplied.
func (c TaskChanges) IsEmpty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil
}

// Apply copies the supplied fields onto t.
func (c TaskChanges) Apply(t *Task) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
}

// TaskFilter narrows a task listing. A zero Status matches every task.
type TaskFilter struct {
	Status Status
}
