package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taskflow/backend/internal/client"
	"github.com/taskflow/backend/internal/domain"
)

type Field int

const (
	FieldTitle Field = iota
	FieldDescription
	FieldStatus
)

type FormData struct {
	Title       string
	Description string
	Status      domain.Status
}

// FormErrors has one slot per validated field; "" means no error.
type FormErrors struct {
	Title       string
	Description string
}

func (e FormErrors) Any() bool {
	return e.Title != "" || e.Description != ""
}

// Form is the add/edit task form. TaskID is set when editing.
type Form struct {
	TaskID string
	Data   FormData
	Errors FormErrors
}

// NewForm pre-populates from task when editing, or starts from the defaults.
func NewForm(task *domain.Task) *Form {
	if task == nil {
		return &Form{Data: FormData{Status: domain.StatusPending}}
	}
	status := task.Status
	if status == "" {
		status = domain.StatusPending
	}
	return &Form{
		TaskID: task.ID,
		Data: FormData{
			Title:       task.Title,
			Description: task.Description,
			Status:      status,
		},
	}
}

func (f *Form) Editing() bool {
	return f.TaskID != ""
}

// Set changes one field and clears that field's error.
func (f *Form) Set(field Field, value string) {
	switch field {
	case FieldTitle:
		f.Data.Title = value
		f.Errors.Title = ""
	case FieldDescription:
		f.Data.Description = value
		f.Errors.Description = ""
	case FieldStatus:
		f.Data.Status = domain.Status(value)
	}
}

// Validate applies the same limits as the server and reports whether the
// form may be submitted.
func (f *Form) Validate() bool {
	var errs FormErrors
	title := strings.TrimSpace(f.Data.Title)
	switch {
	case title == "":
		errs.Title = "Title is required"
	case utf8.RuneCountInString(title) > domain.TitleMaxLength:
		errs.Title = fmt.Sprintf("Title cannot exceed %d characters", domain.TitleMaxLength)
	}
	errs.Description = domain.ValidateDescription(strings.TrimSpace(f.Data.Description))
	f.Errors = errs
	return !errs.Any()
}

func (f *Form) CharCount() string {
	return fmt.Sprintf("%d/%d", utf8.RuneCountInString(f.Data.Description), domain.DescriptionMaxLength)
}

func (f *Form) Heading() string {
	if f.Editing() {
		return "Edit Task"
	}
	return "Add New Task"
}

func (f *Form) SubmitLabel(busy bool) string {
	switch {
	case busy && f.Editing():
		return "Updating..."
	case busy:
		return "Creating..."
	case f.Editing():
		return "Update Task"
	}
	return "Create Task"
}

func (f *Form) Input() client.TaskInput {
	return client.TaskInput{
		Title:       f.Data.Title,
		Description: f.Data.Description,
		Status:      f.Data.Status,
	}
}
