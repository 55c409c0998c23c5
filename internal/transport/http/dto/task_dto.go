package dto

import (
	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/domain"
)

// Envelope wraps every JSON response. Data is always present on success.
type Envelope struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TaskRequest is the body of create and update calls. Absent fields stay nil.
type TaskRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
	Status      *string `json:"status" form:"status"`
}

func (r *TaskRequest) ToCreateInput() ports.CreateTaskInput {
	var input ports.CreateTaskInput
	if r.Title != nil {
		input.Title = *r.Title
	}
	if r.Description != nil {
		input.Description = *r.Description
	}
	if r.Status != nil {
		input.Status = domain.Status(*r.Status)
	}
	return input
}

func (r *TaskRequest) ToUpdateInput() ports.UpdateTaskInput {
	input := ports.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Status != nil {
		status := domain.Status(*r.Status)
		input.Status = &status
	}
	return input
}

func Success(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func SuccessList(tasks []domain.Task) Envelope {
	count := len(tasks)
	return Envelope{Success: true, Count: &count, Data: tasks}
}

func SuccessMessage(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

func Failure(message string) Envelope {
	return Envelope{Success: false, Message: message}
}
