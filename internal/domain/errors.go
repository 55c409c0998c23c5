package domain

import (
	"errors"
	"strings"
)

var (
	ErrTaskNotFound  = errors.New("task: not found")
	ErrInvalidTaskID = errors.New("task: invalid id format")
)

// ValidationError aggregates schema violations for one task.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}
