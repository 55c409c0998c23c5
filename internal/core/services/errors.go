package services

import "errors"

// Task errors
var (
	ErrTaskTitleRequired = errors.New("task: title is required")
)
