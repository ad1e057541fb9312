package task

import (
	"errors"
	"strings"
)

// ErrTaskNotFound is returned when no task matches the requested ID for
// the requesting owner. A task that exists but belongs to another user is
// reported the same way, so callers cannot distinguish the two cases.
var ErrTaskNotFound = errors.New("task not found")

// FieldError describes a validation failure on a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when one or more input fields are invalid.
// The store is never touched when a ValidationError is produced.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// newValidationError builds a ValidationError for a single field.
func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
