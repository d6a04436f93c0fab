package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

// ValidationErrors collects every field problem found in one pass
type ValidationErrors []*ValidationError

// Add records a problem with field
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, NewValidationError(field, message))
}

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// As lets errors.As find the first collected *ValidationError
func (v ValidationErrors) As(target interface{}) bool {
	if t, ok := target.(**ValidationError); ok && len(v) > 0 {
		*t = v[0]
		return true
	}
	return false
}

// Err returns nil when nothing was collected
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
