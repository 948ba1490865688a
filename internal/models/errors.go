package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a session, template, record, or
	// exercise-within-session is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates an operation against a terminal session.
	ErrInvalidState = errors.New("invalid session state")

	// ErrConflict indicates a concurrent write was detected on a
	// versioned row. Callers may retry a bounded number of times.
	ErrConflict = errors.New("concurrent write conflict")
)

// ValidationError reports a malformed input field. InvalidUnit errors are a
// ValidationError on the weight_unit field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for a field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
