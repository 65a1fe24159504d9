package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a create collides with an existing identifier.
	ErrConflict = errors.New("duplicate identifier")

	// ErrSchemaMismatch is returned when a write names columns the schema lacks.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrTransport is returned when the data store cannot be reached.
	ErrTransport = errors.New("data store unavailable")
)

// ValidationError reports a missing or invalid field. Actions failing
// validation issue no I/O.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid returns a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
