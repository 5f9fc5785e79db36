package lead

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStatus = errors.New("invalid lead status")
)

// FieldError is a validation failure on one form field. Nothing is
// persisted when it is returned.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}
