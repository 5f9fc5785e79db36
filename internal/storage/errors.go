package storage

import (
	"errors"
	"fmt"
)

// Code classifies a storage failure
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeRateLimited   Code = "RATE_LIMITED"
	CodeNetwork       Code = "NETWORK_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeProvider      Code = "PROVIDER_ERROR"
	CodeStorageFull   Code = "STORAGE_FULL"
	CodeUnknown       Code = "UNKNOWN"
)

// Retryable reports whether failures with this code are transient
func (c Code) Retryable() bool {
	switch c {
	case CodeNetwork, CodeRateLimited, CodeProvider, CodeStorageFull:
		return true
	default:
		return false
	}
}

// Error is the only error type that crosses the storage boundary
type Error struct {
	Code      Code
	Message   string
	Retryable bool
	Details   map[string]any
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an Error whose retryability follows its code
func New(code Code, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Retryable: code.Retryable(), Details: details}
}

func NotFound(resource, id string) *Error {
	msg := resource + " not found"
	if id != "" {
		msg = fmt.Sprintf("%s %q not found", resource, id)
	}
	return New(CodeNotFound, msg, map[string]any{"resource": resource, "id": id})
}

func AlreadyExists(resource, identifier string) *Error {
	msg := resource + " already exists"
	if identifier != "" {
		msg = fmt.Sprintf("%s %q already exists", resource, identifier)
	}
	return New(CodeAlreadyExists, msg, map[string]any{"resource": resource, "identifier": identifier})
}

func Validation(message, field string) *Error {
	return New(CodeValidation, message, map[string]any{"field": field})
}

func RateLimited(retryAfterSeconds int) *Error {
	return New(CodeRateLimited, "too many requests, try again later", map[string]any{"retry_after": retryAfterSeconds})
}

func Network(cause error) *Error {
	e := New(CodeNetwork, "connection error", nil)
	e.cause = cause
	return e
}

func Unauthorized() *Error {
	return New(CodeUnauthorized, "session expired, sign in again", nil)
}

func Forbidden(action string) *Error {
	msg := "not allowed"
	if action != "" {
		msg = "not allowed to " + action
	}
	return New(CodeForbidden, msg, map[string]any{"action": action})
}

func ProviderFailure(message string, cause error) *Error {
	e := New(CodeProvider, message, nil)
	e.cause = cause
	return e
}

func StorageFull(cause error) *Error {
	e := New(CodeStorageFull, "storage is full", nil)
	e.cause = cause
	return e
}

// AsError extracts the *Error in err's chain
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err carries the given storage code
func IsCode(err error, code Code) bool {
	se, ok := AsError(err)
	return ok && se.Code == code
}

// IsNotFound is a shorthand for IsCode(err, CodeNotFound)
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsRetryable reports whether err is a transient storage failure
func IsRetryable(err error) bool {
	se, ok := AsError(err)
	return ok && se.Retryable
}
