package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Violation describes a single field-level constraint failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error represents a typed domain error with HTTP awareness. Validation
// errors additionally carry the full list of field violations so clients can
// fix every field in one round-trip.
type Error struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Status     int         `json:"status"`
	Violations []Violation `json:"errors,omitempty"`
	Err        error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the roster error taxonomy.
var (
	ErrInvalidArgument   = New("INVALID_ARGUMENT", http.StatusBadRequest, "invalid argument")
	ErrValidation        = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidAccess     = New("INVALID_ACCESS", http.StatusNotFound, "unknown route")
	ErrInvalidIdentifier = New("INVALID_IDENTIFIER", http.StatusNotFound, "identifier does not exist")
	ErrTargetNotFound    = New("TARGET_NOT_FOUND", http.StatusNotFound, "target not found")
	ErrInternal          = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrCacheMiss signals an absent cache entry, never surfaced to clients.
	ErrCacheMiss = errors.New("cache miss")
)

// Validation builds a validation error carrying every collected violation.
func Validation(violations []Violation) *Error {
	e := Clone(ErrValidation, "")
	e.Violations = violations
	return e
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
