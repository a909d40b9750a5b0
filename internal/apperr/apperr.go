// Package apperr classifies errors into the kinds the HTTP layer reports.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

// Kind represents the category of an error.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindInternal   Kind = "INTERNAL"
)

// AppError is an error with a kind and a client-facing message.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Validation creates a validation error.
func Validation(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...any) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected error.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: err.Error(), Cause: err}
}

// KindOf returns the kind of err. Errors raised by the persistence layer are
// classified by their sentinel; anything unrecognised is internal.
func KindOf(err error) Kind {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Kind
	case errors.Is(err, neopersist.ErrNotFound):
		return KindNotFound
	case errors.Is(err, neopersist.ErrConstraintViolation):
		return KindConflict
	default:
		return KindInternal
	}
}

// StatusOf maps err to an HTTP status code.
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text reported to clients. Unclassified errors are
// passed through verbatim.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
