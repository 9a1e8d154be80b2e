// Package apperror defines the error taxonomy shared by every layer.
//
// Each category is a sentinel (ErrNotFound, ErrValidation, ...) hidden inside an
// *AppError that also carries a human-readable message. Callers match the category with
// errors.Is and read the message with errors.As, so "not found" is an explicit result
// the caller checks for, never a panic or a nil record.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransport    = errors.New("transport error")
	ErrTooLarge     = errors.New("payload too large")
)

type AppError struct {
	Err     error  // category sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying failure (transport errors)
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the category and the cause, so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with %s", resource, key),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized reports a credential mismatch. The message must not say which
// credential was wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Transport wraps a failure talking to a remote service (unreachable, timeout,
// bad status, malformed body).
func Transport(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrTransport,
		Message: message,
		Cause:   cause,
	}
}

// TooLarge reports a request body over the accepted size. HTTP handlers map it to
// 413 Request Entity Too Large.
func TooLarge(message string) *AppError {
	return &AppError{
		Err:     ErrTooLarge,
		Message: message,
	}
}
