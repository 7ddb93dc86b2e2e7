// Package errors provides the typed errors surfaced to GraphQL clients.
//
// Usage:
//
//	// In services - return typed errors
//	if errors.Is(err, store.ErrEmailExists) {
//	    return nil, errors.ValidationWithDetails("email already in use", map[string]string{"email": "is already in use"})
//	}
//
//	// Anywhere - check with errors.Is
//	if errors.Is(err, errors.ErrUnauthenticated) {
//	    ...
//	}
//
// The GraphQL executor calls Extensions on resolver errors, so the code and
// any field details reach the client in the "extensions" member of the error.
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
// Values follow the codes GraphQL clients conventionally switch on.
type Code string

// Error codes used throughout the application.
const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeValidation      Code = "BAD_USER_INPUT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL_SERVER_ERROR"
)

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Extensions returns the GraphQL error extensions for this error.
func (e *Error) Extensions() map[string]any {
	ext := map[string]any{"code": string(e.Code)}
	if e.Details != nil {
		ext["details"] = e.Details
	}
	return ext
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated, Message: "unauthenticated"}
	ErrValidation      = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInternal        = &Error{Code: CodeInternal, Message: "internal error"}
)

// Authentication creates an authentication error. The message is all the
// caller sees, so it must not say which part of a credential was wrong.
func Authentication(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
