// Package apperr defines the error kinds surfaced by the API and their HTTP mapping.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	Internal Kind = iota
	ValidationFailed
	InvalidInput
	InvalidState
	Unauthenticated
	Forbidden
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case ValidationFailed:
		return "validation_failed"
	case InvalidInput:
		return "invalid_input"
	case InvalidState:
		return "invalid_state"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the error type returned by services.
type Error struct {
	Kind    Kind
	Message string
	// Details holds itemized violations for ValidationFailed.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation builds a ValidationFailed error carrying every violated rule.
func Validation(details ...string) *Error {
	return &Error{Kind: ValidationFailed, Message: "Validation failed", Details: details}
}

// Wrap marks err as an unexpected failure. message is safe to show to clients.
func Wrap(err error, message string) *Error {
	return &Error{Kind: Internal, Message: message, Err: err}
}

func Missing(message string) *Error { return New(NotFound, message) }
func Denied(message string) *Error { return New(Forbidden, message) }
func Unauthorized(message string) *Error { return New(Unauthenticated, message) }
func BadInput(message string) *Error { return New(InvalidInput, message) }
func BadState(message string) *Error { return New(InvalidState, message) }
func Conflicting(message string) *Error { return New(Conflict, message) }

// KindOf returns the kind of err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case ValidationFailed, InvalidInput, InvalidState:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
