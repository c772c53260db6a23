// Package apperrors defines the error taxonomy the API surfaces: validation,
// unauthorized, forbidden, not found, conflict, and transient. Handlers map
// these to HTTP statuses; services return them instead of recovering.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind is the machine-readable error class.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindTransient    Kind = "TRANSIENT"
	KindInternal     Kind = "INTERNAL"
)

var statusByKind = map[Kind]int{
	KindValidation:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindTransient:    http.StatusServiceUnavailable,
	KindInternal:     http.StatusInternalServerError,
}

// Error carries a kind, a caller-facing message, and optional per-field
// validation messages.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
}

// Error implements error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return string(e.Kind) + ": " + e.Message
}

// HTTPStatus returns the HTTP status for the error's kind.
func (e *Error) HTTPStatus() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the caller may retry the request unchanged.
func (e *Error) Retryable() bool { return e.Kind == KindTransient }

// Validation returns a 400-class error with per-field messages.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// ValidationField returns a 400-class error for a single invalid field.
func ValidationField(field, msg string) *Error {
	return Validation(map[string][]string{field: {msg}})
}

// Unauthorized returns a 401-class error. The message is deliberately
// generic: the caller must not learn which factor was wrong.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
}

// Forbidden returns a 403-class error.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound returns a 404-class error for the named resource.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Conflict returns a 409-class error (duplicate unique field, illegal state).
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Transient returns a retryable 503-class error for simulated infrastructure failure.
func Transient(msg string) *Error {
	return &Error{Kind: KindTransient, Message: msg}
}

// Internal returns a 500-class error with a caller-safe message.
func Internal() *Error {
	return &Error{Kind: KindInternal, Message: "internal error, please try again"}
}

// From extracts the *Error from err, wrapping unknown errors as Internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal()
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
