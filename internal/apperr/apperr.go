// Package apperr defines the error taxonomy surfaced by the service
// layer. Handlers switch on the sentinel kinds with errors.Is and use
// the wrapped message as the response body.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrConflict    = errors.New("conflict")
	ErrInvalid     = errors.New("invalid request")
	ErrUnavailable = errors.New("unavailable")
)

type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }
func (e *Error) Unwrap() error { return e.kind }

func NotFound(message string) error    { return &Error{ErrNotFound, message} }
func Forbidden(message string) error   { return &Error{ErrForbidden, message} }
func Conflict(message string) error    { return &Error{ErrConflict, message} }
func Invalid(message string) error     { return &Error{ErrInvalid, message} }
func Unavailable(message string) error { return &Error{ErrUnavailable, message} }
