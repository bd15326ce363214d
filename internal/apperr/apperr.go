// Package apperr defines the error taxonomy shared by services and the
// HTTP layer. Every failure a client can see is one of these kinds; the
// server maps the kind to a status code at the boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind int

const (
	KindValidation Kind = iota // client-fixable input problem, 400
	KindAuth                   // bad credentials or token, inactive account, 401
	KindNotFound               // missing or not-owned resource, 404
	KindConflict               // uniqueness violation or blocked delete, 409
	KindInternal               // anything unexpected, 500
)

// Error carries a client-safe message together with its kind.
type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Validation joins the collected violations into a single 400 error so
// the caller sees every problem at once.
func Validation(messages []string) *Error {
	return &Error{Kind: KindValidation, Message: strings.Join(messages, "; ")}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected error behind a generic client message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", err: err}
}

// From extracts an *Error, converting anything unrecognized to internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
