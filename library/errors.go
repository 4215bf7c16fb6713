package library

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidState Code = "INVALID_STATE"
	CodeInvalidInput Code = "INVALID_INPUT"
)

// Error is a catalog error carrying a code and a message meant for the user.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound)
// works for every not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidState = &Error{Code: CodeInvalidState, Message: "invalid state"}
	ErrInvalidInput = &Error{Code: CodeInvalidInput, Message: "invalid input"}
)

func notFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidState(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput builds an InvalidInput error. The menu uses it for
// selections that do not parse.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func invalidInputCause(msg string, cause error) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, cause: cause}
}

// CodeOf returns the code of err, or "" when err is not a catalog error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
