// Package errors classifies the domain failures the HTTP layer maps to
// status codes. Every failure path in the controller wraps one of the
// sentinels below in an *Error; callers anywhere in the stack recover the
// classification with the Is* helpers rather than inspecting messages.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidReorder = errors.New("invalid reorder")
)

// Error pairs a sentinel with the context around where and why it fired.
type Error struct {
	Err     error
	Op      string
	Code    string
	Message string
}

// NewError builds an Error wrapping err, whose Code is the machine-readable
// classification, Message the human-readable description, and Op the
// operation that failed.
func NewError(code, message, op string, err error) *Error {
	return &Error{Err: err, Op: op, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// is reports whether err is, or wraps, sentinel.
func is(err, sentinel error) bool {
	return errors.Is(err, sentinel)
}

func IsNotFound(err error) bool       { return is(err, ErrNotFound) }
func IsConflict(err error) bool       { return is(err, ErrConflict) }
func IsInvalidInput(err error) bool   { return is(err, ErrInvalidInput) }
func IsForbidden(err error) bool      { return is(err, ErrForbidden) }
func IsInvalidReorder(err error) bool { return is(err, ErrInvalidReorder) }
