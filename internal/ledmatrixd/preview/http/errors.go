package http

import (
	"net/http"

	werrors "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/errors"
)

// HTTPError is an error that already knows the status code it maps to.
type HTTPError interface {
	error
	StatusCode() int
}

type httpError struct {
	msg  string
	code int
}

func (e *httpError) Error() string   { return e.msg }
func (e *httpError) StatusCode() int { return e.code }

// ErrInvalidRequest wraps a client-supplied body/parameter problem.
func ErrInvalidRequest(msg string) error {
	return &httpError{msg: msg, code: http.StatusBadRequest}
}

// statusFor maps a domain error to the HTTP status it should produce.
func statusFor(err error) int {
	switch {
	case werrors.IsNotFound(err):
		return http.StatusNotFound
	case werrors.IsForbidden(err), werrors.IsConflict(err):
		return http.StatusForbidden
	case werrors.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
