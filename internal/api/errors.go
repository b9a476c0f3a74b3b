package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/glfm/pkg/glfm"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps a library error to an HTTP status and an error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, glfm.ErrInvalidInput),
		errors.Is(err, glfm.ErrDimensionMismatch),
		errors.Is(err, glfm.ErrUnknownType):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, glfm.ErrNonFinite):
		return http.StatusUnprocessableEntity, "numerical_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
