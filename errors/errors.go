package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is the root of every client error.
	ErrValidation       = fmt.Errorf("validation error")
	ErrMissingField     = fmt.Errorf("%w: missing required field", ErrValidation)
	ErrEmptyMessage     = fmt.Errorf("%w: text or image is required", ErrValidation)
	ErrMissingImage     = fmt.Errorf("%w: missing image file", ErrValidation)
	ErrUnsupportedImage = fmt.Errorf("%w: file is not a supported image", ErrValidation)

	// ErrStorage covers durable read/write failures.
	ErrStorage = fmt.Errorf("storage error")

	// ErrConnectionClosed is returned by a push to a handle whose socket is gone.
	ErrConnectionClosed = fmt.Errorf("connection closed")
	// ErrSinkFull is returned by a push to a handle whose buffer has no room.
	ErrSinkFull = fmt.Errorf("sink buffer full")

	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")
)

// HTTPStatus maps a service error to the status code returned to clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Is and As mirror the standard library so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
