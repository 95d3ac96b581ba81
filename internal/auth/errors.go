package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain error categories. Handlers map these to HTTP statuses at the edge;
// everything unexpected is wrapped as ErrInternal with a generic message so
// store and provider error text never reaches a response body.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal error")
)

// Errorf wraps a sentinel with a human-readable message, e.g.
// Errorf(ErrConflict, "user already exists").
func Errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}

// StatusCode maps a domain error to its HTTP status. Unknown errors are
// treated as internal.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a caller. Domain errors carry their
// own message; anything else collapses to a generic one.
func Message(err error) string {
	for _, sentinel := range []error{ErrNotFound, ErrUnauthorized, ErrConflict, ErrBadRequest} {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "authentication service temporarily unavailable"
}
