package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrTimeout is returned when the remote API does not answer within the
	// client's request timeout.
	ErrTimeout = errors.New("api: request timed out")
	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrNotFound matches any 404 response.
	ErrNotFound = errors.New("api: not found")
)

// StatusError is a non-2xx answer from the remote API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Message returns the text to show the user for err: the server's own
// message when it sent one, a timeout notice for timeouts, else fallback.
func Message(err error, fallback string) string {
	var se *StatusError
	switch {
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.Is(err, ErrTimeout):
		return "The server took too long to respond, please try again"
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	}
	return fallback
}
