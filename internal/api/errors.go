package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthRequired is returned before any request when a call needs a token and none is stored.
	ErrAuthRequired = errors.New("authentication required")
	// ErrUnauthorized matches a 401 answer to a request that carried a token.
	ErrUnauthorized = errors.New("authentication expired")
)

// Error is a non-2xx answer from the service.
type Error struct {
	Status  int
	Message string

	withToken bool
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized && e.withToken
}

func (e *Error) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// Message extracts what to show the user, falling back to def for transport errors.
func Message(err error, def string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return def
}

func serverError(status int) string {
	return fmt.Sprintf("Server error: %d", status)
}
