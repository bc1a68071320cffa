package api

import (
	"errors"
	"fmt"
)

// Sentinel categories. Callers check them with errors.Is; the concrete
// *Error carries the status and any server-supplied message.
var (
	// ErrNetwork marks requests that failed before a response arrived.
	ErrNetwork = errors.New("network error")
	// ErrUnauthorized marks 401 responses. By the time a caller sees it the
	// session has already been torn down.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is an HTTP error response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}

// Message extracts the user-facing message for err following the display
// policy: a server message verbatim when one exists, the network-error text
// for transport failures, otherwise the operation-specific fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrNetwork) {
		return "Network error: could not connect to the server."
	}
	return fallback
}
