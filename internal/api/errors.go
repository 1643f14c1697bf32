package api

import (
	"errors"
	"fmt"
)

// UnexpectedErrorMessage is shown when a request never produced a server
// response (transport failure, timeout, malformed body).
const UnexpectedErrorMessage = "An unexpected error occurred."

// Error is a non-2xx response from the backend. Message carries the server's
// own wording when the body had one, so the UI can surface it verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d", e.StatusCode)
}

// IsUnauthorized reports whether err is a 401/403 rejection of the
// presented credential.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// FailureMessage converts err into what the UI should display: the server's
// message when one came back, the per-operation fallback for a bare
// rejection, and the generic message for transport failures.
func FailureMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	return UnexpectedErrorMessage
}
