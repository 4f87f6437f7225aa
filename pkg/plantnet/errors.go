package plantnet

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by Identify when no API key is configured.
var ErrMissingAPIKey = errors.New("Pl@ntNet API key not configured")

// APIError is a non-2xx response from the Pl@ntNet API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Pl@ntNet API error: %d - %s", e.StatusCode, e.Body)
}
