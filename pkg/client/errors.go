package client

import (
	"fmt"
)

// RequestError reports a non-success HTTP status from the repository.
// The status code and request URL are preserved for diagnostics. The
// client never retries; the error surfaces to the caller immediately.
type RequestError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("repository request failed (status %d): %s", e.StatusCode, e.URL)
}
