package pagination

import (
	"fmt"
)

// MalformedResponseError reports a page response that could not be
// parsed or that is missing a required field.
type MalformedResponseError struct {
	URL   string
	Field string
	Err   error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed page response from %s: missing field %q", e.URL, e.Field)
	}
	return fmt.Sprintf("malformed page response from %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
