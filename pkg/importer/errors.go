package importer

import (
	"fmt"
	"strings"
)

// InvalidRequestError reports an import request with missing required
// fields. It is raised before any network call is made.
type InvalidRequestError struct {
	Missing []string
}

// Error implements the error interface.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("import request missing required fields: %s",
		strings.Join(e.Missing, ", "))
}
