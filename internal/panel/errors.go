package panel

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for 404 responses; the operator-visible text is a
// fixed sentinel rather than the server's raw error.
var ErrNotFound = errors.New("Endpoint or User not found")

// HTTPError is a non-2xx, non-404 panel response
type HTTPError struct {
	Status int
	Detail string
}

// Error returns the error message
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP Error %d: %s", e.Status, e.Detail)
}

// TransportError is a failure to reach the panel or to parse its response
type TransportError struct {
	Err error
}

// Error returns the error message
func (e *TransportError) Error() string {
	return "Unknown error"
}

// Unwrap exposes the underlying cause for logging
func (e *TransportError) Unwrap() error {
	return e.Err
}
