package aroundegypt

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested experience does not exist
var ErrNotFound = errors.New("experience not found")

// ErrDecode indicates the response body could not be decoded
var ErrDecode = errors.New("failed to decode AroundEgypt response")

// StatusError represents a non-2xx answer, either as an HTTP status or as
// the code reported in the response envelope.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("AroundEgypt API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("AroundEgypt API error: HTTP %d: %s", e.StatusCode, e.Body)
}
