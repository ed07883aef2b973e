package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when a job cannot be found in the database
	ErrJobNotFound = errors.New("job not found")
)

// UpstreamError is returned when the webhook endpoint answers with a non-2xx
// status. The job's marker stays unset so the next periodic run retries it.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.StatusCode)
}

// PersistenceError wraps a marker-write failure after a successful send.
// The webhook was delivered; a duplicate notification on the next run is
// an accepted outcome.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "failed to record webhook marker: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
