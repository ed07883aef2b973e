package domain

import "errors"

// Job status values
const (
	JobStatusPending    = "pending"
	JobStatusScheduled  = "scheduled"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// Quote status values
const (
	QuoteStatusPending   = "pending"
	QuoteStatusAccepted  = "accepted"
	QuoteStatusDeclined  = "declined"
	QuoteStatusConverted = "converted"
)

var (
	// ErrJobNotFound is returned when a job cannot be found
	ErrJobNotFound = errors.New("job not found")

	// ErrQuoteNotFound is returned when a quote cannot be found
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrQuoteNotAccepted is returned when converting a quote that is not
	// in the accepted state (including one already converted concurrently)
	ErrQuoteNotAccepted = errors.New("quote is not in accepted state")
)
