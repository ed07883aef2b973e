package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// JobStore is the persistence surface the dispatcher needs
type JobStore interface {
	// DueJobs returns jobs with a scheduled date at or before the given
	// cutoff whose reminder webhook has not been sent yet
	DueJobs(ctx context.Context, cutoff time.Time) ([]*Job, error)

	// GetJob returns a single job or ErrJobNotFound
	GetJob(ctx context.Context, jobID string) (*Job, error)

	// MarkWebhookSent records the dispatch timestamp only if the marker is
	// still unset, atomically. It returns false when another run already
	// recorded a marker for this job.
	MarkWebhookSent(ctx context.Context, jobID string, sentAt time.Time) (bool, error)
}

// Summary reports the outcome of one dispatcher run
type Summary struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors,omitempty"`
}

// ItemError records a single job's failure inside a batch
type ItemError struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason"`
}

// Dispatcher selects due jobs and forwards each to the reminder webhook.
// Per-job failures are isolated: one job's error never aborts the batch.
type Dispatcher struct {
	store  JobStore
	sender Sender
	logger *slog.Logger
	window time.Duration
	now    func() time.Time
}

// NewDispatcher creates a dispatcher with the given look-ahead window
func NewDispatcher(store JobStore, sender Sender, logger *slog.Logger, window time.Duration) *Dispatcher {
	return &Dispatcher{
		store:  store,
		sender: sender,
		logger: logger,
		window: window,
		now:    time.Now,
	}
}

// Run executes one dispatch pass: select all jobs due within the window,
// send a reminder for each, and record the marker on success. Jobs whose
// webhook delivery or marker write fails stay unmarked and are retried by
// the next run.
func (d *Dispatcher) Run(ctx context.Context) (*Summary, error) {
	cutoff := d.now().Add(d.window)

	jobs, err := d.store.DueJobs(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to select due jobs: %w", err)
	}

	summary := &Summary{Total: len(jobs)}

	d.logger.Info("Dispatch run started",
		slog.Int("selected", len(jobs)),
		slog.Time("cutoff", cutoff),
	)

	for _, job := range jobs {
		if err := d.dispatchOne(ctx, job); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, ItemError{
				JobID:  job.ID,
				Reason: err.Error(),
			})

			d.logger.Error("Reminder dispatch failed",
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		summary.Successful++
	}

	d.logger.Info("Dispatch run finished",
		slog.Int("total", summary.Total),
		slog.Int("successful", summary.Successful),
		slog.Int("failed", summary.Failed),
	)

	return summary, nil
}

// dispatchOne sends the reminder for a single job and records the marker.
// The marker write is conditional on the marker still being unset so two
// overlapping runs cannot both record it; a duplicate send in that window
// is accepted.
func (d *Dispatcher) dispatchOne(ctx context.Context, job *Job) error {
	sentAt := d.now()
	payload := BuildReminderPayload(job, sentAt)

	if err := d.sender.SendReminder(ctx, payload); err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return err
		}
		return fmt.Errorf("webhook delivery failed: %w", err)
	}

	marked, err := d.store.MarkWebhookSent(ctx, job.ID, sentAt)
	if err != nil {
		// Sent but not recorded: the job stays eligible and may be
		// notified again on the next run.
		return &PersistenceError{Err: err}
	}

	if !marked {
		d.logger.Warn("Webhook marker already set by a concurrent run",
			slog.String("job_id", job.ID),
		)
	}

	return nil
}
