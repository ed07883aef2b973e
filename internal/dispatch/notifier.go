package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Outcome statuses for a single on-demand notification request
const (
	// OutcomeSent means the webhook was delivered and the marker recorded
	OutcomeSent = "sent"
	// OutcomePartial means the webhook was delivered but the marker write
	// failed; the job stays eligible for the periodic dispatcher
	OutcomePartial = "sent_marker_failed"
	// OutcomeSkipped means no notification is needed; see Reason
	OutcomeSkipped = "not_needed"
	// OutcomeDeferred means the scheduled date is beyond the window and the
	// periodic dispatcher will pick the job up later, at NotifyAt
	OutcomeDeferred = "deferred"
)

// Skip reason codes
const (
	ReasonNoScheduledDate = "no_scheduled_date"
	ReasonAlreadyNotified = "already_notified"
)

// Outcome describes what the notifier did (or decided not to do) for a job
type Outcome struct {
	Status   string     `json:"status"`
	Reason   string     `json:"reason,omitempty"`
	NotifyAt *time.Time `json:"notify_at,omitempty"`
	SentAt   *time.Time `json:"sent_at,omitempty"`
}

// Notifier runs the single-job variant of the reminder dispatch, used when
// a job is created or updated interactively.
type Notifier struct {
	store  JobStore
	sender Sender
	logger *slog.Logger
	window time.Duration
	now    func() time.Time
}

// NewNotifier creates a notifier with the given look-ahead window
func NewNotifier(store JobStore, sender Sender, logger *slog.Logger, window time.Duration) *Notifier {
	return &Notifier{
		store:  store,
		sender: sender,
		logger: logger,
		window: window,
		now:    time.Now,
	}
}

// NotifyJob fetches the job and sends its reminder if it is due within the
// window. Jobs without a scheduled date or already notified are reported as
// no-ops; jobs due later report the time the periodic dispatcher becomes
// responsible for them (scheduled_date minus the window).
//
// Errors: ErrJobNotFound when the job does not exist; an *UpstreamError (or
// other delivery error) when the webhook POST fails. A marker-write failure
// after a successful send is not an error, it is OutcomePartial.
func (n *Notifier) NotifyJob(ctx context.Context, jobID string) (*Outcome, error) {
	job, err := n.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.ScheduledDate == nil {
		return &Outcome{Status: OutcomeSkipped, Reason: ReasonNoScheduledDate}, nil
	}

	if job.WebhookSentAt != nil {
		return &Outcome{Status: OutcomeSkipped, Reason: ReasonAlreadyNotified}, nil
	}

	now := n.now()
	if !job.DueForReminder(now, n.window) {
		notifyAt := job.ScheduledDate.Add(-n.window)

		n.logger.Info("Job not yet in dispatch window, leaving it to the periodic run",
			slog.String("job_id", job.ID),
			slog.Time("scheduled_date", *job.ScheduledDate),
			slog.Time("notify_at", notifyAt),
		)

		return &Outcome{Status: OutcomeDeferred, NotifyAt: &notifyAt}, nil
	}

	sentAt := now
	payload := BuildReminderPayload(job, sentAt)

	if err := n.sender.SendReminder(ctx, payload); err != nil {
		return nil, fmt.Errorf("webhook delivery failed: %w", err)
	}

	marked, err := n.store.MarkWebhookSent(ctx, job.ID, sentAt)
	if err != nil {
		n.logger.Warn("Webhook sent but marker update failed, job stays eligible",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return &Outcome{Status: OutcomePartial, SentAt: &sentAt}, nil
	}

	if !marked {
		n.logger.Warn("Webhook marker already set by a concurrent run",
			slog.String("job_id", job.ID),
		)
	}

	return &Outcome{Status: OutcomeSent, SentAt: &sentAt}, nil
}
