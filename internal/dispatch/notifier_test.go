package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NotifyJob(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	soon := now.Add(30 * time.Minute)
	later := now.Add(4 * time.Hour)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name         string
		job          *Job
		wantStatus   string
		wantReason   string
		wantNotifyAt *time.Time
		wantSent     bool
	}{
		{
			name:       "job without scheduled date is skipped",
			job:        &Job{ID: "job-1", Title: "Estimate visit"},
			wantStatus: OutcomeSkipped,
			wantReason: ReasonNoScheduledDate,
		},
		{
			name: "already notified job is skipped",
			job: &Job{
				ID:            "job-1",
				ScheduledDate: &soon,
				WebhookSentAt: &earlier,
			},
			wantStatus: OutcomeSkipped,
			wantReason: ReasonAlreadyNotified,
		},
		{
			name:         "job beyond the window is deferred",
			job:          scheduledJob("job-1", later),
			wantStatus:   OutcomeDeferred,
			wantNotifyAt: timePtr(later.Add(-time.Hour)),
		},
		{
			name:       "job within the window is sent immediately",
			job:        scheduledJob("job-1", soon),
			wantStatus: OutcomeSent,
			wantSent:   true,
		},
		{
			name:       "overdue job is sent immediately",
			job:        scheduledJob("job-1", earlier),
			wantStatus: OutcomeSent,
			wantSent:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockJobStore(tt.job)
			sender := newMockSender()

			n := NewNotifier(store, sender, testLogger(), time.Hour)
			n.now = func() time.Time { return now }

			outcome, err := n.NotifyJob(context.Background(), tt.job.ID)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, outcome.Status)
			assert.Equal(t, tt.wantReason, outcome.Reason)

			if tt.wantNotifyAt != nil {
				require.NotNil(t, outcome.NotifyAt)
				assert.True(t, outcome.NotifyAt.Equal(*tt.wantNotifyAt))
			} else {
				assert.Nil(t, outcome.NotifyAt)
			}

			if tt.wantSent {
				require.Len(t, sender.sent, 1)
				require.NotNil(t, outcome.SentAt)
				assert.True(t, outcome.SentAt.Equal(now))

				got, err := store.GetJob(context.Background(), tt.job.ID)
				require.NoError(t, err)
				require.NotNil(t, got.WebhookSentAt)
				assert.True(t, got.WebhookSentAt.Equal(now))
			} else {
				assert.Empty(t, sender.sent)
			}
		})
	}
}

func TestNotifier_NotifyJob_NotFound(t *testing.T) {
	n := NewNotifier(newMockJobStore(), newMockSender(), testLogger(), time.Hour)

	_, err := n.NotifyJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestNotifier_NotifyJob_DeliveryFailure(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	store := newMockJobStore(scheduledJob("job-1", now.Add(10*time.Minute)))
	sender := newMockSender()
	sender.failFor["job-1"] = true

	n := NewNotifier(store, sender, testLogger(), time.Hour)
	n.now = func() time.Time { return now }

	_, err := n.NotifyJob(context.Background(), "job-1")
	require.Error(t, err)

	var upstream *UpstreamError
	assert.ErrorAs(t, err, &upstream)

	// Delivery failed, so the job must stay eligible
	got, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Nil(t, got.WebhookSentAt)
}

func TestNotifier_NotifyJob_MarkerFailureIsPartial(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	store := newMockJobStore(scheduledJob("job-1", now.Add(10*time.Minute)))
	store.markErr = errors.New("connection reset")

	n := NewNotifier(store, newMockSender(), testLogger(), time.Hour)
	n.now = func() time.Time { return now }

	outcome, err := n.NotifyJob(context.Background(), "job-1")
	require.NoError(t, err)

	assert.Equal(t, OutcomePartial, outcome.Status)
	require.NotNil(t, outcome.SentAt)
	assert.True(t, outcome.SentAt.Equal(now))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
