package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockJobStore is an in-memory JobStore mimicking the SQL selection and the
// conditional marker update
type mockJobStore struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	dueErr  error
	markErr error
	// markUnavailable simulates a concurrent run winning the marker write
	markUnavailable bool
}

func newMockJobStore(jobs ...*Job) *mockJobStore {
	m := &mockJobStore{jobs: make(map[string]*Job)}
	for _, j := range jobs {
		cp := *j
		m.jobs[j.ID] = &cp
	}
	return m
}

func (m *mockJobStore) DueJobs(_ context.Context, cutoff time.Time) ([]*Job, error) {
	if m.dueErr != nil {
		return nil, m.dueErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*Job
	for _, j := range m.jobs {
		if j.ScheduledDate == nil || j.WebhookSentAt != nil {
			continue
		}
		if j.ScheduledDate.Before(cutoff) {
			cp := *j
			due = append(due, &cp)
		}
	}
	return due, nil
}

func (m *mockJobStore) GetJob(_ context.Context, jobID string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *mockJobStore) MarkWebhookSent(_ context.Context, jobID string, sentAt time.Time) (bool, error) {
	if m.markErr != nil {
		return false, m.markErr
	}
	if m.markUnavailable {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok || j.WebhookSentAt != nil {
		return false, nil
	}
	j.WebhookSentAt = &sentAt
	return true, nil
}

// mockSender records delivered payloads and fails for configured job ids
type mockSender struct {
	mu       sync.Mutex
	sent     []*ReminderPayload
	failFor  map[string]bool
	failWith error
}

func newMockSender() *mockSender {
	return &mockSender{failFor: make(map[string]bool)}
}

func (m *mockSender) SendReminder(_ context.Context, payload *ReminderPayload) error {
	if m.failFor[payload.JobID] {
		if m.failWith != nil {
			return m.failWith
		}
		return &UpstreamError{StatusCode: 502}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, payload)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scheduledJob(id string, scheduledDate time.Time) *Job {
	return &Job{
		ID:            id,
		Title:         "Gutter cleaning",
		CustomerName:  "Dana Flores",
		JobType:       "maintenance",
		Status:        "scheduled",
		ScheduledDate: &scheduledDate,
	}
}

func TestDispatcher_Run(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		jobs           []*Job
		failFor        []string
		wantTotal      int
		wantSuccessful int
		wantFailed     int
	}{
		{
			name: "all due jobs dispatched",
			jobs: []*Job{
				scheduledJob("job-1", now.Add(30*time.Minute)),
				scheduledJob("job-2", now.Add(-2*time.Hour)), // overdue still selected
			},
			wantTotal:      2,
			wantSuccessful: 2,
		},
		{
			name: "jobs outside the window are not selected",
			jobs: []*Job{
				scheduledJob("job-1", now.Add(3*time.Hour)),
			},
			wantTotal: 0,
		},
		{
			name: "jobs without scheduled date are never selected",
			jobs: []*Job{
				{ID: "job-1", Title: "Unscheduled"},
			},
			wantTotal: 0,
		},
		{
			name: "one failure does not abort the batch",
			jobs: []*Job{
				scheduledJob("job-1", now.Add(10*time.Minute)),
				scheduledJob("job-2", now.Add(20*time.Minute)),
				scheduledJob("job-3", now.Add(30*time.Minute)),
			},
			failFor:        []string{"job-2"},
			wantTotal:      3,
			wantSuccessful: 2,
			wantFailed:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockJobStore(tt.jobs...)
			sender := newMockSender()
			for _, id := range tt.failFor {
				sender.failFor[id] = true
			}

			d := NewDispatcher(store, sender, testLogger(), time.Hour)
			d.now = func() time.Time { return now }

			summary, err := d.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantTotal, summary.Total)
			assert.Equal(t, tt.wantSuccessful, summary.Successful)
			assert.Equal(t, tt.wantFailed, summary.Failed)
			assert.Len(t, summary.Errors, tt.wantFailed)
		})
	}
}

func TestDispatcher_Run_MarkersSetOnlyForSuccesses(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	jobs := make([]*Job, 0, 5)
	for i := 0; i < 5; i++ {
		jobs = append(jobs, scheduledJob(fmt.Sprintf("job-%d", i), now.Add(time.Duration(i)*time.Minute)))
	}

	store := newMockJobStore(jobs...)
	sender := newMockSender()
	sender.failFor["job-1"] = true
	sender.failFor["job-3"] = true

	d := NewDispatcher(store, sender, testLogger(), time.Hour)
	d.now = func() time.Time { return now }

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 3, summary.Successful)
	assert.Equal(t, 2, summary.Failed)

	// Successes got their markers set to the dispatch timestamp even
	// though siblings failed
	for _, id := range []string{"job-0", "job-2", "job-4"} {
		job, err := store.GetJob(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, job.WebhookSentAt, "job %s should be marked", id)
		assert.True(t, job.WebhookSentAt.Equal(now))
	}

	// Failures stay unmarked and eligible for the next run
	for _, id := range []string{"job-1", "job-3"} {
		job, err := store.GetJob(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, job.WebhookSentAt, "job %s must not be marked", id)
	}
}

func TestDispatcher_Run_AlreadyMarkedJobsNotReselected(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	sentAt := now.Add(-time.Hour)

	job := scheduledJob("job-1", now.Add(10*time.Minute))
	job.WebhookSentAt = &sentAt

	store := newMockJobStore(job)
	sender := newMockSender()

	d := NewDispatcher(store, sender, testLogger(), time.Hour)
	d.now = func() time.Time { return now }

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, sender.sent)

	// The marker is never touched again
	got, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.True(t, got.WebhookSentAt.Equal(sentAt))
}

func TestDispatcher_Run_MarkerWriteFailureCountsAsFailed(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	store := newMockJobStore(scheduledJob("job-1", now.Add(10*time.Minute)))
	store.markErr = errors.New("connection reset")
	sender := newMockSender()

	d := NewDispatcher(store, sender, testLogger(), time.Hour)
	d.now = func() time.Time { return now }

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	// Webhook delivered, but the run reports the marker failure
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "job-1", summary.Errors[0].JobID)
	assert.Contains(t, summary.Errors[0].Reason, "failed to record webhook marker")
}

func TestDispatcher_Run_ConcurrentMarkerIsNotAnError(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	store := newMockJobStore(scheduledJob("job-1", now.Add(10*time.Minute)))
	store.markUnavailable = true
	sender := newMockSender()

	d := NewDispatcher(store, sender, testLogger(), time.Hour)
	d.now = func() time.Time { return now }

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, 0, summary.Failed)
}

func TestDispatcher_Run_SelectionError(t *testing.T) {
	store := newMockJobStore()
	store.dueErr = errors.New("db down")

	d := NewDispatcher(store, newMockSender(), testLogger(), time.Hour)

	_, err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to select due jobs")
}

func TestJob_DueForReminder(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	window := time.Hour

	within := now.Add(30 * time.Minute)
	atBoundary := now.Add(window)
	beyond := now.Add(3 * time.Hour)
	overdue := now.Add(-2 * time.Hour)
	marked := now.Add(-time.Minute)

	tests := []struct {
		name string
		job  Job
		want bool
	}{
		{"no scheduled date", Job{}, false},
		{"already notified", Job{ScheduledDate: &within, WebhookSentAt: &marked}, false},
		{"within window", Job{ScheduledDate: &within}, true},
		{"exactly at window edge", Job{ScheduledDate: &atBoundary}, true},
		{"beyond window", Job{ScheduledDate: &beyond}, false},
		{"overdue", Job{ScheduledDate: &overdue}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.DueForReminder(now, window))
		})
	}
}
