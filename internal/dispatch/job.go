package dispatch

import "time"

// Job is the dispatcher's view of a job row. Only the fields that feed the
// reminder payload and the eligibility checks are carried here.
type Job struct {
	ID                string
	Title             string
	Description       string
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
	CustomerAddress   string
	JobType           string
	Status            string
	Price             float64
	EstimatedDuration int
	Notes             string
	FirstTime         bool
	QuotedBy          string
	IsRecurring       bool
	ScheduledDate     *time.Time
	WebhookSentAt     *time.Time
}

// DueForReminder reports whether the job should be notified immediately:
// it has a scheduled date, no reminder was sent yet, and the scheduled date
// is at or before now+window (jobs already overdue included).
func (j *Job) DueForReminder(now time.Time, window time.Duration) bool {
	if j.ScheduledDate == nil || j.WebhookSentAt != nil {
		return false
	}
	return !j.ScheduledDate.After(now.Add(window))
}
