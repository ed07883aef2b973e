package dispatch

import "time"

// NotificationTypeJobReminder tags every reminder payload
const NotificationTypeJobReminder = "job_reminder"

// ReminderPayload is the JSON body POSTed to the reminder webhook
type ReminderPayload struct {
	JobID            string        `json:"job_id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Customer         CustomerBlock `json:"customer"`
	Schedule         ScheduleBlock `json:"schedule"`
	Details          DetailBlock   `json:"details"`
	NotificationType string        `json:"notification_type"`
	SentAt           time.Time     `json:"sent_at"`
}

// CustomerBlock holds the customer contact information
type CustomerBlock struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ScheduleBlock holds the scheduling information
type ScheduleBlock struct {
	ScheduledDate     *time.Time `json:"scheduled_date"`
	IsRecurring       bool       `json:"is_recurring"`
	EstimatedDuration int        `json:"estimated_duration"`
}

// DetailBlock holds the remaining job details
type DetailBlock struct {
	JobType   string  `json:"job_type"`
	Status    string  `json:"status"`
	Price     float64 `json:"price"`
	FirstTime bool    `json:"first_time"`
	Notes     string  `json:"notes"`
	QuotedBy  string  `json:"quoted_by"`
}

// BuildReminderPayload maps a job into the normalized webhook payload,
// stamped with the dispatch time. The same timestamp later becomes the
// webhook_sent_at marker.
func BuildReminderPayload(job *Job, sentAt time.Time) *ReminderPayload {
	return &ReminderPayload{
		JobID:       job.ID,
		Title:       job.Title,
		Description: job.Description,
		Customer: CustomerBlock{
			Name:    job.CustomerName,
			Email:   job.CustomerEmail,
			Phone:   job.CustomerPhone,
			Address: job.CustomerAddress,
		},
		Schedule: ScheduleBlock{
			ScheduledDate:     job.ScheduledDate,
			IsRecurring:       job.IsRecurring,
			EstimatedDuration: job.EstimatedDuration,
		},
		Details: DetailBlock{
			JobType:   job.JobType,
			Status:    job.Status,
			Price:     job.Price,
			FirstTime: job.FirstTime,
			Notes:     job.Notes,
			QuotedBy:  job.QuotedBy,
		},
		NotificationType: NotificationTypeJobReminder,
		SentAt:           sentAt,
	}
}
