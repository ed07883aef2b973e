package dto

import "time"

type CreateJobRequest struct {
	Title             string     `json:"title" binding:"required"`
	Description       string     `json:"description"`
	CustomerName      string     `json:"customer_name" binding:"required"`
	CustomerEmail     string     `json:"customer_email"`
	CustomerPhone     string     `json:"customer_phone"`
	CustomerAddress   string     `json:"customer_address"`
	JobType           string     `json:"job_type"`
	Status            string     `json:"status"`
	Price             float64    `json:"price"`
	EstimatedDuration int        `json:"estimated_duration"`
	Notes             string     `json:"notes"`
	FirstTime         bool       `json:"first_time"`
	QuotedBy          string     `json:"quoted_by"`
	IsRecurring       bool       `json:"is_recurring"`
	ScheduledDate     *time.Time `json:"scheduled_date"`
}

// UpdateJobRequest is a full replace of the job's mutable fields. The
// webhook_sent_at marker is never touched by updates.
type UpdateJobRequest struct {
	Title             string     `json:"title" binding:"required"`
	Description       string     `json:"description"`
	CustomerName      string     `json:"customer_name" binding:"required"`
	CustomerEmail     string     `json:"customer_email"`
	CustomerPhone     string     `json:"customer_phone"`
	CustomerAddress   string     `json:"customer_address"`
	JobType           string     `json:"job_type"`
	Status            string     `json:"status"`
	Price             float64    `json:"price"`
	EstimatedDuration int        `json:"estimated_duration"`
	Notes             string     `json:"notes"`
	FirstTime         bool       `json:"first_time"`
	QuotedBy          string     `json:"quoted_by"`
	IsRecurring       bool       `json:"is_recurring"`
	ScheduledDate     *time.Time `json:"scheduled_date"`
}

type ListJobsRequest struct {
	Status       string `form:"status"`
	JobType      string `form:"job_type"`
	CustomerName string `form:"customer_name"`
	PageSize     int    `form:"page_size"`
	Cursor       string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	JobID             string     `json:"job_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	CustomerName      string     `json:"customer_name"`
	CustomerEmail     string     `json:"customer_email"`
	CustomerPhone     string     `json:"customer_phone"`
	CustomerAddress   string     `json:"customer_address"`
	JobType           string     `json:"job_type"`
	Status            string     `json:"status"`
	Price             float64    `json:"price"`
	EstimatedDuration int        `json:"estimated_duration"`
	Notes             string     `json:"notes"`
	FirstTime         bool       `json:"first_time"`
	QuotedBy          string     `json:"quoted_by"`
	IsRecurring       bool       `json:"is_recurring"`
	ScheduledDate     *time.Time `json:"scheduled_date,omitempty"`
	WebhookSentAt     *time.Time `json:"webhook_sent_at,omitempty"`
	CreatedAt         string     `json:"created_at"`
	UpdatedAt         string     `json:"updated_at"`
}
