package model

import (
	"time"

	"github.com/lib/pq"
)

// Job is a field-service job row
type Job struct {
	JobID             string     `db:"job_id"`
	Title             string     `db:"title"`
	Description       string     `db:"description"`
	CustomerName      string     `db:"customer_name"`
	CustomerEmail     string     `db:"customer_email"`
	CustomerPhone     string     `db:"customer_phone"`
	CustomerAddress   string     `db:"customer_address"`
	JobType           string     `db:"job_type"`
	Status            string     `db:"status"`
	Price             float64    `db:"price"`
	EstimatedDuration int        `db:"estimated_duration"`
	Notes             string     `db:"notes"`
	FirstTime         bool       `db:"first_time"`
	QuotedBy          string     `db:"quoted_by"`
	IsRecurring       bool       `db:"is_recurring"`
	ScheduledDate     *time.Time `db:"scheduled_date"`
	WebhookSentAt     *time.Time `db:"webhook_sent_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// Quote is a customer quote row; accepted quotes convert into jobs
type Quote struct {
	QuoteID           string    `db:"quote_id"`
	Title             string    `db:"title"`
	Description       string    `db:"description"`
	CustomerName      string    `db:"customer_name"`
	CustomerEmail     string    `db:"customer_email"`
	CustomerPhone     string    `db:"customer_phone"`
	CustomerAddress   string    `db:"customer_address"`
	JobType           string    `db:"job_type"`
	Status            string    `db:"status"`
	Price             float64   `db:"price"`
	EstimatedDuration int       `db:"estimated_duration"`
	Notes             string    `db:"notes"`
	QuotedBy          string    `db:"quoted_by"`
	ConvertedJobID    *string   `db:"converted_job_id"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Appointment is a synced external appointment row, keyed by external_id
type Appointment struct {
	ID              string         `db:"id"`
	ExternalID      string         `db:"external_id"`
	Title           string         `db:"title"`
	StartTime       time.Time      `db:"start_time"`
	EndTime         time.Time      `db:"end_time"`
	Address         string         `db:"address"`
	CalendarID      string         `db:"calendar_id"`
	ContactID       string         `db:"contact_id"`
	GroupID         string         `db:"group_id"`
	Status          string         `db:"status"`
	AssignedUserID  *string        `db:"assigned_user_id"`
	AssignedUserIDs pq.StringArray `db:"assigned_user_ids"`
	Notes           string         `db:"notes"`
	Source          string         `db:"source"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// User is an internal user row; appointments reference users resolved by name
type User struct {
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}
