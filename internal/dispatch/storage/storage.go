package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldserve/fieldserve-be/internal/dispatch"
	"github.com/jmoiron/sqlx"
)

// Storage implements dispatch.JobStore on PostgreSQL
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// jobRow maps the jobs table columns the dispatcher reads
type jobRow struct {
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
}

const jobColumns = `
	job_id, title, description,
	customer_name, customer_email, customer_phone, customer_address,
	job_type, status, price, estimated_duration, notes,
	first_time, quoted_by, is_recurring,
	scheduled_date, webhook_sent_at
`

func (r *jobRow) toJob() *dispatch.Job {
	return &dispatch.Job{
		ID:                r.JobID,
		Title:             r.Title,
		Description:       r.Description,
		CustomerName:      r.CustomerName,
		CustomerEmail:     r.CustomerEmail,
		CustomerPhone:     r.CustomerPhone,
		CustomerAddress:   r.CustomerAddress,
		JobType:           r.JobType,
		Status:            r.Status,
		Price:             r.Price,
		EstimatedDuration: r.EstimatedDuration,
		Notes:             r.Notes,
		FirstTime:         r.FirstTime,
		QuotedBy:          r.QuotedBy,
		IsRecurring:       r.IsRecurring,
		ScheduledDate:     r.ScheduledDate,
		WebhookSentAt:     r.WebhookSentAt,
	}
}

// DueJobs selects jobs whose scheduled date has arrived or falls before the
// cutoff and whose reminder has not been sent yet. Jobs without a scheduled
// date are never selected.
func (s *Storage) DueJobs(ctx context.Context, cutoff time.Time) ([]*dispatch.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE scheduled_date IS NOT NULL
		  AND webhook_sent_at IS NULL
		  AND scheduled_date < $1
		ORDER BY scheduled_date ASC
	`

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, query, cutoff); err != nil {
		return nil, fmt.Errorf("failed to select due jobs: %w", err)
	}

	jobs := make([]*dispatch.Job, len(rows))
	for i := range rows {
		jobs[i] = rows[i].toJob()
	}

	return jobs, nil
}

// GetJob retrieves a single job by its ID
func (s *Storage) GetJob(ctx context.Context, jobID string) (*dispatch.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE job_id = $1
	`

	var row jobRow
	err := s.db.GetContext(ctx, &row, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dispatch.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return row.toJob(), nil
}

// MarkWebhookSent records the dispatch timestamp with a single conditional
// update: the marker is written only if still unset, so two overlapping runs
// cannot both record it. Returns false when no row was updated.
func (s *Storage) MarkWebhookSent(ctx context.Context, jobID string, sentAt time.Time) (bool, error) {
	query := `
		UPDATE jobs
		SET webhook_sent_at = $1,
		    updated_at = NOW()
		WHERE job_id = $2
		  AND webhook_sent_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, sentAt, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to mark webhook sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Webhook marker update affected no rows (already marked or job gone)",
			slog.String("job_id", jobID),
		)
		return false, nil
	}

	s.logger.Info("Webhook marker recorded",
		slog.String("job_id", jobID),
		slog.Time("sent_at", sentAt),
	)

	return true, nil
}
