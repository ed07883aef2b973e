package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldserve/fieldserve-be/internal/api/domain"
	"github.com/fieldserve/fieldserve-be/internal/api/model"
	"github.com/fieldserve/fieldserve-be/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

const jobColumns = `
	job_id, title, description,
	customer_name, customer_email, customer_phone, customer_address,
	job_type, status, price, estimated_duration, notes,
	first_time, quoted_by, is_recurring,
	scheduled_date, webhook_sent_at, created_at, updated_at
`

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, title, description,
			customer_name, customer_email, customer_phone, customer_address,
			job_type, status, price, estimated_duration, notes,
			first_time, quoted_by, is_recurring,
			scheduled_date, created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.Title,
		job.Description,
		job.CustomerName,
		job.CustomerEmail,
		job.CustomerPhone,
		job.CustomerAddress,
		job.JobType,
		job.Status,
		job.Price,
		job.EstimatedDuration,
		job.Notes,
		job.FirstTime,
		job.QuotedBy,
		job.IsRecurring,
		job.ScheduledDate,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE job_id = $1
	`

	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// UpdateJob replaces the job's mutable fields. The webhook_sent_at marker is
// deliberately excluded: only the dispatcher's success path writes it.
func (s *Storage) UpdateJob(ctx context.Context, job *model.Job) error {
	query := `
		UPDATE jobs
		SET title = $1,
		    description = $2,
		    customer_name = $3,
		    customer_email = $4,
		    customer_phone = $5,
		    customer_address = $6,
		    job_type = $7,
		    status = $8,
		    price = $9,
		    estimated_duration = $10,
		    notes = $11,
		    first_time = $12,
		    quoted_by = $13,
		    is_recurring = $14,
		    scheduled_date = $15,
		    updated_at = NOW()
		WHERE job_id = $16
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		job.Title,
		job.Description,
		job.CustomerName,
		job.CustomerEmail,
		job.CustomerPhone,
		job.CustomerAddress,
		job.JobType,
		job.Status,
		job.Price,
		job.EstimatedDuration,
		job.Notes,
		job.FirstTime,
		job.QuotedBy,
		job.IsRecurring,
		job.ScheduledDate,
		job.JobID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

func (s *Storage) DeleteJob(ctx context.Context, jobID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

type JobFilter struct {
	Status       string
	JobType      string
	CustomerName string
	PageSize     int
	Cursor       *JobCursor
}

type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	// Filters
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.JobType != "" {
		query += fmt.Sprintf(" AND job_type = $%d", argIdx)
		args = append(args, filter.JobType)
		argIdx++
	}

	if filter.CustomerName != "" {
		query += fmt.Sprintf(" AND LOWER(customer_name) = LOWER($%d)", argIdx)
		args = append(args, filter.CustomerName)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, job_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	// Order by created_at DESC, job_id DESC for consistent pagination
	query += " ORDER BY created_at DESC, job_id DESC"

	// Fetch one extra to determine if there are more results
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []model.Job
	err := s.db.SelectContext(ctx, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}
