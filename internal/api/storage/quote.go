package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fieldserve/fieldserve-be/internal/api/domain"
	"github.com/fieldserve/fieldserve-be/internal/api/model"
)

func (s *Storage) GetQuoteByID(ctx context.Context, quoteID string) (*model.Quote, error) {
	var quote model.Quote
	query := `
		SELECT
			quote_id, title, description,
			customer_name, customer_email, customer_phone, customer_address,
			job_type, status, price, estimated_duration, notes, quoted_by,
			converted_job_id, created_at, updated_at
		FROM quotes
		WHERE quote_id = $1
	`

	err := s.db.GetContext(ctx, &quote, query, quoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	return &quote, nil
}

// ConvertQuote inserts the job and marks the quote converted in one
// transaction. The quote update is conditional on the accepted status, so a
// quote can be converted at most once even under concurrent requests; losing
// that race rolls the job insert back.
func (s *Storage) ConvertQuote(ctx context.Context, quoteID string, job *model.Job) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
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
	`,
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
		return fmt.Errorf("failed to insert converted job: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE quotes
		SET status = $1,
		    converted_job_id = $2,
		    updated_at = NOW()
		WHERE quote_id = $3
		  AND status = $4
	`, domain.QuoteStatusConverted, job.JobID, quoteID, domain.QuoteStatusAccepted)
	if err != nil {
		return fmt.Errorf("failed to mark quote converted: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrQuoteNotAccepted
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quote conversion: %w", err)
	}

	return nil
}
