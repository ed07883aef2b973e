package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fieldserve/fieldserve-be/internal/api/model"
	"github.com/fieldserve/fieldserve-be/internal/appointment"
	"github.com/lib/pq"
)

// FindAppointmentByExternalID looks up an appointment by its external
// idempotency key. Returns nil without error when no row exists.
func (s *Storage) FindAppointmentByExternalID(ctx context.Context, externalID string) (*appointment.Appointment, error) {
	var row model.Appointment
	query := `
		SELECT
			id, external_id, title, start_time, end_time,
			address, calendar_id, contact_id, group_id, status,
			assigned_user_id, assigned_user_ids, notes, source,
			created_at, updated_at
		FROM appointments
		WHERE external_id = $1
	`

	err := s.db.GetContext(ctx, &row, query, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appointment.Appointment{
		ID:              row.ID,
		ExternalID:      row.ExternalID,
		Title:           row.Title,
		StartTime:       row.StartTime,
		EndTime:         row.EndTime,
		Address:         row.Address,
		CalendarID:      row.CalendarID,
		ContactID:       row.ContactID,
		GroupID:         row.GroupID,
		Status:          row.Status,
		AssignedUserID:  row.AssignedUserID,
		AssignedUserIDs: row.AssignedUserIDs,
		Notes:           row.Notes,
		Source:          row.Source,
	}, nil
}

func (s *Storage) InsertAppointment(ctx context.Context, appt *appointment.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, external_id, title, start_time, end_time,
			address, calendar_id, contact_id, group_id, status,
			assigned_user_id, assigned_user_ids, notes, source,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14,
			NOW(), NOW()
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		appt.ID,
		appt.ExternalID,
		appt.Title,
		appt.StartTime,
		appt.EndTime,
		appt.Address,
		appt.CalendarID,
		appt.ContactID,
		appt.GroupID,
		appt.Status,
		appt.AssignedUserID,
		pq.StringArray(appt.AssignedUserIDs),
		appt.Notes,
		appt.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	return nil
}

func (s *Storage) UpdateAppointment(ctx context.Context, appt *appointment.Appointment) error {
	query := `
		UPDATE appointments
		SET title = $1,
		    start_time = $2,
		    end_time = $3,
		    address = $4,
		    calendar_id = $5,
		    contact_id = $6,
		    group_id = $7,
		    status = $8,
		    assigned_user_id = $9,
		    assigned_user_ids = $10,
		    notes = $11,
		    source = $12,
		    updated_at = NOW()
		WHERE id = $13
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		appt.Title,
		appt.StartTime,
		appt.EndTime,
		appt.Address,
		appt.CalendarID,
		appt.ContactID,
		appt.GroupID,
		appt.Status,
		appt.AssignedUserID,
		pq.StringArray(appt.AssignedUserIDs),
		appt.Notes,
		appt.Source,
		appt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	return nil
}

// FindUserIDByName resolves an external display name to a user id by
// case-insensitive exact match. The second return value reports whether a
// user matched.
func (s *Storage) FindUserIDByName(ctx context.Context, name string) (string, bool, error) {
	var userID string
	query := `
		SELECT user_id
		FROM users
		WHERE LOWER(name) = LOWER($1)
		LIMIT 1
	`

	err := s.db.GetContext(ctx, &userID, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up user by name: %w", err)
	}

	return userID, true, nil
}
