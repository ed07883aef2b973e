package appointment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Appointment is the sync receiver's view of an appointment record
type Appointment struct {
	ID              string
	ExternalID      string
	Title           string
	StartTime       time.Time
	EndTime         time.Time
	Address         string
	CalendarID      string
	ContactID       string
	GroupID         string
	Status          string
	AssignedUserID  *string
	AssignedUserIDs []string
	Notes           string
	Source          string
}

// SyncInput is a validated inbound appointment from the external system.
// AssignedUserName and UserNames are display names the external system uses;
// they are resolved to internal user ids by case-insensitive exact match.
type SyncInput struct {
	ExternalID       string
	Title            string
	StartTime        time.Time
	EndTime          time.Time
	Address          string
	CalendarID       string
	ContactID        string
	GroupID          string
	Status           string
	AssignedUserName string
	UserNames        []string
	Notes            string
	Source           string
	LocationID       string
}

// Result reports the stored appointment's identifiers
type Result struct {
	ID         string
	ExternalID string
	Created    bool
}

// Store is the persistence surface for appointments
type Store interface {
	// FindAppointmentByExternalID returns nil (no error) when absent
	FindAppointmentByExternalID(ctx context.Context, externalID string) (*Appointment, error)
	InsertAppointment(ctx context.Context, appt *Appointment) error
	UpdateAppointment(ctx context.Context, appt *Appointment) error
}

// UserDirectory resolves external display names to internal user ids.
// A miss is not an error: resolution is a fallible lookup by design.
type UserDirectory interface {
	FindUserIDByName(ctx context.Context, name string) (string, bool, error)
}

// Service upserts external appointments into local storage
type Service struct {
	store  Store
	users  UserDirectory
	logger *slog.Logger
}

// NewService creates an appointment sync service
func NewService(store Store, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		users:  users,
		logger: logger,
	}
}

// Sync upserts the appointment keyed by its external id: an existing row is
// updated in place, otherwise a new record is inserted. Unresolvable
// assignee names produce a null assignment (single) or are dropped (list),
// never an error.
func (s *Service) Sync(ctx context.Context, in SyncInput) (*Result, error) {
	assignedID, err := s.resolveAssignee(ctx, in.AssignedUserName)
	if err != nil {
		return nil, err
	}

	assignedIDs, err := s.resolveAssigneeList(ctx, in.UserNames)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindAppointmentByExternalID(ctx, in.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up appointment: %w", err)
	}

	if existing != nil {
		existing.Title = in.Title
		existing.StartTime = in.StartTime
		existing.EndTime = in.EndTime
		existing.Address = in.Address
		existing.CalendarID = in.CalendarID
		existing.ContactID = in.ContactID
		existing.GroupID = in.GroupID
		existing.Status = in.Status
		existing.AssignedUserID = assignedID
		existing.AssignedUserIDs = assignedIDs
		existing.Notes = in.Notes
		existing.Source = in.Source

		if err := s.store.UpdateAppointment(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update appointment: %w", err)
		}

		s.logger.Info("Appointment updated",
			slog.String("id", existing.ID),
			slog.String("external_id", in.ExternalID),
		)

		return &Result{ID: existing.ID, ExternalID: in.ExternalID, Created: false}, nil
	}

	appt := &Appointment{
		ID:              uuid.New().String(),
		ExternalID:      in.ExternalID,
		Title:           in.Title,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Address:         in.Address,
		CalendarID:      in.CalendarID,
		ContactID:       in.ContactID,
		GroupID:         in.GroupID,
		Status:          in.Status,
		AssignedUserID:  assignedID,
		AssignedUserIDs: assignedIDs,
		Notes:           in.Notes,
		Source:          in.Source,
	}

	if err := s.store.InsertAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to insert appointment: %w", err)
	}

	s.logger.Info("Appointment created",
		slog.String("id", appt.ID),
		slog.String("external_id", in.ExternalID),
	)

	return &Result{ID: appt.ID, ExternalID: in.ExternalID, Created: true}, nil
}

// resolveAssignee maps the primary assignee name to a user id; a miss logs
// a warning and yields a null assignment
func (s *Service) resolveAssignee(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}

	id, ok, err := s.users.FindUserIDByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assigned user: %w", err)
	}

	if !ok {
		s.logger.Warn("No user matched assigned name, storing null assignment",
			slog.String("assigned_user_name", name),
		)
		return nil, nil
	}

	return &id, nil
}

// resolveAssigneeList maps additional assignee names, silently dropping
// names with no match
func (s *Service) resolveAssigneeList(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, ok, err := s.users.FindUserIDByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user %q: %w", name, err)
		}
		if !ok {
			s.logger.Debug("Dropping unmatched assignee name",
				slog.String("name", name),
			)
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}
