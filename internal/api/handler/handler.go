package handler

import (
	"context"
	"log/slog"

	"github.com/fieldserve/fieldserve-be/internal/analytics"
	"github.com/fieldserve/fieldserve-be/internal/api/storage"
	"github.com/fieldserve/fieldserve-be/internal/appointment"
	"github.com/fieldserve/fieldserve-be/internal/dispatch"
	"github.com/fieldserve/fieldserve-be/shared/postgresql"
)

// Notifier runs the on-demand notification flow for one job
type Notifier interface {
	NotifyJob(ctx context.Context, jobID string) (*dispatch.Outcome, error)
}

// DispatchRunner executes one batch dispatch pass
type DispatchRunner interface {
	Run(ctx context.Context) (*dispatch.Summary, error)
}

// AppointmentSyncer upserts external appointment records
type AppointmentSyncer interface {
	Sync(ctx context.Context, in appointment.SyncInput) (*appointment.Result, error)
}

// AnalyticsClient relays filter queries to the upstream analytics API
type AnalyticsClient interface {
	FetchRevenue(ctx context.Context, q analytics.Query) ([]byte, error)
}

// Publisher pushes notify messages onto the message queue
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	DBClient     *postgresql.Client
	Storage      *storage.Storage
	Notifier     Notifier
	Dispatcher   DispatchRunner
	Appointments AppointmentSyncer
	Analytics    AnalyticsClient
	Publisher    Publisher
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger    *slog.Logger
	storage   *storage.Storage
	notifier  Notifier
	publisher Publisher
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:    deps.Logger,
		storage:   deps.Storage,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
	}
}

// DispatchHandler handles manual dispatch trigger requests
type DispatchHandler struct {
	logger     *slog.Logger
	dispatcher DispatchRunner
}

// NewDispatchHandler creates a new DispatchHandler instance
func NewDispatchHandler(deps *Dependencies) *DispatchHandler {
	return &DispatchHandler{
		logger:     deps.Logger,
		dispatcher: deps.Dispatcher,
	}
}

// AppointmentHandler handles the appointment sync endpoint
type AppointmentHandler struct {
	logger       *slog.Logger
	appointments AppointmentSyncer
}

// NewAppointmentHandler creates a new AppointmentHandler instance
func NewAppointmentHandler(deps *Dependencies) *AppointmentHandler {
	return &AppointmentHandler{
		logger:       deps.Logger,
		appointments: deps.Appointments,
	}
}

// AnalyticsHandler handles the analytics proxy endpoint
type AnalyticsHandler struct {
	logger    *slog.Logger
	analytics AnalyticsClient
}

// NewAnalyticsHandler creates a new AnalyticsHandler instance
func NewAnalyticsHandler(deps *Dependencies) *AnalyticsHandler {
	return &AnalyticsHandler{
		logger:    deps.Logger,
		analytics: deps.Analytics,
	}
}

// QuoteHandler handles quote conversion requests
type QuoteHandler struct {
	logger    *slog.Logger
	storage   *storage.Storage
	publisher Publisher
}

// NewQuoteHandler creates a new QuoteHandler instance
func NewQuoteHandler(deps *Dependencies) *QuoteHandler {
	return &QuoteHandler{
		logger:    deps.Logger,
		storage:   deps.Storage,
		publisher: deps.Publisher,
	}
}
