package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldserve/fieldserve-be/internal/api/domain"
	"github.com/fieldserve/fieldserve-be/internal/api/dto"
	"github.com/fieldserve/fieldserve-be/internal/api/model"
	"github.com/fieldserve/fieldserve-be/internal/api/storage"
	"github.com/fieldserve/fieldserve-be/internal/dispatch"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	status := req.Status
	if status == "" {
		status = domain.JobStatusPending
		if req.ScheduledDate != nil {
			status = domain.JobStatusScheduled
		}
	}

	now := time.Now()
	job := model.Job{
		JobID:             uuid.New().String(),
		Title:             req.Title,
		Description:       req.Description,
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerPhone:     req.CustomerPhone,
		CustomerAddress:   req.CustomerAddress,
		JobType:           req.JobType,
		Status:            status,
		Price:             req.Price,
		EstimatedDuration: req.EstimatedDuration,
		Notes:             req.Notes,
		FirstTime:         req.FirstTime,
		QuotedBy:          req.QuotedBy,
		IsRecurring:       req.IsRecurring,
		ScheduledDate:     req.ScheduledDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.storage.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create job",
		})
		return
	}

	// Scheduled jobs get an on-demand notification check via the queue
	if job.ScheduledDate != nil {
		h.publishNotify(c.Request.Context(), job.JobID)
	}

	c.JSON(http.StatusOK, jobToDTO(&job))
}

// GetJob handles GET /api/v1/jobs/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Error("Invalid job_id format", slog.String("job_id", jobID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	job, err := h.storage.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job",
		})
		return
	}

	c.JSON(http.StatusOK, jobToDTO(job))
}

// ListJobs handles GET /api/v1/jobs
// Lists jobs with optional filtering and cursor pagination
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	filter := storage.JobFilter{
		Status:       req.Status,
		JobType:      req.JobType,
		CustomerName: req.CustomerName,
		PageSize:     req.PageSize,
		Cursor:       cursor,
	}

	jobs, err := h.storage.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	jobResponse := make([]dto.JobDTO, len(jobs))
	for i, job := range jobs {
		jobResponse[i] = *jobToDTO(&job)
	}

	var nextCursor string
	if hasMore {
		lastJob := jobs[len(jobs)-1]
		cursorObj := storage.JobCursor{
			CreatedAt: lastJob.CreatedAt,
			JobID:     lastJob.JobID,
		}
		nextCursor, err = EncodeJobCursor(&cursorObj)
		if err != nil {
			h.logger.Error("Failed to encode next cursor", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to encode next cursor",
			})
			return
		}
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       jobResponse,
		NextCursor: nextCursor,
	})
}

// UpdateJob handles PUT /api/v1/jobs/:job_id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Error("Invalid job_id format", slog.String("job_id", jobID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job := model.Job{
		JobID:             jobID,
		Title:             req.Title,
		Description:       req.Description,
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerPhone:     req.CustomerPhone,
		CustomerAddress:   req.CustomerAddress,
		JobType:           req.JobType,
		Status:            req.Status,
		Price:             req.Price,
		EstimatedDuration: req.EstimatedDuration,
		Notes:             req.Notes,
		FirstTime:         req.FirstTime,
		QuotedBy:          req.QuotedBy,
		IsRecurring:       req.IsRecurring,
		ScheduledDate:     req.ScheduledDate,
	}

	if err := h.storage.UpdateJob(c.Request.Context(), &job); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("Failed to update job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update job",
		})
		return
	}

	if job.ScheduledDate != nil {
		h.publishNotify(c.Request.Context(), jobID)
	}

	updated, err := h.storage.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to reload job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to reload job",
		})
		return
	}

	c.JSON(http.StatusOK, jobToDTO(updated))
}

// DeleteJob handles DELETE /api/v1/jobs/:job_id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Error("Invalid job_id format", slog.String("job_id", jobID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	if err := h.storage.DeleteJob(c.Request.Context(), jobID); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("Failed to delete job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete job",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// NotifyJob handles POST /api/v1/jobs/:job_id/notify
// Runs the on-demand reminder notification for a single job.
func (h *JobHandler) NotifyJob(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Error("Invalid job_id format", slog.String("job_id", jobID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	outcome, err := h.notifier.NotifyJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, dispatch.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("On-demand notification failed",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Webhook delivery failed",
			"timestamp": time.Now(),
		})
		return
	}

	// Sent but marker write failed: partial success, the periodic run may
	// notify again.
	if outcome.Status == dispatch.OutcomePartial {
		c.JSON(http.StatusMultiStatus, outcome)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// publishNotify enqueues an on-demand notification check. Publish failures
// are logged and swallowed: the periodic dispatcher covers the job anyway.
func (h *JobHandler) publishNotify(ctx context.Context, jobID string) {
	body, err := json.Marshal(dispatch.NotifyMessage{JobID: jobID})
	if err != nil {
		h.logger.Error("Failed to marshal notify message", slog.String("error", err.Error()))
		return
	}

	if err := h.publisher.PublishWithRetry(ctx, body, "application/json"); err != nil {
		h.logger.Warn("Failed to publish notify message, periodic dispatch will cover it",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
}

// jobToDTO maps a job row into its API representation
func jobToDTO(job *model.Job) *dto.JobDTO {
	return &dto.JobDTO{
		JobID:             job.JobID,
		Title:             job.Title,
		Description:       job.Description,
		CustomerName:      job.CustomerName,
		CustomerEmail:     job.CustomerEmail,
		CustomerPhone:     job.CustomerPhone,
		CustomerAddress:   job.CustomerAddress,
		JobType:           job.JobType,
		Status:            job.Status,
		Price:             job.Price,
		EstimatedDuration: job.EstimatedDuration,
		Notes:             job.Notes,
		FirstTime:         job.FirstTime,
		QuotedBy:          job.QuotedBy,
		IsRecurring:       job.IsRecurring,
		ScheduledDate:     job.ScheduledDate,
		WebhookSentAt:     job.WebhookSentAt,
		CreatedAt:         job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         job.UpdatedAt.Format(time.RFC3339),
	}
}
