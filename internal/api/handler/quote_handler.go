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
	"github.com/fieldserve/fieldserve-be/internal/dispatch"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConvertQuote handles POST /api/v1/quotes/:quote_id/convert
// Converts an accepted quote into a job.
func (h *QuoteHandler) ConvertQuote(c *gin.Context) {
	quoteID := c.Param("quote_id")

	if _, err := uuid.Parse(quoteID); err != nil {
		h.logger.Error("Invalid quote_id format", slog.String("quote_id", quoteID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "quote_id must be a valid UUID",
		})
		return
	}

	var req dto.ConvertQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	quote, err := h.storage.GetQuoteByID(c.Request.Context(), quoteID)
	if err != nil {
		if errors.Is(err, domain.ErrQuoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Quote not found",
			})
			return
		}
		h.logger.Error("Failed to get quote", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get quote",
		})
		return
	}

	if quote.Status != domain.QuoteStatusAccepted {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Quote must be accepted before conversion",
			"status": quote.Status,
		})
		return
	}

	status := domain.JobStatusPending
	if req.ScheduledDate != nil {
		status = domain.JobStatusScheduled
	}

	notes := quote.Notes
	if req.Notes != "" {
		notes = req.Notes
	}

	now := time.Now()
	job := model.Job{
		JobID:             uuid.New().String(),
		Title:             quote.Title,
		Description:       quote.Description,
		CustomerName:      quote.CustomerName,
		CustomerEmail:     quote.CustomerEmail,
		CustomerPhone:     quote.CustomerPhone,
		CustomerAddress:   quote.CustomerAddress,
		JobType:           quote.JobType,
		Status:            status,
		Price:             quote.Price,
		EstimatedDuration: quote.EstimatedDuration,
		Notes:             notes,
		FirstTime:         false,
		QuotedBy:          quote.QuotedBy,
		ScheduledDate:     req.ScheduledDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.storage.ConvertQuote(c.Request.Context(), quoteID, &job); err != nil {
		if errors.Is(err, domain.ErrQuoteNotAccepted) {
			// Lost the race to another conversion request
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Quote must be accepted before conversion",
			})
			return
		}
		h.logger.Error("Failed to convert quote", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to convert quote",
		})
		return
	}

	h.logger.Info("Quote converted to job",
		slog.String("quote_id", quoteID),
		slog.String("job_id", job.JobID),
	)

	if job.ScheduledDate != nil {
		h.publishNotify(c.Request.Context(), job.JobID)
	}

	c.JSON(http.StatusOK, dto.ConvertQuoteResponse{
		QuoteID: quoteID,
		JobID:   job.JobID,
		Status:  domain.QuoteStatusConverted,
	})
}

// publishNotify enqueues an on-demand notification check for the converted
// job. Publish failures are logged and swallowed: the periodic dispatcher
// covers the job anyway.
func (h *QuoteHandler) publishNotify(ctx context.Context, jobID string) {
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
