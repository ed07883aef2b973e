package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fieldserve/fieldserve-be/internal/analytics"
	"github.com/fieldserve/fieldserve-be/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// RevenueAnalytics handles GET /api/v1/analytics/revenue
// Relays the upstream analytics response verbatim.
func (h *AnalyticsHandler) RevenueAnalytics(c *gin.Context) {
	var req dto.AnalyticsQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid analytics query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	query := analytics.Query{
		Granularity: req.Granularity,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      req.Status,
		LocationID:  req.LocationID,
		CustomerID:  req.CustomerID,
		Currency:    req.Currency,
		GroupBy:     req.GroupBy,
	}

	body, err := h.analytics.FetchRevenue(c.Request.Context(), query)
	if err != nil {
		var upstream *analytics.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":           "Analytics upstream request failed",
				"upstream_status": upstream.StatusCode,
			})
			return
		}
		h.logger.Error("Analytics proxy failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch analytics",
		})
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
