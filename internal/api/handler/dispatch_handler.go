package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RunDispatch handles POST /api/v1/dispatch/run
// Executes one reminder dispatch pass, for external cron-style invokers.
// The response is always 200 with the batch summary: individual job
// failures are reported inside it, they never fail the whole run.
func (h *DispatchHandler) RunDispatch(c *gin.Context) {
	summary, err := h.dispatcher.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("Dispatch run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Dispatch run failed",
			"timestamp": time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}
