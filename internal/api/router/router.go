package router

import (
	"net/http"

	"github.com/fieldserve/fieldserve-be/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if deps.DBClient != nil {
			if err := deps.DBClient.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "fieldserve-api",
					"error":   err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "fieldserve-api",
		})
	})

	jobHandler := handler.NewJobHandler(deps)
	dispatchHandler := handler.NewDispatchHandler(deps)
	appointmentHandler := handler.NewAppointmentHandler(deps)
	analyticsHandler := handler.NewAnalyticsHandler(deps)
	quoteHandler := handler.NewQuoteHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.CreateJob)
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/:job_id", jobHandler.GetJob)
			jobs.PUT("/:job_id", jobHandler.UpdateJob)
			jobs.DELETE("/:job_id", jobHandler.DeleteJob)

			// On-demand reminder notification for a single job
			jobs.POST("/:job_id/notify", jobHandler.NotifyJob)
		}

		// Batch reminder dispatch, for external cron-style invokers
		v1.POST("/dispatch/run", dispatchHandler.RunDispatch)

		// External appointment upsert
		v1.POST("/appointments/sync", appointmentHandler.SyncAppointment)

		// Analytics proxy
		v1.GET("/analytics/revenue", analyticsHandler.RevenueAnalytics)

		// Quote conversion
		v1.POST("/quotes/:quote_id/convert", quoteHandler.ConvertQuote)
	}

	return r
}
