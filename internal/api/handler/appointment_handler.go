package handler

import (
	"log/slog"
	"net/http"

	"github.com/fieldserve/fieldserve-be/internal/api/dto"
	"github.com/fieldserve/fieldserve-be/internal/appointment"
	"github.com/gin-gonic/gin"
)

// SyncAppointment handles POST /api/v1/appointments/sync
// Upserts an external appointment record keyed by its external id.
func (h *AppointmentHandler) SyncAppointment(c *gin.Context) {
	var req dto.SyncAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid appointment payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "appointment id, title, startTime and endTime are required",
		})
		return
	}

	input := appointment.SyncInput{
		ExternalID:       req.Appointment.ID,
		Title:            req.Appointment.Title,
		StartTime:        req.Appointment.StartTime,
		EndTime:          req.Appointment.EndTime,
		Address:          req.Appointment.Address,
		CalendarID:       req.Appointment.CalendarID,
		ContactID:        req.Appointment.ContactID,
		GroupID:          req.Appointment.GroupID,
		Status:           req.Appointment.AppointmentStatus,
		AssignedUserName: req.Appointment.AssignedUserID,
		UserNames:        req.Appointment.Users,
		Notes:            req.Appointment.Notes,
		Source:           req.Appointment.Source,
		LocationID:       req.LocationID,
	}

	result, err := h.appointments.Sync(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("Appointment sync failed",
			slog.String("external_id", input.ExternalID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to sync appointment",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SyncAppointmentResponse{
		ID:         result.ID,
		ExternalID: result.ExternalID,
		Created:    result.Created,
	})
}
