package dto

import "time"

// SyncAppointmentRequest is the inbound appointment sync contract. Field
// names follow the external system's camelCase convention.
type SyncAppointmentRequest struct {
	Appointment AppointmentPayload `json:"appointment" binding:"required"`
	LocationID  string             `json:"locationId"`
}

type AppointmentPayload struct {
	ID                string    `json:"id" binding:"required"`
	Title             string    `json:"title" binding:"required"`
	StartTime         time.Time `json:"startTime" binding:"required"`
	EndTime           time.Time `json:"endTime" binding:"required"`
	Address           string    `json:"address"`
	CalendarID        string    `json:"calendarId"`
	ContactID         string    `json:"contactId"`
	GroupID           string    `json:"groupId"`
	AppointmentStatus string    `json:"appointmentStatus"`
	AssignedUserID    string    `json:"assignedUserId"`
	Users             []string  `json:"users"`
	Notes             string    `json:"notes"`
	Source            string    `json:"source"`
}

type SyncAppointmentResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Created    bool   `json:"created"`
}
