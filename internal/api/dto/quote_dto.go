package dto

import "time"

type ConvertQuoteRequest struct {
	ScheduledDate *time.Time `json:"scheduled_date"`
	Notes         string     `json:"notes"`
}

type ConvertQuoteResponse struct {
	QuoteID string `json:"quote_id"`
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
}

// AnalyticsQuery carries the optional filters relayed to the upstream
// analytics API
type AnalyticsQuery struct {
	Granularity string `form:"granularity"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	Status      string `form:"status"`
	LocationID  string `form:"location_id"`
	CustomerID  string `form:"customer_id"`
	Currency    string `form:"currency"`
	GroupBy     string `form:"group_by"`
}
