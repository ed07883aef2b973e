package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Sender delivers reminder payloads to the external webhook endpoint
type Sender interface {
	SendReminder(ctx context.Context, payload *ReminderPayload) error
}

// WebhookClient POSTs reminder payloads to a fixed endpoint
type WebhookClient struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookClient creates a webhook client for the given endpoint
func NewWebhookClient(url string, timeout time.Duration, logger *slog.Logger) *WebhookClient {
	return &WebhookClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// SendReminder POSTs the payload as JSON. A non-2xx response is returned as
// an *UpstreamError; the caller decides whether to count or surface it.
func (c *WebhookClient) SendReminder(ctx context.Context, payload *ReminderPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a bounded slice of the body for the error report
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		c.logger.Error("Webhook endpoint rejected reminder",
			slog.String("job_id", payload.JobID),
			slog.Int("status", resp.StatusCode),
		)

		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		}
	}

	c.logger.Debug("Reminder webhook delivered",
		slog.String("job_id", payload.JobID),
		slog.Int("status", resp.StatusCode),
	)

	return nil
}
