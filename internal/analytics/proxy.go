package analytics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Query carries the optional filter parameters forwarded upstream
type Query struct {
	Granularity string
	StartDate   string
	EndDate     string
	Status      string
	LocationID  string
	CustomerID  string
	Currency    string
	GroupBy     string
}

// Values builds the upstream query string, skipping empty filters
func (q Query) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("granularity", q.Granularity)
	set("start_date", q.StartDate)
	set("end_date", q.EndDate)
	set("status", q.Status)
	set("location_id", q.LocationID)
	set("customer_id", q.CustomerID)
	set("currency", q.Currency)
	set("group_by", q.GroupBy)
	return v
}

// UpstreamError is returned when the analytics API answers with a non-2xx
// status
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analytics upstream returned status %d", e.StatusCode)
}

// Client proxies filter queries to the upstream analytics API. The upstream
// body is relayed verbatim: no caching, no transformation.
type Client struct {
	upstreamURL string
	client      *http.Client
	logger      *slog.Logger
}

// NewClient creates an analytics proxy client
func NewClient(upstreamURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		upstreamURL: upstreamURL,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// FetchRevenue forwards the filters upstream and returns the raw JSON body
func (c *Client) FetchRevenue(ctx context.Context, q Query) ([]byte, error) {
	target := c.upstreamURL
	if params := q.Values().Encode(); params != "" {
		target = target + "?" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call analytics upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Analytics upstream request failed",
			slog.Int("status", resp.StatusCode),
		)
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics response: %w", err)
	}

	return body, nil
}
