package analytics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQuery_Values(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  url.Values
	}{
		{
			name:  "empty query produces no parameters",
			query: Query{},
			want:  url.Values{},
		},
		{
			name: "only set filters are forwarded",
			query: Query{
				Granularity: "month",
				Status:      "completed",
			},
			want: url.Values{
				"granularity": {"month"},
				"status":      {"completed"},
			},
		},
		{
			name: "all filters",
			query: Query{
				Granularity: "week",
				StartDate:   "2025-01-01",
				EndDate:     "2025-06-30",
				Status:      "completed",
				LocationID:  "loc-9",
				CustomerID:  "cust-4",
				Currency:    "USD",
				GroupBy:     "job_type",
			},
			want: url.Values{
				"granularity": {"week"},
				"start_date":  {"2025-01-01"},
				"end_date":    {"2025-06-30"},
				"status":      {"completed"},
				"location_id": {"loc-9"},
				"customer_id": {"cust-4"},
				"currency":    {"USD"},
				"group_by":    {"job_type"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Values())
		})
	}
}

func TestClient_FetchRevenue(t *testing.T) {
	upstreamBody := `{"total_revenue":12450.75,"currency":"USD","buckets":[{"period":"2025-05","revenue":12450.75}]}`

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	body, err := client.FetchRevenue(context.Background(), Query{
		Granularity: "month",
		StartDate:   "2025-05-01",
		Status:      "completed",
	})
	require.NoError(t, err)

	// The upstream body comes back untouched
	assert.Equal(t, upstreamBody, string(body))

	assert.Equal(t, "month", gotQuery.Get("granularity"))
	assert.Equal(t, "2025-05-01", gotQuery.Get("start_date"))
	assert.Equal(t, "completed", gotQuery.Get("status"))
	assert.Empty(t, gotQuery.Get("end_date"))
}

func TestClient_FetchRevenue_EmptyQueryOmitsQueryString(t *testing.T) {
	var gotRawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	_, err := client.FetchRevenue(context.Background(), Query{})
	require.NoError(t, err)
	assert.Empty(t, gotRawQuery)
}

func TestClient_FetchRevenue_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	_, err := client.FetchRevenue(context.Background(), Query{})
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
}
