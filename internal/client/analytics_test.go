package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/aggregate", r.URL.Path)
		assert.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "koreklar.dk", r.URL.Query().Get("site_id"))
		assert.Equal(t, "7d", r.URL.Query().Get("period"))
		fmt.Fprint(w, `{"results":{"visitors":{"value":1250},"pageviews":{"value":4100},"bounce_rate":{"value":42.5},"visit_duration":{"value":95.2}}}`)
	}))
	defer srv.Close()

	a := NewAnalytics(AnalyticsConfig{BaseURL: srv.URL, SiteID: "koreklar.dk", APIKey: "api-key"})
	summary, err := a.Summary(context.Background(), "7d")
	require.NoError(t, err)
	assert.Equal(t, 1250, summary.Visitors)
	assert.Equal(t, 4100, summary.Pageviews)
	assert.Equal(t, 42.5, summary.BounceRate)
	assert.Equal(t, 95.2, summary.VisitDuration)
	assert.Equal(t, "7d", summary.Period)
}

func TestAnalyticsSummaryDefaultPeriod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30d", r.URL.Query().Get("period"))
		fmt.Fprint(w, `{"results":{"visitors":{"value":0},"pageviews":{"value":0},"bounce_rate":{"value":0},"visit_duration":{"value":0}}}`)
	}))
	defer srv.Close()

	a := NewAnalytics(AnalyticsConfig{BaseURL: srv.URL, SiteID: "koreklar.dk", APIKey: "api-key"})
	summary, err := a.Summary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "30d", summary.Period)
}

func TestAnalyticsSummaryUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := NewAnalytics(AnalyticsConfig{BaseURL: srv.URL, SiteID: "koreklar.dk", APIKey: "api-key"})
	_, err := a.Summary(context.Background(), "30d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}
