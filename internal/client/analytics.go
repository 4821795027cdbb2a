package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
)

// AnalyticsConfig configures the hosted analytics proxy client.
type AnalyticsConfig struct {
	BaseURL string
	SiteID  string
	APIKey  string
	Timeout time.Duration
}

// Analytics proxies aggregate traffic stats from the hosted analytics provider.
type Analytics struct {
	baseURL string
	siteID  string
	apiKey  string
	client  *http.Client
}

// NewAnalytics constructs the analytics client.
func NewAnalytics(cfg AnalyticsConfig) *Analytics {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Analytics{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		siteID:  cfg.SiteID,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type aggregateMetric struct {
	Value float64 `json:"value"`
}

type aggregateResponse struct {
	Results struct {
		Visitors      aggregateMetric `json:"visitors"`
		Pageviews     aggregateMetric `json:"pageviews"`
		BounceRate    aggregateMetric `json:"bounce_rate"`
		VisitDuration aggregateMetric `json:"visit_duration"`
	} `json:"results"`
}

// Summary fetches aggregated figures for the given period (e.g. "30d").
func (a *Analytics) Summary(ctx context.Context, period string) (*models.AnalyticsSummary, error) {
	if period == "" {
		period = "30d"
	}
	q := url.Values{}
	q.Set("site_id", a.siteID)
	q.Set("period", period)
	q.Set("metrics", "visitors,pageviews,bounce_rate,visit_duration")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/stats/aggregate?"+q.Encode(), nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build analytics request")
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "call analytics service")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appErrors.Wrap(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "analytics service returned an error")
	}

	var parsed aggregateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode analytics response")
	}

	return &models.AnalyticsSummary{
		Visitors:      int(parsed.Results.Visitors.Value),
		Pageviews:     int(parsed.Results.Pageviews.Value),
		BounceRate:    parsed.Results.BounceRate.Value,
		VisitDuration: parsed.Results.VisitDuration.Value,
		Period:        period,
	}, nil
}
