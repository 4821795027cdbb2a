package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
)

// AnalyticsProvider fetches aggregate traffic figures from the hosted provider.
type AnalyticsProvider interface {
	Summary(ctx context.Context, period string) (*models.AnalyticsSummary, error)
}

// AnalyticsService proxies hosted traffic stats so the provider API key never
// reaches the browser. Responses are cached per period.
type AnalyticsService struct {
	provider AnalyticsProvider
	cache    *CacheService
	metrics  *MetricsService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService wires the analytics proxy.
func NewAnalyticsService(provider AnalyticsProvider, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *AnalyticsService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{provider: provider, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Summary returns aggregate stats for the period, served from cache when fresh.
func (s *AnalyticsService) Summary(ctx context.Context, period string) (*models.AnalyticsSummary, error) {
	if period == "" {
		period = "30d"
	}
	key := "analytics:summary:" + period

	var cached models.AnalyticsSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	start := time.Now()
	summary, err := s.provider.Summary(ctx, period)
	if s.metrics != nil {
		s.metrics.ObserveUpstreamCall("analytics", time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
		s.logger.Warn("failed to cache analytics summary", zap.Error(err))
	}
	return summary, nil
}
