package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
)

type mockCourseFetcher struct {
	courses []models.Course
	err     error
	calls   int
}

func (m *mockCourseFetcher) FetchCourses(ctx context.Context) ([]models.Course, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.courses, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func TestCourseServiceUpcomingCachesResult(t *testing.T) {
	fetcher := &mockCourseFetcher{courses: []models.Course{
		{ID: "42", Name: "Weekendhold - Aalborg", Location: "Aalborg", SeatsLeft: 3},
	}}
	cacheSvc := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop())
	svc := NewCourseService(fetcher, cacheSvc, nil, 5*time.Minute, zap.NewNop())

	first, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls)
}

func TestCourseServiceUpcomingWithoutCache(t *testing.T) {
	fetcher := &mockCourseFetcher{courses: []models.Course{{ID: "42"}}}
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop())
	svc := NewCourseService(fetcher, cacheSvc, nil, 5*time.Minute, zap.NewNop())

	_, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	_, err = svc.Upcoming(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestCourseServiceUpcomingPropagatesFetchError(t *testing.T) {
	fetcher := &mockCourseFetcher{err: errors.New("upstream down")}
	cacheSvc := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop())
	svc := NewCourseService(fetcher, cacheSvc, nil, 5*time.Minute, zap.NewNop())

	_, err := svc.Upcoming(context.Background())
	require.Error(t, err)
}

func TestAnalyticsServiceSummaryCachesPerPeriod(t *testing.T) {
	provider := &mockAnalyticsProvider{summary: &models.AnalyticsSummary{Visitors: 100, Period: "30d"}}
	cacheSvc := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop())
	svc := NewAnalyticsService(provider, cacheSvc, nil, 10*time.Minute, zap.NewNop())

	first, err := svc.Summary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 100, first.Visitors)
	assert.Equal(t, "30d", first.Period)

	_, err = svc.Summary(context.Background(), "30d")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	_, err = svc.Summary(context.Background(), "7d")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

type mockAnalyticsProvider struct {
	summary *models.AnalyticsSummary
	calls   int
}

func (m *mockAnalyticsProvider) Summary(ctx context.Context, period string) (*models.AnalyticsSummary, error) {
	m.calls++
	cp := *m.summary
	cp.Period = period
	return &cp, nil
}
