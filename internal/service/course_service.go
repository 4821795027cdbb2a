package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
)

const courseCacheKey = "courses:upcoming"

// CourseFetcher retrieves the upcoming course list from the booking provider.
type CourseFetcher interface {
	FetchCourses(ctx context.Context) ([]models.Course, error)
}

// CourseService serves the upcoming course list with a short-lived cache in
// front of the booking page scrape.
type CourseService struct {
	fetcher CourseFetcher
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCourseService wires the course list service.
func NewCourseService(fetcher CourseFetcher, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *CourseService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{fetcher: fetcher, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Upcoming returns the current course list, served from cache when fresh.
func (s *CourseService) Upcoming(ctx context.Context) ([]models.Course, error) {
	var cached []models.Course
	if hit, err := s.cache.Get(ctx, courseCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	start := time.Now()
	courses, err := s.fetcher.FetchCourses(ctx)
	if s.metrics != nil {
		s.metrics.ObserveUpstreamCall("course_feed", time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, courseCacheKey, courses, s.ttl); err != nil {
		s.logger.Warn("failed to cache course list", zap.Error(err))
	}
	return courses, nil
}
