package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
)

// locationDelimiter splits "Kursusnavn - Aalborg" style course names.
const locationDelimiter = " - "

// CourseListConfig configures the course booking page scraper.
type CourseListConfig struct {
	URL     string
	Timeout time.Duration
}

// CourseList fetches the third-party booking page and parses the embedded
// course widget into structured records.
type CourseList struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewCourseList constructs the course list client.
func NewCourseList(cfg CourseListConfig, logger *zap.Logger) *CourseList {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseList{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// FetchCourses downloads the booking page and extracts its course entries.
// A page that parses but matches no course nodes yields an empty slice with a
// warning log; selector misses inside a node degrade to empty fields.
func (c *CourseList) FetchCourses(ctx context.Context) ([]models.Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCourseFeed.Code, appErrors.ErrCourseFeed.Status, "build course feed request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCourseFeed.Code, appErrors.ErrCourseFeed.Status, "call course feed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appErrors.Wrap(
			fmt.Errorf("status %d", resp.StatusCode),
			appErrors.ErrCourseFeed.Code, appErrors.ErrCourseFeed.Status, "course feed returned an error")
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCourseFeed.Code, appErrors.ErrCourseFeed.Status, "parse course feed html")
	}

	return c.parse(doc), nil
}

func (c *CourseList) parse(doc *goquery.Document) []models.Course {
	courses := make([]models.Course, 0)
	doc.Find(".course-item").Each(func(i int, sel *goquery.Selection) {
		course := models.Course{
			ID:        strings.TrimSpace(sel.AttrOr("data-course-id", "")),
			Name:      strings.TrimSpace(sel.Find(".course-name").Text()),
			StartDate: strings.TrimSpace(sel.Find(".course-date").Text()),
		}
		course.Location = deriveLocation(course.Name)
		if href, ok := sel.Find("a.course-signup").Attr("href"); ok {
			course.RegistrationURL = strings.TrimSpace(href)
		}
		if seats := strings.TrimSpace(sel.Find(".course-seats").Text()); seats != "" {
			if n, err := strconv.Atoi(seats); err == nil {
				course.SeatsLeft = n
			}
		}
		courses = append(courses, course)
	})

	if len(courses) == 0 && doc.Find("body").Children().Length() > 0 {
		c.logger.Warn("course feed page matched zero course nodes; upstream markup may have changed")
	}
	return courses
}

func deriveLocation(name string) string {
	parts := strings.SplitN(name, locationDelimiter, 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
