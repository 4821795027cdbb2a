package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const courseListPage = `<html><body>
<div class="course-list">
  <div class="course-item" data-course-id="101">
    <span class="course-name">Lovpakke - Aalborg</span>
    <span class="course-date">2026-09-14</span>
    <span class="course-seats">4</span>
    <a class="course-signup" href="https://booking.example.com/signup/101">Tilmeld</a>
  </div>
  <div class="course-item" data-course-id="102">
    <span class="course-name">Intensivt weekendhold</span>
    <span class="course-date">2026-09-21</span>
    <span class="course-seats">n/a</span>
  </div>
</div>
</body></html>`

func courseListServer(t *testing.T, handler http.HandlerFunc) *CourseList {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCourseList(CourseListConfig{URL: srv.URL}, zap.NewNop())
}

func TestCourseListFetchCourses(t *testing.T) {
	cl := courseListServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, courseListPage)
	})

	courses, err := cl.FetchCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)

	assert.Equal(t, "101", courses[0].ID)
	assert.Equal(t, "Lovpakke - Aalborg", courses[0].Name)
	assert.Equal(t, "Aalborg", courses[0].Location)
	assert.Equal(t, "2026-09-14", courses[0].StartDate)
	assert.Equal(t, 4, courses[0].SeatsLeft)
	assert.Equal(t, "https://booking.example.com/signup/101", courses[0].RegistrationURL)

	// No delimiter in the name means no derivable location, and a
	// non-numeric seat count degrades to zero.
	assert.Equal(t, "102", courses[1].ID)
	assert.Empty(t, courses[1].Location)
	assert.Equal(t, 0, courses[1].SeatsLeft)
	assert.Empty(t, courses[1].RegistrationURL)
}

func TestCourseListFetchCoursesNoMatches(t *testing.T) {
	cl := courseListServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="hero">Velkommen</div></body></html>`)
	})

	courses, err := cl.FetchCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestCourseListFetchCoursesUpstreamError(t *testing.T) {
	cl := courseListServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusBadGateway)
	})

	_, err := cl.FetchCourses(context.Background())
	require.Error(t, err)
}
