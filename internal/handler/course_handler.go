package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/service"
	"github.com/koreklar/koreskole-api/pkg/response"
)

// CourseHandler exposes the upcoming course list.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// Upcoming godoc
// @Summary List upcoming courses
// @Description Returns the course list scraped from the booking provider,
// @Description cached for a few minutes.
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) Upcoming(c *gin.Context) {
	courses, err := h.courses.Upcoming(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
