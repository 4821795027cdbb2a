package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/models"
	"github.com/koreklar/koreskole-api/internal/service"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/response"
)

// InstructorHandler exposes instructor bio endpoints.
type InstructorHandler struct {
	instructors *service.InstructorService
}

// NewInstructorHandler constructs InstructorHandler.
func NewInstructorHandler(instructors *service.InstructorService) *InstructorHandler {
	return &InstructorHandler{instructors: instructors}
}

// ListPublic godoc
// @Summary List active instructors
// @Tags Instructors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) ListPublic(c *gin.Context) {
	h.list(c, true)
}

// ListAll godoc
// @Summary List all instructors including inactive
// @Tags Instructors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/instructors [get]
func (h *InstructorHandler) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *InstructorHandler) list(c *gin.Context, activeOnly bool) {
	filter := models.InstructorFilter{ActiveOnly: activeOnly}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	instructors, total, err := h.instructors.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get instructor
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /admin/instructors/{id} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	instructor, err := h.instructors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}

// Create godoc
// @Summary Create instructor
// @Tags Instructors
// @Accept mpfd
// @Produce json
// @Param full_name formData string true "Full name"
// @Param title formData string true "Title"
// @Param bio formData string false "Bio"
// @Param sort_order formData int false "Display position"
// @Param active formData bool false "Visible on the public site"
// @Param photo formData file false "Portrait photo"
// @Success 201 {object} response.Envelope
// @Router /admin/instructors [post]
func (h *InstructorHandler) Create(c *gin.Context) {
	req, err := h.formRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	instructor, err := h.instructors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}

// Update godoc
// @Summary Update instructor
// @Tags Instructors
// @Accept mpfd
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /admin/instructors/{id} [put]
func (h *InstructorHandler) Update(c *gin.Context) {
	req, err := h.formRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	instructor, err := h.instructors.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}

// Delete godoc
// @Summary Delete instructor
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 204 {object} response.Envelope
// @Router /admin/instructors/{id} [delete]
func (h *InstructorHandler) Delete(c *gin.Context) {
	if err := h.instructors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *InstructorHandler) formRequest(c *gin.Context) (service.SaveInstructorRequest, error) {
	req := service.SaveInstructorRequest{
		FullName: c.PostForm("full_name"),
		Title:    c.PostForm("title"),
		Bio:      c.PostForm("bio"),
		Active:   c.DefaultPostForm("active", "true") == "true",
	}
	if order, err := strconv.Atoi(c.DefaultPostForm("sort_order", "0")); err == nil {
		req.SortOrder = order
	}

	header, err := c.FormFile("photo")
	if err != nil {
		return req, nil
	}
	upload, err := readUpload(header)
	if err != nil {
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable photo upload")
	}
	req.Photo = &upload
	return req, nil
}
