package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/service"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/response"
)

// ApplicationHandler exposes the public job application endpoint.
type ApplicationHandler struct {
	applications *service.ApplicationService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Submit godoc
// @Summary Submit a job application
// @Tags Applications
// @Accept mpfd
// @Produce json
// @Param name formData string true "Name"
// @Param email formData string true "Email"
// @Param phone formData string false "Phone"
// @Param message formData string true "Message"
// @Param language formData string true "da or en"
// @Param cv formData file false "CV (pdf or word)"
// @Success 201 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	req := service.ApplicationRequest{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Message:  c.PostForm("message"),
		Language: c.PostForm("language"),
	}
	if phone := c.PostForm("phone"); phone != "" {
		req.Phone = &phone
	}

	if header, err := c.FormFile("cv"); err == nil {
		upload, err := readUpload(header)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable cv upload"))
			return
		}
		req.CVFilename = upload.Filename
		req.CVData = upload.Data
	}

	request, err := h.applications.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}
