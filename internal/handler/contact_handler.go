package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/service"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/response"
)

// ContactHandler exposes the public contact form endpoint.
type ContactHandler struct {
	contact *service.ContactService
}

// NewContactHandler constructs ContactHandler.
func NewContactHandler(contact *service.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit godoc
// @Summary Submit a contact enquiry
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body service.ContactRequest true "Contact payload"
// @Success 201 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.contact.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}
