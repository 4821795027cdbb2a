package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/models"
	"github.com/koreklar/koreskole-api/internal/service"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/response"
	"github.com/koreklar/koreskole-api/pkg/storage"
)

// RequestHandler exposes the admin side of customer requests.
type RequestHandler struct {
	requests *service.RequestService
	store    *storage.LocalStorage
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService, store *storage.LocalStorage) *RequestHandler {
	return &RequestHandler{requests: requests, store: store}
}

// List godoc
// @Summary List customer requests
// @Tags Requests
// @Produce json
// @Param kind query string false "CONTACT or APPLICATION"
// @Param status query string false "NEW, IN_PROGRESS or DONE"
// @Param search query string false "Search by name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	var filter models.RequestFilter
	if kind := c.Query("kind"); kind != "" {
		k := models.RequestKind(kind)
		filter.Kind = &k
	}
	if status := c.Query("status"); status != "" {
		st := models.RequestStatus(status)
		filter.Status = &st
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	requests, total, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get customer request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /admin/requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// UpdateStatus godoc
// @Summary Update request status
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.UpdateRequestStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /admin/requests/{id}/status [put]
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Delete godoc
// @Summary Delete customer request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Router /admin/requests/{id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	if err := h.requests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListNotes godoc
// @Summary List internal notes on a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /admin/requests/{id}/notes [get]
func (h *RequestHandler) ListNotes(c *gin.Context) {
	notes, err := h.requests.ListNotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, nil)
}

// AddNote godoc
// @Summary Add internal note to a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.CreateRequestNoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Router /admin/requests/{id}/notes [post]
func (h *RequestHandler) AddNote(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateRequestNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	note, err := h.requests.AddNote(c.Request.Context(), c.Param("id"), claims.MemberID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// CVLink godoc
// @Summary Issue a time-limited CV download link
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /admin/requests/{id}/cv-link [post]
func (h *RequestHandler) CVLink(c *gin.Context) {
	token, err := h.requests.CVDownloadToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"token": token}, nil)
}

// DownloadCV godoc
// @Summary Download a CV with a signed token
// @Tags Requests
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /admin/requests/cv-download [get]
func (h *RequestHandler) DownloadCV(c *gin.Context) {
	relPath, err := h.requests.ResolveCVDownload(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(h.store.Path(relPath), downloadName(relPath))
}

func downloadName(relPath string) string {
	if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
		return relPath[idx+1:]
	}
	return relPath
}
