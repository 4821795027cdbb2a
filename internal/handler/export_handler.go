package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/models"
	"github.com/koreklar/koreskole-api/internal/service"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/response"
)

// ExportHandler exposes the asynchronous request export endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

type createExportPayload struct {
	Format models.ExportFormat   `json:"format"`
	Kind   *models.RequestKind   `json:"kind,omitempty"`
	Status *models.RequestStatus `json:"status,omitempty"`
}

// Create godoc
// @Summary Start a request export
// @Description Queues an export of customer requests to CSV or PDF.
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body createExportPayload true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /admin/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload createExportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	filter := models.RequestFilter{Kind: payload.Kind, Status: payload.Status}
	job, err := h.exports.Create(c.Request.Context(), claims.MemberID, payload.Format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Get godoc
// @Summary Get export job state
// @Tags Exports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /admin/exports/{id} [get]
func (h *ExportHandler) Get(c *gin.Context) {
	job, err := h.exports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /admin/exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	relPath, err := h.exports.ResolveDownload(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(h.exports.FilePath(relPath), downloadName(relPath))
}
