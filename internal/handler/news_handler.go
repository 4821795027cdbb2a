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

// NewsHandler exposes the bilingual news endpoints.
type NewsHandler struct {
	news *service.NewsService
}

// NewNewsHandler constructs NewsHandler.
func NewNewsHandler(news *service.NewsService) *NewsHandler {
	return &NewsHandler{news: news}
}

// List godoc
// @Summary List news
// @Tags News
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /news [get]
func (h *NewsHandler) List(c *gin.Context) {
	var filter models.NewsFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	items, total, err := h.news.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get news item
// @Tags News
// @Produce json
// @Param id path string true "News ID"
// @Success 200 {object} response.Envelope
// @Router /news/{id} [get]
func (h *NewsHandler) Get(c *gin.Context) {
	item, err := h.news.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create news item
// @Description Creates a news item: the text is machine-translated into the
// @Description other language, attached images are normalized and stored, and
// @Description the item can optionally be published to the social page.
// @Tags News
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param body formData string true "Body"
// @Param publish_to_social formData bool false "Publish to the social page"
// @Param media formData file false "Images (repeatable)"
// @Success 201 {object} response.Envelope
// @Router /news [post]
func (h *NewsHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := service.CreateNewsRequest{
		Title:           c.PostForm("title"),
		Body:            c.PostForm("body"),
		PublishToSocial: c.PostForm("publish_to_social") == "true",
	}
	media, err := h.formMedia(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Media = media

	item, err := h.news.Create(c.Request.Context(), claims.MemberID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update news item
// @Description Replaces the text, re-runs translation, and appends new images.
// @Tags News
// @Accept mpfd
// @Produce json
// @Param id path string true "News ID"
// @Param title formData string true "Title"
// @Param body formData string true "Body"
// @Param media formData file false "Images (repeatable)"
// @Success 200 {object} response.Envelope
// @Router /news/{id} [put]
func (h *NewsHandler) Update(c *gin.Context) {
	req := service.UpdateNewsRequest{
		Title: c.PostForm("title"),
		Body:  c.PostForm("body"),
	}
	media, err := h.formMedia(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Media = media

	item, err := h.news.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete news item
// @Description Removes the stored images, image records, and the item itself.
// @Tags News
// @Produce json
// @Param id path string true "News ID"
// @Success 204 {object} response.Envelope
// @Router /news/{id} [delete]
func (h *NewsHandler) Delete(c *gin.Context) {
	if err := h.news.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *NewsHandler) formMedia(c *gin.Context) ([]service.MediaUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Plain form posts without files are fine.
		return nil, nil
	}
	headers := form.File["media"]
	uploads := make([]service.MediaUpload, 0, len(headers))
	for _, header := range headers {
		upload, err := readUpload(header)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload")
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}
