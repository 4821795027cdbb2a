package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/service"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/response"
)

// PackageHandler exposes lesson package endpoints.
type PackageHandler struct {
	packages *service.PackageService
}

// NewPackageHandler constructs PackageHandler.
func NewPackageHandler(packages *service.PackageService) *PackageHandler {
	return &PackageHandler{packages: packages}
}

// List godoc
// @Summary List packages with features
// @Tags Packages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /packages [get]
func (h *PackageHandler) List(c *gin.Context) {
	packages, err := h.packages.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, packages, nil)
}

// Get godoc
// @Summary Get package
// @Tags Packages
// @Produce json
// @Param id path string true "Package ID"
// @Success 200 {object} response.Envelope
// @Router /admin/packages/{id} [get]
func (h *PackageHandler) Get(c *gin.Context) {
	pkg, err := h.packages.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pkg, nil)
}

// Create godoc
// @Summary Create package
// @Tags Packages
// @Accept json
// @Produce json
// @Param payload body service.SavePackageRequest true "Package payload"
// @Success 201 {object} response.Envelope
// @Router /admin/packages [post]
func (h *PackageHandler) Create(c *gin.Context) {
	var req service.SavePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	pkg, err := h.packages.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pkg)
}

// Update godoc
// @Summary Update package
// @Tags Packages
// @Accept json
// @Produce json
// @Param id path string true "Package ID"
// @Param payload body service.SavePackageRequest true "Package payload"
// @Success 200 {object} response.Envelope
// @Router /admin/packages/{id} [put]
func (h *PackageHandler) Update(c *gin.Context) {
	var req service.SavePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	pkg, err := h.packages.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pkg, nil)
}

// Delete godoc
// @Summary Delete package
// @Tags Packages
// @Produce json
// @Param id path string true "Package ID"
// @Success 204 {object} response.Envelope
// @Router /admin/packages/{id} [delete]
func (h *PackageHandler) Delete(c *gin.Context) {
	if err := h.packages.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListFeatures godoc
// @Summary List the reusable feature catalog
// @Tags Packages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/features [get]
func (h *PackageHandler) ListFeatures(c *gin.Context) {
	features, err := h.packages.ListFeatures(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, features, nil)
}

// CreateFeature godoc
// @Summary Add a reusable feature label
// @Tags Packages
// @Accept json
// @Produce json
// @Param payload body service.CreateFeatureRequest true "Feature payload"
// @Success 201 {object} response.Envelope
// @Router /admin/features [post]
func (h *PackageHandler) CreateFeature(c *gin.Context) {
	var req service.CreateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	feature, err := h.packages.CreateFeature(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feature)
}
