package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/service"
	"github.com/koreklar/koreskole-api/pkg/response"
)

// AnalyticsHandler exposes the traffic stats proxy.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary godoc
// @Summary Aggregate traffic stats
// @Description Proxies the hosted analytics provider so its API key stays
// @Description server-side. Cached per period.
// @Tags Analytics
// @Produce json
// @Param period query string false "Period, e.g. 7d or 30d"
// @Success 200 {object} response.Envelope
// @Router /admin/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.analytics.Summary(c.Request.Context(), c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
