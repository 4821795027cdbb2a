package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/service"
)

// Metrics records per-request duration and counts. Unmatched routes fall
// back to the raw path so 404 probes do not explode label cardinality into
// the matched-route buckets.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
