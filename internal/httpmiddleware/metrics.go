package httpmiddleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/metrics"
)

// Metrics records request latency and counts per control plane, path,
// method, and status, with a "plane" label so internal and external
// traffic are distinguishable in one registry.
func Metrics(plane string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method
		duration := time.Since(start).Seconds()

		metrics.HTTPRequestDuration.WithLabelValues(plane, method, path, status).Observe(duration)
		metrics.HTTPRequestsTotal.WithLabelValues(plane, method, path, status).Inc()
	}
}
