package middleware

import (
	"strconv"
	"time"

	ports "feedstack-post-service/internal/domain/ports/output"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route template, so /posts/1
// and /posts/2 share a series.
func Metrics(metrics ports.MetricsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncrementActiveRequests()
		defer metrics.DecrementActiveRequests()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.IncrementHTTPRequests(c.Request.Method, route, status)
		metrics.RecordHTTPRequestDuration(c.Request.Method, route, status, time.Since(start))
	}
}
