package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/practice_ledger_app/internal/platform/metrics"
)

// PrometheusMiddleware records request counts and latency per matched route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
