package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/prometheus"
)

// Metrics records HTTP request counts, durations, and in-flight gauges.
// The path label uses the matched route template so the label space stays
// bounded regardless of request input.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.HTTPActiveRequests.WithLabelValues(method, path).Inc()
		start := time.Now()

		c.Next()

		m.HTTPActiveRequests.WithLabelValues(method, path).Dec()
		prometheus.RecordHTTPRequest(m, method, path, c.Writer.Status(), time.Since(start))
	}
}
