package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/speakerkit/observability"
)

// Metrics records request counts, durations and in-flight requests. Routes
// are labeled by their pattern, or "unmatched".
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.RecordRequestStart(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequestEnd(ctx, route, c.Writer.Status(), time.Since(start))
	}
}
