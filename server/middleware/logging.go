package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/speakerkit/logger"
)

// slowRequest marks requests worth flagging in the access log.
const slowRequest = 30 * time.Second

// RequestLogger logs one line per request: errors for 5xx, warnings for
// 4xx, debug otherwise. Probe paths are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isProbe(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
			"client": c.ClientIP(),
		}
		fields[logger.FieldDuration] = latency.Milliseconds()
		if latency > slowRequest {
			fields["slow"] = true
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("Request completed", fields)
		case status >= 400:
			l.Warn("Request completed", fields)
		default:
			l.Debug("Request completed", fields)
		}
	}
}
