package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"skillsearch-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	OutcomeKey     = "outcome"
	RecordCountKey = "records"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if outcome := c.GetString(OutcomeKey); outcome != "" {
			fields["outcome"] = outcome
		}
		if n, ok := c.Get(RecordCountKey); ok {
			fields["records"] = n
		}
		telemetry.Info("request.complete", fields)
	}
}
