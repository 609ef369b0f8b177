package respond

import (
	"github.com/gin-gonic/gin"

	"skillsearch-backend/internal/shared/telemetry"
)

// ErrorResponse is the error body returned by every endpoint.
// Details is omitted for caller errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error logs the failure under code and aborts with the error body.
func Error(c *gin.Context, status int, code, message, details string) {
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
