package respond

import (
	"github.com/gin-gonic/gin"

	"smart-file-manager/internal/shared/telemetry"
)

// Messages returned to clients. Internal details never leave the process.
const (
	MsgInternal = "Internal Server Error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error logs the failure and aborts the request with {"error": message}.
func Error(c *gin.Context, status int, message string) {
	telemetry.Warn("http.error", map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})

	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
