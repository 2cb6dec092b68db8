package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smart-file-manager/internal/shared/telemetry"
)

// FileIDKey is set by file handlers so the request log can carry the id.
const FileIDKey = "fileId"

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
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
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"bytes_in":    c.Request.ContentLength,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if fileID := c.GetString(FileIDKey); fileID != "" {
			fields["file_id"] = fileID
		}
		telemetry.Info("request.complete", fields)
	}
}
