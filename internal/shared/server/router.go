package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-file-manager/internal/files"
	"smart-file-manager/internal/shared/config"
	"smart-file-manager/internal/shared/metrics"
	"smart-file-manager/internal/shared/server/middleware"
	"smart-file-manager/internal/shared/server/respond"
)

// RouterDeps holds handlers wired by bootstrap.
type RouterDeps struct {
	Config      config.Config
	FileHandler *files.Handler
	// BlobHandler serves locally signed download links; nil unless the
	// filesystem blob store is active.
	BlobHandler gin.HandlerFunc
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	if deps.FileHandler != nil {
		deps.FileHandler.RegisterRoutes(r)
	}
	if deps.BlobHandler != nil {
		r.GET("/blobs/*key", deps.BlobHandler)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
