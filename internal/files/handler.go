package files

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smart-file-manager/internal/shared/metrics"
	"smart-file-manager/internal/shared/server/middleware"
	"smart-file-manager/internal/shared/server/respond"
	"smart-file-manager/internal/shared/telemetry"
)

const (
	msgMissingFilename = "Missing filename parameter"
	msgTooLarge        = "File size exceeds 10MB limit"
	msgMissingFileID   = "File ID is required"
	msgNotFound        = "File not found"
)

// maxEncodedBodyBytes bounds the raw body read: the base64 length of
// MaxUploadBytes plus room for a trailing CRLF.
var maxEncodedBodyBytes = int64(base64.StdEncoding.EncodedLen(MaxUploadBytes) + 2)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches file routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/files", h.upload)
	rg.GET("/files", h.download)
	rg.GET("/files/*fileId", h.download)
}

func (h *Handler) upload(c *gin.Context) {
	fileName := c.Query("filename")
	if fileName == "" {
		respond.Error(c, http.StatusBadRequest, msgMissingFilename)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEncodedBodyBytes+1))
	if err != nil {
		metrics.IncUploadFailed()
		internalError(c, "files.upload.read_failed", err, map[string]any{"file_name": fileName})
		return
	}
	if int64(len(raw)) > maxEncodedBodyBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, msgTooLarge)
		return
	}

	data, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(raw)))
	if err != nil {
		metrics.IncUploadFailed()
		internalError(c, "files.upload.decode_failed", err, map[string]any{"file_name": fileName})
		return
	}

	rec, err := h.Svc.Upload(c.Request.Context(), fileName, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, msgMissingFilename)
		case errors.Is(err, ErrPayloadTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, msgTooLarge)
		default:
			metrics.IncUploadFailed()
			internalError(c, "files.upload.failed", err, map[string]any{
				"file_name":  fileName,
				"size_bytes": len(data),
			})
		}
		return
	}

	c.Set(middleware.FileIDKey, rec.ID)
	metrics.IncUpload()
	metrics.ObserveUploadBytes(len(data))
	telemetry.Info("files.upload.stored", map[string]any{
		"file_id":    rec.ID,
		"file_name":  rec.FileName,
		"size_bytes": len(data),
		"request_id": middleware.RequestIDFromContext(c),
	})
	respond.OK(c, UploadResponse{FileID: rec.ID})
}

func (h *Handler) download(c *gin.Context) {
	fileID := strings.TrimPrefix(c.Param("fileId"), "/")
	if fileID == "" {
		respond.Error(c, http.StatusBadRequest, msgMissingFileID)
		return
	}
	c.Set(middleware.FileIDKey, fileID)

	url, err := h.Svc.DownloadURL(c.Request.Context(), fileID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, msgMissingFileID)
		case errors.Is(err, ErrNotFound):
			metrics.IncDownloadMiss()
			respond.Error(c, http.StatusNotFound, msgNotFound)
		default:
			metrics.IncDownloadFailed()
			internalError(c, "files.download.failed", err, map[string]any{"file_id": fileID})
		}
		return
	}

	metrics.IncDownload()
	respond.OK(c, DownloadResponse{URL: url})
}

func internalError(c *gin.Context, event string, err error, fields map[string]any) {
	fields["err"] = err.Error()
	fields["request_id"] = middleware.RequestIDFromContext(c)
	telemetry.Error(event, fields)
	respond.Error(c, http.StatusInternalServerError, respond.MsgInternal)
}
