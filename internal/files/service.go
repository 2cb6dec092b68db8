package files

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"smart-file-manager/internal/shared/storage/object"
)

const (
	// MaxUploadBytes is the largest accepted decoded payload.
	MaxUploadBytes = 10 << 20
	// PresignTTL is how long a download URL stays valid.
	PresignTTL = 5 * time.Minute
)

// Service stores file bytes in the blob store and indexes them by id.
type Service struct {
	Blobs object.BlobStore
	Repo  Repo
	Now   func() time.Time
	NewID func() string
}

// NewService constructs a Service with a wall clock and random UUIDs.
func NewService(blobs object.BlobStore, repo Repo) *Service {
	return &Service{
		Blobs: blobs,
		Repo:  repo,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Upload writes data under fileName and records it under a new id.
// The blob is written first; a failed record write leaves it orphaned.
func (s *Service) Upload(ctx context.Context, fileName string, data []byte) (FileRecord, error) {
	if fileName == "" {
		return FileRecord{}, ErrInvalidInput
	}
	if len(data) > MaxUploadBytes {
		return FileRecord{}, ErrPayloadTooLarge
	}

	contentType := http.DetectContentType(data)
	if err := s.Blobs.Put(ctx, fileName, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return FileRecord{}, fmt.Errorf("store blob: %w", err)
	}

	rec := FileRecord{
		ID:         s.NewID(),
		FileName:   fileName,
		UploadTime: s.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return FileRecord{}, fmt.Errorf("record metadata: %w", err)
	}
	return rec, nil
}

// DownloadURL resolves fileID and presigns a GET for its blob.
// The blob itself is not checked for existence.
func (s *Service) DownloadURL(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", ErrInvalidInput
	}
	rec, err := s.Repo.GetByID(ctx, fileID)
	if err != nil {
		return "", err
	}
	url, err := s.Blobs.PresignGet(ctx, rec.FileName, PresignTTL)
	if err != nil {
		return "", fmt.Errorf("presign blob: %w", err)
	}
	return url, nil
}
