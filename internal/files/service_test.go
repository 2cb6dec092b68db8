package files

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedService(blobs *mockBlobStore, repo Repo) *Service {
	svc := NewService(blobs, repo)
	svc.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600)) }
	svc.NewID = func() string { return "11111111-2222-4333-8444-555555555555" }
	return svc
}

func TestServiceUploadStoresBlobThenRecord(t *testing.T) {
	blobs := &mockBlobStore{}
	repo := NewMemoryRepo()
	svc := fixedService(blobs, repo)
	data := []byte("Hello, World!")

	blobs.On("Put", mock.Anything, "test-file.txt", "text/plain; charset=utf-8", data, int64(len(data))).Return(nil).Once()

	rec, err := svc.Upload(context.Background(), "test-file.txt", data)
	require.NoError(t, err)
	blobs.AssertExpectations(t)

	assert.Equal(t, "11111111-2222-4333-8444-555555555555", rec.ID)
	assert.Equal(t, "test-file.txt", rec.FileName)
	assert.Equal(t, time.UTC, rec.UploadTime.Location())
	assert.Equal(t, 11, rec.UploadTime.Hour())

	stored, err := repo.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestServiceUploadValidation(t *testing.T) {
	blobs := &mockBlobStore{}
	svc := fixedService(blobs, NewMemoryRepo())

	_, err := svc.Upload(context.Background(), "", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(context.Background(), "big.bin", make([]byte, MaxUploadBytes+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceUploadAcceptsExactLimit(t *testing.T) {
	blobs := &mockBlobStore{}
	svc := fixedService(blobs, NewMemoryRepo())
	blobs.On("Put", mock.Anything, "max.bin", mock.Anything, mock.Anything, int64(MaxUploadBytes)).Return(nil).Once()

	_, err := svc.Upload(context.Background(), "max.bin", make([]byte, MaxUploadBytes))
	require.NoError(t, err)
	blobs.AssertExpectations(t)
}

func TestServiceUploadBlobFailureSkipsRecord(t *testing.T) {
	blobs := &mockBlobStore{}
	repo := NewMemoryRepo()
	svc := fixedService(blobs, repo)
	boom := errors.New("s3 unavailable")
	blobs.On("Put", mock.Anything, "a.txt", mock.Anything, mock.Anything, mock.Anything).Return(boom)

	_, err := svc.Upload(context.Background(), "a.txt", []byte("a"))
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByID(context.Background(), "11111111-2222-4333-8444-555555555555")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceUploadRecordFailure(t *testing.T) {
	blobs := &mockBlobStore{}
	boom := errors.New("throttled")
	svc := fixedService(blobs, failingRepo{err: boom})
	blobs.On("Put", mock.Anything, "a.txt", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Upload(context.Background(), "a.txt", []byte("a"))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestServiceDownloadURL(t *testing.T) {
	blobs := &mockBlobStore{}
	repo := NewMemoryRepo()
	svc := fixedService(blobs, repo)
	require.NoError(t, repo.Create(context.Background(), FileRecord{ID: "abc", FileName: "report.pdf"}))

	blobs.On("PresignGet", mock.Anything, "report.pdf", 5*time.Minute).Return("https://example/report.pdf?sig", nil).Once()

	url, err := svc.DownloadURL(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "https://example/report.pdf?sig", url)
	blobs.AssertExpectations(t)
}

func TestServiceDownloadURLErrors(t *testing.T) {
	blobs := &mockBlobStore{}
	svc := fixedService(blobs, NewMemoryRepo())

	_, err := svc.DownloadURL(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.DownloadURL(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("dynamo down")
	svc.Repo = failingRepo{err: boom}
	_, err = svc.DownloadURL(context.Background(), "abc")
	assert.ErrorIs(t, err, boom)

	blobs.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceDownloadURLPresignFailure(t *testing.T) {
	blobs := &mockBlobStore{}
	repo := NewMemoryRepo()
	svc := fixedService(blobs, repo)
	require.NoError(t, repo.Create(context.Background(), FileRecord{ID: "abc", FileName: "a.txt"}))
	boom := errors.New("no credentials")
	blobs.On("PresignGet", mock.Anything, "a.txt", PresignTTL).Return("", boom)

	_, err := svc.DownloadURL(context.Background(), "abc")
	assert.ErrorIs(t, err, boom)
}

func TestNewServiceGeneratesDistinctIDs(t *testing.T) {
	svc := NewService(newMemBlobStore(), NewMemoryRepo())
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec, err := svc.Upload(context.Background(), "same.txt", []byte("x"))
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, rec.ID)
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}
