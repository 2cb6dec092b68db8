package files

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// mockBlobStore is a testify mock for object.BlobStore.
type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, key, contentType, data, size)
	return args.Error(0)
}

func (m *mockBlobStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

// memBlobStore keeps objects in memory and mints S3-shaped URLs.
type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	signed  int
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: map[string][]byte{}}
}

func (m *memBlobStore) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memBlobStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signed++
	q := url.Values{}
	q.Set("X-Amz-Expires", strconv.Itoa(int(ttl.Seconds())))
	q.Set("X-Amz-Signature", strconv.Itoa(m.signed))
	return "https://smart-file-manager-bucket.s3.us-east-1.amazonaws.com/" + url.PathEscape(key) + "?" + q.Encode(), nil
}

func (m *memBlobStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// failingRepo returns err from every call.
type failingRepo struct {
	err error
}

func (f failingRepo) Create(ctx context.Context, rec FileRecord) error { return f.err }

func (f failingRepo) GetByID(ctx context.Context, id string) (FileRecord, error) {
	return FileRecord{}, f.err
}
