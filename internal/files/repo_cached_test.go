package files

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	data   map[string][]byte
	gets   int
	getErr error
	setErr error
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (m *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.gets++
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(ctx context.Context, key string, val []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = val
	return nil
}

// countingRepo counts GetByID calls on the wrapped repo.
type countingRepo struct {
	Repo
	gets int
}

func (c *countingRepo) GetByID(ctx context.Context, id string) (FileRecord, error) {
	c.gets++
	return c.Repo.GetByID(ctx, id)
}

func TestCachedRepoServesFromCacheAfterCreate(t *testing.T) {
	ctx := context.Background()
	next := &countingRepo{Repo: NewMemoryRepo()}
	cache := newMapCache()
	repo := NewCachedRepo(next, cache)
	rec := FileRecord{ID: "abc", FileName: "a.txt", UploadTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}

	require.NoError(t, repo.Create(ctx, rec))
	assert.Contains(t, cache.data, "abc")

	got, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, rec.FileName, got.FileName)
	assert.True(t, rec.UploadTime.Equal(got.UploadTime))
	assert.Equal(t, 0, next.gets)
}

func TestCachedRepoFillsOnMiss(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryRepo()
	require.NoError(t, mem.Create(ctx, FileRecord{ID: "abc", FileName: "a.txt"}))
	next := &countingRepo{Repo: mem}
	cache := newMapCache()
	repo := NewCachedRepo(next, cache)

	_, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, next.gets)
}

func TestCachedRepoDoesNotCacheMisses(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	repo := NewCachedRepo(NewMemoryRepo(), cache)

	_, err := repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, cache.data)
}

func TestCachedRepoToleratesCacheFailures(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	repo := NewCachedRepo(NewMemoryRepo(), cache)

	require.NoError(t, repo.Create(ctx, FileRecord{ID: "abc", FileName: "a.txt"}))
	got, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.FileName)
}

func TestCachedRepoIgnoresCorruptEntries(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryRepo()
	require.NoError(t, mem.Create(ctx, FileRecord{ID: "abc", FileName: "a.txt"}))
	cache := newMapCache()
	cache.data["abc"] = []byte("{not json")
	repo := NewCachedRepo(mem, cache)

	got, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.FileName)
}
