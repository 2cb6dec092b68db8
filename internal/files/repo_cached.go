package files

import (
	"context"
	"encoding/json"
	"time"

	"smart-file-manager/internal/shared/telemetry"
)

// RecordCache is a byte cache keyed by file id.
type RecordCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

type cachedRecord struct {
	ID         string    `json:"fileId"`
	FileName   string    `json:"fileName"`
	UploadTime time.Time `json:"uploadTime"`
}

// CachedRepo fronts another Repo with a read-through cache. Records are
// never mutated, so entries are not invalidated. Cache errors are logged
// and the underlying Repo answers.
type CachedRepo struct {
	Next  Repo
	Cache RecordCache
}

// NewCachedRepo wraps next with cache.
func NewCachedRepo(next Repo, cache RecordCache) *CachedRepo {
	return &CachedRepo{Next: next, Cache: cache}
}

// Create writes through to the cache after the underlying write succeeds.
func (r *CachedRepo) Create(ctx context.Context, rec FileRecord) error {
	if err := r.Next.Create(ctx, rec); err != nil {
		return err
	}
	r.store(ctx, rec)
	return nil
}

// GetByID serves from cache when possible. Misses are not cached.
func (r *CachedRepo) GetByID(ctx context.Context, id string) (FileRecord, error) {
	raw, ok, err := r.Cache.Get(ctx, id)
	if err != nil {
		telemetry.Warn("files.cache.get_failed", map[string]any{"file_id": id, "err": err.Error()})
	}
	if ok {
		var cached cachedRecord
		if err := json.Unmarshal(raw, &cached); err == nil {
			return FileRecord(cached), nil
		}
	}

	rec, err := r.Next.GetByID(ctx, id)
	if err != nil {
		return FileRecord{}, err
	}
	r.store(ctx, rec)
	return rec, nil
}

func (r *CachedRepo) store(ctx context.Context, rec FileRecord) {
	raw, err := json.Marshal(cachedRecord(rec))
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, rec.ID, raw); err != nil {
		telemetry.Warn("files.cache.set_failed", map[string]any{"file_id": rec.ID, "err": err.Error()})
	}
}
