package object

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by stores that can tell an object is missing.
var ErrNotFound = errors.New("object not found")

// BlobStore is key-addressed object storage. Keys are used verbatim.
type BlobStore interface {
	// Put writes r under key, replacing any existing object.
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	// PresignGet returns a URL granting read access to key for ttl. It does not
	// check that the object exists.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
