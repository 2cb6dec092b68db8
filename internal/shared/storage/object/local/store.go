package local

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"smart-file-manager/internal/shared/server/respond"
	"smart-file-manager/internal/shared/storage/object"
)

var (
	ErrInvalidKey       = errors.New("invalid storage key")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrExpired          = errors.New("link expired")
)

// Store implements object.BlobStore on the local filesystem. Download URLs
// point back at this service and carry an HMAC over key and expiry.
type Store struct {
	baseDir string
	baseURL string
	secret  []byte
	now     func() time.Time
}

// New creates a store rooted at baseDir. An empty secret gets a random
// per-process key, so links do not survive a restart.
func New(baseDir, baseURL, secret string) *Store {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			key = []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
		}
	}
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  key,
		now:     time.Now,
	}
}

// Put writes the reader to disk at key, replacing any existing object.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("write body: wrote %d of %d bytes", written, size)
	}
	return nil
}

// PresignGet returns {baseURL}/blobs/{key}?expires=...&signature=...
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.resolve(key); err != nil {
		return "", err
	}
	expires := s.now().Add(ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", s.sign(key, expires))
	return s.baseURL + "/blobs/" + escapeKey(key) + "?" + q.Encode(), nil
}

// Verify checks a signature produced by PresignGet.
func (s *Store) Verify(key, expires, signature string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	want := s.sign(key, exp)
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return ErrInvalidSignature
	}
	if s.now().Unix() > exp {
		return ErrExpired
	}
	return nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Handler serves GET /blobs/*key for links minted by PresignGet.
func (s *Store) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if err := s.Verify(key, c.Query("expires"), c.Query("signature")); err != nil {
			respond.Error(c, http.StatusForbidden, "Forbidden")
			return
		}
		f, err := s.Open(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "File not found")
				return
			}
			respond.Error(c, http.StatusInternalServerError, respond.MsgInternal)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, respond.MsgInternal)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(key)))
		http.ServeContent(c.Writer, c.Request, filepath.Base(key), info.ModTime(), f)
	}
}

func (s *Store) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(key))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve maps a key to exactly one file under baseDir. Keys that a path
// clean would rewrite are rejected so two keys never share a file.
func (s *Store) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" || path.IsAbs(key) || path.Clean(key) != key {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "." || seg == ".." {
			return "", ErrInvalidKey
		}
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(key)), nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var _ object.BlobStore = (*Store)(nil)
