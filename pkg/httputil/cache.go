package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when an entry exists on disk but
// has outlived its TTL. The stale data is left in place; callers should
// refetch and overwrite with [Cache.Set].
var ErrExpired = errors.New("cache entry expired")

// Cache is a file-based cache for JSON-marshalable values. Each entry is
// one file whose name is the SHA-256 of the key, so arbitrary strings
// (conversation ids, URLs) are safe keys. Entry freshness is judged by
// file modification time against the TTL; a TTL of 0 never expires.
//
// A Cache value is not goroutine-safe, but separate instances (and
// separate processes) may share a directory.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache creates a Cache rooted at dir with the given TTL. An empty dir
// selects ~/.cache/intentflow/. The directory is created if missing.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "intentflow")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry time-to-live. Zero means entries never expire.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get looks up key and unmarshals the entry into v. It reports
// (true, nil) on a fresh hit, (false, nil) on a miss, and
// (false, ErrExpired) when the entry is stale. Reads never mutate the
// cache.
func (c *Cache) Get(key string, v any) (bool, error) {
	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, v)
}

// Set stores v under key, overwriting any existing entry and resetting
// its TTL clock.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(c.prefix+key), data, 0o644)
}

// Namespace returns a view of the cache that prefixes every key, keeping
// entries from different collaborators apart:
//
//	conv := cache.Namespace("conv:")
//	turns := cache.Namespace("turns:")
//
// The view shares the parent's directory and TTL.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
	}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
