package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// otherType holds entries whose key [ParseKey] does not recognise.
const otherType = "other"

// FileCache stores one JSON file per entry, partitioned by key type and
// source hash:
//
//	<dir>/view/<graph>/<key digest>.json
//	<dir>/artifact/<view>/<key digest>.json
//
// so views and renderings can be counted and cleared separately. It is
// meant for a single CLI user; concurrent writers of one key are last
// writer wins.
type FileCache struct {
	dir string
}

// NewFileCache creates a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// fileEntry is the on-disk form of one entry. Type and Source repeat what
// the path encodes so an entry file is self-describing.
type fileEntry struct {
	Key       string    `json:"key"`
	Type      string    `json:"type"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Data      []byte    `json:"data"`
}

// Get returns the entry for key. Expired and unreadable entries are removed
// and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e fileEntry
	if err := json.Unmarshal(raw, &e); err != nil || e.Key != key {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the entry through a temporary file, so a reader never sees a
// partial entry.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	keyType, source, ok := ParseKey(key)
	if !ok {
		keyType = otherType
	}
	e := fileEntry{Key: key, Type: keyType, Source: source, CreatedAt: time.Now(), Data: data}
	if ttl > 0 {
		e.ExpiresAt = e.CreatedAt.Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. A missing entry is not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op.
func (c *FileCache) Close() error { return nil }

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

// TypeStats counts the entries of one key type.
type TypeStats struct {
	Entries int
	Sources int // distinct graphs for views, distinct views for artifacts
	Bytes   int64
}

// Stats counts entries per key type without decoding them.
func (c *FileCache) Stats() (map[string]TypeStats, error) {
	stats := make(map[string]TypeStats)
	for _, keyType := range []string{KeyTypeView, KeyTypeArtifact, otherType} {
		sources, err := os.ReadDir(filepath.Join(c.dir, keyType))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var ts TypeStats
		for _, src := range sources {
			if !src.IsDir() {
				continue
			}
			files, err := os.ReadDir(filepath.Join(c.dir, keyType, src.Name()))
			if err != nil {
				return nil, err
			}
			n := 0
			for _, f := range files {
				if !strings.HasSuffix(f.Name(), ".json") {
					continue
				}
				if info, err := f.Info(); err == nil {
					ts.Bytes += info.Size()
				}
				n++
			}
			if n > 0 {
				ts.Entries += n
				ts.Sources++
			}
		}
		if ts.Entries > 0 {
			stats[keyType] = ts
		}
	}
	return stats, nil
}

// Clear removes entries of the given key type, or every entry when keyType
// is empty.
func (c *FileCache) Clear(keyType string) error {
	switch keyType {
	case "":
	case KeyTypeView, KeyTypeArtifact, otherType:
		return os.RemoveAll(filepath.Join(c.dir, keyType))
	default:
		return fmt.Errorf("unknown key type %q", keyType)
	}
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// path maps a key to <dir>/<type>/<source>/<digest>.json. The file name
// hashes the whole key, so scoped keys never share a file.
func (c *FileCache) path(key string) string {
	digest := Hash([]byte(key))
	keyType, source, ok := ParseKey(key)
	if !ok {
		return filepath.Join(c.dir, otherType, digest[:2], digest[2:]+".json")
	}
	return filepath.Join(c.dir, keyType, source, digest+".json")
}

var _ Cache = (*FileCache)(nil)
