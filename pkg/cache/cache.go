// Package cache stores computed views and rendered artifacts.
//
// # Overview
//
// A layout pass is cheap, but the serve command answers the same (graph,
// expand-set, options) triple over and over while a run is being watched,
// and rendering through Graphviz is not cheap. This package provides a small
// byte-oriented [Cache] interface with three backends:
//
//   - [FileCache]: one JSON file per entry under the XDG cache directory,
//     used by the CLI
//   - [RedisCache]: shared cache for several server replicas
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//
// # Keys
//
// Keys are built by a [Keyer] from content hashes, never from file names, so
// an edited graph can never hit a stale entry. [ScopedKeyer] prefixes every
// key, which keeps several deployments apart on one Redis instance.
//
//	k := cache.NewDefaultKeyer()
//	key := k.ViewKey(cache.Hash(graphJSON), cache.ViewKeyOpts{Expand: expand.Keys(), Options: opts})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// NullCache stores nothing. Every Get is a miss.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)

