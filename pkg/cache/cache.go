// Package cache provides caching for analysis reports.
//
// Analyses are deterministic, so a report can be reused whenever the same
// document is analyzed with the same options. Keys are derived from the
// document hash and those options by a [Keyer].
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [NewNullCache]: caching disabled (--no-cache, backend "none")
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().ReportKey(doc.Hash(), cache.ReportKeyOpts{VXVersion: "1.2"})
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // use cached report
//	}
package cache

import (
	"context"
	"time"
)

// TTLReport is how long analysis reports stay cached.
const TTLReport = 7 * 24 * time.Hour

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// NewNullCache returns a cache that stores nothing, so every report lookup
// misses and the analysis runs again.
func NewNullCache() Cache { return nullCache{} }

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }
