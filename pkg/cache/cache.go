// Package cache stores derived slice sets so repeated auto slicing of the
// same spritesheet with the same parameters skips the flood fill.
//
// Entries are opaque byte slices (manifest JSON in practice) addressed by
// keys from a [Keyer]. Three backends implement [Cache]:
//   - [FileCache]: sharded JSON files under the user cache directory (CLI)
//   - [RedisCache]: a shared Redis instance (HTTP server deployments)
//   - [NullCache]: stores nothing, used with --no-cache
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
