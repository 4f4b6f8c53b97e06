// Package cache provides a small byte-oriented cache abstraction with
// file, redis and null backends.
//
// The scan core uses it to memoize remote resolution engine responses:
// resolving the same lockfile contents twice should not cost two engine
// round trips. Keys are derived from content hashes (see [Keyer]) so a
// changed file never serves a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented cache with optional per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
