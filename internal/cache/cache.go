// Package cache provides the export cache store backends and the canonical
// cache key derivation for per-locale exports.
package cache

import (
	"context"
	"time"
)

// Store is the minimal contract every cache backend satisfies. A failed Get
// is reported as a miss, never as an error: readers fall through to a live
// database query instead of failing.
type Store interface {
	// Get retrieves a cached value. Returns false if absent or expired.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value with the given TTL. A non-positive TTL stores the
	// value without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// KeyLister is an optional Store capability. Backends that can enumerate
// stored keys by prefix allow exact invalidation of every tag-filtered
// export of a locale; backends without it degrade to evicting only the
// well-known keys, leaving tag-filtered entries to age out via TTL.
type KeyLister interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}
