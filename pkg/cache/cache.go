// Package cache provides response caching for GitHub API calls.
//
// Backends: file-based (default for CLI usage), Redis (for the HTTP server),
// and a null cache for disabling caching entirely. All backends share the
// same interface so callers never care which one is wired in.
package cache

import (
	"context"
	"time"
)

// Default TTLs per data class. Search results go stale quickly; user
// profiles change rarely.
const (
	SearchTTL  = time.Hour
	ProfileTTL = 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
