// Package cache provides content-addressed caching for routing results.
//
// Routing is deterministic: the same device, program, and search depth
// always produce the same output. That makes routed programs ideal cache
// material, keyed by a hash of the inputs (see [RouteKey]). Backends:
//
//   - [FileCache]: on-disk entries for CLI usage
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: disabled caching
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind. Routing results are pure functions of their
// key inputs and could live forever; the TTLs exist to bound disk and
// Redis usage, not for correctness.
const (
	// TTLRoute is the lifetime of cached routing results.
	TTLRoute = 7 * 24 * time.Hour

	// TTLRender is the lifetime of cached coupling-graph diagrams.
	TTLRender = 24 * time.Hour
)

// Cache stores serialized routing results keyed by input hashes.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources (connections, file handles).
	Close() error
}
