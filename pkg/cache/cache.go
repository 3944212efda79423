package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by a Remote when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is the interface for a size-bounded in-process memo.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with a TTL.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all values from the cache.
	Clear()

	// Wait blocks until buffered writes are visible to Get.
	Wait()

	// Close closes the cache and releases resources.
	Close()
}

// Remote is the shared, process-external tier.
// Any error other than ErrMiss means the tier is unreachable.
type Remote interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}
