package cache

import (
	"context"
	"time"
)

// Provider is the storage backend behind the cache manager. Implementations
// must be safe for concurrent use.
type Provider interface {
	// Get retrieves a value by key. Returns nil, false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL. A zero TTL falls back to the
	// provider's default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every item.
	Clear(ctx context.Context) error

	// Exists reports whether the key is present and unexpired.
	Exists(ctx context.Context, key string) bool

	// Close releases the provider's resources.
	Close() error

	// Stats reports hit/miss counters and provider identity.
	Stats(ctx context.Context) (*Stats, error)
}

// Stats contains cache counters.
type Stats struct {
	Hits         int64  `json:"hits"`
	Misses       int64  `json:"misses"`
	Keys         int64  `json:"keys"`
	ProviderType string `json:"provider_type"`
}

// Options carries provider-independent tuning.
type Options struct {
	// DefaultTTL applies when Set is called with a zero TTL.
	DefaultTTL time.Duration

	// MaxEntries bounds the in-memory provider; zero means unbounded.
	MaxEntries int
}
