package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache serializes values as JSON over a Provider.
type Cache struct {
	provider Provider
}

// NewCache wraps the given provider.
func NewCache(provider Provider) *Cache {
	return &Cache{provider: provider}
}

// Get retrieves and deserializes a value. Returns an error on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.provider.Get(ctx, key)
	if !ok {
		return fmt.Errorf("cache: key not found: %s", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache: deserialize %s: %w", key, err)
	}
	return nil
}

// Set serializes and stores a value with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: serialize %s: %w", key, err)
	}
	return c.provider.Set(ctx, key, data, ttl)
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.provider.Delete(ctx, key)
}

// Clear removes every item.
func (c *Cache) Clear(ctx context.Context) error {
	return c.provider.Clear(ctx)
}

// Exists reports whether the key is present.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	return c.provider.Exists(ctx, key)
}

// Stats reports the provider's counters.
func (c *Cache) Stats(ctx context.Context) (*Stats, error) {
	return c.provider.Stats(ctx)
}

// Close releases the provider's resources.
func (c *Cache) Close() error {
	return c.provider.Close()
}

var defaultCache *Cache

// Initialize installs the given provider as the default cache.
func Initialize(provider Provider) {
	defaultCache = NewCache(provider)
}

// UseMemory configures the default cache with in-process storage.
func UseMemory(opts *Options) error {
	defaultCache = NewCache(NewMemoryProvider(opts))
	return nil
}

// UseRedis configures the default cache with Redis storage.
func UseRedis(config *RedisConfig) error {
	provider, err := NewRedisProvider(config)
	if err != nil {
		return fmt.Errorf("initializing redis provider: %w", err)
	}
	defaultCache = NewCache(provider)
	return nil
}

// UseMemcache configures the default cache with memcache storage.
func UseMemcache(config *MemcacheConfig) error {
	provider, err := NewMemcacheProvider(config)
	if err != nil {
		return fmt.Errorf("initializing memcache provider: %w", err)
	}
	defaultCache = NewCache(provider)
	return nil
}

// GetDefaultCache returns the default cache, installing an in-memory
// provider on first use when nothing was configured.
func GetDefaultCache() *Cache {
	if defaultCache == nil {
		_ = UseMemory(&Options{DefaultTTL: 5 * time.Minute, MaxEntries: 10000})
	}
	return defaultCache
}

// SetDefaultCache overrides the default cache. Mostly useful in tests.
func SetDefaultCache(cache *Cache) {
	defaultCache = cache
}

// Close closes the default cache if one was configured.
func Close() error {
	if defaultCache != nil {
		return defaultCache.Close()
	}
	return nil
}
