package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheProvider stores cache entries in memcached.
type MemcacheProvider struct {
	client *memcache.Client
	opts   Options

	hits   atomic.Int64
	misses atomic.Int64
}

// MemcacheConfig carries the memcached connection settings.
type MemcacheConfig struct {
	Servers      []string
	MaxIdleConns int
	Timeout      time.Duration
	Options      *Options
}

// NewMemcacheProvider connects to memcached and verifies the connection.
func NewMemcacheProvider(config *MemcacheConfig) (*MemcacheProvider, error) {
	if config == nil {
		config = &MemcacheConfig{}
	}
	if len(config.Servers) == 0 {
		config.Servers = []string{"localhost:11211"}
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 2
	}
	if config.Timeout == 0 {
		config.Timeout = time.Second
	}
	opts := Options{DefaultTTL: 5 * time.Minute}
	if config.Options != nil {
		opts = *config.Options
	}

	client := memcache.New(config.Servers...)
	client.MaxIdleConns = config.MaxIdleConns
	client.Timeout = config.Timeout
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to memcache: %w", err)
	}

	return &MemcacheProvider{client: client, opts: opts}, nil
}

func (p *MemcacheProvider) Get(_ context.Context, key string) ([]byte, bool) {
	item, err := p.client.Get(key)
	if err != nil {
		p.misses.Add(1)
		return nil, false
	}
	p.hits.Add(1)
	return item.Value, true
}

func (p *MemcacheProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = p.opts.DefaultTTL
	}
	return p.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(ttl.Seconds()),
	})
}

func (p *MemcacheProvider) Delete(_ context.Context, key string) error {
	err := p.client.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

func (p *MemcacheProvider) Clear(_ context.Context) error {
	return p.client.FlushAll()
}

func (p *MemcacheProvider) Exists(ctx context.Context, key string) bool {
	_, ok := p.Get(ctx, key)
	return ok
}

func (p *MemcacheProvider) Close() error {
	return p.client.Close()
}

func (p *MemcacheProvider) Stats(_ context.Context) (*Stats, error) {
	// memcached exposes per-server stats over its text protocol only; the
	// client library does not surface them, so Keys stays at zero.
	return &Stats{
		Hits:         p.hits.Load(),
		Misses:       p.misses.Load(),
		ProviderType: "memcache",
	}, nil
}
