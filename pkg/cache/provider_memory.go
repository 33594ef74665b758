package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryProvider is an in-process Provider with TTL expiry and a soft
// entry cap. Expired entries are reaped by a background janitor.
type MemoryProvider struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	opts    Options

	hits   atomic.Int64
	misses atomic.Int64
	done   chan struct{}
	once   sync.Once
}

// NewMemoryProvider creates an in-memory provider and starts its janitor.
func NewMemoryProvider(opts *Options) *MemoryProvider {
	o := Options{DefaultTTL: 5 * time.Minute}
	if opts != nil {
		o = *opts
	}
	p := &MemoryProvider{
		entries: make(map[string]*memoryEntry),
		opts:    o,
		done:    make(chan struct{}),
	}
	go p.janitor()
	return p
}

func (p *MemoryProvider) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case now := <-ticker.C:
			p.mu.Lock()
			for key, entry := range p.entries {
				if entry.expired(now) {
					delete(p.entries, key)
				}
			}
			p.mu.Unlock()
		}
	}
}

func (p *MemoryProvider) Get(_ context.Context, key string) ([]byte, bool) {
	p.mu.RLock()
	entry, ok := p.entries[key]
	p.mu.RUnlock()
	if !ok || entry.expired(time.Now()) {
		p.misses.Add(1)
		return nil, false
	}
	p.hits.Add(1)
	return entry.value, true
}

func (p *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = p.opts.DefaultTTL
	}
	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	p.mu.Lock()
	if p.opts.MaxEntries > 0 && len(p.entries) >= p.opts.MaxEntries {
		// Over the cap, drop expired entries first, then arbitrary ones.
		// Cached values are cheap to recompute, exact eviction order is
		// not worth an LRU list here.
		now := time.Now()
		for k, e := range p.entries {
			if e.expired(now) {
				delete(p.entries, k)
			}
		}
		for k := range p.entries {
			if len(p.entries) < p.opts.MaxEntries {
				break
			}
			delete(p.entries, k)
		}
	}
	p.entries[key] = entry
	p.mu.Unlock()
	return nil
}

func (p *MemoryProvider) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.entries, key)
	p.mu.Unlock()
	return nil
}

func (p *MemoryProvider) Clear(_ context.Context) error {
	p.mu.Lock()
	p.entries = make(map[string]*memoryEntry)
	p.mu.Unlock()
	return nil
}

func (p *MemoryProvider) Exists(ctx context.Context, key string) bool {
	_, ok := p.Get(ctx, key)
	return ok
}

func (p *MemoryProvider) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *MemoryProvider) Stats(_ context.Context) (*Stats, error) {
	p.mu.RLock()
	keys := int64(len(p.entries))
	p.mu.RUnlock()
	return &Stats{
		Hits:         p.hits.Load(),
		Misses:       p.misses.Load(),
		Keys:         keys,
		ProviderType: "memory",
	}, nil
}
