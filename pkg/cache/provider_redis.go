package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProvider stores cache entries in Redis.
type RedisProvider struct {
	client *redis.Client
	opts   Options

	hits   atomic.Int64
	misses atomic.Int64
}

// RedisConfig carries the Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
	Options  *Options
}

// NewRedisProvider connects to Redis and verifies the connection.
func NewRedisProvider(config *RedisConfig) (*RedisProvider, error) {
	if config == nil {
		config = &RedisConfig{}
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 6379
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}
	opts := Options{DefaultTTL: 5 * time.Minute}
	if config.Options != nil {
		opts = *config.Options
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisProvider{client: client, opts: opts}, nil
}

func (p *RedisProvider) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		// Connectivity failures degrade to misses.
		p.misses.Add(1)
		return nil, false
	}
	p.hits.Add(1)
	return val, true
}

func (p *RedisProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = p.opts.DefaultTTL
	}
	return p.client.Set(ctx, key, value, ttl).Err()
}

func (p *RedisProvider) Delete(ctx context.Context, key string) error {
	return p.client.Del(ctx, key).Err()
}

func (p *RedisProvider) Clear(ctx context.Context) error {
	return p.client.FlushDB(ctx).Err()
}

func (p *RedisProvider) Exists(ctx context.Context, key string) bool {
	n, err := p.client.Exists(ctx, key).Result()
	return err == nil && n > 0
}

func (p *RedisProvider) Close() error {
	return p.client.Close()
}

func (p *RedisProvider) Stats(ctx context.Context) (*Stats, error) {
	keys, err := p.client.DBSize(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("redis dbsize: %w", err)
	}
	return &Stats{
		Hits:         p.hits.Load(),
		Misses:       p.misses.Load(),
		Keys:         keys,
		ProviderType: "redis",
	}, nil
}
