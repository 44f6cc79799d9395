package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// initCacheTTL bounds how long a cached checkout session is served
// without consulting the database. Paystack checkout links expire well
// within this window anyway.
const initCacheTTL = 24 * time.Hour

// InitCache implements ports.InitializationCache using Redis. It is the
// best-effort fast path for idempotent initialization retries; the
// database unique constraint remains the source of truth.
type InitCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewInitCache creates a Redis-backed initialization cache.
func NewInitCache(client *goredis.Client) *InitCache {
	return &InitCache{
		client: client,
		prefix: "payment:init:",
		ttl:    initCacheTTL,
	}
}

// Get retrieves a cached checkout session by idempotency key.
// Returns nil, nil if the key does not exist.
func (c *InitCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis init cache get: %w", err)
	}
	return val, nil
}

// Set stores a checkout session in the cache.
func (c *InitCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis init cache set: %w", err)
	}
	return nil
}
