package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SettledOrderCache implements ports.SettledOrderCache. It is the fast-path
// dedupe for replayed webhook deliveries; the ledger's unique external
// reference remains the authoritative check, so losing this cache is safe.
type SettledOrderCache struct {
	client *goredis.Client
	prefix string
}

// NewSettledOrderCache creates a Redis-backed settled-order cache.
func NewSettledOrderCache(client *goredis.Client) *SettledOrderCache {
	return &SettledOrderCache{
		client: client,
		prefix: "settled:",
	}
}

// IsSettled reports whether ref was recently marked settled.
func (c *SettledOrderCache) IsSettled(ctx context.Context, ref string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+ref).Result()
	if err != nil {
		return false, fmt.Errorf("redis settled check: %w", err)
	}
	return n > 0, nil
}

// MarkSettled records ref as settled with a TTL.
func (c *SettledOrderCache) MarkSettled(ctx context.Context, ref string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+ref, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis settled mark: %w", err)
	}
	return nil
}
