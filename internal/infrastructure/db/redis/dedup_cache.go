package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/projecthub/pm-system/internal/core/ports"
)

const keyPrefix = "dedup:notification:"

// DedupCache remembers recently sent reminders so repeat sweeps can skip
// the store lookup. Keys expire with the reminder window they cover.
type DedupCache struct {
	client redis.Cmdable
}

var _ ports.DedupCache = (*DedupCache)(nil)

func NewDedupCache(client redis.Cmdable) *DedupCache {
	return &DedupCache{client: client}
}

func (c *DedupCache) Seen(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, cacheKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup cache check: %w", err)
	}
	return n > 0, nil
}

// Mark stores key for ttl. A non-positive ttl is a no-op since the window
// has already closed.
func (c *DedupCache) Mark(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, cacheKey(key), "1", ttl).Err(); err != nil {
		return fmt.Errorf("dedup cache mark: %w", err)
	}
	return nil
}

func cacheKey(key string) string {
	return keyPrefix + key
}
