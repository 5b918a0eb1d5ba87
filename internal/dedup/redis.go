package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces dedup entries in the shared Redis instance.
	keyPrefix = "eventflow:dedup:"

	// DefaultTTL bounds the dedup window. Business identifiers are assumed
	// replayed, if at all, within a day, so the TTL keeps state bounded
	// instead of growing forever.
	DefaultTTL = 24 * time.Hour
)

// RedisDeduplicator implements Deduplicator over a shared Redis instance.
type RedisDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a RedisDeduplicator. A non-positive ttl falls back to
// DefaultTTL.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisDeduplicator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisDeduplicator{client: client, ttl: ttl}
}

func (d *RedisDeduplicator) IsDuplicate(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	return n > 0, nil
}

func (d *RedisDeduplicator) MarkSeen(ctx context.Context, eventID string) error {
	if err := d.client.Set(ctx, keyPrefix+eventID, "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("dedup mark seen: %w", err)
	}
	return nil
}

func (d *RedisDeduplicator) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("dedup store ping: %w", err)
	}
	return nil
}
