package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow-systems/eventflow-ingest/internal/dedup"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisDeduplicator(t *testing.T) {
	mr, client := setupTestRedis(t)
	d := dedup.NewRedis(client, time.Hour)
	ctx := context.Background()

	t.Run("unseen id is not a duplicate", func(t *testing.T) {
		dup, err := d.IsDuplicate(ctx, "evt-1")
		require.NoError(t, err)
		assert.False(t, dup)
	})

	t.Run("seen id is a duplicate", func(t *testing.T) {
		require.NoError(t, d.MarkSeen(ctx, "evt-1"))

		dup, err := d.IsDuplicate(ctx, "evt-1")
		require.NoError(t, err)
		assert.True(t, dup)
	})

	t.Run("entries carry the window TTL", func(t *testing.T) {
		require.NoError(t, d.MarkSeen(ctx, "evt-2"))
		assert.Equal(t, time.Hour, mr.TTL("eventflow:dedup:evt-2"))
	})

	t.Run("mark seen is last-write-wins", func(t *testing.T) {
		require.NoError(t, d.MarkSeen(ctx, "evt-3"))
		mr.FastForward(30 * time.Minute)
		require.NoError(t, d.MarkSeen(ctx, "evt-3"))
		assert.Equal(t, time.Hour, mr.TTL("eventflow:dedup:evt-3"))
	})

	t.Run("expired entry is forgotten", func(t *testing.T) {
		require.NoError(t, d.MarkSeen(ctx, "evt-4"))
		mr.FastForward(2 * time.Hour)

		dup, err := d.IsDuplicate(ctx, "evt-4")
		require.NoError(t, err)
		assert.False(t, dup)
	})

	t.Run("ping succeeds against live store", func(t *testing.T) {
		assert.NoError(t, d.Ping(ctx))
	})
}

func TestRedisDeduplicator_StoreDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	d := dedup.NewRedis(client, time.Hour)
	ctx := context.Background()

	mr.Close()

	_, err := d.IsDuplicate(ctx, "evt-1")
	assert.Error(t, err)
	assert.Error(t, d.MarkSeen(ctx, "evt-1"))
	assert.Error(t, d.Ping(ctx))
}

func TestNewRedis_DefaultTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	d := dedup.NewRedis(client, 0)
	ctx := context.Background()

	require.NoError(t, d.MarkSeen(ctx, "evt-1"))
	assert.Equal(t, dedup.DefaultTTL, mr.TTL("eventflow:dedup:evt-1"))
}
