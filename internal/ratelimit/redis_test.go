package ratelimit

import (
	"clickify/internal/cache"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisBackend_Integration(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test: Redis not available (%v)", err)
	}

	backend := NewBackend(ctx, client, cache.NewMemory(), zap.NewNop())
	require.Equal(t, "redis", backend.Name())

	t.Run("counts within window", func(t *testing.T) {
		key := Key("it_test", fmt.Sprintf("%d", time.Now().UnixNano()))
		t.Cleanup(func() { client.Del(context.Background(), key) })

		for want := int64(1); want <= 3; want++ {
			hits, err := backend.Hit(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, hits)
		}

		ttl, err := client.PTTL(ctx, key).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("window expires", func(t *testing.T) {
		key := Key("it_test", fmt.Sprintf("exp_%d", time.Now().UnixNano()))

		l := New(Config{Enabled: true, Rate: "1/s"}, backend, zap.NewNop())
		assert.True(t, l.CheckAndRecord(ctx, "it_test", key))
		assert.False(t, l.CheckAndRecord(ctx, "it_test", key))

		time.Sleep(1100 * time.Millisecond)
		assert.True(t, l.CheckAndRecord(ctx, "it_test", key))
	})
}

func TestNewBackend_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	backend := NewBackend(context.Background(), client, cache.NewMemory(), zap.NewNop())
	assert.Equal(t, "local", backend.Name())
}
