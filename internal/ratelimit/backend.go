package ratelimit

import (
	"clickify/internal/cache"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Namespace prefixes every counter key.
const Namespace = "clickify:ratelimit"

// Backend counts hits in a fixed window. Hit records one hit for key and
// returns the number of hits seen in the current window, this one included.
type Backend interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
	Name() string
}

// Key builds the counter key for an operation and client.
func Key(operation, clientIP string) string {
	return Namespace + ":" + operation + ":" + clientIP
}

// incrWindow increments the counter and starts its expiry on the first hit
// only, so the window is fixed from the first request.
var incrWindow = redis.NewScript(`
local hits = redis.call('INCR', KEYS[1])
if hits == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return hits
`)

// RedisBackend keeps counters in Redis and is shared by every instance.
type RedisBackend struct {
	client redis.Scripter
}

func NewRedisBackend(client redis.Scripter) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	hits, err := incrWindow.Run(ctx, b.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return hits, nil
}

func (b *RedisBackend) Name() string { return "redis" }

// LocalBackend counts hits in a key-value cache. Every hit resets the
// expiry to the full window, so the window is fixed from the last hit.
type LocalBackend struct {
	counter cache.Counter
}

func NewLocalBackend(counter cache.Counter) *LocalBackend {
	return &LocalBackend{counter: counter}
}

func (b *LocalBackend) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	return b.counter.Incr(ctx, key, window)
}

func (b *LocalBackend) Name() string { return "local" }

// NewBackend picks the Redis backend when client is set and answers a ping,
// and the local backend over fallback otherwise. The choice is made once.
func NewBackend(ctx context.Context, client *redis.Client, fallback cache.Counter, log *zap.Logger) Backend {
	if client != nil {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, using local rate limit counters", zap.Error(err))
		} else {
			log.Info("using redis rate limit counters")
			return NewRedisBackend(client)
		}
	}
	return NewLocalBackend(fallback)
}
