package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Counter is the atomic primitive a key-value cache must offer for
// fixed-window rate limiting.
type Counter interface {
	// Incr adds one to key and (re)sets its TTL to ttl, returning the new
	// value. A missing or expired key starts from zero.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type entry struct {
	value     int64
	expiresAt time.Time
}

// MemoryCache is an in-process key-value cache with per-key expiry.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*entry

	now             func() time.Time
	cleanupInterval time.Duration
	log             *zap.Logger
}

// Option configures a MemoryCache.
type Option func(*MemoryCache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCleanupInterval sets how often Run sweeps expired keys.
func WithCleanupInterval(interval time.Duration) Option {
	return func(c *MemoryCache) {
		c.cleanupInterval = interval
	}
}

// WithLogger sets the logger for the cleanup loop.
func WithLogger(log *zap.Logger) Option {
	return func(c *MemoryCache) {
		if log != nil {
			c.log = log
		}
	}
}

// NewMemory creates an empty cache.
func NewMemory(opts ...Option) *MemoryCache {
	c := &MemoryCache{
		entries:         make(map[string]*entry),
		now:             time.Now,
		cleanupInterval: time.Minute,
		log:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if !ok || c.expired(e, now) {
		e = &entry{}
		c.entries[key] = e
	}

	e.value++
	e.expiresAt = now.Add(ttl)
	return e.value, nil
}

// get returns the value stored under key, if present and not expired.
func (c *MemoryCache) get(key string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e, c.now()) {
		return 0, false
	}
	return e.value, true
}

// size counts stored keys, expired ones included until swept.
func (c *MemoryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Run sweeps expired keys until ctx is cancelled.
func (c *MemoryCache) Run(ctx context.Context) {
	if c.cleanupInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.sweep(); removed > 0 {
				c.log.Debug("removed expired cache keys", zap.Int("removed", removed))
			}
		}
	}
}

func (c *MemoryCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *MemoryCache) expired(e *entry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
