// Package cache provides the TTL response cache placed in front of the
// external keyword/SERP data provider.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/metrics"
)

// Per-kind TTLs. Keyword volume moves slowly; SERP composition moves faster.
const (
	KeywordDataTTL     = 24 * time.Hour
	SerpTTL            = 6 * time.Hour
	RelatedKeywordsTTL = 12 * time.Hour

	defaultSweepInterval = time.Hour
)

// DefaultTTL returns the TTL configured for kind.
func DefaultTTL(kind Kind) time.Duration {
	switch kind {
	case KindKeywordData:
		return KeywordDataTTL
	case KindSerp:
		return SerpTTL
	case KindRelatedKeywords:
		return RelatedKeywordsTTL
	default:
		return time.Hour
	}
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-memory TTL cache safe for concurrent use. Expiry is checked
// on read; the background sweep only bounds memory.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	sweepInterval time.Duration
	nowFunc       func() time.Time

	lifeMu  sync.Mutex
	running bool
	closed  bool
	stop    chan struct{}
	done    chan struct{}
}

// Option configures a Cache.
type Option func(*Cache)

// WithSweepInterval overrides the background sweep interval.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.sweepInterval = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.nowFunc = now
	}
}

// New creates an empty Cache. Call Start to enable the periodic sweep and
// Close on shutdown.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:       make(map[string]entry),
		sweepInterval: defaultSweepInterval,
		nowFunc:       time.Now,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the live value stored under key. An entry whose expiry is at
// or before now is never returned.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.nowFunc().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.nowFunc().Add(ttl)}
	c.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	now := c.nowFunc()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Start launches the periodic sweep. It stops when ctx is done or Close is
// called. Calling Start more than once, or after Close, has no effect.
func (c *Cache) Start(ctx context.Context) {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.running || c.closed {
		return
	}
	c.running = true
	go c.sweepLoop(ctx)
}

func (c *Cache) sweepLoop(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				zap.L().Debug("cache: swept expired entries",
					zap.Int("removed", n),
					zap.Int("remaining", c.Len()),
				)
			}
		}
	}
}

// Close stops the sweep loop and waits for it to exit.
func (c *Cache) Close() {
	c.lifeMu.Lock()
	if c.closed {
		c.lifeMu.Unlock()
		return
	}
	c.closed = true
	running := c.running
	close(c.stop)
	c.lifeMu.Unlock()

	if running {
		<-c.done
	}
}

// GetOrFetch returns the cached value for (kind, params) or calls fetch and
// stores its result for ttl. Failed fetches are never cached. Concurrent misses
// for the same key may each call fetch; the last write wins.
func GetOrFetch[T any](ctx context.Context, c *Cache, kind Kind, params Params, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	key := Key(kind, params)
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			metrics.CacheLookups.WithLabelValues(string(kind), "hit").Inc()
			return typed, nil
		}
	}
	metrics.CacheLookups.WithLabelValues(string(kind), "miss").Inc()

	val, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, val, ttl)
	return val, nil
}
