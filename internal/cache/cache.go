// Package cache provides a best-effort read-through cache over a volatile
// store. Every operation degrades to a no-op when the store is unreachable:
// caching must never turn a working request into a failing one.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

// Per-endpoint-class TTLs.
const (
	ListTTL    = 5 * time.Minute
	EntityTTL  = time.Hour
	DefaultTTL = time.Hour
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of cache hits",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of cache misses",
	})
	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_errors_total",
		Help: "Total number of cache operation errors, by operation",
	}, []string{"op"})
)

// Cache is the facade over the volatile store. A nil store means caching is
// disabled for the process lifetime; all operations then short-circuit.
type Cache struct {
	store  Store
	logger *slog.Logger
	group  singleflight.Group
}

// New creates a cache facade. Pass a nil store to run with caching disabled.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{store: store, logger: logger}
}

// Disabled creates a facade that never caches. Useful when the volatile store
// could not be reached at startup.
func Disabled(logger *slog.Logger) *Cache {
	return New(nil, logger)
}

// Enabled reports whether a backing store is attached.
func (c *Cache) Enabled() bool {
	return c.store != nil
}

// Get looks up key and unmarshals the stored JSON into dest. Returns false on
// miss, on malformed stored data, on store errors, and when caching is
// disabled. It never returns an error: a broken cache is just a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c.store == nil {
		return false
	}

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			cacheErrors.WithLabelValues("get").Inc()
			c.logger.WarnContext(ctx, "cache get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		cacheMisses.Inc()
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Malformed cached data is treated as a miss, never propagated.
		cacheErrors.WithLabelValues("decode").Inc()
		c.logger.WarnContext(ctx, "cache entry malformed, treating as miss",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		cacheMisses.Inc()
		return false
	}

	cacheHits.Inc()
	return true
}

// Set stores value as JSON under key with the given TTL. Returns false on any
// failure; callers must treat caching as optional.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if c.store == nil {
		return false
	}

	raw, err := json.Marshal(value)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		c.logger.WarnContext(ctx, "cache set: marshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}

	if err := c.store.Set(ctx, key, string(raw), ttl); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		c.logger.WarnContext(ctx, "cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}

	return true
}

// Delete removes a single key. Best-effort, same contract as Set.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	if c.store == nil {
		return false
	}

	if _, err := c.store.Del(ctx, key); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		c.logger.WarnContext(ctx, "cache delete failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// DeletePattern removes every key matching the glob pattern in one batch call
// and returns the number deleted. This is the invalidation primitive: write
// paths call it with a prefix wildcard (e.g. "products:*") after a mutation.
// TTL expiry remains the consistency guarantee; invalidation is advisory.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) int {
	if c.store == nil {
		return 0
	}

	keys, err := c.store.Keys(ctx, pattern)
	if err != nil {
		cacheErrors.WithLabelValues("delete_pattern").Inc()
		c.logger.WarnContext(ctx, "cache pattern scan failed",
			slog.String("pattern", pattern),
			slog.String("error", err.Error()),
		)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	n, err := c.store.Del(ctx, keys...)
	if err != nil {
		cacheErrors.WithLabelValues("delete_pattern").Inc()
		c.logger.WarnContext(ctx, "cache pattern delete failed",
			slog.String("pattern", pattern),
			slog.String("error", err.Error()),
		)
		return 0
	}

	c.logger.DebugContext(ctx, "cache invalidated",
		slog.String("pattern", pattern),
		slog.Int64("deleted", n),
	)
	return int(n)
}

// WithCache returns the cached value for key, or runs producer on a miss and
// stores its result before returning it. Concurrent misses for the same key
// are collapsed into a single producer execution; the other callers receive
// the same result. Producer errors are returned unwrapped and nothing is
// cached for them.
func WithCache[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have populated the key while this caller
		// was queued behind it.
		var again T
		if c.Get(ctx, key, &again) {
			return again, nil
		}

		val, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, val, ttl)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}
