package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTTL is used when a caller passes a non-positive TTL.
const DefaultTTL = 5 * time.Minute

// keyNamespace prefixes every key so this subsystem's entries cannot
// collide with unrelated data sharing the same store.
const keyNamespace = "driveshelf:"

// Cache wraps a Store with key namespacing, JSON serialization, and the
// degrade-to-miss policy: read and write failures are logged and treated
// as a miss / no-op, never surfaced. A nil store behaves as always-miss,
// which covers execution environments with no cache backend at all.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Cache over store. defaultTTL <= 0 selects DefaultTTL.
// store may be nil.
func New(store Store, defaultTTL time.Duration, logger *slog.Logger) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{store: store, ttl: defaultTTL, logger: logger}
}

// DefaultTTL returns the cache's configured default TTL.
func (c *Cache) DefaultTTL() time.Duration {
	return c.ttl
}

// Get unmarshals the cached value for key into out. Returns ErrMiss on
// absence, expiry, backend failure, or corrupt data.
func (c *Cache) Get(ctx context.Context, key string, out any) error {
	if c.store == nil {
		return ErrMiss
	}

	data, err := c.store.Get(ctx, keyNamespace+key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn("cache read failed, treating as miss",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}

		return ErrMiss
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("cache entry corrupt, treating as miss",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)

		return ErrMiss
	}

	return nil
}

// Set stores value under key, best-effort. ttl <= 0 selects the default.
// Failures are logged and swallowed — a write failure never blocks the
// read path.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.store == nil {
		return
	}

	if ttl <= 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache value not serializable, skipping store",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)

		return
	}

	if err := c.store.Set(ctx, keyNamespace+key, data, ttl); err != nil {
		c.logger.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Delete removes key, reporting whether an entry existed. Backend
// failure reads as "nothing deleted".
func (c *Cache) Delete(ctx context.Context, key string) bool {
	if c.store == nil {
		return false
	}

	ok, err := c.store.Delete(ctx, keyNamespace+key)
	if err != nil {
		c.logger.Warn("cache delete failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)

		return false
	}

	return ok
}

// WithCache returns the cached value for key on a hit; on a miss it
// calls fetch, stores the result best-effort, and returns it. fetch
// errors are returned unchanged and nothing is stored.
func WithCache[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	if err := c.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	fresh, err := fetch(ctx)
	if err != nil {
		var zero T

		return zero, fmt.Errorf("fetching %s: %w", key, err)
	}

	c.Set(ctx, key, fresh, ttl)

	return fresh, nil
}
