package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/contactbook/internal/apperrors"
	"github.com/nkiryanov/contactbook/internal/logger"
)

// Cache implements the cache-aside pattern over a Store: check the cache
// first, compute and populate on miss, invalidate explicitly on data change.
//
// The backend is a performance optimization, never a correctness dependency:
// if it errors the value is computed directly and the error is only logged.
type Cache struct {
	store  Store
	logger logger.Logger
}

func New(store Store, l logger.Logger) *Cache {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Cache{
		store:  store,
		logger: l,
	}
}

// Invalidate drops the key unconditionally
// Callers invoke it right after any mutation that may change the cached value
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.store.Del(ctx, key); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// GetOrCompute returns the cached value for key or runs compute and caches
// the result with the given TTL. Values are stored as JSON.
//
// compute must be idempotent: two concurrent misses on the same key may both
// run it and both write the cache. That race is accepted, the last write
// wins and both writers return correct values.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	var value T

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
		// Unreadable entry: treat as miss and let the fresh write repair it
		c.logger.Warn("cache entry is not decodable, recomputing", "key", key)
	case errors.Is(err, apperrors.ErrCacheMiss):
		// expected, compute below
	default:
		c.logger.Warn("cache backend unavailable, computing directly", "key", key, "error", err.Error())
	}

	value, err = compute(ctx)
	if err != nil {
		return value, err
	}

	raw, err = json.Marshal(value)
	if err != nil {
		return value, fmt.Errorf("cache marshal: %w", err)
	}

	if err := c.store.SetEx(ctx, key, raw, ttl); err != nil {
		// Fail open: the computed value is correct even if it can't be cached
		c.logger.Warn("can't store computed value", "key", key, "error", err.Error())
	}

	return value, nil
}
