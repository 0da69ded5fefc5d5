package cache

import (
	"context"
	"time"
)

// Store is the minimal key-value backend contract the service needs.
// Any store with TTL support and an atomic increment satisfies it.
type Store interface {
	// Get returns the stored bytes for key
	// Must return apperrors.ErrCacheMiss if the key does not exist
	Get(ctx context.Context, key string) ([]byte, error)

	// SetEx stores value under key with the given TTL
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes key unconditionally. Removing a missing key is not an error
	Del(ctx context.Context, key string) error

	// Exists reports whether key is present
	Exists(ctx context.Context, key string) (bool, error)

	// IncrEx atomically increments the counter at key and returns the new
	// value. The TTL is applied when the counter is created, so the key
	// expires at a fixed time no matter how often it is incremented
	IncrEx(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
