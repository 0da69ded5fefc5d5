package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/contactbook/internal/cache"
	"github.com/nkiryanov/contactbook/internal/logger"
)

const (
	defaultMax    = 60
	defaultWindow = time.Minute
	keyPrefix     = "ratelimit:"
)

type Config struct {
	// Max requests allowed per key within one window
	// If not set than default is used
	Max int64

	// Fixed window size
	// If not set than default is used
	Window time.Duration
}

// Limiter counts requests per key in fixed windows backed by a shared store.
// The count lives in the store, so every process serving the same logical
// service agrees on it. The window resets itself through key expiry.
type Limiter struct {
	store  cache.Store
	logger logger.Logger
	max    int64
	window time.Duration
}

func New(cfg Config, store cache.Store, l logger.Logger) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("store must not be nil")
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	if cfg.Max == 0 {
		cfg.Max = defaultMax
	}
	if cfg.Window == 0 {
		cfg.Window = defaultWindow
	}

	return &Limiter{
		store:  store,
		logger: l,
		max:    cfg.Max,
		window: cfg.Window,
	}, nil
}

// Allow reports whether one more request for key fits into the current
// window. The check is a single atomic increment-and-compare against the
// store, so two concurrent requests can never both take the last slot.
//
// A backend failure allows the request: the limiter protects capacity and
// must not turn an outage of its own backend into a denial of service.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	count, err := l.store.IncrEx(ctx, l.key(key), l.window)
	if err != nil {
		l.logger.Warn("rate limit backend failed, allowing request", "key", key, "error", err.Error())
		return true
	}

	return count <= l.max
}

// Window returns the configured window size
// Callers use it to suggest a retry delay when the limit is hit
func (l *Limiter) Window() time.Duration {
	return l.window
}

func (l *Limiter) key(key string) string {
	return fmt.Sprintf("%s%s", keyPrefix, key)
}
