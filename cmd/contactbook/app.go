package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nkiryanov/contactbook/internal/cache"
	"github.com/nkiryanov/contactbook/internal/db"
	"github.com/nkiryanov/contactbook/internal/handlers"
	"github.com/nkiryanov/contactbook/internal/logger"
	"github.com/nkiryanov/contactbook/internal/ratelimit"
	"github.com/nkiryanov/contactbook/internal/repository/postgres"
	"github.com/nkiryanov/contactbook/internal/service/auth"
	"github.com/nkiryanov/contactbook/internal/service/auth/revocation"
	"github.com/nkiryanov/contactbook/internal/service/auth/tokencodec"
	"github.com/nkiryanov/contactbook/internal/service/contacts"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	teardown func()
}

// NewServerApp wires every dependency explicitly: config to logger to
// backends to services to router. No package level state, everything a
// service needs is passed at construction
func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Connect to the shared cache / denylist / rate limit backend
	redisClient, err := db.ConnectRedis(ctx, db.RedisConfig{Addr: c.RedisAddr})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
	}

	// Both backends are connected now, every later error must release them
	closeBackends := func() {
		_ = redisClient.Close()
		pool.Close()
	}

	// Initialize repositories and the shared key-value store
	storage := postgres.NewStorage(pool)
	store := cache.NewRedis(redisClient)

	// Initialize services
	codec, err := tokencodec.New(tokencodec.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		EmailSecret:   c.EmailSecret,
	})
	if err != nil {
		closeBackends()
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	revoked, err := revocation.New(store)
	if err != nil {
		closeBackends()
		return nil, fmt.Errorf("error while creating revocation store. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, codec, revoked, storage.User())
	if err != nil {
		closeBackends()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	contactsService, err := contacts.NewService(
		contacts.Config{WindowDays: c.BirthdayWindowDays},
		storage.Contact(),
		cache.New(store, logger),
	)
	if err != nil {
		closeBackends()
		return nil, fmt.Errorf("error while creating contacts service. Err: %w", err)
	}

	limiter, err := ratelimit.New(
		ratelimit.Config{Max: c.RateLimitMax, Window: c.RateLimitWindow},
		store,
		logger,
	)
	if err != nil {
		closeBackends()
		return nil, fmt.Errorf("error while creating rate limiter. Err: %w", err)
	}

	mux := handlers.NewRouter(authService, contactsService, limiter, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		teardown:   closeBackends,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	if s.teardown != nil {
		defer s.teardown()
	}

	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
