package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/reviveshine/lib2usexpress/internal/db"
	"github.com/reviveshine/lib2usexpress/internal/handlers"
	"github.com/reviveshine/lib2usexpress/internal/handlers/middleware"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/ratelimit"
	"github.com/reviveshine/lib2usexpress/internal/repository/postgres"
	"github.com/reviveshine/lib2usexpress/internal/service/auth"
	"github.com/reviveshine/lib2usexpress/internal/service/auth/tokenmanager"
	"github.com/reviveshine/lib2usexpress/internal/service/chat"
	"github.com/reviveshine/lib2usexpress/internal/service/presence"
	"github.com/reviveshine/lib2usexpress/internal/service/product"
	"github.com/reviveshine/lib2usexpress/internal/service/shipping"
	"github.com/reviveshine/lib2usexpress/internal/service/user"
)

const authRateWindow = time.Minute

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey}, storage.Refresh(), l)
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(storage, l)
	presenceService := presence.NewService(storage.Presence())
	productService := product.NewService(storage.Product())
	chatService := chat.NewService(storage.Chat())

	carriers, err := c.ParseCarriers()
	if err != nil {
		return nil, fmt.Errorf("error while parsing carriers option. Err: %w", err)
	}
	shippingService := shipping.NewAggregator(carriers, l)

	// Rate limiter for auth endpoints: redis when configured, in-memory otherwise
	var limiter middleware.Limiter
	if c.RedisURL != "" {
		redisLimiter, err := ratelimit.NewRedisLimiter(ctx, c.RedisURL, c.AuthRateLimit, authRateWindow)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}
		limiter = redisLimiter
	} else {
		limiter = ratelimit.NewMemoryLimiter(c.AuthRateLimit, authRateWindow)
	}

	mux := handlers.NewRouter(handlers.Services{
		Auth:        authService,
		Verifier:    authService,
		User:        userService,
		Admin:       userService,
		Presence:    presenceService,
		Product:     productService,
		Chat:        chatService,
		Shipping:    shippingService,
		AuthLimiter: limiter,
		Health:      pool.Ping,
	}, l)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
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
