package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/propstack/buyer-leads/internal/api/router"
	"github.com/propstack/buyer-leads/internal/buyers"
	appconfig "github.com/propstack/buyer-leads/internal/config"
	httpmiddleware "github.com/propstack/buyer-leads/internal/http/middleware"
	"github.com/propstack/buyer-leads/internal/observability/metrics"
	"github.com/propstack/buyer-leads/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting buyer-leads API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Store: Postgres when configured, in-memory otherwise so the
	// server still runs in local development without a database.
	var store buyers.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create connection pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		store = buyers.NewPostgresStore(pool)
		logger.Info("using postgres store")
	} else {
		store = buyers.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	// Rate limiter: shared counters via Redis when configured,
	// per-process otherwise.
	var limiter httpmiddleware.Limiter
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", "error", err)
			os.Exit(1)
		}
		limiter = httpmiddleware.NewRedisLimiter(client, cfg.RateLimitRequests, cfg.RateLimitWindow)
		logger.Info("using redis rate limiter", "addr", cfg.RedisAddr)
	} else {
		limiter = httpmiddleware.NewMemoryLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		logger.Info("using in-memory rate limiter")
	}

	registry := prometheus.NewRegistry()
	leadMetrics := metrics.NewLeadMetrics(registry)

	svc := buyers.NewService(store, logger, cfg.HistoryPageSize, cfg.ImportMaxRows)
	handler := buyers.NewHandler(svc, logger, leadMetrics)

	r := router.New(&router.Config{
		Logger:             logger,
		BuyersHandler:      handler,
		AuthSecret:         cfg.AuthJWTSecret,
		RateLimiter:        limiter,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
