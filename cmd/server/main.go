package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskpush/internal/config"
	"taskpush/internal/domain/subscription"
	"taskpush/internal/infra/ratelimit"
	"taskpush/internal/infra/store"
	"taskpush/internal/router"
	"taskpush/internal/vapid"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "port", cfg.Server.Port, "mode", cfg.Server.Mode)

	// An empty key only disables the key provider; a bad pair would make
	// every client fail with invalid_key, so it stops startup.
	if cfg.VAPID.PublicKey == "" {
		slog.Warn("vapid public key not configured, key provider will answer 503")
	} else if err := vapid.Validate(vapid.Key{PublicKey: cfg.VAPID.PublicKey, PrivateKey: cfg.VAPID.PrivateKey}); err != nil {
		slog.Error("invalid vapid key pair", "error", err)
		os.Exit(1)
	}

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	// Supabase Store
	subStore, err := store.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		slog.Error("failed to initialize supabase store", "error", err)
		os.Exit(1)
	}
	slog.Info("supabase store initialized")

	// Subscriber Rate Limiter
	subscriberLimiter := ratelimit.NewRedisSubscriberLimiter(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.SubscriberRateLimit.MaxPerHour,
	)
	defer subscriberLimiter.Close()
	slog.Info("subscriber rate limiter initialized", "max_per_hour", cfg.SubscriberRateLimit.MaxPerHour)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := subscription.NewMetrics(registry)
	if err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	// Service
	subscriptionService := subscription.NewService(subStore, subscriberLimiter, cfg.VAPID.PublicKey, metrics)

	// Handler
	subscriptionHandler := subscription.NewHandler(subscriptionService)

	// Router
	r := router.New(cfg, subscriptionHandler, registry)

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Give outstanding requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}
