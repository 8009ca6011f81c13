package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskpush/internal/config"
	"taskpush/internal/delivery"
	"taskpush/internal/infra/display"
	"taskpush/internal/infra/queue"

	"github.com/hibiken/asynq"
)

// logDisplayer shows notifications in the worker log when no display
// service is configured.
type logDisplayer struct{}

func (logDisplayer) Show(_ context.Context, action delivery.DisplayAction) error {
	slog.Info("notification",
		"title", action.Title,
		"body", action.Options.Body,
		"tag", action.Options.Tag,
	)
	return nil
}

func (logDisplayer) Close(_ context.Context, n delivery.Notification) error {
	slog.Debug("notification closed", "tag", n.Tag)
	return nil
}

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

	slog.Info("worker configuration loaded")

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	// Displayer (shoutrrr services, or the log)
	var displayer delivery.Displayer = logDisplayer{}
	if len(cfg.Worker.DisplayURLs) > 0 {
		d, err := display.NewShoutrrrDisplayer(cfg.Worker.DisplayURLs, 10*time.Second)
		if err != nil {
			slog.Error("failed to initialize display services", "error", err)
			os.Exit(1)
		}
		displayer = d
		slog.Info("display services initialized", "count", len(cfg.Worker.DisplayURLs))
	}

	// Navigator
	navigator := display.NewBrowserNavigator(cfg.Worker.AppURL, cfg.Worker.OpenBrowser)

	// Delivery Handler
	handler := delivery.NewHandler(displayer, navigator)

	// ==========================================
	// Asynq Server (worker events)
	// ==========================================

	asynqServer := queue.NewServer(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Queue.Concurrency,
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	handler.Register(mux)

	// Start the asynq worker in a goroutine
	go func() {
		slog.Info("worker starting",
			"concurrency", cfg.Queue.Concurrency,
			"redis", cfg.Redis.Address,
			"queue", queue.Name,
		)
		if err := asynqServer.Run(mux); err != nil {
			slog.Error("worker failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// ==========================================
	// Graceful Shutdown
	// ==========================================

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	asynqServer.Shutdown()
	slog.Info("worker exited gracefully")
}
