// Command airmon is the broadcast set-popularity monitor daemon.
//
// Usage:
//
//	airmon
//	API_PORT=8080 airmon
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/wvrb/airmon/internal/api"
	"github.com/wvrb/airmon/internal/bindings"
	"github.com/wvrb/airmon/internal/catalog"
	"github.com/wvrb/airmon/internal/config"
	"github.com/wvrb/airmon/internal/db"
	"github.com/wvrb/airmon/internal/monitor"
	"github.com/wvrb/airmon/internal/notify"
	"github.com/wvrb/airmon/internal/spinitron"
	"github.com/wvrb/airmon/internal/status"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration and station policy
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		logger.Error("Failed to load policy", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database (optional; bindings disabled without it)
	var pool *db.Pool
	if cfg.DatabaseURL != "" {
		logger.Info("Connecting to database...")
		if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		pool, err = db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	} else {
		logger.Info("Bindings store disabled (no DATABASE_URL)")
	}
	store := bindings.NewStore(pool)

	// Upstream clients
	meta := spinitron.NewClient(cfg.SpinitronBaseURL, cfg.SpinitronToken, cfg.SpinitronRateLimit, logger)
	cat := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTokenURL,
		cfg.CatalogClientID, cfg.CatalogClientSecret, cfg.CatalogRateLimit, logger)

	// Notification sinks
	alerts := notify.NewDiscordSender(cfg.DiscordBotToken, cfg.DiscordAlertChannelID, logger)
	topics := notify.NewDiscordSender(cfg.DiscordBotToken, cfg.DiscordStatusChannelID, logger)

	// Popularity monitor
	monCfg, err := monitor.ConfigFrom(cfg, policy)
	if err != nil {
		logger.Error("Failed to build monitor config", "error", err)
		os.Exit(1)
	}
	mon, err := monitor.New(monCfg, meta, cat, alerts, logger)
	if err != nil {
		logger.Error("Failed to build monitor", "error", err)
		os.Exit(1)
	}
	go mon.Start(ctx, cfg.MonitorInterval)

	// Now-playing tracker
	tracker := status.New(meta, topics, cfg.AutomationPersonaID, cfg.StationSlug, logger)
	go tracker.Start(ctx, cfg.StatusInterval)

	// Create router
	router := api.NewRouter(pool, mon, tracker, store, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // manual sweeps run on the request
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Airmon",
			"addr", addr,
			"station", cfg.StationSlug,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
