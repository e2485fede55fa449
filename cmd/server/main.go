package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brojonat/floorlink/service/config"
	"github.com/brojonat/floorlink/service/marketplace"
	"github.com/brojonat/floorlink/service/metrics"
	"github.com/brojonat/floorlink/service/server"
	"github.com/brojonat/floorlink/service/solana"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	// Setup structured logging
	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting server",
		"addr", cfg.ServerAddr,
		"log_level", cfg.LogLevel,
	)

	// Prometheus collectors, shared by every component
	m := metrics.NewMetrics(nil)

	// Marketplace data-service client with retry and short-TTL listing cache
	market := marketplace.NewHTTPClient(cfg.MarketplaceAPIURL, marketplace.Options{
		APIKey:         cfg.MarketplaceAPIKey,
		CacheTTL:       cfg.ListingCacheTTL,
		RetryMax:       2,
		RequestTimeout: cfg.RequestTimeout,
	}, m, logger)
	logger.Info("initialized marketplace client", "url", cfg.MarketplaceAPIURL)

	// Solana ledger client, used only for blockhash fetches
	// Note: For premium RPC endpoints, include API key in the URL
	rpcClient := solana.NewRPCClient(cfg.SolanaRPCURL)
	ledger := solana.NewClient(rpcClient, cfg.SolanaRPCURL, m, logger)
	logger.Info("initialized solana RPC client", "url", cfg.SolanaRPCURL)

	// Initialize HTTP server
	httpServer := server.New(cfg.ServerAddr, cfg, market, ledger, m, logger)

	// Start HTTP server in background
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("server shutdown complete")
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
