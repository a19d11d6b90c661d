package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizza-desk/internal/config"
	"pizza-desk/internal/database"
	"pizza-desk/internal/handler"
	"pizza-desk/internal/router"
	"pizza-desk/internal/session"
	"pizza-desk/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting pizza-desk API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the order store and change feed. Missing database
	// credentials are a valid state: the dashboard starts degraded and
	// serves a setup notice instead of order data.
	var (
		orderStore store.Store
		changeFeed store.ChangeFeed
	)

	if cfg.StoreConfigured() {
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer pool.Close()

		orderStore = store.NewPostgresStore(pool, logger)

		switch cfg.Feed.Backend {
		case config.FeedPostgres:
			changeFeed = store.NewPostgresFeed(pool, logger)
		case config.FeedRabbitMQ:
			changeFeed = store.NewRabbitFeed(cfg.Feed.RabbitMQURL, logger)
		case config.FeedNone:
			logger.Info().Msg("change feed disabled")
		}
	} else {
		orderStore = store.NewUnconfigured()
		logger.Warn().Msg("order store not configured, starting in degraded mode")
	}

	// Initialize the session controller
	sess := session.New(orderStore, changeFeed, logger)
	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.Close()

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(sess, logger)
	dashboardHandler := handler.NewDashboardHandler(sess, logger)

	// Initialize router
	mux := router.New(orderHandler, dashboardHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the event stream must stay open
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
