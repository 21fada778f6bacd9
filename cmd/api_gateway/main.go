package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/transactionflow-billing/internal/api_gateway"
	"github.com/transactionflow-billing/internal/api_gateway/service"
	"github.com/transactionflow-billing/internal/billing/components"
	"github.com/transactionflow-billing/internal/config"
	"github.com/transactionflow-billing/internal/data/bolt"
	"github.com/transactionflow-billing/internal/data/postgres"
	"github.com/transactionflow-billing/internal/logger"
	"github.com/transactionflow-billing/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize stores with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	archiveDB, err := persistence.NewBoltDB(log, &cfg.Archive, bolt.Buckets...)
	if err != nil {
		log.Error("Failed to open account archive", "error", err)
		postgresDB.Close()
		os.Exit(1)
	}

	// Initialize repositories
	repos := components.Repositories{
		Accounts:    postgres.NewAccountRepository(log, postgresDB),
		Customers:   postgres.NewCustomerRepository(log, postgresDB),
		Transfers:   postgres.NewTransferRepository(log, postgresDB),
		Outbox:      postgres.NewOutboxRepository(log, postgresDB),
		Idempotency: postgres.NewIdempotencyRepository(log, postgresDB),
		Archive:     bolt.NewArchiveRepository(log, archiveDB),
	}

	// Wire the billing engine and the services on top of it
	engine := components.CreateEngine(postgresDB, repos, cfg, log)
	services := api_gateway.Services{
		Accounts:    service.NewAccountService(log, engine.Lifecycle, repos.Accounts, repos.Customers),
		Transfers:   service.NewTransferService(log, engine.Resolver, engine.Executor, repos.Transfers),
		Idempotency: service.NewIdempotencyService(engine.Keys),
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, services, engine.Guard)
	log.Info("REST server initialized", "idempotency_key_format", cfg.Idempotency.KeyFormat)

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence: drain requests before closing the stores they use
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if err = archiveDB.Close(); err != nil {
		log.Error("Error closing account archive", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
