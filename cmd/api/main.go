package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quickbasket/marketplace-ledger/internal/api"
	"github.com/quickbasket/marketplace-ledger/internal/api/service"
	"github.com/quickbasket/marketplace-ledger/internal/config"
	"github.com/quickbasket/marketplace-ledger/internal/data/mongo"
	"github.com/quickbasket/marketplace-ledger/internal/data/postgres"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
	"github.com/quickbasket/marketplace-ledger/internal/logger"
	"github.com/quickbasket/marketplace-ledger/internal/platform/messaging/producers"
	"github.com/quickbasket/marketplace-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisDB, err := persistence.NewRedisDB(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	// Initialize notification producer for committed mutations
	notificationProducer, err := producers.NewNotificationProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize notification Kafka producer", "error", err)
		os.Exit(1)
	}
	// notificationProducer is nil when no topic is configured; the mutator
	// treats a nil notifier as disabled.

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	rewardRepo := postgres.NewRewardRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	archiveRepo := mongo.NewArchiveRepository(log, mongoDB.Database())

	// Initialize the ledger core
	balanceCache := ledger.NewRedisBalanceCache(log, redisDB.Client(), cfg.Redis.BalanceTTL)
	var notifier ledger.NotificationPublisher
	if notificationProducer != nil {
		notifier = notificationProducer
	}
	mutator := ledger.NewMutator(log, postgresDB, accountRepo, transactionRepo, outboxRepo, balanceCache, notifier)
	queryService := ledger.NewQueryService(log, accountRepo, transactionRepo, balanceCache)

	// Initialize application services
	services := api.Services{
		Wallet:      service.NewWalletService(log, accountRepo, mutator, queryService),
		Loyalty:     service.NewLoyaltyService(log, accountRepo, rewardRepo, mutator, queryService),
		Reward:      service.NewRewardService(log, rewardRepo),
		Transaction: service.NewTransactionService(log, queryService),
		Archive:     service.NewArchiveService(log, archiveRepo),
	}

	// Initialize REST server
	server := api.NewServer(log, cfg, services)
	log.Info("REST server initialized")

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

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if notificationProducer != nil {
		if err = notificationProducer.Close(); err != nil {
			log.Error("Error closing notification Kafka producer", "error", err)
		}
	}

	postgresDB.Close()

	if err = redisDB.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
