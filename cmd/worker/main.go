package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/mhalder/docshare/internal/database"
	"github.com/mhalder/docshare/internal/extraction"
	"github.com/mhalder/docshare/internal/storage"
	"github.com/mhalder/docshare/internal/tasks"
	"github.com/mhalder/docshare/pkg/config"
	"github.com/mhalder/docshare/pkg/queue"
	"github.com/mhalder/docshare/pkg/util"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting docshare worker")

	if !cfg.Extraction.Enabled() {
		logger.Error("extraction integration is not configured, worker has nothing to do")
		os.Exit(1)
	}

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// The worker must read the same blobs the server writes.
	var blobs storage.BlobStore
	switch cfg.Storage.Backend {
	case "s3":
		s3Store, err := storage.NewS3Store(context.Background(), &cfg.Storage)
		if err != nil {
			logger.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		blobs = s3Store
	default:
		logger.Error("worker requires a shared blob backend, got", "backend", cfg.Storage.Backend)
		os.Exit(1)
	}

	tokenService := extraction.NewTokenService(db, &cfg.Extraction, logger)
	extractionClient := extraction.NewClient(&cfg.Extraction)

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10)

	// Create task handler
	handler := tasks.NewHandler(db, blobs, tokenService, extractionClient, logger)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	// Wait for context cancellation
	<-ctx.Done()

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
