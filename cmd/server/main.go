package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/mhalder/docshare/internal/api"
	"github.com/mhalder/docshare/internal/auth"
	"github.com/mhalder/docshare/internal/database"
	"github.com/mhalder/docshare/internal/extraction"
	"github.com/mhalder/docshare/internal/files"
	"github.com/mhalder/docshare/internal/storage"
	"github.com/mhalder/docshare/pkg/config"
	"github.com/mhalder/docshare/pkg/queue"
	"github.com/mhalder/docshare/pkg/util"
	"github.com/redis/go-redis/v9"
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

	logger.Info("starting docshare server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Redis; the server degrades to synchronous-only operation
	// (no extraction jobs) when Redis is unavailable.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, extraction jobs disabled", "error", err)
		redisClient = nil
	}

	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
	}

	// Select the blob backend
	var blobs storage.BlobStore
	switch cfg.Storage.Backend {
	case "s3":
		s3Store, err := storage.NewS3Store(context.Background(), &cfg.Storage)
		if err != nil {
			logger.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		blobs = s3Store
		logger.Info("using S3 blob storage", "bucket", cfg.Storage.S3Bucket)
	default:
		blobs = storage.NewMemoryStore()
		logger.Warn("using in-memory blob storage, uploads will be lost on restart")
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)
	fileService := files.NewService(db, blobs, cfg, logger, asynqClient)
	tokenService := extraction.NewTokenService(db, &cfg.Extraction, logger)
	extractionClient := extraction.NewClient(&cfg.Extraction)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:               db,
		Redis:            redisClient,
		Logger:           logger,
		JWTService:       jwtService,
		AuthService:      authService,
		FileService:      fileService,
		TokenService:     tokenService,
		ExtractionClient: extractionClient,
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		RateLimitReqs:    cfg.RateLimit.Requests,
		RateLimitSecs:    cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
