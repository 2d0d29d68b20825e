package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mhalder/docshare/internal/api/handlers"
	"github.com/mhalder/docshare/internal/api/middleware"
	"github.com/mhalder/docshare/internal/auth"
	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/internal/extraction"
	"github.com/mhalder/docshare/internal/files"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB               *gorm.DB
	Redis            *redis.Client
	Logger           *slog.Logger
	JWTService       *auth.JWTService
	AuthService      *auth.Service
	FileService      *files.Service
	TokenService     *extraction.TokenService
	ExtractionClient *extraction.Client
	AllowedOrigins   []string // CORS allowed origins
	RateLimitReqs    int      // Rate limit requests per window
	RateLimitSecs    int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	userHandler := handlers.NewUserHandler(cfg.DB)
	fileHandler := handlers.NewFileHandler(cfg.FileService)
	profileHandler := handlers.NewProfileHandler(cfg.DB)
	extractionHandler := handlers.NewExtractionHandler(cfg.TokenService, cfg.ExtractionClient)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Public file endpoints: the blob locator and the share token are
		// the capabilities, no session required.
		r.Get("/files/download/{blobName}", fileHandler.Download)
		r.Get("/files/shared/{token}", fileHandler.Shared)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService, cfg.AuthService))

			r.Get("/auth/validate-token", authHandler.ValidateToken)
			r.Get("/me", authHandler.Me)

			// File endpoints
			r.Route("/files", func(r chi.Router) {
				r.Post("/upload", fileHandler.Upload)
				r.Get("/my-files", fileHandler.ListMine)
				r.Get("/team-files", fileHandler.ListTeam)
				r.Post("/{id}/share", fileHandler.Share)
				r.Delete("/{id}", fileHandler.Delete)

				r.With(middleware.RequireRole(models.RoleAdmin)).
					Post("/{id}/share-team", fileHandler.ShareTeam)
			})

			// Environment profile endpoints
			r.Route("/environment-profiles", func(r chi.Router) {
				r.Get("/", profileHandler.List)
				r.Post("/", profileHandler.Create)
				r.Put("/{id}", profileHandler.Update)
				r.Delete("/{id}", profileHandler.Delete)
			})

			// Extraction job endpoints
			r.Route("/extraction", func(r chi.Router) {
				r.Get("/jobs", extractionHandler.ListJobs)
				r.Get("/jobs/{jobId}", extractionHandler.GetJob)
			})

			// Admin user management
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	return &Router{r}
}
