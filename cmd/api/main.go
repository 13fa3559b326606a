// Package main is the entrypoint for the userhub API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/cache"
	"github.com/userhub/userhub/internal/config"
	"github.com/userhub/userhub/internal/handler"
	"github.com/userhub/userhub/internal/mailer"
	"github.com/userhub/userhub/internal/metrics"
	"github.com/userhub/userhub/internal/middleware"
	"github.com/userhub/userhub/internal/repository"
	"github.com/userhub/userhub/internal/server"
	"github.com/userhub/userhub/internal/service"
)

const version = "0.1.0"

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewNoop()
	mailPublisher := mailer.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	verifier := auth.NewVerifier(auth.VerifierConfig{
		Store:               repo,
		Revocations:         cacheClient,
		Tokens:              tokenService,
		Mailer:              mailPublisher,
		Metrics:             metricsRecorder,
		Logger:              logger,
		BcryptCost:          cfg.BcryptCost,
		RequireConfirmation: cfg.RequireConfirmation,
		ResetWindow:         cfg.ResetPasswordWindow,
	})

	userService := service.NewUserService(service.UserServiceConfig{
		Repo:                repo,
		Mailer:              mailPublisher,
		Metrics:             metricsRecorder,
		Logger:              logger,
		BcryptCost:          cfg.BcryptCost,
		RequireConfirmation: cfg.RequireConfirmation,
	})

	// Initialize handlers
	h := handler.New(cfg.ServiceName, version)
	healthHandler := handler.NewHealthHandler(cfg.ServiceName, repo, cacheClient)
	userHandler := handler.NewUserHandler(userService, logger)
	sessionHandler := handler.NewSessionHandler(verifier, userService, cfg.TokenTTL, logger)

	// Setup router
	r := setupRouter(h, healthHandler, userHandler, sessionHandler, verifier, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	userHandler *handler.UserHandler,
	sessionHandler *handler.SessionHandler,
	verifier *auth.Verifier,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Root)

	// Session middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Verifier: verifier,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public authentication endpoints
		r.Post("/auth/sign_in", sessionHandler.SignIn)
		r.Post("/auth", sessionHandler.SignUp)
		r.Get("/auth/confirmation", sessionHandler.Confirm)
		r.Post("/auth/password", sessionHandler.StartPasswordReset)
		r.Patch("/auth/password", sessionHandler.FinishPasswordReset)

		// Everything below requires an authenticated session
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Delete("/auth/sign_out", sessionHandler.SignOut)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/{id}", userHandler.Get)
				r.Post("/", userHandler.Create)
				r.Patch("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})

			r.Get("/me", userHandler.Me)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
