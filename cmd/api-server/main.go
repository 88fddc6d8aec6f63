package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"yamdb/internal/auth"
	"yamdb/internal/config"
	"yamdb/internal/database"
	"yamdb/internal/http-api/handler"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"
	"yamdb/internal/logging"
	"yamdb/internal/mail"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api server exited", "error", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always executes.
func run() error {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Sentry is optional
	sentryEnabled := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.GoEnv,
		}); err != nil {
			logger.Error("sentry init failed", "error", err)
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Connect to the database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db, logger); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("could not get sql.DB: %w", err)
	}

	mailer, err := mail.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("mailer setup failed: %w", err)
	}

	limiter, closeLimiter := newAuthLimiter(cfg, logger)
	defer closeLimiter()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	router, err := handler.NewRouter(handler.Services{
		Auth:       service.NewAuthService(userRepo, mailer, tokens, cfg.MailFrom),
		Users:      service.NewUserService(userRepo),
		Categories: service.NewCategoryService(categoryRepo),
		Genres:     service.NewGenreService(genreRepo),
		Titles:     service.NewTitleService(titleRepo, categoryRepo, genreRepo),
		Reviews:    service.NewReviewService(reviewRepo, titleRepo),
		Comments:   service.NewCommentService(commentRepo, reviewRepo),
	}, handler.RouterOptions{
		Logger:      logger,
		AuthLimiter: limiter,
		DB:          sqlDB,
		Sentry:      sentryEnabled,
	})
	if err != nil {
		return fmt.Errorf("router setup failed: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("server starting", "addr", srv.Addr, "env", cfg.GoEnv)
	return serve(srv, quit, logger)
}

// serve runs srv until it fails or quit fires, then shuts it down.
func serve(srv *http.Server, quit <-chan os.Signal, logger *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

// newAuthLimiter prefers the shared Redis bucket and falls back to an
// in-process one when REDIS_URL is unset or unusable.
func newAuthLimiter(cfg *config.Config, logger *slog.Logger) (middleware.Limiter, func()) {
	noop := func() {}
	if !cfg.RateLimitEnabled {
		return nil, noop
	}
	if cfg.RedisURL == "" {
		return middleware.NewLocalLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), noop
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, using in-process rate limiter", "error", err)
		return middleware.NewLocalLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), noop
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// the limiter fails open per request, starting is still fine
		logger.Warn("redis unreachable at startup", "error", err)
	} else {
		logger.Info("Connected to Redis successfully")
	}

	return middleware.NewRedisLimiter(rdb, cfg.RateLimitRPS, cfg.RateLimitBurst), func() { _ = rdb.Close() }
}
