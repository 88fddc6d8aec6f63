package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/service"
)

// Pinger reports whether the database is reachable; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.CategoryService
	Genres     service.GenreService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService
}

type RouterOptions struct {
	Logger *slog.Logger
	// AuthLimiter throttles /auth; nil disables rate limiting.
	AuthLimiter middleware.Limiter
	DB          Pinger
	// Sentry installs the panic/error reporting middleware.
	Sentry bool
}

// NewRouter builds the gin engine with every route under /api/v1.
func NewRouter(svc Services, opts RouterOptions) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))

	r.GET("/healthz", healthz(opts.DB))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(svc.Auth))

	authGroup := api.Group("/auth")
	if opts.AuthLimiter != nil {
		authGroup.Use(middleware.RateLimit(opts.AuthLimiter, logger))
	}
	NewAuthHandler(svc.Auth).RegisterRoutes(authGroup)

	NewUserHandler(svc.Users).RegisterRoutes(api)
	NewCategoryHandler(svc.Categories).RegisterRoutes(api)
	NewGenreHandler(svc.Genres).RegisterRoutes(api)
	NewTitleHandler(svc.Titles).RegisterRoutes(api)
	NewReviewHandler(svc.Reviews).RegisterRoutes(api)
	NewCommentHandler(svc.Comments).RegisterRoutes(api)

	return r, nil
}

func healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
