package handler

import (
	"errors"
	"log/slog"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/mail"
)

// respondError writes the status and body for err. Unclassified errors are
// logged, reported to Sentry and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	if ve, ok := apperror.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
		return
	}

	switch {
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperror.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperror.ErrUnauthenticated.Error()})
	case errors.Is(err, apperror.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": apperror.ErrForbidden.Error()})
	case errors.Is(err, mail.ErrDelivery):
		_ = c.Error(err)
		slog.Error("mail delivery failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": mail.ErrDelivery.Error()})
	default:
		_ = c.Error(err)
		slog.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON binds the body and answers 400 with per-field messages on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": dto.BindingErrors(err)})
		return false
	}
	return true
}
