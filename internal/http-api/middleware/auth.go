package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/service"
)

const actorKey = "actor"

// AuthMiddleware resolves the bearer token into a policy.Actor for handlers.
// Requests without an Authorization header continue as anonymous; a header
// that is present but unusable is rejected with 401.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(actorKey, policy.Anonymous())
			c.Next()
			return
		}

		// format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		actor, err := authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, apperror.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(actorKey, actor)
		c.Set("userID", actor.UserID)
		c.Next()
	}
}

// ActorFrom returns the actor stored by AuthMiddleware, or an anonymous one.
func ActorFrom(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous()
}

// RequireAuthenticated rejects anonymous actors before the handler runs.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.RequireAuthenticated(ActorFrom(c)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// RequireAdmin is a convenience guard for admin-only route groups
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := policy.CanAdminister(ActorFrom(c))
		switch {
		case errors.Is(err, apperror.ErrUnauthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case err != nil:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.Next()
		}
	}
}
