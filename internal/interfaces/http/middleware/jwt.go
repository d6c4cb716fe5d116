package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/infrastructure/auth"
	"github.com/gestion/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	ActorKey      = "actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
		},
		Logger: nil,
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config.
// On success the resolved actor is stored in the gin context under ActorKey.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Missing token")
			return
		}

		actor, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("token validation failed",
					zap.String("path", path),
					zap.Error(err),
				)
			}
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Token validation failed")
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// GetActor returns the authenticated actor from the gin context.
// The second return is false when the request was not authenticated.
func GetActor(c *gin.Context) (identity.Actor, bool) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return identity.Actor{}, false
	}
	actor, ok := value.(identity.Actor)
	return actor, ok
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}
