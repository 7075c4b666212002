package middleware

import (
	"net/http"
	"strings"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// HeaderAPIKey carries the raw API-key secret for machine principals.
	HeaderAPIKey = "X-API-Key"

	// Context keys
	CtxUserID     = "user_id"
	CtxAuthMethod = "auth_method"

	// Auth method values stored under CtxAuthMethod.
	AuthMethodAPIKey  = "api_key"
	AuthMethodSession = "session"
)

// Auth authenticates a request via either credential path. An API key is
// checked against the required permission; a session JWT carries every
// permission implicitly. A request with neither credential is rejected.
func Auth(keySvc ports.ApiKeyService, tokenSvc ports.TokenService, required domain.Permission, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rawKey := c.GetHeader(HeaderAPIKey); rawKey != "" {
			result, err := keySvc.ValidateKey(c.Request.Context(), rawKey, required)
			if err != nil {
				log.Error().Err(err).Msg("api key validation failed")
				response.Error(c, apperror.InternalError(err))
				c.Abort()
				return
			}
			if !result.Valid {
				response.Error(c, apperror.ErrForbidden())
				c.Abort()
				return
			}
			c.Set(CtxUserID, result.UserID)
			c.Set(CtxAuthMethod, AuthMethodAPIKey)
			c.Next()
			return
		}

		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			claims, err := tokenSvc.Validate(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				response.Error(c, apperror.ErrInvalidToken())
				c.Abort()
				return
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxAuthMethod, AuthMethodSession)
			c.Next()
			return
		}

		response.Error(c, apperror.ErrUnauthenticated())
		c.Abort()
	}
}

// SessionAuth admits only session JWTs. Key management stays out of reach
// of the keys it manages.
func SessionAuth(tokenSvc ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Error(c, apperror.ErrUnauthenticated())
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxAuthMethod, AuthMethodSession)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
