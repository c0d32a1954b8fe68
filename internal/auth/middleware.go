package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/yectos/projects-api/internal/config"
	"go.uber.org/zap"
)

// TokenValidator turns a bearer token into a user context
type TokenValidator interface {
	ValidateToken(token string) (*UserContext, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	validator    TokenValidator
	apiKey       string
	apiKeyUserID string
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config, logger *zap.Logger) *Middleware {
	return NewMiddlewareWithValidator(NewJWTValidator(&cfg.Auth), cfg.ApiKey.Value, cfg.Auth.ApiKeyUserID, logger)
}

// NewMiddlewareWithValidator creates the middleware around a custom token validator
func NewMiddlewareWithValidator(validator TokenValidator, apiKey, apiKeyUserID string, logger *zap.Logger) *Middleware {
	return &Middleware{
		validator:    validator,
		apiKey:       apiKey,
		apiKeyUserID: apiKeyUserID,
		logger:       logger,
	}
}

// Authenticate accepts either the x-api-key header or a Bearer ID token
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if !m.validateAPIKey(apiKey) {
				m.logger.Warn("invalid API key attempt",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userCtx := &UserContext{
				UserID:      m.apiKeyUserID,
				DisplayName: "System",
				Provider:    "api_key",
				ViaAPIKey:   true,
			}
			m.logAuthenticated(r, userCtx, start)
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		userCtx, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		m.logAuthenticated(r, userCtx, start)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

func (m *Middleware) logAuthenticated(r *http.Request, userCtx *UserContext, start time.Time) {
	m.logger.Debug("request authenticated",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("user_id", userCtx.UserID),
		zap.String("auth_provider", userCtx.Provider),
		zap.Duration("auth_duration", time.Since(start)),
	)
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}
