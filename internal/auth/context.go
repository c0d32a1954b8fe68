package auth

import (
	"context"
)

// UserContext holds authenticated user information
type UserContext struct {
	// UserID is the identity provider subject and owns every project the user creates
	UserID      string
	DisplayName string
	Email       string
	// Provider is the sign-in method reported by the identity provider (password, google.com, ...)
	Provider string
	// ViaAPIKey is set for requests authenticated with the admin API key
	ViaAPIKey bool
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// UserIDFromContext returns the authenticated user id, or "" when the
// request is anonymous
func UserIDFromContext(ctx context.Context) string {
	if user, ok := FromContext(ctx); ok {
		return user.UserID
	}
	return ""
}
