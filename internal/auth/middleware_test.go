package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yectos/projects-api/internal/auth"
)

type stubValidator struct {
	user *auth.UserContext
	err  error
}

func (s stubValidator) ValidateToken(string) (*auth.UserContext, error) {
	return s.user, s.err
}

func captureUser(t *testing.T, got **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.FromContext(r.Context())
		require.True(t, ok)
		*got = user
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddleware_Authenticate(t *testing.T) {
	valid := stubValidator{user: &auth.UserContext{UserID: "user-1", Provider: "password"}}
	invalid := stubValidator{err: errors.New("bad token")}

	tests := []struct {
		name       string
		validator  auth.TokenValidator
		headers    map[string]string
		wantStatus int
		wantUser   string
	}{
		{"bearer token", valid, map[string]string{"Authorization": "Bearer abc"}, http.StatusNoContent, "user-1"},
		{"lowercase scheme", valid, map[string]string{"Authorization": "bearer abc"}, http.StatusNoContent, "user-1"},
		{"api key", invalid, map[string]string{"x-api-key": "secret"}, http.StatusNoContent, "system"},
		{"wrong api key", valid, map[string]string{"x-api-key": "nope"}, http.StatusUnauthorized, ""},
		{"missing header", valid, nil, http.StatusUnauthorized, ""},
		{"basic scheme", valid, map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized, ""},
		{"invalid token", invalid, map[string]string{"Authorization": "Bearer abc"}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := auth.NewMiddlewareWithValidator(tt.validator, "secret", "system", zap.NewNop())

			var got *auth.UserContext
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			m.Authenticate(captureUser(t, &got)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantUser != "" {
				require.NotNil(t, got)
				assert.Equal(t, tt.wantUser, got.UserID)
			}
		})
	}
}

func TestMiddleware_EmptyAPIKeyNeverMatches(t *testing.T) {
	m := auth.NewMiddlewareWithValidator(stubValidator{}, "", "system", zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-api-key", "")
	req.Header.Set("x-api-key", "anything")
	rec := httptest.NewRecorder()

	m.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContext(t *testing.T) {
	assert.Equal(t, "", auth.UserIDFromContext(context.Background()))

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{UserID: "u-42"})
	assert.Equal(t, "u-42", auth.UserIDFromContext(ctx))
}
