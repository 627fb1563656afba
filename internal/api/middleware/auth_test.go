package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loan-engine/internal/auth"
	"loan-engine/internal/config"
)

func TestAuthMiddleware(t *testing.T) {
	const statusErrorMsg = "expected status %d, got %d"

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	secret := "testsecret"

	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: secret,
	}

	var seen auth.Actor
	var seenOK bool
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, seenOK = auth.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("should run as the default admin when middleware is disabled", func(t *testing.T) {
		disabled := cfg
		disabled.Enabled = false
		middleware := AuthMiddleware(disabled, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		middleware(nextHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf(statusErrorMsg, http.StatusOK, rec.Code)
		}
		if !seenOK || seen.Role != auth.RoleAdmin {
			t.Errorf("expected admin actor in context, got %+v (present=%v)", seen, seenOK)
		}
	})

	t.Run("should reject request with missing Authorization header", func(t *testing.T) {
		middleware := AuthMiddleware(cfg, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		middleware(nextHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf(statusErrorMsg, http.StatusUnauthorized, rec.Code)
		}
	})

	t.Run("should reject request with a non bearer scheme", func(t *testing.T) {
		middleware := AuthMiddleware(cfg, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		middleware(nextHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf(statusErrorMsg, http.StatusUnauthorized, rec.Code)
		}
	})

	t.Run("should reject request with invalid token", func(t *testing.T) {
		middleware := AuthMiddleware(cfg, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer invalidtoken")
		rec := httptest.NewRecorder()

		middleware(nextHandler).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf(statusErrorMsg, http.StatusUnauthorized, rec.Code)
		}
	})

	t.Run("should put the token's actor on the context", func(t *testing.T) {
		middleware := AuthMiddleware(cfg, logger)

		tokenString, _, err := auth.IssueToken(secret, auth.Actor{ID: 12, Role: auth.RoleClient}, time.Hour, time.Now())
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		rec := httptest.NewRecorder()

		middleware(nextHandler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf(statusErrorMsg, http.StatusOK, rec.Code)
		}
		if !seenOK || seen.ID != 12 || seen.Role != auth.RoleClient {
			t.Errorf("unexpected actor in context: %+v", seen)
		}
	})
}
