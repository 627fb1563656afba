package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"loan-engine/internal/auth"
	"loan-engine/internal/config"
)

// devActor is used for every request when authentication is switched off.
var devActor = auth.Actor{ID: 1, Role: auth.RoleAdmin}

// AuthMiddleware resolves the caller from a bearer token and stores it on the
// request context for the handlers.
func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		logger.Warn("Authentication disabled; requests run as the default admin actor")
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), devActor)))
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := actorFromRequest(r, cfg.JWTSecret)
			if err != nil {
				logger.Warn("AuthMiddleware: rejected request", "path", r.URL.Path, "error", err)
				http.Error(w, `{"error":{"code":"UNAUTHORIZED","message":"Unauthorized"}}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

func actorFromRequest(r *http.Request, secret string) (auth.Actor, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return auth.Actor{}, errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return auth.Actor{}, errors.New("invalid Authorization header format")
	}

	return auth.ParseToken(secret, strings.TrimSpace(parts[1]))
}
