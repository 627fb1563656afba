package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"loan-engine/internal/api/handler/dto"
	"loan-engine/internal/auth"
	"loan-engine/internal/config"
	"loan-engine/internal/domain/user"
	"loan-engine/internal/pkg/apperrors"

	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)

type AuthHandler struct {
	cfg    config.AuthConfig
	users  user.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthHandler(cfg config.AuthConfig, users user.Repository, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		users:  users,
		logger: l.With("component", "AuthHandler"),
		now:    time.Now,
	}
}

// GenerateBearerToken exchanges user credentials for a signed JWT.
//
// @Summary Generate a JWT bearer token
// @Description Verifies the email and password of an active user and returns a token carrying the user's id and role.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "User credentials"
// @Success 200 {object} dto.TokenResponse "Token successfully generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, invalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	u, err := h.users.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.logger.WarnContext(r.Context(), "Token requested for unknown email")
			respondError(w, errInvalidCredentials)
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to look up user", "error", err)
		respondError(w, err)
		return
	}

	if !u.IsActive {
		h.logger.WarnContext(r.Context(), "Token requested for inactive user", "userID", u.ID)
		respondError(w, errInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(r.Context(), "Password mismatch", "userID", u.ID)
		respondError(w, errInvalidCredentials)
		return
	}

	token, expiresAt, err := auth.IssueToken(h.cfg.JWTSecret, u.Actor(), h.cfg.TokenTTL, h.now())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to issue token", "userID", u.ID, "error", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Issued bearer token", "userID", u.ID, "role", u.Role)
	respondJSON(w, http.StatusOK, dto.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		Role:      string(u.Role),
	})
}
