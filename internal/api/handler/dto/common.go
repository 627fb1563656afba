package dto

import (
	"fmt"
	"strings"
	"time"

	"loan-engine/internal/domain/loan"
)

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *TokenRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
}

// parseOptionalDate returns nil for an empty value so the service can default it.
func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := loan.ParseDate(*raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s (use YYYY-MM-DD): %w", field, err)
	}
	return &t, nil
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}
