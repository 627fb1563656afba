package auth

import (
	"fmt"
	"strconv"
	"time"

	"loan-engine/internal/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "loan-engine"

// Claims is the bearer token body: the user id travels in sub.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for actor valid for ttl from now.
func IssueToken(secret string, actor Actor, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, fmt.Errorf("%w: token signing secret is not configured", apperrors.ErrInternalServer)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	expiresAt := now.Add(ttl)
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(actor.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: failed to sign token: %w", apperrors.ErrInternalServer, err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies raw and resolves the actor it was issued for.
func ParseToken(secret, raw string) (Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}
	if !token.Valid {
		return Actor{}, fmt.Errorf("%w: token is not valid", apperrors.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Actor{}, fmt.Errorf("%w: invalid subject %q", apperrors.ErrUnauthorized, claims.Subject)
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return Actor{}, fmt.Errorf("%w: unknown role %q", apperrors.ErrUnauthorized, claims.Role)
	}
	return Actor{ID: id, Role: role}, nil
}
