package user

import (
	"context"
	"time"

	"loan-engine/internal/auth"
)

// User is the minimal identity the engine needs: who can sign in and who can
// co-sign a loan. Account management lives elsewhere.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	Role         auth.Role
	IsActive     bool
	CreatedAt    time.Time
}

func (u *User) Actor() auth.Actor {
	return auth.Actor{ID: u.ID, Role: u.Role}
}

type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
