package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/user"
	"loan-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db     DBPool
	logger *slog.Logger
}

var (
	_ user.Repository     = (*UserRepository)(nil)
	_ loan.CoSignerLookup = (*UserRepository)(nil)
)

func NewUserRepository(db DBPool, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger.With("component", "UserRepository")}
}

const (
	userColumns = `id, email, full_name, password_hash, role, is_active, created_at`

	getUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = $1`

	userExistsSQL = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
)

func (r *UserRepository) scanUser(ctx context.Context, row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan user", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get user: %w", apperrors.ErrDatabase, err)
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	return r.scanUser(ctx, r.db.QueryRow(ctx, getUserByIDSQL, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.scanUser(ctx, r.db.QueryRow(ctx, getUserByEmailSQL, strings.ToLower(strings.TrimSpace(email))))
}

// Exists backs co-signer validation.
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, userExistsSQL, id).Scan(&exists); err != nil {
		r.logger.ErrorContext(ctx, "Failed to check user existence", slog.Int64("userID", id), slog.Any("error", err))
		return false, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return exists, nil
}
