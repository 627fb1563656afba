package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"loan-engine/internal/auth"
	"loan-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "email", "full_name", "password_hash", "role", "is_active", "created_at"}

func setupUserRepo(t *testing.T) (context.Context, *UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	return context.Background(), NewUserRepository(mockPool, logger), mockPool
}

func TestFindUserByEmailNormalises(t *testing.T) {
	ctx, repo, mockPool := setupUserRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(getUserByEmailSQL)).WithArgs("officer@lender.co.ke").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(int64(2), "officer@lender.co.ke", "Loan Officer", "$2a$10$hash", auth.RoleLoanOfficer, true, testStamp))

	u, err := repo.FindByEmail(ctx, "  Officer@Lender.co.ke ")
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)
	assert.Equal(t, auth.RoleLoanOfficer, u.Role)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindUserByIDWhenMissing(t *testing.T) {
	ctx, repo, mockPool := setupUserRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(getUserByIDSQL)).WithArgs(int64(77)).WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(ctx, 77)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUserExists(t *testing.T) {
	ctx, repo, mockPool := setupUserRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(userExistsSQL)).WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mockPool.ExpectQuery(regexp.QuoteMeta(userExistsSQL)).WithArgs(int64(12)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mockPool.ExpectQuery(regexp.QuoteMeta(userExistsSQL)).WithArgs(int64(13)).
		WillReturnError(errors.New("broken pipe"))

	ok, err := repo.Exists(ctx, 11)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, 12)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Exists(ctx, 13)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
