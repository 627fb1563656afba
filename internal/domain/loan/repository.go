package loan

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	CreateLoan(ctx context.Context, loan *Loan) error

	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	ListLoans(ctx context.Context, filter Filter) ([]*Loan, error)

	// GetLoanForUpdate locks the loan row until tx ends.
	GetLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error)

	UpdateLoanInTx(ctx context.Context, tx pgx.Tx, loan *Loan) error

	DeleteLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64) error

	CountScheduleEntriesInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error)

	InsertScheduleInTx(ctx context.Context, tx pgx.Tx, loanID int64, entries []ScheduleEntry) error

	DeleteScheduleInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int64, error)

	GetScheduleByLoanID(ctx context.Context, loanID int64) ([]ScheduleEntry, error)

	GetScheduleForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) ([]ScheduleEntry, error)

	UpdateScheduleEntryInTx(ctx context.Context, tx pgx.Tx, entry *ScheduleEntry) error

	MarkOverdueEntries(ctx context.Context, asOf time.Time) (int64, error)

	MarkOverdueLoans(ctx context.Context, asOf time.Time) ([]int64, error)

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}

// CoSignerLookup confirms that a referenced user exists.
type CoSignerLookup interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}
