package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-engine/internal/domain/loan"
	"loan-engine/internal/infrastructure/monitoring"
	"loan-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

// timeQuery starts a timer for a named query; call the result with the query error.
func timeQuery(name string) func(err error) {
	start := time.Now()
	return func(err error) {
		status := "success"
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			status = "error"
		}
		monitoring.RecordDBQuery(name, status, time.Since(start))
	}
}

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Commit(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

const loanColumns = `id, reference_code, client_id, loan_product_id, principal_amount, currency,
        interest_rate, interest_type, term_months, payment_frequency, start_date, end_date,
        approval_date, disbursement_date, next_payment_date, installment_amount, outstanding_balance,
        total_interest, total_payable, installments_count, fees, penalties, COALESCE(collateral, ''),
        co_signer_id, COALESCE(notes, ''), status, created_by, approved_by, disbursed_by,
        paid_at, cancelled_at, defaulted_at, created_at, updated_at`

const (
	insertLoanSQL = `
        INSERT INTO loans (reference_code, client_id, loan_product_id, principal_amount, currency,
            interest_rate, interest_type, term_months, payment_frequency, start_date, end_date,
            installment_amount, outstanding_balance, total_interest, total_payable, installments_count,
            fees, penalties, collateral, co_signer_id, notes, status, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	getLoanSQL = `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	getLoanForUpdateSQL = getLoanSQL + ` FOR UPDATE`

	listLoansSQL = `SELECT ` + loanColumns + ` FROM loans
        WHERE ($1::bigint IS NULL OR client_id = $1)
          AND ($2::text IS NULL OR status = $2)
        ORDER BY created_at DESC, id DESC`

	updateLoanSQL = `
        UPDATE loans
        SET principal_amount = $1, interest_rate = $2, interest_type = $3, term_months = $4,
            payment_frequency = $5, start_date = $6, end_date = $7, approval_date = $8,
            disbursement_date = $9, next_payment_date = $10, installment_amount = $11,
            outstanding_balance = $12, total_interest = $13, total_payable = $14,
            installments_count = $15, fees = $16, penalties = $17, collateral = $18,
            co_signer_id = $19, notes = $20, status = $21, approved_by = $22, disbursed_by = $23,
            paid_at = $24, cancelled_at = $25, defaulted_at = $26, updated_at = NOW()
        WHERE id = $27
        RETURNING updated_at`

	deleteLoanSQL = `DELETE FROM loans WHERE id = $1`

	markOverdueLoansSQL = `
        UPDATE loans l
        SET status = $2, updated_at = NOW()
        WHERE l.status IN ($3, $4)
          AND EXISTS (
            SELECT 1 FROM repayment_schedules s
            WHERE s.loan_id = l.id AND s.due_date < $1 AND s.paid_amount < s.total_amount)
        RETURNING l.id`
)

func scanLoan(row rowScanner) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.ReferenceCode, &l.ClientID, &l.LoanProductID, &l.PrincipalAmount, &l.Currency,
		&l.InterestRate, &l.InterestType, &l.TermMonths, &l.PaymentFrequency, &l.StartDate, &l.EndDate,
		&l.ApprovalDate, &l.DisbursementDate, &l.NextPaymentDate, &l.InstallmentAmount, &l.OutstandingBalance,
		&l.TotalInterest, &l.TotalPayable, &l.InstallmentsCount, &l.Fees, &l.Penalties, &l.Collateral,
		&l.CoSignerID, &l.Notes, &l.Status, &l.CreatedBy, &l.ApprovedBy, &l.DisbursedBy,
		&l.PaidAt, &l.CancelledAt, &l.DefaultedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) CreateLoan(ctx context.Context, l *loan.Loan) error {
	r.logger.InfoContext(ctx, "Attempting to insert loan", slog.String("referenceCode", l.ReferenceCode))
	done := timeQuery("CreateLoan")

	err := r.db.QueryRow(ctx, insertLoanSQL,
		l.ReferenceCode, l.ClientID, l.LoanProductID, l.PrincipalAmount, l.Currency,
		l.InterestRate, l.InterestType, l.TermMonths, l.PaymentFrequency, l.StartDate, l.EndDate,
		l.InstallmentAmount, l.OutstandingBalance, l.TotalInterest, l.TotalPayable, l.InstallmentsCount,
		l.Fees, l.Penalties, l.Collateral, l.CoSignerID, l.Notes, l.Status, l.CreatedBy,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	done(err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", l.ID)
	return nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	done := timeQuery("GetLoanByID")
	l, err := scanLoan(r.db.QueryRow(ctx, getLoanSQL, loanID))
	done(err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) GetLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	l, err := scanLoan(tx.QueryRow(ctx, getLoanForUpdateSQL, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found for update", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) ListLoans(ctx context.Context, filter loan.Filter) ([]*loan.Loan, error) {
	done := timeQuery("ListLoans")
	rows, err := r.db.Query(ctx, listLoansSQL, filter.ClientID, filter.Status)
	if err != nil {
		done(err)
		r.logger.ErrorContext(ctx, "Failed to query loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			done(err)
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}
	err = rows.Err()
	done(err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return loans, nil
}

func (r *LoanRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	err := tx.QueryRow(ctx, updateLoanSQL,
		l.PrincipalAmount, l.InterestRate, l.InterestType, l.TermMonths,
		l.PaymentFrequency, l.StartDate, l.EndDate, l.ApprovalDate,
		l.DisbursementDate, l.NextPaymentDate, l.InstallmentAmount,
		l.OutstandingBalance, l.TotalInterest, l.TotalPayable,
		l.InstallmentsCount, l.Fees, l.Penalties, l.Collateral,
		l.CoSignerID, l.Notes, l.Status, l.ApprovedBy, l.DisbursedBy,
		l.PaidAt, l.CancelledAt, l.DefaultedAt,
		l.ID,
	).Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan update affected zero rows", "loan_id", l.ID)
			return apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update loan", "loan_id", l.ID, "error", err)
		return translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Loan updated in DB", "loan_id", l.ID, "status", l.Status)
	return nil
}

// DeleteLoanInTx removes the loan; schedule and payment rows cascade.
func (r *LoanRepository) DeleteLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64) error {
	cmdTag, err := tx.Exec(ctx, deleteLoanSQL, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete loan", "loan_id", loanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkOverdueLoans flips open loans holding past-due unpaid installments to
// overdue and returns their ids.
func (r *LoanRepository) MarkOverdueLoans(ctx context.Context, asOf time.Time) ([]int64, error) {
	logCtx := r.logger.With(slog.String("operation", "MarkOverdueLoans"))
	logCtx.DebugContext(ctx, "Attempting to mark overdue loans", slog.Time("asOf", asOf))
	done := timeQuery("MarkOverdueLoans")

	rows, err := r.db.Query(ctx, markOverdueLoansSQL, asOf, loan.StatusOverdue, loan.StatusDisbursed, loan.StatusActive)
	if err != nil {
		done(err)
		logCtx.ErrorContext(ctx, "Failed to mark overdue loans", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to mark overdue loans: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loanIDs := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			done(err)
			logCtx.ErrorContext(ctx, "Failed to scan overdue loan ID row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed scanning overdue loan ID: %w", apperrors.ErrDatabase, err)
		}
		loanIDs = append(loanIDs, id)
	}
	err = rows.Err()
	done(err)
	if err != nil {
		logCtx.ErrorContext(ctx, "Error iterating overdue loan ID rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating overdue loan IDs: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Finished marking overdue loans", slog.Int("count", len(loanIDs)))
	return loanIDs, nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
