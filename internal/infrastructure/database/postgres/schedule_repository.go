package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loan-engine/internal/domain/loan"
	"loan-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

// Repayment schedule rows are owned by the loan aggregate, so LoanRepository
// serves them as well.

const scheduleColumns = `id, loan_id, installment_number, due_date, principal_amount, interest_amount,
        total_amount, paid_amount, paid_date, status, remaining_balance, COALESCE(notes, ''),
        created_at, updated_at`

const (
	countScheduleSQL = `SELECT COUNT(*) FROM repayment_schedules WHERE loan_id = $1`

	getScheduleSQL = `SELECT ` + scheduleColumns + ` FROM repayment_schedules
        WHERE loan_id = $1
        ORDER BY installment_number ASC`

	getScheduleForUpdateSQL = getScheduleSQL + ` FOR UPDATE`

	deleteScheduleSQL = `DELETE FROM repayment_schedules WHERE loan_id = $1`

	updateScheduleEntrySQL = `
        UPDATE repayment_schedules
        SET paid_amount = $1, paid_date = $2, status = $3, updated_at = NOW()
        WHERE id = $4 AND loan_id = $5`

	markOverdueEntriesSQL = `
        UPDATE repayment_schedules
        SET status = $2, updated_at = NOW()
        WHERE due_date < $1
          AND paid_amount < total_amount
          AND status IN ($3, $4)`
)

var scheduleInsertColumns = []string{
	"loan_id", "installment_number", "due_date", "principal_amount", "interest_amount",
	"total_amount", "paid_amount", "status", "remaining_balance",
}

var insertScheduleSQL = `INSERT INTO repayment_schedules (` + strings.Join(scheduleInsertColumns, ", ") +
	`, created_at, updated_at) VALUES `

func scanScheduleEntry(row rowScanner) (loan.ScheduleEntry, error) {
	var e loan.ScheduleEntry
	err := row.Scan(
		&e.ID, &e.LoanID, &e.InstallmentNumber, &e.DueDate, &e.PrincipalAmount, &e.InterestAmount,
		&e.TotalAmount, &e.PaidAmount, &e.PaidDate, &e.Status, &e.RemainingBalance, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *LoanRepository) CountScheduleEntriesInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error) {
	var count int
	if err := tx.QueryRow(ctx, countScheduleSQL, loanID).Scan(&count); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count schedule entries", "loan_id", loanID, "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return count, nil
}

// InsertScheduleInTx writes every entry in a single multi-row INSERT.
func (r *LoanRepository) InsertScheduleInTx(ctx context.Context, tx pgx.Tx, loanID int64, entries []loan.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query, args := buildScheduleInsert(loanID, entries)

	done := timeQuery("InsertSchedule")
	cmdTag, err := tx.Exec(ctx, query, args...)
	done(err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed inserting schedule", "loan_id", loanID, "error", err)
		return translateDBError(err, r.logger)
	}
	if int(cmdTag.RowsAffected()) != len(entries) {
		r.logger.ErrorContext(ctx, "Schedule insert count mismatch", "loan_id", loanID, "expected", len(entries), "inserted", cmdTag.RowsAffected())
		return fmt.Errorf("%w: inserted %d of %d schedule entries", apperrors.ErrDatabase, cmdTag.RowsAffected(), len(entries))
	}
	r.logger.InfoContext(ctx, "Loan schedule created in DB", "loan_id", loanID, "num_entries", len(entries))
	return nil
}

func buildScheduleInsert(loanID int64, entries []loan.ScheduleEntry) (string, []any) {
	var sb strings.Builder
	sb.WriteString(insertScheduleSQL)

	args := make([]any, 0, len(entries)*len(scheduleInsertColumns))
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := range scheduleInsertColumns {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", len(args)+c+1)
		}
		sb.WriteString(", NOW(), NOW())")
		args = append(args,
			loanID, e.InstallmentNumber, e.DueDate, e.PrincipalAmount, e.InterestAmount,
			e.TotalAmount, e.PaidAmount, e.Status, e.RemainingBalance,
		)
	}
	return sb.String(), args
}

func (r *LoanRepository) DeleteScheduleInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int64, error) {
	cmdTag, err := tx.Exec(ctx, deleteScheduleSQL, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete schedule", "loan_id", loanID, "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *LoanRepository) GetScheduleByLoanID(ctx context.Context, loanID int64) ([]loan.ScheduleEntry, error) {
	done := timeQuery("GetScheduleByLoanID")
	rows, err := r.db.Query(ctx, getScheduleSQL, loanID)
	if err != nil {
		done(err)
		r.logger.ErrorContext(ctx, "Failed to query loan schedule", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	schedule, err := r.collectSchedule(ctx, rows, loanID)
	done(err)
	return schedule, err
}

func (r *LoanRepository) GetScheduleForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) ([]loan.ScheduleEntry, error) {
	rows, err := tx.Query(ctx, getScheduleForUpdateSQL, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to lock loan schedule", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return r.collectSchedule(ctx, rows, loanID)
}

func (r *LoanRepository) collectSchedule(ctx context.Context, rows pgx.Rows, loanID int64) ([]loan.ScheduleEntry, error) {
	defer rows.Close()

	schedule := make([]loan.ScheduleEntry, 0)
	for rows.Next() {
		entry, err := scanScheduleEntry(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan schedule row", "loan_id", loanID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		schedule = append(schedule, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating schedule rows", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return schedule, nil
}

func (r *LoanRepository) UpdateScheduleEntryInTx(ctx context.Context, tx pgx.Tx, entry *loan.ScheduleEntry) error {
	cmdTag, err := tx.Exec(ctx, updateScheduleEntrySQL, entry.PaidAmount, entry.PaidDate, entry.Status, entry.ID, entry.LoanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update schedule entry", "entry_id", entry.ID, "loan_id", entry.LoanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Schedule entry update affected zero rows", "entry_id", entry.ID, "loan_id", entry.LoanID)
		return fmt.Errorf("%w: schedule entry update affected zero rows", apperrors.ErrDatabase)
	}
	return nil
}

func (r *LoanRepository) MarkOverdueEntries(ctx context.Context, asOf time.Time) (int64, error) {
	done := timeQuery("MarkOverdueEntries")
	cmdTag, err := r.db.Exec(ctx, markOverdueEntriesSQL, asOf, loan.EntryOverdue, loan.EntryPending, loan.EntryPartial)
	done(err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark overdue installments", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to mark overdue installments: %w", apperrors.ErrDatabase, err)
	}
	return cmdTag.RowsAffected(), nil
}
