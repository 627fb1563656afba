package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan-engine/internal/domain/payment"
	"loan-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ payment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(db DBPool, logger *slog.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger.With("component", "PaymentRepository")}
}

const paymentColumns = `p.id, p.loan_id, p.amount, p.currency, p.payment_method, p.external_ref,
        COALESCE(p.payer_name, ''), COALESCE(p.payer_phone, ''), p.transaction_date, p.payment_date,
        p.status, p.applied_to_principal, p.applied_to_interest, p.fees, p.penalties, p.processed_by,
        COALESCE(p.notes, ''), p.created_at, p.updated_at`

const (
	insertPaymentSQL = `
        INSERT INTO payments (loan_id, amount, currency, payment_method, external_ref, payer_name,
            payer_phone, transaction_date, payment_date, status, applied_to_principal,
            applied_to_interest, fees, penalties, processed_by, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	getPaymentSQL = `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = $1`

	getPaymentForUpdateSQL = getPaymentSQL + ` FOR UPDATE`

	deletePaymentSQL = `DELETE FROM payments WHERE id = $1`

	listPaymentsSQL = `SELECT ` + paymentColumns + ` FROM payments p
        JOIN loans l ON l.id = p.loan_id
        WHERE ($1::bigint IS NULL OR l.client_id = $1)
          AND ($2::bigint IS NULL OR p.loan_id = $2)
        ORDER BY p.payment_date DESC, p.id DESC`
)

func scanPayment(row rowScanner) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.LoanID, &p.Amount, &p.Currency, &p.PaymentMethod, &p.ExternalRef,
		&p.PayerName, &p.PayerPhone, &p.TransactionDate, &p.PaymentDate,
		&p.Status, &p.AppliedToPrincipal, &p.AppliedToInterest, &p.Fees, &p.Penalties, &p.ProcessedBy,
		&p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *PaymentRepository) CreateInTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	r.logger.InfoContext(ctx, "Attempting to insert payment", slog.Int64("loanID", p.LoanID), slog.String("externalRef", p.ExternalRef))
	done := timeQuery("CreatePayment")

	err := tx.QueryRow(ctx, insertPaymentSQL,
		p.LoanID, p.Amount, p.Currency, p.PaymentMethod, p.ExternalRef, nullIfEmpty(p.PayerName),
		nullIfEmpty(p.PayerPhone), p.TransactionDate, p.PaymentDate, p.Status, p.AppliedToPrincipal,
		p.AppliedToInterest, p.Fees, p.Penalties, p.ProcessedBy, nullIfEmpty(p.Notes),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	done(err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Duplicate payment reference", slog.String("externalRef", p.ExternalRef))
			return fmt.Errorf("%w: external reference %q already used", translatedErr, p.ExternalRef)
		}
		r.logger.ErrorContext(ctx, "Failed to insert payment", slog.Any("error", err))
		return translatedErr
	}
	r.logger.InfoContext(ctx, "Payment inserted successfully", slog.Int64("paymentID", p.ID))
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, paymentID int64) (*payment.Payment, error) {
	done := timeQuery("GetPaymentByID")
	p, err := scanPayment(r.db.QueryRow(ctx, getPaymentSQL, paymentID))
	done(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Payment not found", slog.Int64("paymentID", paymentID))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get payment by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get payment by ID: %w", apperrors.ErrDatabase, err)
	}
	return p, nil
}

func (r *PaymentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, paymentID int64) (*payment.Payment, error) {
	p, err := scanPayment(tx.QueryRow(ctx, getPaymentForUpdateSQL, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock payment", slog.Int64("paymentID", paymentID), slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return p, nil
}

func (r *PaymentRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, paymentID int64) error {
	cmdTag, err := tx.Exec(ctx, deletePaymentSQL, paymentID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete payment", slog.Int64("paymentID", paymentID), slog.Any("error", err))
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) List(ctx context.Context, filter payment.Filter) ([]*payment.Payment, error) {
	done := timeQuery("ListPayments")
	rows, err := r.db.Query(ctx, listPaymentsSQL, filter.ClientID, filter.LoanID)
	if err != nil {
		done(err)
		r.logger.ErrorContext(ctx, "Failed to query payments", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	payments := make([]*payment.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			done(err)
			r.logger.ErrorContext(ctx, "Failed to scan payment row", slog.Any("error", err))
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		payments = append(payments, p)
	}
	err = rows.Err()
	done(err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error iterating payment rows", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return payments, nil
}
