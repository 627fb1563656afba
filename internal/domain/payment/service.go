package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loan-engine/internal/auth"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/infrastructure/monitoring"
	"loan-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Service interface {
	CreatePayment(ctx context.Context, actor auth.Actor, in CreateInput) (*Payment, error)

	DeletePayment(ctx context.Context, actor auth.Actor, paymentID int64) error

	ListPayments(ctx context.Context, actor auth.Actor) ([]*Payment, error)

	ListPaymentsByLoan(ctx context.Context, actor auth.Actor, loanID int64) ([]*Payment, error)
}

var _ Service = (*paymentService)(nil)

type paymentService struct {
	repo     Repository
	loans    loan.Repository
	audit    audit.Sink
	defaults Defaults
	logger   *slog.Logger
	now      func() time.Time
}

func NewPaymentService(repo Repository, loans loan.Repository, sink audit.Sink, defaults Defaults, logger *slog.Logger) Service {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &paymentService{
		repo:     repo,
		loans:    loans,
		audit:    sink,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "paymentService")),
		now:      time.Now,
	}
}

func (s *paymentService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.loans.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%w: could not begin transaction: %w", apperrors.ErrInternalServer, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.loans.RollbackTx(ctx, tx)
			panic(p)
		}
		if err != nil {
			if rbErr := s.loans.RollbackTx(ctx, tx); rbErr != nil {
				s.logger.ErrorContext(ctx, "Rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return s.loans.CommitTx(ctx, tx)
}

func (s *paymentService) lockLoan(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	l, err := s.loans.GetLoanForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrLoanNotFound, loanID)
		}
		return nil, fmt.Errorf("failed to load loan %d: %w", loanID, err)
	}
	return l, nil
}

func ownsLoan(actor auth.Actor, l *loan.Loan) bool {
	return auth.HasCapability(actor, auth.CapPaymentReadAll) || l.ClientID == actor.ID
}

// CreatePayment applies a repayment against a locked loan row. The payment
// insert, balance update and schedule allocation commit together or not at all.
func (s *paymentService) CreatePayment(ctx context.Context, actor auth.Actor, in CreateInput) (*Payment, error) {
	s.logger.InfoContext(ctx, "Attempting to create payment", slog.Int64("loanID", in.LoanID), slog.String("amount", in.Amount.String()))
	if err := auth.Require(actor, auth.CapPaymentCreate); err != nil {
		return nil, err
	}

	var (
		created *Payment
		before  decimal.Decimal
		after   decimal.Decimal
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		l, err := s.lockLoan(ctx, tx, in.LoanID)
		if err != nil {
			return err
		}
		if !ownsLoan(actor, l) {
			return fmt.Errorf("%w: loan %d belongs to another client", apperrors.ErrForbidden, in.LoanID)
		}
		if !l.Status.Repayable() {
			return apperrors.NewStateTransitionError("accept payment", string(l.Status))
		}

		before = l.OutstandingBalance
		if err := ValidateAmount(in.Amount, before); err != nil {
			return fmt.Errorf("%w: amount %s against balance %s", err, in.Amount.StringFixed(2), before.StringFixed(2))
		}

		toPrincipal, toInterest := Split(in.Amount, before, l.InterestRate)
		p := s.newPayment(actor, in, l, toPrincipal, toInterest)
		if err := s.repo.CreateInTx(ctx, tx, p); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		entries, err := s.loans.GetScheduleForUpdate(ctx, tx, l.ID)
		if err != nil {
			return fmt.Errorf("failed to load schedule for loan %d: %w", l.ID, err)
		}
		for _, e := range loan.AllocatePayment(entries, p.Amount, p.TransactionDate) {
			if err := s.loans.UpdateScheduleEntryInTx(ctx, tx, e); err != nil {
				return fmt.Errorf("failed to allocate payment to installment %d: %w", e.InstallmentNumber, err)
			}
		}

		l.ApplyBalance(before.Sub(toPrincipal), entries, p.TransactionDate)
		if err := s.loans.UpdateLoanInTx(ctx, tx, l); err != nil {
			return fmt.Errorf("failed to update balance for loan %d: %w", l.ID, err)
		}
		after = l.OutstandingBalance
		created = p
		return nil
	})
	if err != nil {
		monitoring.RecordPayment("rejected")
		s.logger.WarnContext(ctx, "Payment failed", slog.Int64("loanID", in.LoanID), slog.Any("error", err))
		return nil, err
	}

	monitoring.RecordPayment(string(created.Status))
	s.logger.InfoContext(ctx, "Payment recorded",
		slog.Int64("paymentID", created.ID),
		slog.Int64("loanID", created.LoanID),
		slog.String("previousBalance", before.StringFixed(2)),
		slog.String("newBalance", after.StringFixed(2)),
	)
	s.audit.Record(ctx, audit.Entry{
		EntityType: audit.EntityPayment,
		EntityID:   created.ID,
		Action:     audit.ActionCreate,
		Payload: map[string]any{
			"loanId":             created.LoanID,
			"amount":             created.Amount,
			"appliedToPrincipal": created.AppliedToPrincipal,
			"appliedToInterest":  created.AppliedToInterest,
			"externalRef":        created.ExternalRef,
		},
		ActorID:   actor.ID,
		ActorType: actor.ActorType(),
	})
	return created, nil
}

func (s *paymentService) newPayment(actor auth.Actor, in CreateInput, l *loan.Loan, toPrincipal, toInterest decimal.Decimal) *Payment {
	now := s.now()
	p := &Payment{
		LoanID:             l.ID,
		Amount:             in.Amount,
		Currency:           strings.ToUpper(strings.TrimSpace(in.Currency)),
		PaymentMethod:      strings.TrimSpace(in.PaymentMethod),
		ExternalRef:        strings.TrimSpace(in.ExternalRef),
		PayerName:          in.PayerName,
		PayerPhone:         in.PayerPhone,
		TransactionDate:    now,
		PaymentDate:        now,
		Status:             StatusCompleted,
		AppliedToPrincipal: toPrincipal,
		AppliedToInterest:  toInterest,
		Fees:               in.Fees,
		Penalties:          in.Penalties,
		Notes:              in.Notes,
	}
	if in.TransactionDate != nil {
		p.TransactionDate = *in.TransactionDate
	}
	if p.Currency == "" {
		p.Currency = l.Currency
	}
	if p.Currency == "" {
		p.Currency = s.defaults.Currency
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = s.defaults.PaymentMethod
	}
	if p.ExternalRef == "" {
		p.ExternalRef = NewExternalRef()
	}
	if actor.ID != 0 {
		id := actor.ID
		p.ProcessedBy = &id
	}
	return p
}

// DeletePayment removes a payment and reverses its effect on the loan: the
// principal portion returns to the balance and the schedule is un-allocated
// newest installment first.
func (s *paymentService) DeletePayment(ctx context.Context, actor auth.Actor, paymentID int64) error {
	s.logger.WarnContext(ctx, "Attempting to delete payment", slog.Int64("paymentID", paymentID))
	if err := auth.Require(actor, auth.CapPaymentDelete); err != nil {
		return err
	}

	var snapshot *Payment
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		p, err := s.repo.GetForUpdate(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: id %d", apperrors.ErrPaymentNotFound, paymentID)
			}
			return fmt.Errorf("failed to load payment %d: %w", paymentID, err)
		}

		l, err := s.lockLoan(ctx, tx, p.LoanID)
		if err != nil {
			return err
		}
		entries, err := s.loans.GetScheduleForUpdate(ctx, tx, l.ID)
		if err != nil {
			return fmt.Errorf("failed to load schedule for loan %d: %w", l.ID, err)
		}
		at := s.now()
		for _, e := range loan.ReverseAllocation(entries, p.Amount, at) {
			if err := s.loans.UpdateScheduleEntryInTx(ctx, tx, e); err != nil {
				return fmt.Errorf("failed to reverse installment %d: %w", e.InstallmentNumber, err)
			}
		}

		restored := decimal.Min(l.PrincipalAmount, l.OutstandingBalance.Add(p.AppliedToPrincipal))
		l.ApplyBalance(restored, entries, at)
		if err := s.loans.UpdateLoanInTx(ctx, tx, l); err != nil {
			return fmt.Errorf("failed to restore balance for loan %d: %w", l.ID, err)
		}

		if err := s.repo.DeleteInTx(ctx, tx, paymentID); err != nil {
			return fmt.Errorf("failed to delete payment %d: %w", paymentID, err)
		}
		snapshot = p
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Payment deletion failed", slog.Int64("paymentID", paymentID), slog.Any("error", err))
		return err
	}

	s.logger.InfoContext(ctx, "Payment deleted", slog.Int64("paymentID", paymentID), slog.Int64("actorID", actor.ID))
	s.audit.Record(ctx, audit.Entry{
		EntityType: audit.EntityPayment,
		EntityID:   paymentID,
		Action:     audit.ActionDelete,
		Payload:    snapshot,
		ActorID:    actor.ID,
		ActorType:  actor.ActorType(),
	})
	return nil
}

func (s *paymentService) ListPayments(ctx context.Context, actor auth.Actor) ([]*Payment, error) {
	s.logger.InfoContext(ctx, "Listing payments", slog.Int64("actorID", actor.ID), slog.String("role", string(actor.Role)))
	filter := Filter{}
	if !auth.HasCapability(actor, auth.CapPaymentReadAll) {
		id := actor.ID
		filter.ClientID = &id
	}
	payments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list payments", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) ListPaymentsByLoan(ctx context.Context, actor auth.Actor, loanID int64) ([]*Payment, error) {
	l, err := s.loans.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrLoanNotFound, loanID)
		}
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}
	if !ownsLoan(actor, l) {
		return nil, fmt.Errorf("%w: loan %d belongs to another client", apperrors.ErrForbidden, loanID)
	}

	payments, err := s.repo.List(ctx, Filter{LoanID: &loanID})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loan payments", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list payments for loan %d: %w", loanID, err)
	}
	return payments, nil
}
