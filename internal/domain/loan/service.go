package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-engine/internal/auth"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/product"
	"loan-engine/internal/infrastructure/monitoring"
	"loan-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type Service interface {
	CreateLoan(ctx context.Context, actor auth.Actor, in CreateInput) (*Loan, error)

	GetLoan(ctx context.Context, actor auth.Actor, loanID int64) (*Loan, error)

	ListLoans(ctx context.Context, actor auth.Actor) ([]*Loan, error)

	GetSchedule(ctx context.Context, actor auth.Actor, loanID int64) ([]ScheduleEntry, error)

	ApproveLoan(ctx context.Context, actor auth.Actor, loanID int64, approvalDate string) (*Loan, error)

	DisburseLoan(ctx context.Context, actor auth.Actor, loanID int64, disbursementDate string) (*DisbursementResult, error)

	UpdateLoan(ctx context.Context, actor auth.Actor, loanID int64, changes Changes) (*Loan, error)

	RecalculateSchedule(ctx context.Context, actor auth.Actor, loanID int64, overrides RecalculateOverrides) (*RecalculationResult, error)

	DeleteLoan(ctx context.Context, actor auth.Actor, loanID int64) error

	MarkOverdue(ctx context.Context, asOf time.Time) (entries int64, loanIDs []int64, err error)
}

var _ Service = (*loanService)(nil)

type loanService struct {
	repo      Repository
	products  product.Lookup
	coSigners CoSignerLookup
	audit     audit.Sink
	logger    *slog.Logger
	now       func() time.Time
}

func NewLoanService(repo Repository, products product.Lookup, coSigners CoSignerLookup, sink audit.Sink, logger *slog.Logger) Service {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &loanService{
		repo:      repo,
		products:  products,
		coSigners: coSigners,
		audit:     sink,
		logger:    logger.With(slog.String("component", "loanService")),
		now:       time.Now,
	}
}

// inTx runs fn inside a transaction, rolling back on error or panic.
func (s *loanService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%w: could not begin transaction: %w", apperrors.ErrInternalServer, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		}
		if err != nil {
			if rbErr := s.repo.RollbackTx(ctx, tx); rbErr != nil {
				s.logger.ErrorContext(ctx, "Rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return s.repo.CommitTx(ctx, tx)
}

func (s *loanService) lockLoan(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error) {
	l, err := s.repo.GetLoanForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", slog.Int64("loanID", loanID))
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrLoanNotFound, loanID)
		}
		return nil, fmt.Errorf("failed to load loan %d: %w", loanID, err)
	}
	return l, nil
}

func (s *loanService) record(ctx context.Context, actor auth.Actor, loanID int64, action audit.Action, payload any) {
	s.audit.Record(ctx, audit.Entry{
		EntityType: audit.EntityLoan,
		EntityID:   loanID,
		Action:     action,
		Payload:    payload,
		ActorID:    actor.ID,
		ActorType:  actor.ActorType(),
	})
}

func (s *loanService) CreateLoan(ctx context.Context, actor auth.Actor, in CreateInput) (*Loan, error) {
	s.logger.InfoContext(ctx, "Creating new loan", slog.Int64("clientID", in.ClientID), slog.Int64("productID", in.LoanProductID))
	if err := auth.Require(actor, auth.CapLoanCreate); err != nil {
		return nil, err
	}
	if in.ClientID <= 0 {
		return nil, apperrors.NewValidationError("clientId", "is required")
	}

	p, err := s.products.FindActiveByID(ctx, in.LoanProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan product not found or inactive", slog.Int64("productID", in.LoanProductID))
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrProductNotFound, in.LoanProductID)
		}
		return nil, fmt.Errorf("failed to look up loan product %d: %w", in.LoanProductID, err)
	}

	if in.CoSignerID != nil {
		ok, err := s.coSigners.Exists(ctx, *in.CoSignerID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify co-signer %d: %w", *in.CoSignerID, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrCoSignerNotFound, *in.CoSignerID)
		}
	}

	l, err := NewLoan(in, p, actor.ID, s.now())
	if err != nil {
		s.logger.WarnContext(ctx, "Loan input rejected", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.CreateLoan(ctx, l); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	monitoring.RecordLoanTransition(string(l.Status))
	s.logger.InfoContext(ctx, "Loan created", slog.Int64("loanID", l.ID), slog.String("referenceCode", l.ReferenceCode))
	s.record(ctx, actor, l.ID, audit.ActionCreate, l)
	return l, nil
}

func (s *loanService) visible(actor auth.Actor, l *Loan) bool {
	return auth.HasCapability(actor, auth.CapLoanReadAll) || l.ClientID == actor.ID
}

func (s *loanService) GetLoan(ctx context.Context, actor auth.Actor, loanID int64) (*Loan, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrLoanNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}
	if !s.visible(actor, l) {
		return nil, fmt.Errorf("%w: loan %d belongs to another client", apperrors.ErrForbidden, loanID)
	}

	schedule, err := s.repo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get loan schedule", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get schedule for loan %d: %w", loanID, err)
	}
	l.Schedule = schedule
	return l, nil
}

func (s *loanService) ListLoans(ctx context.Context, actor auth.Actor) ([]*Loan, error) {
	filter := Filter{}
	if !auth.HasCapability(actor, auth.CapLoanReadAll) {
		id := actor.ID
		filter.ClientID = &id
	}
	loans, err := s.repo.ListLoans(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

func (s *loanService) GetSchedule(ctx context.Context, actor auth.Actor, loanID int64) ([]ScheduleEntry, error) {
	l, err := s.GetLoan(ctx, actor, loanID)
	if err != nil {
		return nil, err
	}
	return l.Schedule, nil
}

func (s *loanService) ApproveLoan(ctx context.Context, actor auth.Actor, loanID int64, approvalDate string) (*Loan, error) {
	s.logger.InfoContext(ctx, "Approving loan", slog.Int64("loanID", loanID))
	if err := auth.Require(actor, auth.CapLoanApprove); err != nil {
		return nil, err
	}

	var (
		approved *Loan
		previous Status
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		l, err := s.lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if l.Status != StatusPending && l.Status != StatusInReview {
			return apperrors.NewStateTransitionError("approve", string(l.Status))
		}

		date := truncateDay(s.now())
		if approvalDate != "" {
			if date, err = ParseDate(approvalDate); err != nil {
				return err
			}
		}

		previous = l.Status
		l.ApprovalDate = &date
		l.ApprovedBy = &actor.ID
		l.Status = StatusApproved
		if err := s.repo.UpdateLoanInTx(ctx, tx, l); err != nil {
			return fmt.Errorf("failed to approve loan %d: %w", loanID, err)
		}
		approved = l
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Loan approval failed", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, err
	}

	monitoring.RecordLoanTransition(string(StatusApproved))
	s.logger.InfoContext(ctx, "Loan approved", slog.Int64("loanID", loanID))
	s.record(ctx, actor, loanID, audit.ActionApprove, map[string]any{
		"approvalDate":   approved.ApprovalDate,
		"previousStatus": previous,
	})
	return approved, nil
}

func (s *loanService) DisburseLoan(ctx context.Context, actor auth.Actor, loanID int64, disbursementDate string) (*DisbursementResult, error) {
	s.logger.InfoContext(ctx, "Disbursing loan", slog.Int64("loanID", loanID))
	if err := auth.Require(actor, auth.CapLoanDisburse); err != nil {
		return nil, err
	}

	var result *DisbursementResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		l, err := s.lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if l.DisbursementDate != nil {
			return fmt.Errorf("%w: loan %d on %s", apperrors.ErrAlreadyDisbursed, loanID, l.DisbursementDate.Format(time.DateOnly))
		}
		if l.Status != StatusApproved {
			return apperrors.NewStateTransitionError("disburse", string(l.Status))
		}

		count, err := s.repo.CountScheduleEntriesInTx(ctx, tx, loanID)
		if err != nil {
			return fmt.Errorf("failed to check existing schedule: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: loan %d has %d installments", apperrors.ErrScheduleAlreadyExists, loanID, count)
		}

		date := truncateDay(s.now())
		if disbursementDate != "" {
			if date, err = ParseDate(disbursementDate); err != nil {
				return err
			}
		}

		l.DisbursementDate = &date
		l.DisbursedBy = &actor.ID
		l.Status = StatusDisbursed

		entries, err := l.BuildSchedule(date)
		if err != nil {
			return err
		}
		if err := s.repo.InsertScheduleInTx(ctx, tx, loanID, entries); err != nil {
			return fmt.Errorf("failed to persist schedule for loan %d: %w", loanID, err)
		}
		if err := l.RecomputeTerms(); err != nil {
			return err
		}
		l.AdoptSchedule(entries)

		if err := s.repo.UpdateLoanInTx(ctx, tx, l); err != nil {
			return fmt.Errorf("failed to mark loan %d disbursed: %w", loanID, err)
		}
		l.Schedule = entries
		result = &DisbursementResult{Loan: l, InstallmentsCount: len(entries)}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Loan disbursement failed", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, err
	}

	monitoring.RecordLoanTransition(string(StatusDisbursed))
	s.logger.InfoContext(ctx, "Loan disbursed", slog.Int64("loanID", loanID), slog.Int("installments", result.InstallmentsCount))
	s.record(ctx, actor, loanID, audit.ActionDisburse, map[string]any{
		"disbursementDate":  result.Loan.DisbursementDate,
		"installmentsCount": result.InstallmentsCount,
	})
	return result, nil
}

func (s *loanService) UpdateLoan(ctx context.Context, actor auth.Actor, loanID int64, changes Changes) (*Loan, error) {
	s.logger.InfoContext(ctx, "Updating loan", slog.Int64("loanID", loanID))
	if err := auth.Require(actor, auth.CapLoanUpdate); err != nil {
		return nil, err
	}
	if err := changes.Validate(); err != nil {
		return nil, err
	}
	if changes.CoSignerID != nil {
		ok, err := s.coSigners.Exists(ctx, *changes.CoSignerID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify co-signer %d: %w", *changes.CoSignerID, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrCoSignerNotFound, *changes.CoSignerID)
		}
	}

	var (
		updated  *Loan
		previous Status
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		l, err := s.lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		previous = l.Status

		if changes.TouchesTerms() {
			if l.Status.Terminal() {
				return apperrors.NewStateTransitionError("change terms of", string(l.Status))
			}
			oldPrincipal, oldOutstanding := l.PrincipalAmount, l.OutstandingBalance
			changes.applyFields(l)
			if changes.PrincipalAmount != nil {
				l.RebaseOutstanding(oldPrincipal, oldOutstanding)
			}
			if err := l.RecomputeTerms(); err != nil {
				return err
			}
		} else {
			changes.applyFields(l)
		}

		if changes.Status != nil && *changes.Status != l.Status {
			next := *changes.Status
			if next == StatusApproved || next == StatusDisbursed {
				return apperrors.NewStateTransitionError("move to "+string(next)+" through a generic update", string(l.Status))
			}
			if err := l.SetStatus(next, s.now()); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateLoanInTx(ctx, tx, l); err != nil {
			return fmt.Errorf("failed to update loan %d: %w", loanID, err)
		}
		updated = l
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Loan update failed", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, err
	}

	var payload map[string]any
	if changes.StatusOnly() {
		payload = map[string]any{"statusChange": map[string]Status{"from": previous, "to": updated.Status}}
	} else {
		payload = map[string]any{"changes": changes}
	}
	if previous != updated.Status {
		monitoring.RecordLoanTransition(string(updated.Status))
	}
	s.logger.InfoContext(ctx, "Loan updated", slog.Int64("loanID", loanID))
	s.record(ctx, actor, loanID, audit.ActionUpdate, payload)
	return updated, nil
}

// RecalculateSchedule throws away every installment and rebuilds the schedule
// from the loan's terms plus any overrides. Paid amounts on old entries are lost.
func (s *loanService) RecalculateSchedule(ctx context.Context, actor auth.Actor, loanID int64, overrides RecalculateOverrides) (*RecalculationResult, error) {
	s.logger.InfoContext(ctx, "Recalculating repayment schedule", slog.Int64("loanID", loanID))
	if err := auth.Require(actor, auth.CapLoanRecalculate); err != nil {
		return nil, err
	}
	if err := overrides.Validate(); err != nil {
		return nil, err
	}

	var result *RecalculationResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		l, err := s.lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if l.DisbursementDate == nil {
			return fmt.Errorf("%w: loan %d", apperrors.ErrNoDisbursementDate, loanID)
		}

		oldPrincipal, oldOutstanding := l.PrincipalAmount, l.OutstandingBalance
		if overrides.PrincipalAmount != nil {
			l.PrincipalAmount = overrides.PrincipalAmount.Round(2)
			l.RebaseOutstanding(oldPrincipal, oldOutstanding)
		}
		if overrides.InterestRate != nil {
			l.InterestRate = *overrides.InterestRate
		}
		if overrides.TermMonths != nil {
			l.TermMonths = *overrides.TermMonths
		}
		if overrides.DisbursementDate != nil {
			d := truncateDay(*overrides.DisbursementDate)
			l.DisbursementDate = &d
		}

		removed, err := s.repo.DeleteScheduleInTx(ctx, tx, loanID)
		if err != nil {
			return fmt.Errorf("failed to clear schedule for loan %d: %w", loanID, err)
		}
		entries, err := l.BuildSchedule(*l.DisbursementDate)
		if err != nil {
			return err
		}
		if err := s.repo.InsertScheduleInTx(ctx, tx, loanID, entries); err != nil {
			return fmt.Errorf("failed to persist schedule for loan %d: %w", loanID, err)
		}
		if err := l.RecomputeTerms(); err != nil {
			return err
		}
		l.AdoptSchedule(entries)

		if err := s.repo.UpdateLoanInTx(ctx, tx, l); err != nil {
			return fmt.Errorf("failed to update loan %d: %w", loanID, err)
		}
		l.Schedule = entries
		result = &RecalculationResult{Loan: l, InstallmentsCount: len(entries), RemovedCount: removed}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Schedule recalculation failed", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "Repayment schedule recalculated",
		slog.Int64("loanID", loanID),
		slog.Int64("removed", result.RemovedCount),
		slog.Int("installments", result.InstallmentsCount),
	)
	s.record(ctx, actor, loanID, audit.ActionUpdate, map[string]any{
		"recalculated":      true,
		"overrides":         overrides,
		"removedCount":      result.RemovedCount,
		"installmentsCount": result.InstallmentsCount,
	})
	return result, nil
}

func (s *loanService) DeleteLoan(ctx context.Context, actor auth.Actor, loanID int64) error {
	s.logger.InfoContext(ctx, "Deleting loan", slog.Int64("loanID", loanID))
	if err := auth.Require(actor, auth.CapLoanDelete); err != nil {
		return err
	}

	var snapshot *Loan
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		l, err := s.lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		schedule, err := s.repo.GetScheduleForUpdate(ctx, tx, loanID)
		if err != nil {
			return fmt.Errorf("failed to snapshot schedule for loan %d: %w", loanID, err)
		}
		l.Schedule = schedule

		if err := s.repo.DeleteLoanInTx(ctx, tx, loanID); err != nil {
			return fmt.Errorf("failed to delete loan %d: %w", loanID, err)
		}
		snapshot = l
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Loan deletion failed", slog.Int64("loanID", loanID), slog.Any("error", err))
		return err
	}

	s.logger.InfoContext(ctx, "Loan deleted", slog.Int64("loanID", loanID))
	s.record(ctx, actor, loanID, audit.ActionDelete, snapshot)
	return nil
}

// MarkOverdue flags installments past their due date and moves open loans
// holding such installments to overdue.
func (s *loanService) MarkOverdue(ctx context.Context, asOf time.Time) (int64, []int64, error) {
	entries, err := s.repo.MarkOverdueEntries(ctx, asOf)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to mark overdue installments: %w", err)
	}
	loanIDs, err := s.repo.MarkOverdueLoans(ctx, asOf)
	if err != nil {
		return entries, nil, fmt.Errorf("failed to mark overdue loans: %w", err)
	}

	system := auth.Actor{}
	for _, id := range loanIDs {
		monitoring.RecordLoanTransition(string(StatusOverdue))
		s.record(ctx, system, id, audit.ActionUpdate, map[string]any{
			"statusChange": map[string]Status{"to": StatusOverdue},
			"asOf":         asOf.Format(time.DateOnly),
		})
	}
	s.logger.InfoContext(ctx, "Overdue sweep complete", slog.Int64("entries", entries), slog.Int("loans", len(loanIDs)))
	return entries, loanIDs, nil
}
