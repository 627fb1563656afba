package payment

import (
	"context"
	"time"

	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

type TxMock struct {
	pgx.Tx
}

var tx pgx.Tx = &TxMock{}

func (m *MockRepository) CreateInTx(ctx context.Context, tx pgx.Tx, p *Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, paymentID int64) (*Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, paymentID int64) (*Payment, error) {
	args := m.Called(ctx, tx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, paymentID int64) error {
	args := m.Called(ctx, tx, paymentID)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]*Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Payment), args.Error(1)
}

// MockLoanRepository covers the parts of loan.Repository a payment touches.
type MockLoanRepository struct {
	mock.Mock
}

var _ loan.Repository = (*MockLoanRepository)(nil)

func (m *MockLoanRepository) CreateLoan(ctx context.Context, l *loan.Loan) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListLoans(ctx context.Context, filter loan.Filter) ([]*loan.Loan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	return m.Called(ctx, tx, l).Error(0)
}

func (m *MockLoanRepository) DeleteLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64) error {
	return m.Called(ctx, tx, loanID).Error(0)
}

func (m *MockLoanRepository) CountScheduleEntriesInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error) {
	args := m.Called(ctx, tx, loanID)
	return args.Int(0), args.Error(1)
}

func (m *MockLoanRepository) InsertScheduleInTx(ctx context.Context, tx pgx.Tx, loanID int64, entries []loan.ScheduleEntry) error {
	return m.Called(ctx, tx, loanID, entries).Error(0)
}

func (m *MockLoanRepository) DeleteScheduleInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int64, error) {
	args := m.Called(ctx, tx, loanID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) GetScheduleByLoanID(ctx context.Context, loanID int64) ([]loan.ScheduleEntry, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.ScheduleEntry), args.Error(1)
}

func (m *MockLoanRepository) GetScheduleForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) ([]loan.ScheduleEntry, error) {
	args := m.Called(ctx, tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.ScheduleEntry), args.Error(1)
}

func (m *MockLoanRepository) UpdateScheduleEntryInTx(ctx context.Context, tx pgx.Tx, entry *loan.ScheduleEntry) error {
	return m.Called(ctx, tx, entry).Error(0)
}

func (m *MockLoanRepository) MarkOverdueEntries(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) MarkOverdueLoans(ctx context.Context, asOf time.Time) ([]int64, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockLoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockLoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockLoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(ctx context.Context, entry audit.Entry) {
	m.Called(ctx, entry)
}
