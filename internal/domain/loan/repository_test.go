package loan

import (
	"context"
	"time"

	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/product"

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

func (m *MockRepository) CreateLoan(ctx context.Context, l *Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockRepository) GetLoanByID(ctx context.Context, loanID int64) (*Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Loan), args.Error(1)
}

func (m *MockRepository) ListLoans(ctx context.Context, filter Filter) ([]*Loan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Loan), args.Error(1)
}

func (m *MockRepository) GetLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error) {
	args := m.Called(ctx, tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Loan), args.Error(1)
}

func (m *MockRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *Loan) error {
	args := m.Called(ctx, tx, l)
	return args.Error(0)
}

func (m *MockRepository) DeleteLoanInTx(ctx context.Context, tx pgx.Tx, loanID int64) error {
	args := m.Called(ctx, tx, loanID)
	return args.Error(0)
}

func (m *MockRepository) CountScheduleEntriesInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error) {
	args := m.Called(ctx, tx, loanID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) InsertScheduleInTx(ctx context.Context, tx pgx.Tx, loanID int64, entries []ScheduleEntry) error {
	args := m.Called(ctx, tx, loanID, entries)
	return args.Error(0)
}

func (m *MockRepository) DeleteScheduleInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int64, error) {
	args := m.Called(ctx, tx, loanID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetScheduleByLoanID(ctx context.Context, loanID int64) ([]ScheduleEntry, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ScheduleEntry), args.Error(1)
}

func (m *MockRepository) GetScheduleForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) ([]ScheduleEntry, error) {
	args := m.Called(ctx, tx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ScheduleEntry), args.Error(1)
}

func (m *MockRepository) UpdateScheduleEntryInTx(ctx context.Context, tx pgx.Tx, entry *ScheduleEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockRepository) MarkOverdueEntries(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) MarkOverdueLoans(ctx context.Context, asOf time.Time) ([]int64, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) FindActiveByID(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

type MockCoSigners struct {
	mock.Mock
}

func (m *MockCoSigners) Exists(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(ctx context.Context, entry audit.Entry) {
	m.Called(ctx, entry)
}
