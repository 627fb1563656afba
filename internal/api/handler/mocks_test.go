package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"loan-engine/internal/auth"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/payment"
	"loan-engine/internal/domain/product"
	"loan-engine/internal/domain/user"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	adminActor  = auth.Actor{ID: 1, Role: auth.RoleAdmin}
	clientActor = auth.Actor{ID: 9, Role: auth.RoleClient}
)

// withRequestContext attaches the actor and chi URL params the router would set.
func withRequestContext(req *http.Request, actor *auth.Actor, params ...string) *http.Request {
	ctx := req.Context()
	if actor != nil {
		ctx = auth.WithActor(ctx, *actor)
	}
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, actor auth.Actor, in loan.CreateInput) (*loan.Loan, error) {
	args := m.Called(ctx, actor, in)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, actor auth.Actor, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, actor, loanID)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, actor auth.Actor) ([]*loan.Loan, error) {
	args := m.Called(ctx, actor)
	loans, _ := args.Get(0).([]*loan.Loan)
	return loans, args.Error(1)
}

func (m *MockLoanService) GetSchedule(ctx context.Context, actor auth.Actor, loanID int64) ([]loan.ScheduleEntry, error) {
	args := m.Called(ctx, actor, loanID)
	entries, _ := args.Get(0).([]loan.ScheduleEntry)
	return entries, args.Error(1)
}

func (m *MockLoanService) ApproveLoan(ctx context.Context, actor auth.Actor, loanID int64, approvalDate string) (*loan.Loan, error) {
	args := m.Called(ctx, actor, loanID, approvalDate)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) DisburseLoan(ctx context.Context, actor auth.Actor, loanID int64, disbursementDate string) (*loan.DisbursementResult, error) {
	args := m.Called(ctx, actor, loanID, disbursementDate)
	if res, ok := args.Get(0).(*loan.DisbursementResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) UpdateLoan(ctx context.Context, actor auth.Actor, loanID int64, changes loan.Changes) (*loan.Loan, error) {
	args := m.Called(ctx, actor, loanID, changes)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) RecalculateSchedule(ctx context.Context, actor auth.Actor, loanID int64, overrides loan.RecalculateOverrides) (*loan.RecalculationResult, error) {
	args := m.Called(ctx, actor, loanID, overrides)
	if res, ok := args.Get(0).(*loan.RecalculationResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) DeleteLoan(ctx context.Context, actor auth.Actor, loanID int64) error {
	return m.Called(ctx, actor, loanID).Error(0)
}

func (m *MockLoanService) MarkOverdue(ctx context.Context, asOf time.Time) (int64, []int64, error) {
	args := m.Called(ctx, asOf)
	ids, _ := args.Get(1).([]int64)
	return args.Get(0).(int64), ids, args.Error(2)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, actor auth.Actor, in payment.CreateInput) (*payment.Payment, error) {
	args := m.Called(ctx, actor, in)
	if p, ok := args.Get(0).(*payment.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentService) DeletePayment(ctx context.Context, actor auth.Actor, paymentID int64) error {
	return m.Called(ctx, actor, paymentID).Error(0)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, actor auth.Actor) ([]*payment.Payment, error) {
	args := m.Called(ctx, actor)
	payments, _ := args.Get(0).([]*payment.Payment)
	return payments, args.Error(1)
}

func (m *MockPaymentService) ListPaymentsByLoan(ctx context.Context, actor auth.Actor, loanID int64) ([]*payment.Payment, error) {
	args := m.Called(ctx, actor, loanID)
	payments, _ := args.Get(0).([]*payment.Payment)
	return payments, args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, actor auth.Actor, p *product.Product) (*product.Product, error) {
	args := m.Called(ctx, actor, p)
	if created, ok := args.Get(0).(*product.Product); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*product.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, activeOnly bool) ([]*product.Product, error) {
	args := m.Called(ctx, activeOnly)
	products, _ := args.Get(0).([]*product.Product)
	return products, args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, actor auth.Actor, id int64, changes product.Changes) (*product.Product, error) {
	args := m.Called(ctx, actor, id, changes)
	if p, ok := args.Get(0).(*product.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductService) DeactivateProduct(ctx context.Context, actor auth.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
