package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/domain/product"
	"loan-engine/internal/pkg/apperrors"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) FindActiveByID(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProductRepo) Create(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, activeOnly bool) ([]*product.Product, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func sampleProduct() *product.Product {
	return &product.Product{
		ID:                    3,
		Name:                  "Boda Boda Asset Finance",
		InterestRate:          decimal.NewFromInt(18),
		InterestType:          amortization.InterestFlat,
		RepaymentPeriodMonths: 18,
		Fees:                  decimal.NewFromInt(1500),
		PenaltyRate:           decimal.Zero,
		Currency:              "KES",
		IsActive:              true,
		CreatedAt:             time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		UpdatedAt:             time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestFindActiveByIDMissPopulatesCache(t *testing.T) {
	ctx := context.Background()
	db, redisMock := redismock.NewClientMock()
	repo := new(mockProductRepo)
	c := NewProductCache(repo, db, time.Minute, logger)

	p := sampleProduct()
	data, err := json.Marshal(p)
	require.NoError(t, err)

	redisMock.ExpectGet("loan-product:3").RedisNil()
	repo.On("FindActiveByID", ctx, int64(3)).Return(p, nil).Once()
	redisMock.ExpectSet("loan-product:3", data, time.Minute).SetVal("OK")

	got, err := c.FindActiveByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)

	repo.AssertExpectations(t)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestFindActiveByIDHitSkipsRepository(t *testing.T) {
	ctx := context.Background()
	db, redisMock := redismock.NewClientMock()
	repo := new(mockProductRepo)
	c := NewProductCache(repo, db, time.Minute, logger)

	data, err := json.Marshal(sampleProduct())
	require.NoError(t, err)
	redisMock.ExpectGet("loan-product:3").SetVal(string(data))

	got, err := c.FindActiveByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.True(t, got.InterestRate.Equal(decimal.NewFromInt(18)))
	assert.Equal(t, amortization.InterestFlat, got.InterestType)

	repo.AssertNotCalled(t, "FindActiveByID", mock.Anything, mock.Anything)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestFindActiveByIDFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	db, redisMock := redismock.NewClientMock()
	repo := new(mockProductRepo)
	c := NewProductCache(repo, db, time.Minute, logger)

	p := sampleProduct()
	data, _ := json.Marshal(p)

	redisMock.ExpectGet("loan-product:3").SetErr(errors.New("dial tcp: connection refused"))
	repo.On("FindActiveByID", ctx, int64(3)).Return(p, nil)
	redisMock.ExpectSet("loan-product:3", data, time.Minute).SetErr(errors.New("dial tcp: connection refused"))

	got, err := c.FindActiveByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestFindActiveByIDDoesNotCacheMisses(t *testing.T) {
	ctx := context.Background()
	db, redisMock := redismock.NewClientMock()
	repo := new(mockProductRepo)
	c := NewProductCache(repo, db, time.Minute, logger)

	redisMock.ExpectGet("loan-product:8").RedisNil()
	repo.On("FindActiveByID", ctx, int64(8)).Return(nil, apperrors.ErrProductNotFound)

	_, err := c.FindActiveByID(ctx, 8)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestWritesInvalidate(t *testing.T) {
	ctx := context.Background()
	db, redisMock := redismock.NewClientMock()
	repo := new(mockProductRepo)
	c := NewProductCache(repo, db, 0, logger)
	assert.Equal(t, defaultProductTTL, c.ttl)

	p := sampleProduct()
	repo.On("Update", ctx, p).Return(nil)
	repo.On("SetActive", ctx, int64(3), false).Return(nil)
	redisMock.ExpectDel("loan-product:3").SetVal(1)
	redisMock.ExpectDel("loan-product:3").SetVal(0)

	require.NoError(t, c.Update(ctx, p))
	require.NoError(t, c.SetActive(ctx, 3, false))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestFailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	db, redisMock := redismock.NewClientMock()
	repo := new(mockProductRepo)
	c := NewProductCache(repo, db, time.Minute, logger)

	repo.On("SetActive", ctx, int64(3), false).Return(apperrors.ErrProductNotFound)

	err := c.SetActive(ctx, 3, false)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestPassThroughReads(t *testing.T) {
	ctx := context.Background()
	db, _ := redismock.NewClientMock()
	repo := new(mockProductRepo)
	c := NewProductCache(repo, db, time.Minute, logger)

	repo.On("List", ctx, true).Return([]*product.Product{sampleProduct()}, nil)

	products, err := c.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
