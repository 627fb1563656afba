package dto

import (
	"testing"

	"loan-engine/internal/domain/amortization"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductRequest(t *testing.T) {
	ceiling := decimal.NewFromInt(500000)
	r := CreateProductRequest{
		Name:                  "SME Working Capital",
		InterestRate:          decimal.NewFromInt(14),
		InterestType:          "reducing",
		RepaymentPeriodMonths: 12,
		MaxLoanAmount:         &ceiling,
	}
	require.NoError(t, r.Validate())

	p := r.ToProduct()
	assert.Equal(t, amortization.InterestReducing, p.InterestType)
	assert.False(t, p.MinLoanAmount.Valid)
	assert.True(t, p.MaxLoanAmount.Valid)
	assert.True(t, p.MaxLoanAmount.Decimal.Equal(ceiling))

	assert.Error(t, (&CreateProductRequest{InterestType: "flat", RepaymentPeriodMonths: 1}).Validate())
	assert.Error(t, (&CreateProductRequest{Name: "x", InterestType: "compound", RepaymentPeriodMonths: 1}).Validate())
	assert.Error(t, (&CreateProductRequest{Name: "x", InterestType: "flat"}).Validate())
}

func TestUpdateProductRequestToChanges(t *testing.T) {
	floor := decimal.NewFromInt(1000)
	kind := "flat"
	r := UpdateProductRequest{MinLoanAmount: &floor, InterestType: &kind}
	require.NoError(t, r.Validate())

	c := r.ToChanges()
	require.NotNil(t, c.MinLoanAmount)
	assert.True(t, c.MinLoanAmount.Valid)
	assert.Nil(t, c.MaxLoanAmount)
	assert.Equal(t, amortization.InterestFlat, *c.InterestType)

	blank := "  "
	assert.Error(t, (&UpdateProductRequest{Name: &blank}).Validate())
}

func TestNewProductResponse(t *testing.T) {
	r := CreateProductRequest{
		Name:                  "Asset Finance",
		InterestRate:          decimal.RequireFromString("18.5"),
		InterestType:          "flat",
		RepaymentPeriodMonths: 18,
		Fees:                  decimal.NewFromInt(1500),
	}
	p := r.ToProduct()
	p.ID = 3

	resp := NewProductResponse(p)
	assert.Equal(t, "3", resp.ID)
	assert.Equal(t, "18.5", resp.InterestRate)
	assert.Equal(t, "1500.00", resp.Fees)
	assert.Nil(t, resp.MinLoanAmount)
}
