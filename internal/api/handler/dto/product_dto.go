package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/domain/product"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name                  string           `json:"name"`
	Description           string           `json:"description,omitempty"`
	InterestRate          decimal.Decimal  `json:"interestRate"`
	InterestType          string           `json:"interestType"`
	RepaymentPeriodMonths int              `json:"repaymentPeriodMonths"`
	MinLoanAmount         *decimal.Decimal `json:"minLoanAmount,omitempty"`
	MaxLoanAmount         *decimal.Decimal `json:"maxLoanAmount,omitempty"`
	Fees                  decimal.Decimal  `json:"fees"`
	PenaltyRate           decimal.Decimal  `json:"penaltyRate"`
	Currency              string           `json:"currency,omitempty"`
}

func (r *CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !amortization.InterestType(r.InterestType).Valid() {
		return fmt.Errorf("interestType must be flat or reducing")
	}
	if r.RepaymentPeriodMonths < 1 {
		return fmt.Errorf("repaymentPeriodMonths must be at least 1")
	}
	return nil
}

func (r *CreateProductRequest) ToProduct() *product.Product {
	return &product.Product{
		Name:                  r.Name,
		Description:           r.Description,
		InterestRate:          r.InterestRate,
		InterestType:          amortization.InterestType(r.InterestType),
		RepaymentPeriodMonths: r.RepaymentPeriodMonths,
		MinLoanAmount:         nullDecimal(r.MinLoanAmount),
		MaxLoanAmount:         nullDecimal(r.MaxLoanAmount),
		Fees:                  r.Fees,
		PenaltyRate:           r.PenaltyRate,
		Currency:              r.Currency,
	}
}

// UpdateProductRequest changes only the fields present. Loan bounds can be
// moved but not cleared through this request.
type UpdateProductRequest struct {
	Name                  *string          `json:"name,omitempty"`
	Description           *string          `json:"description,omitempty"`
	InterestRate          *decimal.Decimal `json:"interestRate,omitempty"`
	InterestType          *string          `json:"interestType,omitempty"`
	RepaymentPeriodMonths *int             `json:"repaymentPeriodMonths,omitempty"`
	MinLoanAmount         *decimal.Decimal `json:"minLoanAmount,omitempty"`
	MaxLoanAmount         *decimal.Decimal `json:"maxLoanAmount,omitempty"`
	Fees                  *decimal.Decimal `json:"fees,omitempty"`
	PenaltyRate           *decimal.Decimal `json:"penaltyRate,omitempty"`
	Currency              *string          `json:"currency,omitempty"`
	IsActive              *bool            `json:"isActive,omitempty"`
}

func (r *UpdateProductRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if r.InterestType != nil && !amortization.InterestType(*r.InterestType).Valid() {
		return fmt.Errorf("interestType must be flat or reducing")
	}
	return nil
}

func (r *UpdateProductRequest) ToChanges() product.Changes {
	c := product.Changes{
		Name:                  r.Name,
		Description:           r.Description,
		InterestRate:          r.InterestRate,
		RepaymentPeriodMonths: r.RepaymentPeriodMonths,
		Fees:                  r.Fees,
		PenaltyRate:           r.PenaltyRate,
		Currency:              r.Currency,
		IsActive:              r.IsActive,
	}
	if r.InterestType != nil {
		t := amortization.InterestType(*r.InterestType)
		c.InterestType = &t
	}
	if r.MinLoanAmount != nil {
		v := nullDecimal(r.MinLoanAmount)
		c.MinLoanAmount = &v
	}
	if r.MaxLoanAmount != nil {
		v := nullDecimal(r.MaxLoanAmount)
		c.MaxLoanAmount = &v
	}
	return c
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

type ProductResponse struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description,omitempty"`
	InterestRate          string    `json:"interestRate"`
	InterestType          string    `json:"interestType"`
	RepaymentPeriodMonths int       `json:"repaymentPeriodMonths"`
	MinLoanAmount         *string   `json:"minLoanAmount,omitempty"`
	MaxLoanAmount         *string   `json:"maxLoanAmount,omitempty"`
	Fees                  string    `json:"fees"`
	PenaltyRate           string    `json:"penaltyRate"`
	Currency              string    `json:"currency"`
	IsActive              bool      `json:"isActive"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func NewProductResponse(p *product.Product) ProductResponse {
	bound := func(d decimal.NullDecimal) *string {
		if !d.Valid {
			return nil
		}
		s := formatDecimalMoney(d.Decimal)
		return &s
	}

	return ProductResponse{
		ID:                    strconv.FormatInt(p.ID, 10),
		Name:                  p.Name,
		Description:           p.Description,
		InterestRate:          p.InterestRate.String(),
		InterestType:          string(p.InterestType),
		RepaymentPeriodMonths: p.RepaymentPeriodMonths,
		MinLoanAmount:         bound(p.MinLoanAmount),
		MaxLoanAmount:         bound(p.MaxLoanAmount),
		Fees:                  formatDecimalMoney(p.Fees),
		PenaltyRate:           p.PenaltyRate.String(),
		Currency:              p.Currency,
		IsActive:              p.IsActive,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func NewProductListResponse(products []*product.Product) []ProductResponse {
	resp := make([]ProductResponse, len(products))
	for i, p := range products {
		resp[i] = NewProductResponse(p)
	}
	return resp
}
