package product

import (
	"strings"
	"time"

	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// Product is the template a loan copies its terms from at creation.
type Product struct {
	ID                    int64                     `json:"id"`
	Name                  string                    `json:"name"`
	Description           string                    `json:"description,omitempty"`
	InterestRate          decimal.Decimal           `json:"interestRate"`
	InterestType          amortization.InterestType `json:"interestType"`
	RepaymentPeriodMonths int                       `json:"repaymentPeriodMonths"`
	MinLoanAmount         decimal.NullDecimal       `json:"minLoanAmount"`
	MaxLoanAmount         decimal.NullDecimal       `json:"maxLoanAmount"`
	Fees                  decimal.Decimal           `json:"fees"`
	PenaltyRate           decimal.Decimal           `json:"penaltyRate"`
	Currency              string                    `json:"currency"`
	IsActive              bool                      `json:"isActive"`
	CreatedAt             time.Time                 `json:"createdAt"`
	UpdatedAt             time.Time                 `json:"updatedAt"`
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.NewValidationError("name", "is required")
	}
	if !p.InterestType.Valid() {
		return apperrors.NewValidationError("interestType", "must be flat or reducing")
	}
	if p.InterestRate.IsNegative() {
		return apperrors.NewValidationError("interestRate", "cannot be negative")
	}
	if p.RepaymentPeriodMonths < 1 {
		return apperrors.NewValidationError("repaymentPeriodMonths", "must be at least 1")
	}
	if p.Fees.IsNegative() {
		return apperrors.NewValidationError("fees", "cannot be negative")
	}
	if p.MinLoanAmount.Valid && p.MaxLoanAmount.Valid && p.MinLoanAmount.Decimal.GreaterThan(p.MaxLoanAmount.Decimal) {
		return apperrors.NewValidationError("minLoanAmount", "cannot exceed maxLoanAmount")
	}
	return nil
}

// AllowsPrincipal reports whether amount falls inside the product's configured range.
// An unset bound does not constrain.
func (p *Product) AllowsPrincipal(amount decimal.Decimal) bool {
	if p.MinLoanAmount.Valid && amount.LessThan(p.MinLoanAmount.Decimal) {
		return false
	}
	if p.MaxLoanAmount.Valid && amount.GreaterThan(p.MaxLoanAmount.Decimal) {
		return false
	}
	return true
}

// Changes carries a partial update; nil fields are left untouched.
type Changes struct {
	Name                  *string
	Description           *string
	InterestRate          *decimal.Decimal
	InterestType          *amortization.InterestType
	RepaymentPeriodMonths *int
	MinLoanAmount         *decimal.NullDecimal
	MaxLoanAmount         *decimal.NullDecimal
	Fees                  *decimal.Decimal
	PenaltyRate           *decimal.Decimal
	Currency              *string
	IsActive              *bool
}

func (c Changes) Apply(p *Product) {
	if c.Name != nil {
		p.Name = strings.TrimSpace(*c.Name)
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.InterestRate != nil {
		p.InterestRate = *c.InterestRate
	}
	if c.InterestType != nil {
		p.InterestType = *c.InterestType
	}
	if c.RepaymentPeriodMonths != nil {
		p.RepaymentPeriodMonths = *c.RepaymentPeriodMonths
	}
	if c.MinLoanAmount != nil {
		p.MinLoanAmount = *c.MinLoanAmount
	}
	if c.MaxLoanAmount != nil {
		p.MaxLoanAmount = *c.MaxLoanAmount
	}
	if c.Fees != nil {
		p.Fees = *c.Fees
	}
	if c.PenaltyRate != nil {
		p.PenaltyRate = *c.PenaltyRate
	}
	if c.Currency != nil {
		p.Currency = strings.ToUpper(strings.TrimSpace(*c.Currency))
	}
	if c.IsActive != nil {
		p.IsActive = *c.IsActive
	}
}
