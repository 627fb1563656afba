package dto

import (
	"testing"
	"time"

	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLoanRequestValidate(t *testing.T) {
	valid := func() CreateLoanRequest {
		return CreateLoanRequest{
			ClientID:        9,
			LoanProductID:   3,
			PrincipalAmount: decimal.NewFromInt(100000),
			StartDate:       "2025-02-01",
		}
	}

	r := valid()
	assert.NoError(t, r.Validate())

	tests := map[string]func(r *CreateLoanRequest){
		"missing client":    func(r *CreateLoanRequest) { r.ClientID = 0 },
		"missing product":   func(r *CreateLoanRequest) { r.LoanProductID = -1 },
		"zero principal":    func(r *CreateLoanRequest) { r.PrincipalAmount = decimal.Zero },
		"bad frequency":     func(r *CreateLoanRequest) { r.PaymentFrequency = "daily" },
		"bad start date":    func(r *CreateLoanRequest) { r.StartDate = "01/02/2025" },
		"bad co-signer ref": func(r *CreateLoanRequest) { id := int64(0); r.CoSignerID = &id },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := valid()
			mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestCreateLoanRequestToInput(t *testing.T) {
	r := CreateLoanRequest{
		ClientID:        9,
		LoanProductID:   3,
		PrincipalAmount: decimal.NewFromInt(50000),
		StartDate:       "2025-02-01",
		Collateral:      "Logbook KDA 123X",
	}

	in := r.ToInput(amortization.FrequencyBiWeekly)
	assert.Equal(t, amortization.FrequencyBiWeekly, in.PaymentFrequency)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), in.StartDate)
	assert.Equal(t, "Logbook KDA 123X", in.Collateral)

	r.PaymentFrequency = "weekly"
	r.StartDate = ""
	in = r.ToInput(amortization.FrequencyMonthly)
	assert.Equal(t, amortization.FrequencyWeekly, in.PaymentFrequency)
	assert.True(t, in.StartDate.IsZero())
}

func TestUpdateLoanRequestToChanges(t *testing.T) {
	status := "cancelled"
	freq := "quarterly"
	start := "2025-03-01"
	r := UpdateLoanRequest{Status: &status, PaymentFrequency: &freq, StartDate: &start}

	c, err := r.ToChanges()
	require.NoError(t, err)
	assert.Equal(t, loan.StatusCancelled, *c.Status)
	assert.Equal(t, amortization.FrequencyQuarterly, *c.PaymentFrequency)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *c.StartDate)

	bad := "sideways"
	_, err = (&UpdateLoanRequest{InterestType: &bad}).ToChanges()
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	badDate := "yesterday"
	_, err = (&UpdateLoanRequest{StartDate: &badDate}).ToChanges()
	assert.ErrorIs(t, err, apperrors.ErrInvalidDate)
}

func TestRecalculateRequestToOverrides(t *testing.T) {
	term := 6
	date := "2025-04-15T09:30:00Z"
	o, err := (&RecalculateRequest{TermMonths: &term, DisbursementDate: &date}).ToOverrides()
	require.NoError(t, err)
	assert.Equal(t, 6, *o.TermMonths)
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), *o.DisbursementDate)

	zero := 0
	_, err = (&RecalculateRequest{TermMonths: &zero}).ToOverrides()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLoanDateRequestValidate(t *testing.T) {
	assert.NoError(t, (&LoanDateRequest{}).Validate())
	assert.NoError(t, (&LoanDateRequest{Date: "2025-01-31"}).Validate())
	assert.Error(t, (&LoanDateRequest{Date: "2025-02-30"}).Validate())
}

func TestNewLoanResponse(t *testing.T) {
	disbursed := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	next := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	mockLoan := &loan.Loan{
		ID:                 1,
		ReferenceCode:      "LN-1A2B3C4D",
		ClientID:           9,
		LoanProductID:      3,
		PrincipalAmount:    decimal.NewFromInt(120000),
		Currency:           "KES",
		InterestRate:       decimal.RequireFromString("12.5"),
		InterestType:       amortization.InterestReducing,
		TermMonths:         12,
		PaymentFrequency:   amortization.FrequencyMonthly,
		StartDate:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DisbursementDate:   &disbursed,
		NextPaymentDate:    &next,
		InstallmentAmount:  decimal.RequireFromString("10690.1"),
		OutstandingBalance: decimal.NewFromInt(120000),
		Status:             loan.StatusDisbursed,
		CreatedBy:          2,
		Schedule: []loan.ScheduleEntry{
			{
				ID:                11,
				InstallmentNumber: 1,
				DueDate:           next,
				PrincipalAmount:   decimal.RequireFromString("9440.1"),
				InterestAmount:    decimal.NewFromInt(1250),
				TotalAmount:       decimal.RequireFromString("10690.1"),
				PaidAmount:        decimal.NewFromInt(500),
				Status:            loan.EntryPartial,
				RemainingBalance:  decimal.RequireFromString("110559.9"),
			},
		},
	}

	t.Run("without schedule", func(t *testing.T) {
		response := NewLoanResponse(mockLoan, false)

		assert.Equal(t, "1", response.ID)
		assert.Equal(t, "120000.00", response.PrincipalAmount)
		assert.Equal(t, "12.5", response.InterestRate)
		assert.Equal(t, "10690.10", response.InstallmentAmount)
		assert.Equal(t, "2025-01-01", response.StartDate)
		assert.Equal(t, "2026-01-01", response.EndDate)
		assert.Equal(t, "2025-01-15", *response.DisbursementDate)
		assert.Nil(t, response.ApprovalDate)
		assert.Equal(t, string(loan.StatusDisbursed), response.Status)
		assert.Nil(t, response.Schedule)
	})

	t.Run("with schedule", func(t *testing.T) {
		response := NewLoanResponse(mockLoan, true)

		require.Len(t, response.Schedule, 1)
		entry := response.Schedule[0]
		assert.Equal(t, "11", entry.ID)
		assert.Equal(t, "2025-02-14", entry.DueDate)
		assert.Equal(t, "10690.10", entry.TotalAmount)
		assert.Equal(t, "500.00", *entry.PaidAmount)
		assert.Nil(t, entry.PaidDate)
		assert.Equal(t, "partial", entry.Status)
	})
}
