package dto

import (
	"fmt"
	"strconv"
	"time"

	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	ClientID         int64           `json:"clientId"`
	LoanProductID    int64           `json:"loanProductId"`
	PrincipalAmount  decimal.Decimal `json:"principalAmount"`
	StartDate        string          `json:"startDate,omitempty"`
	PaymentFrequency string          `json:"paymentFrequency,omitempty"`
	Collateral       string          `json:"collateral,omitempty"`
	CoSignerID       *int64          `json:"coSignerId,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

func (r *CreateLoanRequest) Validate() error {
	if r.ClientID <= 0 {
		return fmt.Errorf("clientId must be a positive number")
	}
	if r.LoanProductID <= 0 {
		return fmt.Errorf("loanProductId must be a positive number")
	}
	if !r.PrincipalAmount.IsPositive() {
		return fmt.Errorf("principalAmount must be greater than zero")
	}
	if r.PaymentFrequency != "" && !amortization.Frequency(r.PaymentFrequency).Valid() {
		return fmt.Errorf("paymentFrequency must be monthly, bi-weekly, weekly or quarterly")
	}
	if r.CoSignerID != nil && *r.CoSignerID <= 0 {
		return fmt.Errorf("coSignerId must be a positive number")
	}
	if _, err := parseOptionalDate("startDate", &r.StartDate); err != nil {
		return err
	}
	return nil
}

// ToInput converts a validated request; defaultFrequency applies when the
// request names none.
func (r *CreateLoanRequest) ToInput(defaultFrequency amortization.Frequency) loan.CreateInput {
	in := loan.CreateInput{
		ClientID:         r.ClientID,
		LoanProductID:    r.LoanProductID,
		PrincipalAmount:  r.PrincipalAmount,
		PaymentFrequency: amortization.Frequency(r.PaymentFrequency),
		Collateral:       r.Collateral,
		CoSignerID:       r.CoSignerID,
		Notes:            r.Notes,
	}
	if in.PaymentFrequency == "" {
		in.PaymentFrequency = defaultFrequency
	}
	if start, _ := parseOptionalDate("startDate", &r.StartDate); start != nil {
		in.StartDate = *start
	}
	return in
}

type UpdateLoanRequest struct {
	PrincipalAmount  *decimal.Decimal `json:"principalAmount,omitempty"`
	InterestRate     *decimal.Decimal `json:"interestRate,omitempty"`
	InterestType     *string          `json:"interestType,omitempty"`
	TermMonths       *int             `json:"termMonths,omitempty"`
	PaymentFrequency *string          `json:"paymentFrequency,omitempty"`
	StartDate        *string          `json:"startDate,omitempty"`
	Fees             *decimal.Decimal `json:"fees,omitempty"`
	Penalties        *decimal.Decimal `json:"penalties,omitempty"`
	Collateral       *string          `json:"collateral,omitempty"`
	CoSignerID       *int64           `json:"coSignerId,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	Status           *string          `json:"status,omitempty"`
}

// ToChanges converts the request and runs the domain validation on the result.
func (r *UpdateLoanRequest) ToChanges() (loan.Changes, error) {
	startDate, err := parseOptionalDate("startDate", r.StartDate)
	if err != nil {
		return loan.Changes{}, err
	}

	c := loan.Changes{
		PrincipalAmount: r.PrincipalAmount,
		InterestRate:    r.InterestRate,
		TermMonths:      r.TermMonths,
		StartDate:       startDate,
		Fees:            r.Fees,
		Penalties:       r.Penalties,
		Collateral:      r.Collateral,
		CoSignerID:      r.CoSignerID,
		Notes:           r.Notes,
	}
	if r.InterestType != nil {
		t := amortization.InterestType(*r.InterestType)
		c.InterestType = &t
	}
	if r.PaymentFrequency != nil {
		f := amortization.Frequency(*r.PaymentFrequency)
		c.PaymentFrequency = &f
	}
	if r.Status != nil {
		s := loan.Status(*r.Status)
		c.Status = &s
	}
	return c, c.Validate()
}

// LoanDateRequest carries the effective date of an approval or disbursement.
// An empty date means today.
type LoanDateRequest struct {
	Date string `json:"date,omitempty"`
}

func (r *LoanDateRequest) Validate() error {
	_, err := parseOptionalDate("date", &r.Date)
	return err
}

type RecalculateRequest struct {
	PrincipalAmount  *decimal.Decimal `json:"principalAmount,omitempty"`
	InterestRate     *decimal.Decimal `json:"interestRate,omitempty"`
	TermMonths       *int             `json:"termMonths,omitempty"`
	DisbursementDate *string          `json:"disbursementDate,omitempty"`
}

func (r *RecalculateRequest) ToOverrides() (loan.RecalculateOverrides, error) {
	disbursementDate, err := parseOptionalDate("disbursementDate", r.DisbursementDate)
	if err != nil {
		return loan.RecalculateOverrides{}, err
	}
	o := loan.RecalculateOverrides{
		PrincipalAmount:  r.PrincipalAmount,
		InterestRate:     r.InterestRate,
		TermMonths:       r.TermMonths,
		DisbursementDate: disbursementDate,
	}
	return o, o.Validate()
}

type LoanResponse struct {
	ID                 string                  `json:"id"`
	ReferenceCode      string                  `json:"referenceCode"`
	ClientID           string                  `json:"clientId"`
	LoanProductID      string                  `json:"loanProductId"`
	PrincipalAmount    string                  `json:"principalAmount"`
	Currency           string                  `json:"currency"`
	InterestRate       string                  `json:"interestRate"`
	InterestType       string                  `json:"interestType"`
	TermMonths         int                     `json:"termMonths"`
	PaymentFrequency   string                  `json:"paymentFrequency"`
	StartDate          string                  `json:"startDate"`
	EndDate            string                  `json:"endDate"`
	ApprovalDate       *string                 `json:"approvalDate,omitempty"`
	DisbursementDate   *string                 `json:"disbursementDate,omitempty"`
	NextPaymentDate    *string                 `json:"nextPaymentDate,omitempty"`
	InstallmentAmount  string                  `json:"installmentAmount"`
	OutstandingBalance string                  `json:"outstandingBalance"`
	TotalInterest      string                  `json:"totalInterest"`
	TotalPayable       string                  `json:"totalPayable"`
	InstallmentsCount  int                     `json:"installmentsCount"`
	Fees               string                  `json:"fees"`
	Penalties          string                  `json:"penalties"`
	Collateral         string                  `json:"collateral,omitempty"`
	CoSignerID         *int64                  `json:"coSignerId,omitempty"`
	Notes              string                  `json:"notes,omitempty"`
	Status             string                  `json:"status"`
	CreatedBy          string                  `json:"createdBy"`
	PaidAt             *time.Time              `json:"paidAt,omitempty"`
	CancelledAt        *time.Time              `json:"cancelledAt,omitempty"`
	DefaultedAt        *time.Time              `json:"defaultedAt,omitempty"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt"`
	Schedule           []ScheduleEntryResponse `json:"schedule,omitempty"`
}

type ScheduleEntryResponse struct {
	ID                string  `json:"id"`
	InstallmentNumber int     `json:"installmentNumber"`
	DueDate           string  `json:"dueDate"`
	PrincipalAmount   string  `json:"principalAmount"`
	InterestAmount    string  `json:"interestAmount"`
	TotalAmount       string  `json:"totalAmount"`
	PaidAmount        *string `json:"paidAmount,omitempty"`
	PaidDate          *string `json:"paidDate,omitempty"`
	RemainingBalance  string  `json:"remainingBalance"`
	Status            string  `json:"status"`
}

type DisbursementResponse struct {
	Loan              LoanResponse `json:"loan"`
	InstallmentsCount int          `json:"installmentsCount"`
}

type RecalculationResponse struct {
	Loan              LoanResponse `json:"loan"`
	InstallmentsCount int          `json:"installmentsCount"`
	RemovedCount      int64        `json:"removedCount"`
}

func formatDecimalMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func NewLoanResponse(domainLoan *loan.Loan, includeSchedule bool) LoanResponse {
	resp := LoanResponse{
		ID:                 strconv.FormatInt(domainLoan.ID, 10),
		ReferenceCode:      domainLoan.ReferenceCode,
		ClientID:           strconv.FormatInt(domainLoan.ClientID, 10),
		LoanProductID:      strconv.FormatInt(domainLoan.LoanProductID, 10),
		PrincipalAmount:    formatDecimalMoney(domainLoan.PrincipalAmount),
		Currency:           domainLoan.Currency,
		InterestRate:       domainLoan.InterestRate.String(),
		InterestType:       string(domainLoan.InterestType),
		TermMonths:         domainLoan.TermMonths,
		PaymentFrequency:   string(domainLoan.PaymentFrequency),
		StartDate:          formatDate(domainLoan.StartDate),
		EndDate:            formatDate(domainLoan.EndDate),
		ApprovalDate:       formatOptionalDate(domainLoan.ApprovalDate),
		DisbursementDate:   formatOptionalDate(domainLoan.DisbursementDate),
		NextPaymentDate:    formatOptionalDate(domainLoan.NextPaymentDate),
		InstallmentAmount:  formatDecimalMoney(domainLoan.InstallmentAmount),
		OutstandingBalance: formatDecimalMoney(domainLoan.OutstandingBalance),
		TotalInterest:      formatDecimalMoney(domainLoan.TotalInterest),
		TotalPayable:       formatDecimalMoney(domainLoan.TotalPayable),
		InstallmentsCount:  domainLoan.InstallmentsCount,
		Fees:               formatDecimalMoney(domainLoan.Fees),
		Penalties:          formatDecimalMoney(domainLoan.Penalties),
		Collateral:         domainLoan.Collateral,
		CoSignerID:         domainLoan.CoSignerID,
		Notes:              domainLoan.Notes,
		Status:             string(domainLoan.Status),
		CreatedBy:          strconv.FormatInt(domainLoan.CreatedBy, 10),
		PaidAt:             domainLoan.PaidAt,
		CancelledAt:        domainLoan.CancelledAt,
		DefaultedAt:        domainLoan.DefaultedAt,
		CreatedAt:          domainLoan.CreatedAt,
		UpdatedAt:          domainLoan.UpdatedAt,
	}

	if includeSchedule && domainLoan.Schedule != nil {
		resp.Schedule = NewScheduleResponse(domainLoan.Schedule)
	}

	return resp
}

func NewLoanListResponse(loans []*loan.Loan) []LoanResponse {
	resp := make([]LoanResponse, len(loans))
	for i, l := range loans {
		resp[i] = NewLoanResponse(l, false)
	}
	return resp
}

func NewScheduleResponse(entries []loan.ScheduleEntry) []ScheduleEntryResponse {
	resp := make([]ScheduleEntryResponse, len(entries))
	for i := range entries {
		resp[i] = NewScheduleEntryResponse(&entries[i])
	}
	return resp
}

func NewScheduleEntryResponse(entry *loan.ScheduleEntry) ScheduleEntryResponse {
	var paidAmountStr *string
	if !entry.PaidAmount.IsZero() {
		s := formatDecimalMoney(entry.PaidAmount)
		paidAmountStr = &s
	}

	return ScheduleEntryResponse{
		ID:                strconv.FormatInt(entry.ID, 10),
		InstallmentNumber: entry.InstallmentNumber,
		DueDate:           formatDate(entry.DueDate),
		PrincipalAmount:   formatDecimalMoney(entry.PrincipalAmount),
		InterestAmount:    formatDecimalMoney(entry.InterestAmount),
		TotalAmount:       formatDecimalMoney(entry.TotalAmount),
		PaidAmount:        paidAmountStr,
		PaidDate:          formatOptionalDate(entry.PaidDate),
		RemainingBalance:  formatDecimalMoney(entry.RemainingBalance),
		Status:            string(entry.Status),
	}
}
