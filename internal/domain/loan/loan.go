package loan

import (
	"fmt"
	"strings"
	"time"

	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/domain/product"
	"loan-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusDisbursed Status = "disbursed"
	StatusActive    Status = "active"
	StatusOverdue   Status = "overdue"
	StatusDefaulted Status = "defaulted"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusInReview, StatusApproved, StatusRejected, StatusCancelled},
	StatusInReview:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusDisbursed, StatusCancelled},
	StatusDisbursed: {StatusActive, StatusOverdue, StatusClosed, StatusDefaulted, StatusCancelled},
	StatusActive:    {StatusOverdue, StatusClosed, StatusDefaulted, StatusCancelled},
	StatusOverdue:   {StatusActive, StatusClosed, StatusDefaulted, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusApproved, StatusRejected, StatusDisbursed,
		StatusActive, StatusOverdue, StatusDefaulted, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Repayable reports whether the loan has been disbursed and is still open.
func (s Status) Repayable() bool {
	return s == StatusDisbursed || s == StatusActive || s == StatusOverdue
}

type Loan struct {
	ID                 int64                     `json:"id"`
	ReferenceCode      string                    `json:"referenceCode"`
	ClientID           int64                     `json:"clientId"`
	LoanProductID      int64                     `json:"loanProductId"`
	PrincipalAmount    decimal.Decimal           `json:"principalAmount"`
	Currency           string                    `json:"currency"`
	InterestRate       decimal.Decimal           `json:"interestRate"`
	InterestType       amortization.InterestType `json:"interestType"`
	TermMonths         int                       `json:"termMonths"`
	PaymentFrequency   amortization.Frequency    `json:"paymentFrequency"`
	StartDate          time.Time                 `json:"startDate"`
	EndDate            time.Time                 `json:"endDate"`
	ApprovalDate       *time.Time                `json:"approvalDate,omitempty"`
	DisbursementDate   *time.Time                `json:"disbursementDate,omitempty"`
	NextPaymentDate    *time.Time                `json:"nextPaymentDate,omitempty"`
	InstallmentAmount  decimal.Decimal           `json:"installmentAmount"`
	OutstandingBalance decimal.Decimal           `json:"outstandingBalance"`
	TotalInterest      decimal.Decimal           `json:"totalInterest"`
	TotalPayable       decimal.Decimal           `json:"totalPayable"`
	InstallmentsCount  int                       `json:"installmentsCount"`
	Fees               decimal.Decimal           `json:"fees"`
	Penalties          decimal.Decimal           `json:"penalties"`
	Collateral         string                    `json:"collateral,omitempty"`
	CoSignerID         *int64                    `json:"coSignerId,omitempty"`
	Notes              string                    `json:"notes,omitempty"`
	Status             Status                    `json:"status"`
	CreatedBy          int64                     `json:"createdBy"`
	ApprovedBy         *int64                    `json:"approvedBy,omitempty"`
	DisbursedBy        *int64                    `json:"disbursedBy,omitempty"`
	PaidAt             *time.Time                `json:"paidAt,omitempty"`
	CancelledAt        *time.Time                `json:"cancelledAt,omitempty"`
	DefaultedAt        *time.Time                `json:"defaultedAt,omitempty"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
	Schedule           []ScheduleEntry           `json:"schedule,omitempty"`
}

type CreateInput struct {
	ClientID         int64
	LoanProductID    int64
	PrincipalAmount  decimal.Decimal
	StartDate        time.Time
	PaymentFrequency amortization.Frequency
	Collateral       string
	CoSignerID       *int64
	Notes            string
}

// NewLoan copies the product's terms into a fresh pending loan. Later product
// edits never reach the loan.
func NewLoan(in CreateInput, p *product.Product, createdBy int64, now time.Time) (*Loan, error) {
	if in.PrincipalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("principalAmount", "must be greater than zero")
	}
	if !p.AllowsPrincipal(in.PrincipalAmount) {
		return nil, apperrors.NewValidationError("principalAmount", "outside the product's allowed range")
	}

	freq := in.PaymentFrequency
	if freq == "" {
		freq = amortization.FrequencyMonthly
	}
	if !freq.Valid() {
		return nil, apperrors.NewValidationError("paymentFrequency", "must be monthly, bi-weekly, weekly or quarterly")
	}

	start := in.StartDate
	if start.IsZero() {
		start = now
	}

	l := &Loan{
		ReferenceCode:      NewReferenceCode(),
		ClientID:           in.ClientID,
		LoanProductID:      p.ID,
		PrincipalAmount:    in.PrincipalAmount.Round(2),
		Currency:           p.Currency,
		InterestRate:       p.InterestRate,
		InterestType:       p.InterestType,
		TermMonths:         p.RepaymentPeriodMonths,
		PaymentFrequency:   freq,
		StartDate:          truncateDay(start),
		Fees:               p.Fees,
		Penalties:          decimal.Zero,
		Collateral:         strings.TrimSpace(in.Collateral),
		CoSignerID:         in.CoSignerID,
		Notes:              in.Notes,
		Status:             StatusPending,
		CreatedBy:          createdBy,
		OutstandingBalance: in.PrincipalAmount.Round(2),
	}
	if err := l.RecomputeTerms(); err != nil {
		return nil, err
	}
	return l, nil
}

// RecomputeTerms refreshes the installment amount, end date and the schedule
// summary from the loan's current terms. Persisted schedule entries are not touched.
func (l *Loan) RecomputeTerms() error {
	installment, err := amortization.CalculateInstallmentAmount(l.PrincipalAmount, l.InterestRate, l.TermMonths, l.InterestType)
	if err != nil {
		return err
	}
	start := l.StartDate
	if l.DisbursementDate != nil {
		start = *l.DisbursementDate
	}
	schedule, err := amortization.GenerateSchedule(l.scheduleParams(start))
	if err != nil {
		return err
	}
	summary := amortization.Summarize(schedule, l.StartDate, l.TermMonths)

	l.InstallmentAmount = installment
	l.EndDate = summary.EndDate
	l.TotalInterest = summary.TotalInterest
	l.TotalPayable = summary.TotalPayable
	l.InstallmentsCount = summary.Installments
	return nil
}

// BuildSchedule generates persisted-shape entries starting from start.
func (l *Loan) BuildSchedule(start time.Time) ([]ScheduleEntry, error) {
	installments, err := amortization.GenerateSchedule(l.scheduleParams(start))
	if err != nil {
		return nil, err
	}
	entries := make([]ScheduleEntry, 0, len(installments))
	for _, inst := range installments {
		entries = append(entries, ScheduleEntry{
			LoanID:            l.ID,
			InstallmentNumber: inst.Number,
			DueDate:           inst.DueDate,
			PrincipalAmount:   inst.Principal,
			InterestAmount:    inst.Interest,
			TotalAmount:       inst.Total,
			PaidAmount:        decimal.Zero,
			Status:            EntryPending,
			RemainingBalance:  inst.RemainingBalance,
		})
	}
	return entries, nil
}

func (l *Loan) scheduleParams(start time.Time) amortization.Params {
	return amortization.Params{
		Principal:     l.PrincipalAmount,
		AnnualRatePct: l.InterestRate,
		TermMonths:    l.TermMonths,
		InterestType:  l.InterestType,
		StartDate:     start,
		Frequency:     l.PaymentFrequency,
	}
}

// AdoptSchedule points the loan at the first installment of a freshly generated schedule.
func (l *Loan) AdoptSchedule(entries []ScheduleEntry) {
	if len(entries) == 0 {
		return
	}
	first := entries[0].DueDate
	l.NextPaymentDate = &first
	l.InstallmentAmount = entries[0].TotalAmount
	l.InstallmentsCount = len(entries)

	l.TotalInterest, l.TotalPayable = decimal.Zero, decimal.Zero
	for _, e := range entries {
		l.TotalInterest = l.TotalInterest.Add(e.InterestAmount)
		l.TotalPayable = l.TotalPayable.Add(e.TotalAmount)
	}
}

// RebaseOutstanding keeps principal already repaid when the principal changes.
func (l *Loan) RebaseOutstanding(oldPrincipal, oldOutstanding decimal.Decimal) {
	repaid := oldPrincipal.Sub(oldOutstanding)
	l.OutstandingBalance = decimal.Max(decimal.Zero, l.PrincipalAmount.Sub(repaid)).Round(2)
}

// SetStatus moves the loan to next, stamping the terminal timestamps.
func (l *Loan) SetStatus(next Status, at time.Time) error {
	if l.Status == next {
		return nil
	}
	if !l.Status.CanTransitionTo(next) {
		return apperrors.NewStateTransitionError("move to "+string(next), string(l.Status))
	}
	l.Status = next
	switch next {
	case StatusCancelled:
		l.CancelledAt = &at
	case StatusDefaulted:
		l.DefaultedAt = &at
	case StatusClosed:
		l.PaidAt = &at
	}
	return nil
}

// ApplyBalance stores the balance left after a payment (or its reversal) and
// moves a disbursed loan's status and next due date to match the schedule.
func (l *Loan) ApplyBalance(balance decimal.Decimal, entries []ScheduleEntry, at time.Time) {
	l.OutstandingBalance = decimal.Max(decimal.Zero, balance).Round(2)
	if len(entries) > 0 {
		l.NextPaymentDate = nil
		if next := NextUnpaid(entries); next != nil {
			due := next.DueDate
			l.NextPaymentDate = &due
		}
	}

	pastDue := HasPastDue(entries, at)
	switch {
	case l.Status == StatusClosed && l.OutstandingBalance.IsPositive():
		// A reversed payment reopens the loan.
		l.Status = StatusActive
		if pastDue {
			l.Status = StatusOverdue
		}
		l.PaidAt = nil
	case !l.Status.Repayable():
	case l.OutstandingBalance.IsZero():
		l.Status = StatusClosed
		l.PaidAt = &at
	case l.Status == StatusDisbursed && pastDue:
		l.Status = StatusOverdue
	case l.Status == StatusDisbursed, l.Status == StatusOverdue && !pastDue:
		l.Status = StatusActive
	}
}

// Changes is a partial administrative update; nil fields are left untouched.
type Changes struct {
	PrincipalAmount  *decimal.Decimal           `json:"principalAmount,omitempty"`
	InterestRate     *decimal.Decimal           `json:"interestRate,omitempty"`
	InterestType     *amortization.InterestType `json:"interestType,omitempty"`
	TermMonths       *int                       `json:"termMonths,omitempty"`
	PaymentFrequency *amortization.Frequency    `json:"paymentFrequency,omitempty"`
	StartDate        *time.Time                 `json:"startDate,omitempty"`
	Fees             *decimal.Decimal           `json:"fees,omitempty"`
	Penalties        *decimal.Decimal           `json:"penalties,omitempty"`
	Collateral       *string                    `json:"collateral,omitempty"`
	CoSignerID       *int64                     `json:"coSignerId,omitempty"`
	Notes            *string                    `json:"notes,omitempty"`
	Status           *Status                    `json:"status,omitempty"`
}

func (c Changes) TouchesTerms() bool {
	return c.PrincipalAmount != nil || c.InterestRate != nil || c.InterestType != nil ||
		c.TermMonths != nil || c.PaymentFrequency != nil || c.StartDate != nil
}

// StatusOnly reports whether the update changes nothing but the status.
func (c Changes) StatusOnly() bool {
	return c.Status != nil && !c.TouchesTerms() && c.Fees == nil && c.Penalties == nil &&
		c.Collateral == nil && c.CoSignerID == nil && c.Notes == nil
}

func (c Changes) Validate() error {
	if c.PrincipalAmount != nil && c.PrincipalAmount.LessThanOrEqual(decimal.Zero) {
		return apperrors.NewValidationError("principalAmount", "must be greater than zero")
	}
	if c.InterestRate != nil && c.InterestRate.IsNegative() {
		return apperrors.NewValidationError("interestRate", "cannot be negative")
	}
	if c.InterestType != nil && !c.InterestType.Valid() {
		return apperrors.NewValidationError("interestType", "must be flat or reducing")
	}
	if c.TermMonths != nil && *c.TermMonths < 1 {
		return apperrors.NewValidationError("termMonths", "must be at least 1")
	}
	if c.PaymentFrequency != nil && !c.PaymentFrequency.Valid() {
		return apperrors.NewValidationError("paymentFrequency", "must be monthly, bi-weekly, weekly or quarterly")
	}
	if c.Fees != nil && c.Fees.IsNegative() {
		return apperrors.NewValidationError("fees", "cannot be negative")
	}
	if c.Penalties != nil && c.Penalties.IsNegative() {
		return apperrors.NewValidationError("penalties", "cannot be negative")
	}
	if c.Status != nil && !c.Status.Valid() {
		return apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", *c.Status))
	}
	return nil
}

// applyFields copies everything except status onto the loan.
func (c Changes) applyFields(l *Loan) {
	if c.PrincipalAmount != nil {
		l.PrincipalAmount = c.PrincipalAmount.Round(2)
	}
	if c.InterestRate != nil {
		l.InterestRate = *c.InterestRate
	}
	if c.InterestType != nil {
		l.InterestType = *c.InterestType
	}
	if c.TermMonths != nil {
		l.TermMonths = *c.TermMonths
	}
	if c.PaymentFrequency != nil {
		l.PaymentFrequency = *c.PaymentFrequency
	}
	if c.StartDate != nil {
		l.StartDate = truncateDay(*c.StartDate)
	}
	if c.Fees != nil {
		l.Fees = *c.Fees
	}
	if c.Penalties != nil {
		l.Penalties = *c.Penalties
	}
	if c.Collateral != nil {
		l.Collateral = strings.TrimSpace(*c.Collateral)
	}
	if c.CoSignerID != nil {
		l.CoSignerID = c.CoSignerID
	}
	if c.Notes != nil {
		l.Notes = *c.Notes
	}
}

// RecalculateOverrides replaces loan terms before a schedule rebuild.
type RecalculateOverrides struct {
	PrincipalAmount  *decimal.Decimal `json:"principalAmount,omitempty"`
	InterestRate     *decimal.Decimal `json:"interestRate,omitempty"`
	TermMonths       *int             `json:"termMonths,omitempty"`
	DisbursementDate *time.Time       `json:"disbursementDate,omitempty"`
}

func (o RecalculateOverrides) Validate() error {
	return Changes{
		PrincipalAmount: o.PrincipalAmount,
		InterestRate:    o.InterestRate,
		TermMonths:      o.TermMonths,
	}.Validate()
}

type DisbursementResult struct {
	Loan              *Loan `json:"loan"`
	InstallmentsCount int   `json:"installmentsCount"`
}

type RecalculationResult struct {
	Loan              *Loan `json:"loan"`
	InstallmentsCount int   `json:"installmentsCount"`
	RemovedCount      int64 `json:"removedCount"`
}

type Filter struct {
	ClientID *int64
	Status   *Status
}

func NewReferenceCode() string {
	return "LN-" + strings.ToUpper(strings.Split(uuid.NewString(), "-")[0])
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return truncateDay(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a valid date", apperrors.ErrInvalidDate, raw)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
