package payment

import (
	"strings"
	"time"

	"loan-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const StatusCompleted Status = "completed"

type Payment struct {
	ID                 int64           `json:"id"`
	LoanID             int64           `json:"loanId"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	PaymentMethod      string          `json:"paymentMethod"`
	ExternalRef        string          `json:"externalRef"`
	PayerName          string          `json:"payerName,omitempty"`
	PayerPhone         string          `json:"payerPhone,omitempty"`
	TransactionDate    time.Time       `json:"transactionDate"`
	PaymentDate        time.Time       `json:"paymentDate"`
	Status             Status          `json:"status"`
	AppliedToPrincipal decimal.Decimal `json:"appliedToPrincipal"`
	AppliedToInterest  decimal.Decimal `json:"appliedToInterest"`
	Fees               decimal.Decimal `json:"fees"`
	Penalties          decimal.Decimal `json:"penalties"`
	ProcessedBy        *int64          `json:"processedBy,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type CreateInput struct {
	LoanID          int64
	Amount          decimal.Decimal
	Currency        string
	PaymentMethod   string
	ExternalRef     string
	PayerName       string
	PayerPhone      string
	TransactionDate *time.Time
	Fees            decimal.Decimal
	Penalties       decimal.Decimal
	Notes           string
}

// Defaults fill in optional payment fields the caller left empty.
type Defaults struct {
	Currency      string
	PaymentMethod string
}

type Filter struct {
	ClientID *int64
	LoanID   *int64
}

// Split divides amount between one month of interest on outstanding and principal.
// Interest is taken first and never exceeds the amount paid. Paying exactly the
// outstanding balance settles the loan, so the whole amount goes to principal.
func Split(amount, outstanding, annualRatePct decimal.Decimal) (toPrincipal, toInterest decimal.Decimal) {
	if amount.Equal(outstanding) {
		return amount.Round(2), decimal.Zero
	}
	monthlyInterest := outstanding.Mul(annualRatePct).Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
	toInterest = decimal.Min(amount, monthlyInterest).Round(2)
	toPrincipal = amount.Sub(toInterest).Round(2)
	return toPrincipal, toInterest
}

// ValidateAmount checks a payment against the loan's current balance.
// Overpayment is rejected, never clamped. Amounts must be whole cents so the
// stored amount is exactly the validated one.
func ValidateAmount(amount, outstanding decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return apperrors.ErrInvalidAmount
	}
	if amount.GreaterThan(outstanding) {
		return apperrors.ErrExceedsOutstandingBalance
	}
	return nil
}

func NewExternalRef() string {
	return "TX-" + strings.ToUpper(strings.Split(uuid.NewString(), "-")[0])
}
