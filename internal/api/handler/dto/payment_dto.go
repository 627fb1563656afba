package dto

import (
	"fmt"
	"strconv"
	"time"

	"loan-engine/internal/domain/payment"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	LoanID          int64           `json:"loanId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency,omitempty"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	ExternalRef     string          `json:"externalRef,omitempty"`
	PayerName       string          `json:"payerName,omitempty"`
	PayerPhone      string          `json:"payerPhone,omitempty"`
	TransactionDate string          `json:"transactionDate,omitempty"`
	Fees            decimal.Decimal `json:"fees"`
	Penalties       decimal.Decimal `json:"penalties"`
	Notes           string          `json:"notes,omitempty"`
}

// Validate checks shape only; amount against balance is the service's call.
func (r *CreatePaymentRequest) Validate() error {
	if r.LoanID <= 0 {
		return fmt.Errorf("loanId must be a positive number")
	}
	if r.Fees.IsNegative() || r.Penalties.IsNegative() {
		return fmt.Errorf("fees and penalties cannot be negative")
	}
	if _, err := parseOptionalDate("transactionDate", &r.TransactionDate); err != nil {
		return err
	}
	return nil
}

func (r *CreatePaymentRequest) ToInput() payment.CreateInput {
	txDate, _ := parseOptionalDate("transactionDate", &r.TransactionDate)
	return payment.CreateInput{
		LoanID:          r.LoanID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		PaymentMethod:   r.PaymentMethod,
		ExternalRef:     r.ExternalRef,
		PayerName:       r.PayerName,
		PayerPhone:      r.PayerPhone,
		TransactionDate: txDate,
		Fees:            r.Fees,
		Penalties:       r.Penalties,
		Notes:           r.Notes,
	}
}

type PaymentResponse struct {
	ID                 string    `json:"id"`
	LoanID             string    `json:"loanId"`
	Amount             string    `json:"amount"`
	Currency           string    `json:"currency"`
	PaymentMethod      string    `json:"paymentMethod"`
	ExternalRef        string    `json:"externalRef"`
	PayerName          string    `json:"payerName,omitempty"`
	PayerPhone         string    `json:"payerPhone,omitempty"`
	TransactionDate    string    `json:"transactionDate"`
	PaymentDate        time.Time `json:"paymentDate"`
	Status             string    `json:"status"`
	AppliedToPrincipal string    `json:"appliedToPrincipal"`
	AppliedToInterest  string    `json:"appliedToInterest"`
	Fees               string    `json:"fees"`
	Penalties          string    `json:"penalties"`
	ProcessedBy        *int64    `json:"processedBy,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                 strconv.FormatInt(p.ID, 10),
		LoanID:             strconv.FormatInt(p.LoanID, 10),
		Amount:             formatDecimalMoney(p.Amount),
		Currency:           p.Currency,
		PaymentMethod:      p.PaymentMethod,
		ExternalRef:        p.ExternalRef,
		PayerName:          p.PayerName,
		PayerPhone:         p.PayerPhone,
		TransactionDate:    formatDate(p.TransactionDate),
		PaymentDate:        p.PaymentDate,
		Status:             string(p.Status),
		AppliedToPrincipal: formatDecimalMoney(p.AppliedToPrincipal),
		AppliedToInterest:  formatDecimalMoney(p.AppliedToInterest),
		Fees:               formatDecimalMoney(p.Fees),
		Penalties:          formatDecimalMoney(p.Penalties),
		ProcessedBy:        p.ProcessedBy,
		Notes:              p.Notes,
		CreatedAt:          p.CreatedAt,
	}
}

func NewPaymentListResponse(payments []*payment.Payment) []PaymentResponse {
	resp := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = NewPaymentResponse(p)
	}
	return resp
}
