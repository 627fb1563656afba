package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryStatus string

const (
	EntryPending EntryStatus = "pending"
	EntryPaid    EntryStatus = "paid"
	EntryOverdue EntryStatus = "overdue"
	EntryPartial EntryStatus = "partial"
)

type ScheduleEntry struct {
	ID                int64           `json:"id"`
	LoanID            int64           `json:"loanId"`
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	PrincipalAmount   decimal.Decimal `json:"principalAmount"`
	InterestAmount    decimal.Decimal `json:"interestAmount"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	PaidDate          *time.Time      `json:"paidDate,omitempty"`
	Status            EntryStatus     `json:"status"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (e *ScheduleEntry) Due() decimal.Decimal {
	return decimal.Max(decimal.Zero, e.TotalAmount.Sub(e.PaidAmount))
}

// refreshStatus derives the entry status from what has been paid and the date.
func (e *ScheduleEntry) refreshStatus(asOf time.Time) {
	switch {
	case e.PaidAmount.GreaterThanOrEqual(e.TotalAmount):
		e.Status = EntryPaid
	case e.DueDate.Before(truncateDay(asOf)):
		e.Status = EntryOverdue
	case e.PaidAmount.IsPositive():
		e.Status = EntryPartial
	default:
		e.Status = EntryPending
	}
}

// AllocatePayment spreads amount over unpaid entries, oldest first, and returns
// the entries it touched. Any remainder beyond the schedule total is ignored.
func AllocatePayment(entries []ScheduleEntry, amount decimal.Decimal, paidAt time.Time) []*ScheduleEntry {
	var touched []*ScheduleEntry
	left := amount
	for i := range entries {
		if !left.IsPositive() {
			break
		}
		e := &entries[i]
		due := e.Due()
		if !due.IsPositive() {
			continue
		}
		applied := decimal.Min(due, left)
		e.PaidAmount = e.PaidAmount.Add(applied)
		left = left.Sub(applied)
		e.PaidDate = &paidAt
		e.refreshStatus(paidAt)
		e.UpdatedAt = paidAt
		touched = append(touched, e)
	}
	return touched
}

// ReverseAllocation takes amount back off the schedule, newest paid entry first.
func ReverseAllocation(entries []ScheduleEntry, amount decimal.Decimal, asOf time.Time) []*ScheduleEntry {
	var touched []*ScheduleEntry
	left := amount
	for i := len(entries) - 1; i >= 0; i-- {
		if !left.IsPositive() {
			break
		}
		e := &entries[i]
		if !e.PaidAmount.IsPositive() {
			continue
		}
		removed := decimal.Min(e.PaidAmount, left)
		e.PaidAmount = e.PaidAmount.Sub(removed)
		left = left.Sub(removed)
		if e.PaidAmount.IsZero() {
			e.PaidDate = nil
		}
		e.refreshStatus(asOf)
		e.UpdatedAt = asOf
		touched = append(touched, e)
	}
	return touched
}

// NextUnpaid returns the first entry still owing money.
func NextUnpaid(entries []ScheduleEntry) *ScheduleEntry {
	for i := range entries {
		if entries[i].Due().IsPositive() {
			return &entries[i]
		}
	}
	return nil
}

// HasPastDue reports whether any entry due before asOf is still owing.
func HasPastDue(entries []ScheduleEntry, asOf time.Time) bool {
	day := truncateDay(asOf)
	for i := range entries {
		if entries[i].Due().IsPositive() && entries[i].DueDate.Before(day) {
			return true
		}
	}
	return false
}
