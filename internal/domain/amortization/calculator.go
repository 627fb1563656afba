// Package amortization computes installment amounts and repayment schedules.
// Every function here is pure; persisting the results is the caller's job.
package amortization

import (
	"fmt"
	"math"
	"time"

	"loan-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

type InterestType string

const (
	InterestFlat     InterestType = "flat"
	InterestReducing InterestType = "reducing"
)

func (t InterestType) Valid() bool {
	return t == InterestFlat || t == InterestReducing
}

type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyBiWeekly  Frequency = "bi-weekly"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyQuarterly Frequency = "quarterly"
)

type frequencyRule struct {
	daysIncrement int
	periods       func(termMonths int) int
}

var frequencyRules = map[Frequency]frequencyRule{
	FrequencyMonthly:   {daysIncrement: 30, periods: func(n int) int { return n }},
	FrequencyBiWeekly:  {daysIncrement: 14, periods: func(n int) int { return n * 2 }},
	FrequencyWeekly:    {daysIncrement: 7, periods: func(n int) int { return n * 4 }},
	FrequencyQuarterly: {daysIncrement: 90, periods: func(n int) int { return (n + 2) / 3 }},
}

func (f Frequency) Valid() bool {
	_, ok := frequencyRules[f]
	return ok
}

// Periods returns how many installments a term of termMonths produces.
func (f Frequency) Periods(termMonths int) int {
	rule, ok := frequencyRules[f]
	if !ok {
		rule = frequencyRules[FrequencyMonthly]
	}
	return rule.periods(termMonths)
}

// DaysIncrement is the fixed day step between consecutive due dates.
func (f Frequency) DaysIncrement() int {
	rule, ok := frequencyRules[f]
	if !ok {
		rule = frequencyRules[FrequencyMonthly]
	}
	return rule.daysIncrement
}

type Params struct {
	Principal     decimal.Decimal
	AnnualRatePct decimal.Decimal
	TermMonths    int
	InterestType  InterestType
	StartDate     time.Time
	Frequency     Frequency
}

type Installment struct {
	Number           int
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
}

type Summary struct {
	Installments  int
	TotalInterest decimal.Decimal
	TotalPayable  decimal.Decimal
	EndDate       time.Time
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

func validate(principal, annualRatePct decimal.Decimal, termMonths int, interestType InterestType) error {
	if principal.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: principal must be greater than zero", apperrors.ErrInvalidLoanParameters)
	}
	if termMonths <= 0 {
		return fmt.Errorf("%w: term must be at least one month", apperrors.ErrInvalidLoanParameters)
	}
	if annualRatePct.IsNegative() {
		return fmt.Errorf("%w: interest rate cannot be negative", apperrors.ErrInvalidLoanParameters)
	}
	if !interestType.Valid() {
		return fmt.Errorf("%w: unknown interest type %q", apperrors.ErrInvalidLoanParameters, interestType)
	}
	return nil
}

// CalculateInstallmentAmount returns the monthly installment for the given terms,
// rounded to cents.
func CalculateInstallmentAmount(principal, annualRatePct decimal.Decimal, termMonths int, interestType InterestType) (decimal.Decimal, error) {
	if err := validate(principal, annualRatePct, termMonths, interestType); err != nil {
		return decimal.Zero, err
	}

	n := decimal.NewFromInt(int64(termMonths))
	if annualRatePct.IsZero() {
		return principal.Div(n).Round(2), nil
	}

	if interestType == InterestFlat {
		totalInterest := flatInterest(principal, annualRatePct, termMonths)
		return principal.Add(totalInterest).Div(n).Round(2), nil
	}

	monthlyRate := annualRatePct.Div(hundred).Div(twelve)
	return annuity(principal, monthlyRate, termMonths), nil
}

// EndDate advances by calendar months, unlike schedule due dates.
func EndDate(start time.Time, termMonths int) time.Time {
	return start.AddDate(0, termMonths, 0)
}

// GenerateSchedule builds the ordered installments for a loan. Due dates step a
// fixed number of days per frequency from StartDate. Remaining balance lands
// on exactly zero: reducing schedules settle it in the final installment, flat
// schedules spread leftover cents over the earliest ones.
func GenerateSchedule(p Params) ([]Installment, error) {
	if err := validate(p.Principal, p.AnnualRatePct, p.TermMonths, p.InterestType); err != nil {
		return nil, err
	}
	if p.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: schedule start date is required", apperrors.ErrInvalidLoanParameters)
	}

	freq := p.Frequency
	if freq == "" {
		freq = FrequencyMonthly
	}
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: unknown payment frequency %q", apperrors.ErrInvalidLoanParameters, p.Frequency)
	}

	periods := freq.Periods(p.TermMonths)
	step := freq.DaysIncrement()

	if p.InterestType == InterestFlat {
		return flatSchedule(p, periods, step), nil
	}
	return reducingSchedule(p, periods, step), nil
}

// Summarize totals a generated schedule.
func Summarize(schedule []Installment, start time.Time, termMonths int) Summary {
	s := Summary{
		Installments:  len(schedule),
		TotalInterest: decimal.Zero,
		TotalPayable:  decimal.Zero,
		EndDate:       EndDate(start, termMonths),
	}
	for _, inst := range schedule {
		s.TotalInterest = s.TotalInterest.Add(inst.Interest)
		s.TotalPayable = s.TotalPayable.Add(inst.Total)
	}
	return s
}

func flatInterest(principal, annualRatePct decimal.Decimal, termMonths int) decimal.Decimal {
	return principal.Mul(annualRatePct.Div(hundred)).Mul(decimal.NewFromInt(int64(termMonths))).Div(twelve)
}

func flatSchedule(p Params, periods, step int) []Installment {
	principal := p.Principal.Round(2)
	principalParts := splitEvenly(principal, periods)
	interestParts := splitEvenly(flatInterest(principal, p.AnnualRatePct, p.TermMonths).Round(2), periods)

	schedule := make([]Installment, 0, periods)
	remaining := principal

	for i := 0; i < periods; i++ {
		remaining = remaining.Sub(principalParts[i])
		schedule = append(schedule, Installment{
			Number:           i + 1,
			DueDate:          p.StartDate.AddDate(0, 0, (i+1)*step),
			Principal:        principalParts[i],
			Interest:         interestParts[i],
			Total:            principalParts[i].Add(interestParts[i]),
			RemainingBalance: remaining,
		})
	}
	return schedule
}

// splitEvenly divides a cent amount into n parts that differ by at most one
// cent and sum exactly to total; the leftover cents go to the earliest parts.
func splitEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	cents := total.Shift(2).IntPart()
	base, extra := cents/int64(n), cents%int64(n)

	parts := make([]decimal.Decimal, n)
	for i := range parts {
		c := base
		if int64(i) < extra {
			c++
		}
		parts[i] = decimal.New(c, -2)
	}
	return parts
}

func reducingSchedule(p Params, periods, step int) []Installment {
	// Spread the term's interest exposure evenly across periods; for monthly
	// schedules this is exactly the monthly rate.
	periodRate := p.AnnualRatePct.Div(hundred).
		Mul(decimal.NewFromInt(int64(p.TermMonths))).
		Div(twelve).
		Div(decimal.NewFromInt(int64(periods)))

	var installment decimal.Decimal
	if periodRate.IsZero() {
		installment = p.Principal.Div(decimal.NewFromInt(int64(periods))).Round(2)
	} else {
		installment = annuity(p.Principal, periodRate, periods)
	}

	schedule := make([]Installment, 0, periods)
	remaining := p.Principal

	for i := 1; i <= periods; i++ {
		interest := remaining.Mul(periodRate).Round(2)
		principalPart := installment.Sub(interest)
		if i == periods || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}
		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, Installment{
			Number:           i,
			DueDate:          p.StartDate.AddDate(0, 0, i*step),
			Principal:        principalPart,
			Interest:         interest,
			Total:            principalPart.Add(interest),
			RemainingBalance: remaining,
		})
	}
	return schedule
}

// annuity evaluates P·r·(1+r)^n / ((1+r)^n − 1). The power term goes through
// float64; everything around it stays in decimal.
func annuity(principal, rate decimal.Decimal, n int) decimal.Decimal {
	r := rate.InexactFloat64()
	factor := math.Pow(1+r, float64(n))
	f := decimal.NewFromFloat(factor)
	return principal.Mul(rate).Mul(f).Div(f.Sub(decimal.NewFromInt(1))).Round(2)
}
