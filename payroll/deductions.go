package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// WeeksPerYear amortizes the yearly statutory amounts. It is a flat 1/52,
// not the number of weeks actually elapsed.
const WeeksPerYear = 52

var (
	weeksPerYear = decimal.NewFromInt(WeeksPerYear)
	hundred      = decimal.NewFromInt(100)
)

// DeductionPolicy configures weekly deductions.
type DeductionPolicy struct {
	// CashAdvanceWeeklyDeductionPercent is the share of the outstanding
	// advance balance withheld each week, 0..100.
	CashAdvanceWeeklyDeductionPercent decimal.Decimal
}

// DefaultDeductionPolicy withholds nothing for cash advances.
func DefaultDeductionPolicy() DeductionPolicy {
	return DeductionPolicy{CashAdvanceWeeklyDeductionPercent: decimal.Zero}
}

// Validate rejects a percent outside [0, 100].
func (p DeductionPolicy) Validate() error {
	pct := p.CashAdvanceWeeklyDeductionPercent
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return fmt.Errorf("%w: cash advance weekly deduction percent %s not in [0, 100]",
			generic.ErrInvalidPolicy, pct)
	}
	return nil
}

// ProjectCashAdvance returns the weekly deduction for the given outstanding
// balance. Nothing is projected once the balance reaches zero.
func (p DeductionPolicy) ProjectCashAdvance(remaining decimal.Decimal) decimal.Decimal {
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	return remaining.Mul(p.CashAdvanceWeeklyDeductionPercent).Div(hundred)
}

// WeeklyStatutory spreads a yearly SSS or Pag-IBIG amount over 52 weeks.
func WeeklyStatutory(yearly decimal.Decimal) decimal.Decimal {
	return yearly.Div(weeksPerYear)
}
