/*
Package payroll turns normalized day records into weekly payroll summaries.

PURPOSE:
  Aggregate sums one (employee, week) group of attendance.DayRecords into
  hours, pay and deductions. Engine resolves the inputs Aggregate needs from
  injected readers, and MarkPaid freezes a week into a PaymentSnapshot.

KEY RULES:
  - gross = regular + overtime + holiday pay
  - net   = gross - (sss + pag_ibig + cash_advance), never clamped
  - a paid week reads its deductions from the snapshot, never from the live
    ledger or yearly schedule

SEE ALSO:
  - attendance/normalize.go: Produces the DayRecords summed here
  - advance/ledger.go: Source of the live remaining balance
*/
package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// WEEK - Grouping key
// =============================================================================

// Week is the (employee, week_start, week_end) aggregation key. Bounds are
// inclusive calendar days.
type Week struct {
	EmployeeID generic.EntityID
	Start      generic.TimePoint
	End        generic.TimePoint
}

// Period returns the week bounds.
func (w Week) Period() generic.Period {
	return generic.Period{Start: w.Start, End: w.End}
}

// Contains reports whether day falls inside the week.
func (w Week) Contains(day generic.TimePoint) bool {
	return w.Period().Contains(day)
}

// Key identifies the week in idempotency keys and logs.
func (w Week) Key() string {
	return fmt.Sprintf("%s:%s:%s", w.EmployeeID, w.Start, w.End)
}

// Equal reports whether both keys name the same employee and days.
func (w Week) Equal(o Week) bool {
	return w.EmployeeID == o.EmployeeID && w.Start.Equal(o.Start) && w.End.Equal(o.End)
}

// Validate checks the week has an employee and ordered bounds.
func (w Week) Validate() error {
	if w.EmployeeID == "" {
		return generic.ErrMissingEmployee
	}
	return w.Period().Validate()
}

// WeekOf returns the week containing day, starting on weekStart.
func WeekOf(employeeID generic.EntityID, day generic.TimePoint, weekStart time.Weekday) Week {
	p := generic.WeekFor(day, weekStart)
	return Week{EmployeeID: employeeID, Start: p.Start, End: p.End}
}

// =============================================================================
// SUMMARY - Weekly output
// =============================================================================

// Totals are the summed hours of a week.
type Totals struct {
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	HolidayHours  decimal.Decimal
	LateMinutes   int
}

// Pay is the money earned in a week.
type Pay struct {
	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	HolidayPay  decimal.Decimal
	GrossPay    decimal.Decimal
	NetPay      decimal.Decimal
}

// Deductions are the amounts withheld from a week's gross pay.
type Deductions struct {
	SSS         decimal.Decimal
	PagIBIG     decimal.Decimal
	CashAdvance decimal.Decimal
	Total       decimal.Decimal
}

func newDeductions(sss, pagIBIG, cashAdvance decimal.Decimal) Deductions {
	return Deductions{
		SSS:         sss,
		PagIBIG:     pagIBIG,
		CashAdvance: cashAdvance,
		Total:       sss.Add(pagIBIG).Add(cashAdvance),
	}
}

// Summary is the weekly payroll result for one employee.
type Summary struct {
	EmployeeID generic.EntityID
	WeekStart  generic.TimePoint
	WeekEnd    generic.TimePoint
	DaysWorked int

	Totals     Totals
	Pay        Pay
	Deductions Deductions

	// RemainingBalance is the outstanding cash advance the deduction was
	// projected from. For a paid week it is the frozen value, as are the
	// totals, pay and deductions.
	RemainingBalance decimal.Decimal

	IsPaid bool
	PaidAt *time.Time
	PaidBy string

	Details  []attendance.DayRecord
	Warnings []attendance.Warning
}

// Week returns the summary's grouping key.
func (s Summary) Week() Week {
	return Week{EmployeeID: s.EmployeeID, Start: s.WeekStart, End: s.WeekEnd}
}

// =============================================================================
// PAYMENT SNAPSHOT - Frozen paid-week figures
// =============================================================================

// PaymentSnapshot holds the figures recorded when a week was marked paid.
// It is authoritative over any later live recomputation.
type PaymentSnapshot struct {
	ID         string
	EmployeeID generic.EntityID
	WeekStart  generic.TimePoint
	WeekEnd    generic.TimePoint

	DaysWorked int
	Totals     Totals

	SSS              decimal.Decimal
	PagIBIG          decimal.Decimal
	CashAdvance      decimal.Decimal
	RemainingBalance decimal.Decimal

	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	HolidayPay  decimal.Decimal
	GrossPay    decimal.Decimal
	NetPay      decimal.Decimal

	PaidAt time.Time
	PaidBy string
}

// Week returns the snapshot's grouping key.
func (s PaymentSnapshot) Week() Week {
	return Week{EmployeeID: s.EmployeeID, Start: s.WeekStart, End: s.WeekEnd}
}

// Deductions returns the frozen deductions.
func (s PaymentSnapshot) Deductions() Deductions {
	return newDeductions(s.SSS, s.PagIBIG, s.CashAdvance)
}

// Pay returns the frozen pay.
func (s PaymentSnapshot) Pay() Pay {
	return Pay{
		RegularPay:  s.RegularPay,
		OvertimePay: s.OvertimePay,
		HolidayPay:  s.HolidayPay,
		GrossPay:    s.GrossPay,
		NetPay:      s.NetPay,
	}
}

// SnapshotOf freezes a live summary into a payment snapshot.
func SnapshotOf(s Summary, id string, paidAt time.Time, paidBy string) PaymentSnapshot {
	return PaymentSnapshot{
		ID:               id,
		EmployeeID:       s.EmployeeID,
		WeekStart:        s.WeekStart,
		WeekEnd:          s.WeekEnd,
		DaysWorked:       s.DaysWorked,
		Totals:           s.Totals,
		SSS:              s.Deductions.SSS,
		PagIBIG:          s.Deductions.PagIBIG,
		CashAdvance:      s.Deductions.CashAdvance,
		RemainingBalance: s.RemainingBalance,
		RegularPay:       s.Pay.RegularPay,
		OvertimePay:      s.Pay.OvertimePay,
		HolidayPay:       s.Pay.HolidayPay,
		GrossPay:         s.Pay.GrossPay,
		NetPay:           s.Pay.NetPay,
		PaidAt:           paidAt,
		PaidBy:           paidBy,
	}
}
