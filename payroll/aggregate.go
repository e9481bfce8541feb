package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/generic"
)

// WarnPaidPayDrift flags a paid week whose records now add up to a different
// gross than the one paid. The summary still reports the paid figures.
const WarnPaidPayDrift attendance.WarningCode = "paid_pay_drift"

// =============================================================================
// AGGREGATION
// =============================================================================

// AggregateInput carries everything one weekly aggregation needs. All values
// are already resolved; Aggregate performs no I/O.
type AggregateInput struct {
	Week       Week
	Records    []attendance.DayRecord
	Policy     attendance.Policy
	Deductions DeductionPolicy

	// Live inputs, ignored when Snapshot is set.
	RemainingBalance decimal.Decimal
	YearlySSS        decimal.Decimal
	YearlyPagIBIG    decimal.Decimal

	// Snapshot is the frozen payment record of a paid week, or nil.
	Snapshot *PaymentSnapshot

	// RecomputeLive asks for live deductions. Combined with a Snapshot it is
	// a data-integrity conflict.
	RecomputeLive bool
}

// Aggregate computes the weekly summary for one (employee, week) group.
// Records are summed in the order given. A paid week reports the snapshot's
// figures; its records are still validated and summed to detect drift.
func Aggregate(in AggregateInput) (Summary, error) {
	if err := in.Week.Validate(); err != nil {
		return Summary{}, err
	}
	if in.Snapshot != nil {
		if in.RecomputeLive {
			return Summary{}, conflict(in.Week, in.Snapshot, generic.ErrPaidWeekConflict)
		}
		if !in.Snapshot.Week().Equal(in.Week) {
			return Summary{}, fmt.Errorf("%w: snapshot for %s used for %s",
				generic.ErrRecordOutsideWeek, in.Snapshot.Week().Key(), in.Week.Key())
		}
	}

	p := in.Policy
	s := Summary{
		EmployeeID: in.Week.EmployeeID,
		WeekStart:  in.Week.Start,
		WeekEnd:    in.Week.End,
		DaysWorked: len(in.Records),
		Totals: Totals{
			RegularHours:  decimal.Zero,
			OvertimeHours: decimal.Zero,
			HolidayHours:  decimal.Zero,
		},
		Pay: Pay{
			RegularPay:  decimal.Zero,
			OvertimePay: decimal.Zero,
			HolidayPay:  decimal.Zero,
		},
		Details: in.Records,
	}

	for _, rec := range in.Records {
		if rec.EmployeeID != in.Week.EmployeeID || !in.Week.Contains(rec.WorkDate) {
			return Summary{}, fmt.Errorf("%w: record %s (%s, %s) not in %s",
				generic.ErrRecordOutsideWeek, rec.RecordID, rec.EmployeeID, rec.WorkDate, in.Week.Key())
		}

		s.Totals.RegularHours = s.Totals.RegularHours.Add(rec.RegularHours)
		s.Totals.OvertimeHours = s.Totals.OvertimeHours.Add(rec.OvertimeHours)
		s.Totals.HolidayHours = s.Totals.HolidayHours.Add(rec.HolidayHours)
		s.Totals.LateMinutes += rec.LateMinutes
		s.Warnings = append(s.Warnings, rec.Warnings...)

		if !rec.SalaryPerHour.Valid {
			if !hasWarning(rec.Warnings, attendance.WarnMissingSalary) {
				s.Warnings = append(s.Warnings, attendance.Warning{
					Code:       attendance.WarnMissingSalary,
					Message:    "no hourly rate; record contributes zero pay",
					EmployeeID: rec.EmployeeID,
					RecordID:   rec.RecordID,
				})
			}
			continue
		}

		rate := rec.SalaryPerHour.Decimal
		s.Pay.RegularPay = s.Pay.RegularPay.Add(rec.RegularHours.Mul(rate))
		s.Pay.OvertimePay = s.Pay.OvertimePay.Add(rec.OvertimeHours.Mul(rate).Mul(p.RegularOTMultiplier))
		s.Pay.HolidayPay = s.Pay.HolidayPay.Add(rec.HolidayHours.Mul(rate).Mul(p.HolidayOTMultiplier))
	}
	s.Pay.GrossPay = s.Pay.RegularPay.Add(s.Pay.OvertimePay).Add(s.Pay.HolidayPay)

	if snap := in.Snapshot; snap != nil {
		live := s.Pay.GrossPay
		s.DaysWorked = snap.DaysWorked
		s.Totals = snap.Totals
		s.Pay = snap.Pay()
		s.Deductions = snap.Deductions()
		s.RemainingBalance = snap.RemainingBalance
		s.IsPaid = true
		paidAt := snap.PaidAt
		s.PaidAt = &paidAt
		s.PaidBy = snap.PaidBy
		if !live.Equal(snap.GrossPay) {
			s.Warnings = append(s.Warnings, attendance.Warning{
				Code:       WarnPaidPayDrift,
				Message:    fmt.Sprintf("records now add up to gross pay %s; %s was paid", live, snap.GrossPay),
				EmployeeID: s.EmployeeID,
			})
		}
	} else {
		s.RemainingBalance = in.RemainingBalance
		s.Deductions = newDeductions(
			WeeklyStatutory(in.YearlySSS),
			WeeklyStatutory(in.YearlyPagIBIG),
			in.Deductions.ProjectCashAdvance(in.RemainingBalance),
		)
		s.Pay.NetPay = s.Pay.GrossPay.Sub(s.Deductions.Total)
	}

	if s.Pay.NetPay.IsNegative() {
		s.Warnings = append(s.Warnings, attendance.Warning{
			Code:       attendance.WarnNegativeNetPay,
			Message:    fmt.Sprintf("net pay %s is negative; review deductions", s.Pay.NetPay.StringFixed(2)),
			EmployeeID: s.EmployeeID,
		})
	}

	return s, nil
}

func hasWarning(ws []attendance.Warning, code attendance.WarningCode) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}

// =============================================================================
// GROUPING
// =============================================================================

// Group is one (employee, week) slice of day records.
type Group struct {
	Week    Week
	Records []attendance.DayRecord
}

// GroupByWeek splits records by the key weekOf assigns. Groups appear in
// first-seen order and keep the records' relative order.
func GroupByWeek(records []attendance.DayRecord, weekOf func(attendance.DayRecord) Week) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, rec := range records {
		w := weekOf(rec)
		i, ok := index[w.Key()]
		if !ok {
			i = len(groups)
			index[w.Key()] = i
			groups = append(groups, Group{Week: w})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}
