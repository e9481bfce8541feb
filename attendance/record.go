package attendance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// RawRecord is one clock-in/clock-out pair as captured at the attendance
// boundary. A nil ClockOut marks a shift that is still open.
type RawRecord struct {
	ID           string
	EmployeeID   generic.EntityID
	ClockIn      time.Time
	ClockOut     *time.Time
	SalaryPerDay decimal.NullDecimal
}

// IsOpen reports whether the employee has not clocked out yet.
func (r RawRecord) IsOpen() bool { return r.ClockOut == nil }

// DayRecord is a normalized daily work record.
//
// INVARIANTS:
//   - not holiday: RegularHours + OvertimeHours == HoursWorked, HolidayHours == 0
//   - holiday:     HolidayHours == HoursWorked, RegularHours == OvertimeHours == 0
//   - HoursWorked >= 0
type DayRecord struct {
	RecordID   string
	EmployeeID generic.EntityID
	WorkDate   generic.TimePoint

	ClockIn  time.Time // adjusted clock-in
	ClockOut time.Time // actual clock-out, or the provisional "now" for open shifts
	IsOpen   bool

	HoursWorked   decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	HolidayHours  decimal.Decimal
	IsHoliday     bool
	BreakDeducted bool

	LateMinutes int
	LateTier    LateTier

	SalaryPerHour decimal.NullDecimal
	AmountEarned  decimal.NullDecimal

	Warnings []Warning
}

// =============================================================================
// WARNINGS - Non-fatal annotations
// =============================================================================

// WarningCode classifies an anomaly that doesn't stop computation.
type WarningCode string

const (
	WarnMissingSalary  WarningCode = "missing_salary"
	WarnOpenShift      WarningCode = "open_shift"
	WarnUnadjustedLate WarningCode = "unadjusted_late_arrival"
	WarnNegativeNetPay WarningCode = "negative_net_pay"
	WarnInvalidRecord  WarningCode = "invalid_record"
)

// Warning is attached to outputs so reporting layers can flag records
// without interrupting the rest of the batch.
type Warning struct {
	Code       WarningCode
	Message    string
	EmployeeID generic.EntityID
	RecordID   string
}
