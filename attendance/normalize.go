package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// DAILY RECORD NORMALIZER
// =============================================================================

var (
	hourNanos  = decimal.NewFromInt(int64(time.Hour))
	regularDay = decimal.NewFromInt(RegularHoursPerDay)
)

// Normalizer produces DayRecords. The clock stands in for the clock-out of
// shifts that are still open.
type Normalizer struct {
	Clock generic.Clock
}

// NewNormalizer returns a Normalizer reading time from clock.
// A nil clock uses the system clock.
func NewNormalizer(clock generic.Clock) *Normalizer {
	if clock == nil {
		clock = generic.SystemClock{}
	}
	return &Normalizer{Clock: clock}
}

// Normalize computes the daily work record for raw under policy p:
//
//  1. adjust the clock-in (see Adjust)
//  2. hours = clock-out (or now) - adjusted clock-in
//  3. subtract BreakHours once hours exceed BreakApplyAfterHours
//  4. Sunday (local calendar day of the clock-in) is a holiday
//  5. holiday: all hours are holiday hours; otherwise split at 8 regular hours
//  6. hourly rate = salary per day / 8, amount earned = rate * hours
//
// A closed record whose clock-out precedes its adjusted clock-in returns a
// *ValidationError wrapping generic.ErrNegativeDuration. An open shift is
// provisional and is never negative.
func (n *Normalizer) Normalize(raw RawRecord, p Policy) (DayRecord, error) {
	if err := ValidateRaw(raw); err != nil {
		return DayRecord{}, err
	}

	loc := p.location()
	adjusted := Adjust(raw.ClockIn, p)

	rec := DayRecord{
		RecordID:    raw.ID,
		EmployeeID:  raw.EmployeeID,
		WorkDate:    generic.DateOf(raw.ClockIn, loc),
		ClockIn:     adjusted.Adjusted,
		IsOpen:      raw.IsOpen(),
		LateMinutes: adjusted.LateMinutes,
		LateTier:    adjusted.Tier,
	}

	if raw.ClockOut != nil {
		rec.ClockOut = *raw.ClockOut
	} else {
		rec.ClockOut = n.now()
		rec.Warnings = append(rec.Warnings, Warning{
			Code:       WarnOpenShift,
			Message:    "shift still open; hours are provisional",
			EmployeeID: raw.EmployeeID,
			RecordID:   raw.ID,
		})
	}

	duration := rec.ClockOut.Sub(adjusted.Adjusted)
	if duration < 0 {
		if !rec.IsOpen {
			return DayRecord{}, &ValidationError{
				RecordID:   raw.ID,
				EmployeeID: raw.EmployeeID,
				ClockIn:    adjusted.Adjusted,
				ClockOut:   rec.ClockOut,
				Reason:     "clock-out precedes adjusted shift start",
				Err:        generic.ErrNegativeDuration,
			}
		}
		duration = 0
	}

	hours := decimal.NewFromInt(int64(duration)).Div(hourNanos)
	if hours.GreaterThan(p.BreakApplyAfterHours) {
		hours = hours.Sub(p.BreakHours)
		rec.BreakDeducted = true
	}
	rec.HoursWorked = hours

	rec.IsHoliday = rec.WorkDate.IsSunday()
	if rec.IsHoliday {
		rec.HolidayHours = hours
		rec.RegularHours = decimal.Zero
		rec.OvertimeHours = decimal.Zero
	} else {
		rec.RegularHours = decimal.Min(hours, regularDay)
		rec.OvertimeHours = decimal.Max(decimal.Zero, hours.Sub(regularDay))
		rec.HolidayHours = decimal.Zero
	}

	if raw.SalaryPerDay.Valid {
		rate := raw.SalaryPerDay.Decimal.Div(regularDay)
		rec.SalaryPerHour = decimal.NewNullDecimal(rate)
		rec.AmountEarned = decimal.NewNullDecimal(rate.Mul(hours))
	} else {
		rec.Warnings = append(rec.Warnings, Warning{
			Code:       WarnMissingSalary,
			Message:    "no salary per day on record; pay treated as zero",
			EmployeeID: raw.EmployeeID,
			RecordID:   raw.ID,
		})
	}

	if adjusted.Tier == TierUnadjusted {
		rec.Warnings = append(rec.Warnings, Warning{
			Code:       WarnUnadjustedLate,
			Message:    fmt.Sprintf("clock-in %s is more than an hour late", raw.ClockIn.In(loc).Format("15:04")),
			EmployeeID: raw.EmployeeID,
			RecordID:   raw.ID,
		})
	}

	return rec, nil
}

func (n *Normalizer) now() time.Time {
	if n.Clock == nil {
		return time.Now()
	}
	return n.Clock.Now()
}

// BatchResult is the outcome of NormalizeAll.
type BatchResult struct {
	Records  []DayRecord
	Rejected []error
	Warnings []Warning
}

// NormalizeAll normalizes records in order. Invalid records are collected in
// Rejected and reported as warnings; they never stop the batch.
func (n *Normalizer) NormalizeAll(raws []RawRecord, p Policy) BatchResult {
	var result BatchResult
	for _, raw := range raws {
		rec, err := n.Normalize(raw, p)
		if err != nil {
			result.Rejected = append(result.Rejected, err)
			w := Warning{
				Code:       WarnInvalidRecord,
				Message:    err.Error(),
				EmployeeID: raw.EmployeeID,
				RecordID:   raw.ID,
			}
			var verr *ValidationError
			if errors.As(err, &verr) {
				w.Message = verr.Reason
			}
			result.Warnings = append(result.Warnings, w)
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result
}
