package attendance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func onDay(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, manila)
}

func closed(id string, in, out time.Time, salary string) attendance.RawRecord {
	r := attendance.RawRecord{
		ID:         id,
		EmployeeID: "emp-1",
		ClockIn:    in,
		ClockOut:   &out,
	}
	if salary != "" {
		r.SalaryPerDay = decimal.NewNullDecimal(dec(salary))
	}
	return r
}

func normalizer() *attendance.Normalizer {
	return attendance.NewNormalizer(generic.FixedClock{At: onDay(3, 15, 0)})
}

// =============================================================================
// HOUR SPLIT
// =============================================================================

func TestNormalize_WeekdayWithOvertime(t *testing.T) {
	// GIVEN: Monday 07:50 - 18:00, salary 800/day
	// WHEN: Normalizing
	// THEN: 10h - 1h break = 9h -> 8 regular + 1 overtime, rate 100, earned 900

	rec, err := normalizer().Normalize(closed("r1", onDay(3, 7, 50), onDay(3, 18, 0), "800"), policy())
	require.NoError(t, err)

	assertDecimal(t, "9", rec.HoursWorked)
	assertDecimal(t, "8", rec.RegularHours)
	assertDecimal(t, "1", rec.OvertimeHours)
	assertDecimal(t, "0", rec.HolidayHours)
	assert.False(t, rec.IsHoliday)
	assert.True(t, rec.BreakDeducted)
	assert.Equal(t, "2025-03-03", rec.WorkDate.String())
	assert.True(t, rec.ClockIn.Equal(onDay(3, 8, 0)))

	require.True(t, rec.SalaryPerHour.Valid)
	assertDecimal(t, "100", rec.SalaryPerHour.Decimal)
	require.True(t, rec.AmountEarned.Valid)
	assertDecimal(t, "900", rec.AmountEarned.Decimal)
	assert.Empty(t, rec.Warnings)
}

func TestNormalize_ShortShift_NoBreakDeduction(t *testing.T) {
	// GIVEN: 08:00 - 12:00 (exactly 4h, break applies only above 4h)
	rec, err := normalizer().Normalize(closed("r1", onDay(3, 8, 0), onDay(3, 12, 0), "800"), policy())
	require.NoError(t, err)

	assertDecimal(t, "4", rec.HoursWorked)
	assert.False(t, rec.BreakDeducted)
	assertDecimal(t, "4", rec.RegularHours)
	assertDecimal(t, "0", rec.OvertimeHours)
}

func TestNormalize_LateArrivalKeepsPenaltyAndCanonicalStart(t *testing.T) {
	// GIVEN: 08:40 - 17:00
	// THEN: Counted from 08:00 (9h - 1h break = 8h), late 60
	rec, err := normalizer().Normalize(closed("r1", onDay(3, 8, 40), onDay(3, 17, 0), "800"), policy())
	require.NoError(t, err)

	assertDecimal(t, "8", rec.HoursWorked)
	assert.Equal(t, 60, rec.LateMinutes)
	assert.Equal(t, attendance.TierOneHour, rec.LateTier)
}

func TestNormalize_FractionalHours(t *testing.T) {
	// 08:00 - 13:30 = 5.5h - 1h = 4.5h
	rec, err := normalizer().Normalize(closed("r1", onDay(3, 8, 0), onDay(3, 13, 30), "800"), policy())
	require.NoError(t, err)
	assertDecimal(t, "4.5", rec.HoursWorked)
	assertDecimal(t, "450", rec.AmountEarned.Decimal)
}

func TestNormalize_Sunday_AllHoursAreHoliday(t *testing.T) {
	// GIVEN: Sunday 2025-03-09 08:00 - 17:00 (8 worked hours after break)
	// THEN: holiday 8, regular 0, overtime 0
	rec, err := normalizer().Normalize(closed("r1", onDay(9, 8, 0), onDay(9, 17, 0), "800"), policy())
	require.NoError(t, err)

	assert.True(t, rec.IsHoliday)
	assertDecimal(t, "8", rec.HoursWorked)
	assertDecimal(t, "8", rec.HolidayHours)
	assertDecimal(t, "0", rec.RegularHours)
	assertDecimal(t, "0", rec.OvertimeHours)
}

func TestNormalize_SundayLongShift_NoOvertimeSplit(t *testing.T) {
	rec, err := normalizer().Normalize(closed("r1", onDay(9, 8, 0), onDay(9, 21, 0), "800"), policy())
	require.NoError(t, err)

	assertDecimal(t, "12", rec.HolidayHours)
	assertDecimal(t, "0", rec.OvertimeHours)
}

func TestNormalize_HourSplitInvariant(t *testing.T) {
	// GIVEN: A grid of clock-ins and clock-outs across a weekday and a Sunday
	// THEN: regular + overtime + holiday == hours worked, and exactly one bucket family is used

	n := normalizer()
	p := policy()
	for _, day := range []int{3, 9} {
		for inMin := 7 * 60; inMin <= 10*60; inMin += 13 {
			for outMin := 11 * 60; outMin <= 23*60; outMin += 47 {
				in := onDay(day, 0, 0).Add(time.Duration(inMin) * time.Minute)
				out := onDay(day, 0, 0).Add(time.Duration(outMin) * time.Minute)

				rec, err := n.Normalize(closed("grid", in, out, "750"), p)
				require.NoError(t, err)

				sum := rec.RegularHours.Add(rec.OvertimeHours).Add(rec.HolidayHours)
				assert.True(t, sum.Sub(rec.HoursWorked).Abs().LessThan(dec("0.000000001")))
				assert.False(t, rec.HoursWorked.IsNegative())
				if rec.IsHoliday {
					assert.True(t, rec.RegularHours.IsZero())
					assert.True(t, rec.OvertimeHours.IsZero())
				} else {
					assert.True(t, rec.HolidayHours.IsZero())
				}
			}
		}
	}
}

// =============================================================================
// OPEN SHIFTS
// =============================================================================

func TestNormalize_OpenShift_UsesClock(t *testing.T) {
	// GIVEN: Clocked in 08:00, still open, clock reads 15:00
	// THEN: 7h - 1h = 6h provisional, flagged open

	raw := attendance.RawRecord{ID: "r1", EmployeeID: "emp-1", ClockIn: onDay(3, 8, 0)}
	raw.SalaryPerDay = decimal.NewNullDecimal(dec("800"))

	rec, err := normalizer().Normalize(raw, policy())
	require.NoError(t, err)

	assert.True(t, rec.IsOpen)
	assertDecimal(t, "6", rec.HoursWorked)
	assert.True(t, rec.ClockOut.Equal(onDay(3, 15, 0)))
	require.Len(t, rec.Warnings, 1)
	assert.Equal(t, attendance.WarnOpenShift, rec.Warnings[0].Code)
}

func TestNormalize_OpenShiftBeforeShiftStart_IsZeroNotNegative(t *testing.T) {
	// GIVEN: Clocked in 07:30, clock reads 07:45 (before the 08:00 canonical start)
	n := attendance.NewNormalizer(generic.FixedClock{At: onDay(3, 7, 45)})
	raw := attendance.RawRecord{ID: "r1", EmployeeID: "emp-1", ClockIn: onDay(3, 7, 30)}

	rec, err := n.Normalize(raw, policy())
	require.NoError(t, err)
	assertDecimal(t, "0", rec.HoursWorked)
}

// =============================================================================
// VALIDATION AND WARNINGS
// =============================================================================

func TestNormalize_ClockOutBeforeClockIn_ValidationError(t *testing.T) {
	_, err := normalizer().Normalize(closed("bad", onDay(3, 17, 0), onDay(3, 8, 0), "800"), policy())

	require.Error(t, err)
	var verr *attendance.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bad", verr.RecordID)
	assert.ErrorIs(t, err, generic.ErrNegativeDuration)
}

func TestNormalize_ClockOutBeforeAdjustedStart_ValidationError(t *testing.T) {
	// GIVEN: 07:00 - 07:50; the raw pair is ordered but ends before the 08:00 canonical start
	_, err := normalizer().Normalize(closed("early-leave", onDay(3, 7, 0), onDay(3, 7, 50), "800"), policy())
	assert.ErrorIs(t, err, generic.ErrNegativeDuration)
}

func TestNormalize_MissingEmployee(t *testing.T) {
	raw := closed("r1", onDay(3, 8, 0), onDay(3, 17, 0), "800")
	raw.EmployeeID = ""
	_, err := normalizer().Normalize(raw, policy())
	assert.ErrorIs(t, err, generic.ErrMissingEmployee)
}

func TestNormalize_MissingSalary_WarnsAndLeavesPayNull(t *testing.T) {
	rec, err := normalizer().Normalize(closed("r1", onDay(3, 8, 0), onDay(3, 17, 0), ""), policy())
	require.NoError(t, err)

	assert.False(t, rec.SalaryPerHour.Valid)
	assert.False(t, rec.AmountEarned.Valid)
	require.Len(t, rec.Warnings, 1)
	assert.Equal(t, attendance.WarnMissingSalary, rec.Warnings[0].Code)
	assert.Equal(t, "r1", rec.Warnings[0].RecordID)
}

func TestNormalize_VeryLate_WarnsUnadjusted(t *testing.T) {
	rec, err := normalizer().Normalize(closed("r1", onDay(3, 9, 30), onDay(3, 17, 30), "800"), policy())
	require.NoError(t, err)

	assert.True(t, rec.ClockIn.Equal(onDay(3, 9, 30)))
	assertDecimal(t, "7", rec.HoursWorked)
	require.Len(t, rec.Warnings, 1)
	assert.Equal(t, attendance.WarnUnadjustedLate, rec.Warnings[0].Code)
}

func TestNormalizeAll_RejectsBadRecordsWithoutStoppingBatch(t *testing.T) {
	raws := []attendance.RawRecord{
		closed("ok-1", onDay(3, 8, 0), onDay(3, 17, 0), "800"),
		closed("bad", onDay(4, 17, 0), onDay(4, 8, 0), "800"),
		closed("ok-2", onDay(5, 8, 0), onDay(5, 17, 0), "800"),
	}

	result := normalizer().NormalizeAll(raws, policy())

	require.Len(t, result.Records, 2)
	assert.Equal(t, "ok-1", result.Records[0].RecordID)
	assert.Equal(t, "ok-2", result.Records[1].RecordID)
	require.Len(t, result.Rejected, 1)
	assert.ErrorIs(t, result.Rejected[0], generic.ErrNegativeDuration)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, attendance.WarnInvalidRecord, result.Warnings[0].Code)
	assert.Equal(t, "bad", result.Warnings[0].RecordID)
}

// =============================================================================
// POLICY
// =============================================================================

func TestPolicy_WithDefaultsFillsAbsentFields(t *testing.T) {
	p := attendance.Policy{GracePeriodMinutes: 10}.WithDefaults()

	assert.Equal(t, 8, p.ShiftStartHour)
	assert.Equal(t, 10, p.GracePeriodMinutes)
	assert.Equal(t, 30, p.LateDeductionMinutes)
	assertDecimal(t, "1", p.BreakHours)
	assertDecimal(t, "4", p.BreakApplyAfterHours)
	assertDecimal(t, "1.25", p.RegularOTMultiplier)
	assertDecimal(t, "1.3", p.HolidayOTMultiplier)
	assert.Equal(t, time.UTC, p.Location)
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, attendance.DefaultPolicy().Validate())

	p := attendance.DefaultPolicy()
	p.ShiftStartHour = 24
	assert.ErrorIs(t, p.Validate(), generic.ErrInvalidPolicy)

	p = attendance.DefaultPolicy()
	p.LateDeductionMinutes = -1
	assert.ErrorIs(t, p.Validate(), generic.ErrInvalidPolicy)
}
