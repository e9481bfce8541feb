package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/attendance"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Monday 2025-03-03 in the employee's operating timezone (UTC+8).
var manila = time.FixedZone("PHT", 8*60*60)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 3, hour, minute, 0, 0, manila)
}

func shiftStart() time.Time { return at(8, 0) }

func policy() attendance.Policy {
	p := attendance.DefaultPolicy()
	p.Location = manila
	return p
}

// =============================================================================
// EXAMPLE SCENARIOS
// =============================================================================

func TestAdjust_EarlyArrival_SnapsToShiftStart(t *testing.T) {
	// GIVEN: Clock-in 07:30, shift start 08:00
	// WHEN: Adjusting
	// THEN: Adjusted to 08:00 with no late penalty

	got := attendance.Adjust(at(7, 30), policy())

	assert.True(t, got.Adjusted.Equal(shiftStart()))
	assert.True(t, got.IsAdjusted)
	assert.Equal(t, 0, got.LateMinutes)
	assert.Equal(t, attendance.TierEarly, got.Tier)
	assert.True(t, got.Original.Equal(at(7, 30)))
}

func TestAdjust_PastGrace_ThirtyMinutePenalty(t *testing.T) {
	// GIVEN: Clock-in 08:10, grace 5 min, late threshold 30 min
	// THEN: Adjusted to 08:00, late 30 (fixed, not 10)

	got := attendance.Adjust(at(8, 10), policy())

	assert.True(t, got.Adjusted.Equal(shiftStart()))
	assert.Equal(t, 30, got.LateMinutes)
	assert.Equal(t, attendance.TierLate, got.Tier)
}

func TestAdjust_PastLateThreshold_SixtyMinutePenalty(t *testing.T) {
	// GIVEN: Clock-in 08:40 (past 08:30, before 09:00)
	// THEN: Adjusted to 08:00, late 60

	got := attendance.Adjust(at(8, 40), policy())

	assert.True(t, got.Adjusted.Equal(shiftStart()))
	assert.Equal(t, 60, got.LateMinutes)
	assert.Equal(t, attendance.TierOneHour, got.Tier)
}

func TestAdjust_MoreThanOneHourLate_Unadjusted(t *testing.T) {
	// GIVEN: Clock-in 09:05
	// THEN: Left at 09:05, late 0, not adjusted

	got := attendance.Adjust(at(9, 5), policy())

	assert.True(t, got.Adjusted.Equal(at(9, 5)))
	assert.False(t, got.IsAdjusted)
	assert.Equal(t, 0, got.LateMinutes)
	assert.Equal(t, attendance.TierUnadjusted, got.Tier)
}

// =============================================================================
// BOUNDARIES
// =============================================================================

func TestAdjust_Boundaries(t *testing.T) {
	ns := time.Nanosecond
	tests := []struct {
		name     string
		raw      time.Time
		wantLate int
		wantAdj  bool
	}{
		{"midnight", at(0, 0), 0, true},
		{"exactly shift start", at(8, 0), 0, true},
		{"exactly grace end", at(8, 5), 0, true},
		{"just past grace end", at(8, 5).Add(ns), 30, true},
		{"exactly late threshold", at(8, 30), 30, true},
		{"just past late threshold", at(8, 30).Add(ns), 60, true},
		{"exactly one hour", at(9, 0), 60, true},
		{"just past one hour", at(9, 0).Add(ns), 0, false},
		{"late evening", at(22, 0), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attendance.Adjust(tt.raw, policy())
			assert.Equal(t, tt.wantLate, got.LateMinutes)
			assert.Equal(t, tt.wantAdj, got.IsAdjusted)
			if tt.wantAdj {
				assert.True(t, got.Adjusted.Equal(shiftStart()))
			} else {
				assert.True(t, got.Adjusted.Equal(tt.raw))
			}
		})
	}
}

func TestAdjust_LateMinutesMonotonicUntilOneHour(t *testing.T) {
	// GIVEN: Clock-ins every 30 seconds from 08:00 to 09:00
	// THEN: late minutes never decrease, and drop to 0 right after 09:00

	p := policy()
	prev := 0
	for raw := shiftStart(); !raw.After(at(9, 0)); raw = raw.Add(30 * time.Second) {
		got := attendance.Adjust(raw, p)
		assert.GreaterOrEqual(t, got.LateMinutes, prev, "late minutes decreased at %s", raw.Format("15:04:05"))
		assert.Contains(t, []int{0, 30, 60}, got.LateMinutes)
		prev = got.LateMinutes
	}
	assert.Equal(t, 60, prev)
	assert.Equal(t, 0, attendance.Adjust(at(9, 0).Add(time.Second), p).LateMinutes)
}

func TestAdjust_Idempotent(t *testing.T) {
	// GIVEN: Any clock-in within the adjusted tiers
	// WHEN: Re-adjusting the adjusted instant
	// THEN: Nothing changes

	p := policy()
	for raw := at(6, 0); !raw.After(at(9, 0)); raw = raw.Add(7 * time.Minute) {
		first := attendance.Adjust(raw, p)
		second := attendance.Adjust(first.Adjusted, p)
		assert.True(t, second.Adjusted.Equal(first.Adjusted), "raw %s", raw.Format("15:04"))
		assert.Equal(t, 0, second.LateMinutes)
	}
}

func TestAdjust_AdjustedInstantHasNoSeconds(t *testing.T) {
	raw := time.Date(2025, time.March, 3, 8, 12, 47, 123456789, manila)
	got := attendance.Adjust(raw, policy())

	assert.True(t, got.IsAdjusted)
	assert.Equal(t, 0, got.Adjusted.Second())
	assert.Equal(t, 0, got.Adjusted.Nanosecond())
}

func TestAdjust_UsesOperatingTimezone(t *testing.T) {
	// GIVEN: 00:10 UTC, which is 08:10 in UTC+8
	// THEN: Treated as 08:10 local -> 30 minutes late, adjusted to 08:00 local

	raw := time.Date(2025, time.March, 3, 0, 10, 0, 0, time.UTC)
	got := attendance.Adjust(raw, policy())

	assert.Equal(t, 30, got.LateMinutes)
	assert.True(t, got.Adjusted.Equal(shiftStart()))
}

func TestAdjust_CustomThresholds(t *testing.T) {
	// GIVEN: Grace 10 min, late threshold 45 min
	p := policy()
	p.GracePeriodMinutes = 10
	p.LateDeductionMinutes = 45

	assert.Equal(t, 0, attendance.Adjust(at(8, 10), p).LateMinutes)
	assert.Equal(t, 45, attendance.Adjust(at(8, 11), p).LateMinutes)
	assert.Equal(t, 45, attendance.Adjust(at(8, 45), p).LateMinutes)
	assert.Equal(t, 60, attendance.Adjust(at(8, 46), p).LateMinutes)
}

func TestAdjust_GraceLongerThanLateThreshold(t *testing.T) {
	// GIVEN: Grace 40 min but late threshold 30 min (misconfigured)
	// THEN: The late tier is empty; arrivals after grace go straight to 60
	p := policy()
	p.GracePeriodMinutes = 40

	assert.Equal(t, 0, attendance.Adjust(at(8, 35), p).LateMinutes)
	assert.Equal(t, 60, attendance.Adjust(at(8, 41), p).LateMinutes)
}
