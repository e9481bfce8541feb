package attendance

import "time"

// =============================================================================
// CLOCK-IN ADJUSTER
// =============================================================================

// AdjustedClockIn is the canonicalized clock-in for one record.
type AdjustedClockIn struct {
	Adjusted    time.Time
	Original    time.Time
	IsAdjusted  bool
	LateMinutes int
	Tier        LateTier
}

// LateTier names the rule that matched a clock-in.
type LateTier string

const (
	TierEarly      LateTier = "early"      // before shift start
	TierOnTime     LateTier = "on_time"    // within the grace period
	TierLate       LateTier = "late"       // past grace, within the late threshold
	TierOneHour    LateTier = "one_hour"   // past the late threshold, within one hour
	TierUnadjusted LateTier = "unadjusted" // more than one hour late, left for review
)

// Adjust maps a raw clock-in onto the shift start of its local calendar day
// and assigns the late penalty. The first matching tier wins:
//
//	raw <  shift start                  -> shift start, 0
//	raw <= shift start + grace          -> shift start, 0
//	raw <= shift start + late threshold -> shift start, LateDeductionMinutes
//	raw <= shift start + 60m            -> shift start, 60
//	otherwise                           -> raw, 0 (not adjusted)
//
// The penalty is a step function, not proportional to the minutes late.
// Adjust never fails.
func Adjust(raw time.Time, p Policy) AdjustedClockIn {
	loc := p.location()
	local := raw.In(loc)

	shiftStart := time.Date(local.Year(), local.Month(), local.Day(), p.ShiftStartHour, 0, 0, 0, loc)
	graceEnd := shiftStart.Add(time.Duration(p.GracePeriodMinutes) * time.Minute)
	lateEnd := shiftStart.Add(time.Duration(p.LateDeductionMinutes) * time.Minute)
	oneHourEnd := shiftStart.Add(OneHourLateMinutes * time.Minute)

	result := AdjustedClockIn{
		Adjusted:   shiftStart,
		Original:   raw,
		IsAdjusted: true,
	}

	switch {
	case local.Before(shiftStart):
		result.Tier = TierEarly
	case !local.After(graceEnd):
		result.Tier = TierOnTime
	case !local.After(lateEnd):
		result.Tier = TierLate
		result.LateMinutes = p.LateDeductionMinutes
	case !local.After(oneHourEnd):
		result.Tier = TierOneHour
		result.LateMinutes = OneHourLateMinutes
	default:
		result.Tier = TierUnadjusted
		result.Adjusted = raw
		result.IsAdjusted = false
	}
	return result
}
