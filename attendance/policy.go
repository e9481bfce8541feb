// Package attendance turns raw clock-in/clock-out pairs into normalized
// daily work records: canonical shift start, tiered late penalty, break
// deduction and the regular/overtime/holiday hour split.
package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// RegularHoursPerDay is the length of a regular shift. Hours beyond it are
// overtime, and a daily salary divides by it to get the hourly rate.
const RegularHoursPerDay = 8

// Defaults applied when a policy field is absent.
const (
	DefaultShiftStartHour       = 8
	DefaultGracePeriodMinutes   = 5
	DefaultLateDeductionMinutes = 30
	OneHourLateMinutes          = 60
)

var (
	DefaultBreakHours           = decimal.NewFromInt(1)
	DefaultBreakApplyAfterHours = decimal.NewFromInt(4)
	DefaultRegularOTMultiplier  = decimal.RequireFromString("1.25")
	DefaultHolidayOTMultiplier  = decimal.RequireFromString("1.3")
)

// Policy is a tenant's attendance configuration. It is immutable for the
// duration of an evaluation.
type Policy struct {
	ShiftStartHour     int
	GracePeriodMinutes int

	// LateDeductionMinutes is the late threshold measured from shift start.
	// It is its own setting and is never read from GracePeriodMinutes.
	LateDeductionMinutes int

	BreakHours           decimal.Decimal
	BreakApplyAfterHours decimal.Decimal

	RegularOTMultiplier decimal.Decimal
	HolidayOTMultiplier decimal.Decimal

	// Location is the employee's operating timezone. Nil means UTC.
	Location *time.Location
}

// DefaultPolicy returns the documented defaults.
func DefaultPolicy() Policy {
	return Policy{
		ShiftStartHour:       DefaultShiftStartHour,
		GracePeriodMinutes:   DefaultGracePeriodMinutes,
		LateDeductionMinutes: DefaultLateDeductionMinutes,
		BreakHours:           DefaultBreakHours,
		BreakApplyAfterHours: DefaultBreakApplyAfterHours,
		RegularOTMultiplier:  DefaultRegularOTMultiplier,
		HolidayOTMultiplier:  DefaultHolidayOTMultiplier,
		Location:             time.UTC,
	}
}

// WithDefaults fills zero-valued fields from DefaultPolicy. A zero grace
// period is indistinguishable from "absent" and also falls back; use
// factory.PolicyJSON pointers to express an explicit zero.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()
	if p.ShiftStartHour == 0 {
		p.ShiftStartHour = d.ShiftStartHour
	}
	if p.GracePeriodMinutes == 0 {
		p.GracePeriodMinutes = d.GracePeriodMinutes
	}
	if p.LateDeductionMinutes == 0 {
		p.LateDeductionMinutes = d.LateDeductionMinutes
	}
	if p.BreakHours.IsZero() {
		p.BreakHours = d.BreakHours
	}
	if p.BreakApplyAfterHours.IsZero() {
		p.BreakApplyAfterHours = d.BreakApplyAfterHours
	}
	if p.RegularOTMultiplier.IsZero() {
		p.RegularOTMultiplier = d.RegularOTMultiplier
	}
	if p.HolidayOTMultiplier.IsZero() {
		p.HolidayOTMultiplier = d.HolidayOTMultiplier
	}
	if p.Location == nil {
		p.Location = d.Location
	}
	return p
}

// Validate checks ranges. Defaults are not applied here.
func (p Policy) Validate() error {
	switch {
	case p.ShiftStartHour < 0 || p.ShiftStartHour > 23:
		return fmt.Errorf("%w: shift start hour %d out of range", generic.ErrInvalidPolicy, p.ShiftStartHour)
	case p.GracePeriodMinutes < 0:
		return fmt.Errorf("%w: negative grace period", generic.ErrInvalidPolicy)
	case p.LateDeductionMinutes < 0:
		return fmt.Errorf("%w: negative late deduction threshold", generic.ErrInvalidPolicy)
	case p.BreakHours.IsNegative() || p.BreakApplyAfterHours.IsNegative():
		return fmt.Errorf("%w: negative break configuration", generic.ErrInvalidPolicy)
	case p.RegularOTMultiplier.IsNegative() || p.HolidayOTMultiplier.IsNegative():
		return fmt.Errorf("%w: negative overtime multiplier", generic.ErrInvalidPolicy)
	}
	return nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
