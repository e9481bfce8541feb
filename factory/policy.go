/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts a JSON policy document into attendance.Policy and
  payroll.DeductionPolicy. HR edits the document through the API; it is
  stored verbatim and parsed on every read, so absent fields always fall
  back to the current defaults.

JSON SCHEMA:
  {
    "shift_start_hour": 8,
    "grace_period_minutes": 5,
    "late_deduction_minutes": 30,
    "break_hours": "1",
    "break_apply_after_hours": "4",
    "regular_ot_multiplier": "1.25",
    "holiday_ot_multiplier": "1.3",
    "cash_advance_weekly_deduction_percent": "10",
    "timezone": "Asia/Manila"
  }

  Every field is optional. Decimal fields accept JSON numbers or strings.
  An explicit 0 is kept (e.g. a zero grace period); only absent fields take
  the default.

USAGE:
  f := factory.NewPolicyFactory(time.UTC)
  policy, deductions, err := f.ParsePolicy(jsonString)

SEE ALSO:
  - attendance/policy.go: Attendance defaults
  - payroll/deductions.go: Deduction policy
  - store/sqlite/sqlite.go: Persists the document
*/
package factory

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // IANA zones for hosts without zoneinfo

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of the attendance and deduction
// policies. Pointer fields distinguish "absent" from zero.
type PolicyJSON struct {
	ShiftStartHour       *int             `json:"shift_start_hour,omitempty"`
	GracePeriodMinutes   *int             `json:"grace_period_minutes,omitempty"`
	LateDeductionMinutes *int             `json:"late_deduction_minutes,omitempty"`
	BreakHours           *decimal.Decimal `json:"break_hours,omitempty"`
	BreakApplyAfterHours *decimal.Decimal `json:"break_apply_after_hours,omitempty"`
	RegularOTMultiplier  *decimal.Decimal `json:"regular_ot_multiplier,omitempty"`
	HolidayOTMultiplier  *decimal.Decimal `json:"holiday_ot_multiplier,omitempty"`

	CashAdvanceWeeklyDeductionPercent *decimal.Decimal `json:"cash_advance_weekly_deduction_percent,omitempty"`

	Timezone *string `json:"timezone,omitempty"` // IANA name
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct {
	// DefaultLocation applies when the document names no timezone.
	DefaultLocation *time.Location
}

// NewPolicyFactory creates a factory whose policies default to loc.
func NewPolicyFactory(loc *time.Location) *PolicyFactory {
	if loc == nil {
		loc = time.UTC
	}
	return &PolicyFactory{DefaultLocation: loc}
}

// ParsePolicy parses a JSON document. An empty document yields the defaults.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (attendance.Policy, payroll.DeductionPolicy, error) {
	var pj PolicyJSON
	if jsonStr != "" {
		if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
			return attendance.Policy{}, payroll.DeductionPolicy{}, fmt.Errorf("%w: failed to parse policy JSON: %v", generic.ErrInvalidPolicy, err)
		}
	}
	return f.FromJSON(pj)
}

// FromJSON converts PolicyJSON to validated policies.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (attendance.Policy, payroll.DeductionPolicy, error) {
	policy := attendance.DefaultPolicy()
	policy.Location = f.DefaultLocation
	deductions := payroll.DefaultDeductionPolicy()

	if pj.ShiftStartHour != nil {
		policy.ShiftStartHour = *pj.ShiftStartHour
	}
	if pj.GracePeriodMinutes != nil {
		policy.GracePeriodMinutes = *pj.GracePeriodMinutes
	}
	if pj.LateDeductionMinutes != nil {
		policy.LateDeductionMinutes = *pj.LateDeductionMinutes
	}
	if pj.BreakHours != nil {
		policy.BreakHours = *pj.BreakHours
	}
	if pj.BreakApplyAfterHours != nil {
		policy.BreakApplyAfterHours = *pj.BreakApplyAfterHours
	}
	if pj.RegularOTMultiplier != nil {
		policy.RegularOTMultiplier = *pj.RegularOTMultiplier
	}
	if pj.HolidayOTMultiplier != nil {
		policy.HolidayOTMultiplier = *pj.HolidayOTMultiplier
	}
	if pj.CashAdvanceWeeklyDeductionPercent != nil {
		deductions.CashAdvanceWeeklyDeductionPercent = *pj.CashAdvanceWeeklyDeductionPercent
	}
	if pj.Timezone != nil && *pj.Timezone != "" {
		loc, err := time.LoadLocation(*pj.Timezone)
		if err != nil {
			return attendance.Policy{}, payroll.DeductionPolicy{}, fmt.Errorf("%w: timezone %q: %v", generic.ErrInvalidPolicy, *pj.Timezone, err)
		}
		policy.Location = loc
	}

	if err := policy.Validate(); err != nil {
		return attendance.Policy{}, payroll.DeductionPolicy{}, err
	}
	if err := deductions.Validate(); err != nil {
		return attendance.Policy{}, payroll.DeductionPolicy{}, err
	}
	return policy, deductions, nil
}

// ToJSON renders policies as a complete document with every field set.
func ToJSON(p attendance.Policy, d payroll.DeductionPolicy) PolicyJSON {
	tz := "UTC"
	if p.Location != nil {
		tz = p.Location.String()
	}
	return PolicyJSON{
		ShiftStartHour:                    &p.ShiftStartHour,
		GracePeriodMinutes:                &p.GracePeriodMinutes,
		LateDeductionMinutes:              &p.LateDeductionMinutes,
		BreakHours:                        &p.BreakHours,
		BreakApplyAfterHours:              &p.BreakApplyAfterHours,
		RegularOTMultiplier:               &p.RegularOTMultiplier,
		HolidayOTMultiplier:               &p.HolidayOTMultiplier,
		CashAdvanceWeeklyDeductionPercent: &d.CashAdvanceWeeklyDeductionPercent,
		Timezone:                          &tz,
	}
}

// Marshal renders policies as a JSON document.
func Marshal(p attendance.Policy, d payroll.DeductionPolicy) (string, error) {
	b, err := json.Marshal(ToJSON(p, d))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// =============================================================================
// STATIC PROVIDER
// =============================================================================

// StaticProvider serves fixed policies. Useful in tests and for the
// in-process demo.
type StaticProvider struct {
	Policy     attendance.Policy
	Deductions payroll.DeductionPolicy
}

var _ payroll.PolicyProvider = StaticProvider{}

// Policies returns the fixed policies with defaults filled in.
func (s StaticProvider) Policies(context.Context) (attendance.Policy, payroll.DeductionPolicy, error) {
	return s.Policy.WithDefaults(), s.Deductions, nil
}
