package factory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

func TestParsePolicy_EmptyDocument_Defaults(t *testing.T) {
	f := factory.NewPolicyFactory(time.UTC)

	for _, doc := range []string{"", "{}"} {
		p, d, err := f.ParsePolicy(doc)
		require.NoError(t, err)

		assert.Equal(t, 8, p.ShiftStartHour)
		assert.Equal(t, 5, p.GracePeriodMinutes)
		assert.Equal(t, 30, p.LateDeductionMinutes)
		assert.True(t, p.BreakHours.Equal(decimal.NewFromInt(1)))
		assert.True(t, p.BreakApplyAfterHours.Equal(decimal.NewFromInt(4)))
		assert.True(t, p.RegularOTMultiplier.Equal(decimal.RequireFromString("1.25")))
		assert.True(t, p.HolidayOTMultiplier.Equal(decimal.RequireFromString("1.3")))
		assert.Equal(t, time.UTC, p.Location)
		assert.True(t, d.CashAdvanceWeeklyDeductionPercent.IsZero())
	}
}

func TestParsePolicy_AllFields(t *testing.T) {
	doc := `{
		"shift_start_hour": 9,
		"grace_period_minutes": 10,
		"late_deduction_minutes": 45,
		"break_hours": 0.5,
		"break_apply_after_hours": "6",
		"regular_ot_multiplier": "1.5",
		"holiday_ot_multiplier": 2,
		"cash_advance_weekly_deduction_percent": "12.5",
		"timezone": "Asia/Manila"
	}`

	p, d, err := factory.NewPolicyFactory(nil).ParsePolicy(doc)
	require.NoError(t, err)

	assert.Equal(t, 9, p.ShiftStartHour)
	assert.Equal(t, 10, p.GracePeriodMinutes)
	assert.Equal(t, 45, p.LateDeductionMinutes)
	assert.True(t, p.BreakHours.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, p.BreakApplyAfterHours.Equal(decimal.NewFromInt(6)))
	assert.True(t, p.RegularOTMultiplier.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, p.HolidayOTMultiplier.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "Asia/Manila", p.Location.String())
	assert.True(t, d.CashAdvanceWeeklyDeductionPercent.Equal(decimal.RequireFromString("12.5")))
}

func TestParsePolicy_LateThresholdIsNotGrace(t *testing.T) {
	// GIVEN: Only the grace period is set
	// THEN: The late threshold keeps its own default
	p, _, err := factory.NewPolicyFactory(time.UTC).ParsePolicy(`{"grace_period_minutes": 15}`)
	require.NoError(t, err)

	assert.Equal(t, 15, p.GracePeriodMinutes)
	assert.Equal(t, 30, p.LateDeductionMinutes)
}

func TestParsePolicy_ExplicitZeroKept(t *testing.T) {
	// GIVEN: A zero grace period and no break
	// THEN: Both stay zero instead of falling back to defaults
	p, _, err := factory.NewPolicyFactory(time.UTC).ParsePolicy(`{"grace_period_minutes": 0, "break_hours": 0}`)
	require.NoError(t, err)

	assert.Equal(t, 0, p.GracePeriodMinutes)
	assert.True(t, p.BreakHours.IsZero())

	// 08:01 is now past grace
	in := time.Date(2025, time.March, 3, 8, 1, 0, 0, time.UTC)
	assert.Equal(t, 30, attendance.Adjust(in, p).LateMinutes)
}

func TestParsePolicy_DefaultLocation(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	p, _, err := factory.NewPolicyFactory(manila).ParsePolicy(`{}`)
	require.NoError(t, err)
	assert.Equal(t, manila, p.Location)
}

func TestParsePolicy_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"shift_start_hour": }`},
		{"shift hour out of range", `{"shift_start_hour": 24}`},
		{"negative grace", `{"grace_period_minutes": -1}`},
		{"negative break", `{"break_hours": "-1"}`},
		{"percent over 100", `{"cash_advance_weekly_deduction_percent": 101}`},
		{"unknown timezone", `{"timezone": "Mars/Olympus"}`},
		{"wrong type", `{"grace_period_minutes": "five"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := factory.NewPolicyFactory(time.UTC).ParsePolicy(tt.doc)
			assert.ErrorIs(t, err, generic.ErrInvalidPolicy)
		})
	}
}

func TestMarshal_RoundTripsThroughParse(t *testing.T) {
	p := attendance.DefaultPolicy()
	p.GracePeriodMinutes = 0
	p.LateDeductionMinutes = 20
	d := payroll.DeductionPolicy{CashAdvanceWeeklyDeductionPercent: decimal.NewFromInt(15)}

	doc, err := factory.Marshal(p, d)
	require.NoError(t, err)
	assert.Contains(t, doc, `"timezone":"UTC"`)

	p2, d2, err := factory.NewPolicyFactory(time.UTC).ParsePolicy(doc)
	require.NoError(t, err)
	assert.Equal(t, 0, p2.GracePeriodMinutes)
	assert.Equal(t, 20, p2.LateDeductionMinutes)
	assert.True(t, d2.CashAdvanceWeeklyDeductionPercent.Equal(decimal.NewFromInt(15)))
}

func TestStaticProvider_FillsDefaults(t *testing.T) {
	p, d, err := factory.StaticProvider{}.Policies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, p.GracePeriodMinutes)
	assert.True(t, d.CashAdvanceWeeklyDeductionPercent.IsZero())
}
