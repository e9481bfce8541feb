/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates employees, a policy document,
	yearly deductions, cash advances and a week of attendance.

AVAILABLE SCENARIOS:

	late-tiers:      One arrival per late tier, plus a Sunday shift
	cash-advance:    Weekly amortization of an outstanding advance
	paid-week:       A paid week that stays frozen after a new advance
	missing-salary:  Employee without a daily rate; pay is flagged, not guessed

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Store the policy document
 3. Create employees and yearly deductions
 4. Record attendance for last week (relative to the handler clock)
 5. Optionally record advances and mark weeks paid

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "paid-week"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Payroll endpoints the scenarios feed
  - factory/policy.go: Policy JSON definitions
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "late-tiers",
		Name:        "Late Tiers",
		Description: "Arrivals at 07:30, 08:10, 08:40 and 09:05 plus an 8-hour Sunday shift",
	},
	{
		ID:          "cash-advance",
		Name:        "Cash Advance",
		Description: "1000 outstanding advance deducted at 10% per week",
	},
	{
		ID:          "paid-week",
		Name:        "Paid Week",
		Description: "Last week marked paid; a later advance doesn't change its deductions",
	},
	{
		ID:          "missing-salary",
		Name:        "Missing Salary",
		Description: "Employee without a daily rate; hours counted, pay flagged",
	},
}

// demoPolicy is the policy document every scenario stores.
const demoPolicy = `{
	"shift_start_hour": 8,
	"grace_period_minutes": 5,
	"late_deduction_minutes": 30,
	"cash_advance_weekly_deduction_percent": 10
}`

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.RLock()
	current := h.currentScenario
	h.scenarioMu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          current,
		Name:        current,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context, payroll.Week) error
	switch req.ScenarioID {
	case "late-tiers":
		load = h.loadLateTiersScenario
	case "cash-advance":
		load = h.loadCashAdvanceScenario
	case "paid-week":
		load = h.loadPaidWeekScenario
	case "missing-salary":
		load = h.loadMissingSalaryScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	// One load or reset at a time; the reset and the seed must not interleave
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if _, err := h.Store.SavePolicyDocument(ctx, demoPolicy, "scenario"); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store policy", err)
		return
	}
	loc, err := h.location(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load policy", err)
		return
	}

	// Last complete week relative to the handler clock.
	today := generic.DateOf(h.clock.Now(), loc)
	week := payroll.WeekOf("", today.AddDays(-7), h.weekStart)

	if err := load(ctx, week); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.log.InfoContext(ctx, "scenario loaded", "scenario", req.ScenarioID, "week_start", week.Start.String())

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "loaded",
		"scenario":   req.ScenarioID,
		"week_start": week.Start.String(),
		"week_end":   week.End.String(),
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadLateTiersScenario(ctx context.Context, week payroll.Week) error {
	if err := h.seedEmployee(ctx, "emp-001", "Juan Dela Cruz", "800", week.Start.Year()); err != nil {
		return err
	}

	// Day offsets from week start; the Sunday shift lands on its own weekday.
	shifts := []struct {
		day        int
		inH, inM   int
		outH, outM int
	}{
		{0, 7, 30, 17, 0}, // early: snaps to 08:00
		{1, 8, 10, 17, 0}, // past grace: 30 minute penalty
		{2, 8, 40, 17, 0}, // past threshold: 60 minute penalty
		{3, 9, 5, 18, 0},  // over an hour: kept as is
		{4, 8, 0, 19, 0},  // overtime
	}
	for _, s := range shifts {
		if err := h.seedShift(ctx, "emp-001", week.Start.AddDays(s.day), s.inH, s.inM, s.outH, s.outM); err != nil {
			return err
		}
	}
	return h.seedShift(ctx, "emp-001", sundayOf(week), 8, 0, 16, 0)
}

func (h *Handler) loadCashAdvanceScenario(ctx context.Context, week payroll.Week) error {
	if err := h.seedEmployee(ctx, "emp-002", "Maria Santos", "900", week.Start.Year()); err != nil {
		return err
	}
	if _, err := h.Advances.RecordAdvance(ctx, "emp-002", decimal.NewFromInt(1000), week.Start.AddDays(-3), "emergency"); err != nil {
		return err
	}
	for day := 0; day < 5; day++ {
		if err := h.seedShift(ctx, "emp-002", week.Start.AddDays(day), 8, 0, 17, 0); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadPaidWeekScenario(ctx context.Context, week payroll.Week) error {
	if err := h.loadCashAdvanceScenario(ctx, week); err != nil {
		return err
	}

	paid := payroll.Week{EmployeeID: "emp-002", Start: week.Start, End: week.End}
	if _, err := h.Engine.MarkPaid(ctx, paid, "scenario"); err != nil {
		return err
	}

	// A new advance after payment; the paid week keeps its deduction.
	_, err := h.Advances.RecordAdvance(ctx, "emp-002", decimal.NewFromInt(5000), week.End.AddDays(1), "tuition")
	return err
}

func (h *Handler) loadMissingSalaryScenario(ctx context.Context, week payroll.Week) error {
	if err := h.seedEmployee(ctx, "emp-003", "Pedro Reyes", "", week.Start.Year()); err != nil {
		return err
	}
	for day := 0; day < 3; day++ {
		if err := h.seedShift(ctx, "emp-003", week.Start.AddDays(day), 8, 0, 17, 0); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func (h *Handler) seedEmployee(ctx context.Context, id generic.EntityID, name, perDay string, year int) error {
	emp := sqlite.Employee{ID: id, Name: name, CreatedAt: h.clock.Now()}
	if perDay != "" {
		emp.SalaryPerDay = decimal.NewNullDecimal(decimal.RequireFromString(perDay))
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}
	return h.Store.SetYearlyDeductions(ctx, id, year, decimal.NewFromInt(5200), decimal.NewFromInt(2600))
}

func (h *Handler) seedShift(ctx context.Context, id generic.EntityID, day generic.TimePoint, inH, inM, outH, outM int) error {
	loc, err := h.location(ctx)
	if err != nil {
		return err
	}
	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if emp == nil {
		return fmt.Errorf("%w: %s", generic.ErrEntityNotFound, id)
	}

	in := time.Date(day.Year(), day.Month(), day.Day(), inH, inM, 0, 0, loc)
	out := time.Date(day.Year(), day.Month(), day.Day(), outH, outM, 0, 0, loc)
	_, err = h.Store.SaveRecord(ctx, attendance.RawRecord{
		EmployeeID:   id,
		ClockIn:      in,
		ClockOut:     &out,
		SalaryPerDay: emp.SalaryPerDay,
	})
	return err
}

func sundayOf(week payroll.Week) generic.TimePoint {
	for _, d := range week.Period().Days() {
		if d.IsSunday() {
			return d
		}
	}
	return week.End
}
