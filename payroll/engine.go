package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// PolicyProvider returns the current attendance and deduction policies,
// complete and validated. Absent settings must already carry their defaults.
type PolicyProvider interface {
	Policies(ctx context.Context) (attendance.Policy, DeductionPolicy, error)
}

// AdvanceReader returns an employee's outstanding cash advance, >= 0.
type AdvanceReader interface {
	RemainingBalance(ctx context.Context, employeeID generic.EntityID) (decimal.Decimal, error)
}

// YearlyDeductionReader returns yearly statutory amounts. Unknown years are zero.
type YearlyDeductionReader interface {
	SSS(ctx context.Context, employeeID generic.EntityID, year int) (decimal.Decimal, error)
	PagIBIG(ctx context.Context, employeeID generic.EntityID, year int) (decimal.Decimal, error)
}

// SnapshotReader returns the payment snapshot of a paid week, or nil.
type SnapshotReader interface {
	GetIfPaid(ctx context.Context, employeeID generic.EntityID, weekStart, weekEnd generic.TimePoint) (*PaymentSnapshot, error)
}

// AttendanceReader returns raw records with a clock-in in [from, to).
type AttendanceReader interface {
	RecordsInRange(ctx context.Context, employeeID generic.EntityID, from, to time.Time) ([]attendance.RawRecord, error)
}

// PaymentWriter persists a payment snapshot together with its cash-advance
// deduction in one atomic write. payment is nil when nothing is deducted.
// A second snapshot for the same week returns generic.ErrAlreadyPaid.
type PaymentWriter interface {
	SavePayment(ctx context.Context, snap PaymentSnapshot, payment *advance.Payment) error
}

// Deps are the engine's collaborators.
type Deps struct {
	Policies   PolicyProvider
	Advances   AdvanceReader
	Yearly     YearlyDeductionReader
	Snapshots  SnapshotReader
	Attendance AttendanceReader
	Payments   PaymentWriter
	Clock      generic.Clock
	Logger     *slog.Logger
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine resolves collaborator data and runs the pure payroll core over it.
type Engine struct {
	deps       Deps
	normalizer *attendance.Normalizer
	log        *slog.Logger
}

// NewEngine builds an engine. A nil Clock uses the system clock and a nil
// Logger uses slog.Default().
func NewEngine(d Deps) *Engine {
	if d.Clock == nil {
		d.Clock = generic.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Engine{
		deps:       d,
		normalizer: attendance.NewNormalizer(d.Clock),
		log:        d.Logger.With("component", "payroll"),
	}
}

// DayRecords normalizes the employee's records between two calendar days,
// both inclusive. Invalid records are reported in the result, not returned
// as an error.
func (e *Engine) DayRecords(ctx context.Context, employeeID generic.EntityID, from, to generic.TimePoint) (attendance.BatchResult, error) {
	if err := (generic.Period{Start: from, End: to}).Validate(); err != nil {
		return attendance.BatchResult{}, err
	}
	policy, _, err := e.deps.Policies.Policies(ctx)
	if err != nil {
		return attendance.BatchResult{}, fmt.Errorf("load policies: %w", err)
	}

	raws, err := e.rawRecords(ctx, employeeID, from, to, policy)
	if err != nil {
		return attendance.BatchResult{}, err
	}
	return e.normalizer.NormalizeAll(raws, policy), nil
}

// WeeklySummary returns the week's summary. A paid week reads its
// deductions from the stored snapshot.
func (e *Engine) WeeklySummary(ctx context.Context, week Week) (Summary, error) {
	return e.summarize(ctx, week, false)
}

// Recompute returns the week's summary with live deductions. It fails with
// a *ConflictError wrapping generic.ErrPaidWeekConflict for a paid week.
func (e *Engine) Recompute(ctx context.Context, week Week) (Summary, error) {
	return e.summarize(ctx, week, true)
}

// WeeklySummaries returns one summary per employee for the same week
// bounds, in the order of employeeIDs.
func (e *Engine) WeeklySummaries(ctx context.Context, employeeIDs []generic.EntityID, start, end generic.TimePoint) ([]Summary, error) {
	summaries := make([]Summary, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		s, err := e.WeeklySummary(ctx, Week{EmployeeID: id, Start: start, End: end})
		if err != nil {
			return nil, fmt.Errorf("summary for %s: %w", id, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (e *Engine) summarize(ctx context.Context, week Week, recomputeLive bool) (Summary, error) {
	if err := week.Validate(); err != nil {
		return Summary{}, err
	}

	policy, deductions, err := e.deps.Policies.Policies(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load policies: %w", err)
	}

	snap, err := e.deps.Snapshots.GetIfPaid(ctx, week.EmployeeID, week.Start, week.End)
	if err != nil {
		return Summary{}, fmt.Errorf("load payment snapshot: %w", err)
	}

	raws, err := e.rawRecords(ctx, week.EmployeeID, week.Start, week.End, policy)
	if err != nil {
		return Summary{}, err
	}
	batch := e.normalizer.NormalizeAll(raws, policy)
	if len(batch.Rejected) > 0 {
		// Invalid durations would corrupt the week's money figures.
		return Summary{}, batch.Rejected[0]
	}

	in := AggregateInput{
		Week:          week,
		Records:       batch.Records,
		Policy:        policy,
		Deductions:    deductions,
		Snapshot:      snap,
		RecomputeLive: recomputeLive,
	}
	if snap == nil {
		if err := e.loadLive(ctx, &in); err != nil {
			return Summary{}, err
		}
	}

	s, err := Aggregate(in)
	if err != nil {
		if errors.Is(err, generic.ErrPaidWeekConflict) {
			e.log.ErrorContext(ctx, "live recompute requested for paid week",
				"employee_id", week.EmployeeID, "week", week.Key(), "error", err)
		}
		return Summary{}, err
	}

	for _, w := range s.Warnings {
		e.log.WarnContext(ctx, "payroll warning",
			"employee_id", s.EmployeeID, "week", week.Key(),
			"code", string(w.Code), "record_id", w.RecordID, "message", w.Message)
	}
	return s, nil
}

func (e *Engine) loadLive(ctx context.Context, in *AggregateInput) error {
	id := in.Week.EmployeeID
	year := in.Week.Start.Year()

	remaining, err := e.deps.Advances.RemainingBalance(ctx, id)
	if err != nil {
		return fmt.Errorf("load advance balance: %w", err)
	}
	sss, err := e.deps.Yearly.SSS(ctx, id, year)
	if err != nil {
		return fmt.Errorf("load yearly sss: %w", err)
	}
	pagIBIG, err := e.deps.Yearly.PagIBIG(ctx, id, year)
	if err != nil {
		return fmt.Errorf("load yearly pag-ibig: %w", err)
	}

	in.RemainingBalance = remaining
	in.YearlySSS = sss
	in.YearlyPagIBIG = pagIBIG
	return nil
}

func (e *Engine) rawRecords(ctx context.Context, employeeID generic.EntityID, from, to generic.TimePoint, p attendance.Policy) ([]attendance.RawRecord, error) {
	loc := p.Location
	raws, err := e.deps.Attendance.RecordsInRange(ctx, employeeID, from.StartIn(loc), to.AddDays(1).StartIn(loc))
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	return raws, nil
}

// =============================================================================
// MARK PAID
// =============================================================================

// MarkPaid freezes the week's live figures into a payment snapshot and
// records the cash-advance deduction against the advance ledger. Marking a
// week that shares a day with a paid one returns a *ConflictError wrapping
// generic.ErrAlreadyPaid. A week with a shift still open is refused with
// generic.ErrOpenShiftInWeek.
func (e *Engine) MarkPaid(ctx context.Context, week Week, paidBy string) (PaymentSnapshot, error) {
	if err := week.Validate(); err != nil {
		return PaymentSnapshot{}, err
	}

	existing, err := e.deps.Snapshots.GetIfPaid(ctx, week.EmployeeID, week.Start, week.End)
	if err != nil {
		return PaymentSnapshot{}, fmt.Errorf("load payment snapshot: %w", err)
	}
	if existing != nil {
		return PaymentSnapshot{}, conflict(week, existing, generic.ErrAlreadyPaid)
	}

	s, err := e.summarize(ctx, week, false)
	if err != nil {
		return PaymentSnapshot{}, err
	}
	for _, rec := range s.Details {
		if rec.IsOpen {
			e.log.WarnContext(ctx, "refusing to pay week with an open shift",
				"employee_id", week.EmployeeID, "week", week.Key(), "record_id", rec.RecordID)
			return PaymentSnapshot{}, conflict(week, nil,
				fmt.Errorf("%w: record %s", generic.ErrOpenShiftInWeek, rec.RecordID))
		}
	}

	snap := SnapshotOf(s, uuid.NewString(), e.deps.Clock.Now(), paidBy)

	var payment *advance.Payment
	if s.Deductions.CashAdvance.IsPositive() {
		payment = &advance.Payment{
			EmployeeID:     week.EmployeeID,
			Amount:         s.Deductions.CashAdvance,
			At:             week.End,
			ReferenceID:    snap.ID,
			Reason:         "weekly payroll deduction " + week.Start.String(),
			IdempotencyKey: "payroll:" + week.Key(),
			CreatedBy:      paidBy,
		}
	}

	if err := e.deps.Payments.SavePayment(ctx, snap, payment); err != nil {
		switch {
		case errors.Is(err, generic.ErrAlreadyPaid):
			return PaymentSnapshot{}, conflict(week, nil, err)
		case errors.Is(err, generic.ErrDuplicateIdempotencyKey):
			return PaymentSnapshot{}, conflict(week, nil, generic.ErrAlreadyPaid)
		}
		return PaymentSnapshot{}, fmt.Errorf("save payment: %w", err)
	}

	e.log.InfoContext(ctx, "week marked paid",
		"employee_id", week.EmployeeID, "week", week.Key(),
		"gross", snap.GrossPay.StringFixed(2), "net", snap.NetPay.StringFixed(2),
		"cash_advance", snap.CashAdvance.StringFixed(2), "paid_by", paidBy)
	return snap, nil
}
