/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes attendance capture, normalized day records, weekly payroll and
  the cash-advance ledger via REST API. Handles HTTP request/response and
  JSON serialization, and delegates to the payroll engine.

ENDPOINTS:
  Employees:
    GET    /api/employees                          List all employees
    POST   /api/employees                          Create or update employee
    GET    /api/employees/{id}                     Get employee details

  Attendance:
    POST   /api/employees/{id}/clock-in            Open a shift
    POST   /api/employees/{id}/clock-out           Close the open shift
    POST   /api/employees/{id}/attendance          Admin-supplied raw record
    GET    /api/employees/{id}/days?from=&to=      Normalized day records

  Payroll:
    GET    /api/employees/{id}/payroll/weekly      Weekly summary (?week_start= or ?date=)
    POST   /api/employees/{id}/payroll/weekly/pay  Mark a week paid
    GET    /api/employees/{id}/payroll/payments    Paid-week snapshots
    GET    /api/payroll/weekly?week_start=         Summaries for every employee
    GET    /api/employees/{id}/deductions/{year}   Yearly statutory amounts
    PUT    /api/employees/{id}/deductions/{year}   Set yearly statutory amounts

  Cash advances:
    GET    /api/employees/{id}/advances            Balance and history
    POST   /api/employees/{id}/advances            Record an advance
    POST   /api/employees/{id}/advances/payments   Record a manual repayment

  Policy:
    GET    /api/policy                             Effective policy
    PUT    /api/policy                             Replace the policy document

  Health:
    GET    /health                                 Process is up
    GET    /ready                                  Database answers

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Employee not found
  - 409: Conflict (paid week, duplicate, open shift)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Advances *advance.Ledger
	Engine   *payroll.Engine

	clock     generic.Clock
	weekStart time.Weekday
	log       *slog.Logger

	// Track currently loaded scenario
	scenarioMu      sync.RWMutex
	currentScenario string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithClock sets the clock used for clock-in/out defaults and open shifts.
func WithClock(c generic.Clock) HandlerOption {
	return func(h *Handler) { h.clock = c }
}

// WithWeekStart sets the first weekday of a payroll week.
func WithWeekStart(d time.Weekday) HandlerOption {
	return func(h *Handler) { h.weekStart = d }
}

// NewHandler wires the advance ledger and payroll engine over store.
func NewHandler(store *sqlite.Store, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		Store:     store,
		Advances:  advance.NewLedger(store),
		clock:     generic.SystemClock{},
		weekStart: time.Monday,
		log:       logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Engine = payroll.NewEngine(payroll.Deps{
		Policies:   store,
		Advances:   h.Advances,
		Yearly:     store,
		Snapshots:  store,
		Attendance: store,
		Payments:   store,
		Clock:      h.clock,
		Logger:     logger,
	})
	return h
}

// location is the operating timezone from the current policy.
func (h *Handler) location(ctx context.Context) (*time.Location, error) {
	p, _, err := h.Store.Policies(ctx)
	if err != nil {
		return nil, err
	}
	if p.Location == nil {
		return time.UTC, nil
	}
	return p.Location, nil
}

// employee resolves {id}, writing 404 when absent.
func (h *Handler) employee(w http.ResponseWriter, r *http.Request) (*sqlite.Employee, bool) {
	id := generic.EntityID(chi.URLParam(r, "id"))
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return nil, false
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return nil, false
	}
	return emp, true
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	emp := sqlite.Employee{
		ID:           generic.EntityID(req.ID),
		Name:         req.Name,
		Email:        req.Email,
		SalaryPerDay: req.SalaryPerDay,
		CreatedAt:    h.clock.Now(),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, "Failed to save employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ClockIn opens a shift for the employee.
// POST /api/employees/{id}/clock-in
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clockShift(w, r, h.Store.ClockIn, "Failed to clock in")
}

// ClockOut closes the employee's open shift.
// POST /api/employees/{id}/clock-out
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clockShift(w, r, h.Store.ClockOut, "Failed to clock out")
}

type clockFunc func(context.Context, generic.EntityID, time.Time) (attendance.RawRecord, error)

func (h *Handler) clockShift(w http.ResponseWriter, r *http.Request, fn clockFunc, failure string) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	var req ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	at := h.clock.Now()
	if req.At != nil {
		at = *req.At
	}

	ctx := r.Context()
	rec, err := fn(ctx, emp.ID, at)
	if err != nil {
		writeDomainError(w, failure, err)
		return
	}
	loc, err := h.location(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}

	writeJSON(w, http.StatusOK, toRawRecordDTO(rec, loc))
}

// CreateRecord stores an admin-supplied or corrected raw record.
// POST /api/employees/{id}/attendance
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ClockIn.IsZero() {
		writeError(w, http.StatusBadRequest, "clock_in is required", nil)
		return
	}

	rec := attendance.RawRecord{
		ID:           req.ID,
		EmployeeID:   emp.ID,
		ClockIn:      req.ClockIn,
		ClockOut:     req.ClockOut,
		SalaryPerDay: req.SalaryPerDay,
	}
	if !rec.SalaryPerDay.Valid {
		rec.SalaryPerDay = emp.SalaryPerDay
	}

	ctx := r.Context()
	saved, err := h.Store.SaveRecord(ctx, rec)
	if err != nil {
		writeDomainError(w, "Failed to save record", err)
		return
	}
	loc, err := h.location(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRawRecordDTO(saved, loc))
}

// GetDayRecords returns normalized day records between two dates, inclusive.
// GET /api/employees/{id}/days?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetDayRecords(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	from, err := generic.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := generic.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	batch, err := h.Engine.DayRecords(ctx, emp.ID, from, to)
	if err != nil {
		writeDomainError(w, "Failed to compute day records", err)
		return
	}
	loc, err := h.location(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}

	resp := DayRecordsDTO{Records: toDayRecordDTOs(batch.Records, loc)}
	for _, rej := range batch.Rejected {
		dto := RejectedDTO{Error: rej.Error()}
		var ve *attendance.ValidationError
		if errors.As(rej, &ve) {
			dto.RecordID = ve.RecordID
		}
		resp.Rejected = append(resp.Rejected, dto)
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// weekFromQuery reads ?week_start= (with optional ?week_end=) or ?date=.
func (h *Handler) weekFromQuery(r *http.Request, id generic.EntityID) (payroll.Week, error) {
	q := r.URL.Query()
	if q.Get("week_start") != "" {
		return weekFrom(id, q.Get("week_start"), q.Get("week_end"))
	}

	day := generic.DateOf(h.clock.Now(), time.UTC)
	if q.Get("date") != "" {
		d, err := generic.ParseDate(q.Get("date"))
		if err != nil {
			return payroll.Week{}, fmt.Errorf("%w: date: %v", generic.ErrInvalidPeriod, err)
		}
		day = d
	} else if loc, err := h.location(r.Context()); err == nil {
		day = generic.DateOf(h.clock.Now(), loc)
	}
	return payroll.WeekOf(id, day, h.weekStart), nil
}

func weekFrom(id generic.EntityID, start, end string) (payroll.Week, error) {
	s, err := generic.ParseDate(start)
	if err != nil {
		return payroll.Week{}, fmt.Errorf("%w: week_start: %v", generic.ErrInvalidPeriod, err)
	}
	e := s.AddDays(6)
	if end != "" {
		if e, err = generic.ParseDate(end); err != nil {
			return payroll.Week{}, fmt.Errorf("%w: week_end: %v", generic.ErrInvalidPeriod, err)
		}
	}
	w := payroll.Week{EmployeeID: id, Start: s, End: e}
	return w, w.Period().Validate()
}

// GetWeeklySummary returns an employee's weekly payroll. With
// ?recompute=true a paid week is refused with 409 instead of reading its
// snapshot.
// GET /api/employees/{id}/payroll/weekly
func (h *Handler) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}
	week, err := h.weekFromQuery(r, emp.ID)
	if err != nil {
		writeDomainError(w, "Invalid week", err)
		return
	}

	ctx := r.Context()
	var s payroll.Summary
	if recompute, _ := strconv.ParseBool(r.URL.Query().Get("recompute")); recompute {
		s, err = h.Engine.Recompute(ctx, week)
	} else {
		s, err = h.Engine.WeeklySummary(ctx, week)
	}
	if err != nil {
		writeDomainError(w, "Failed to compute weekly summary", err)
		return
	}
	loc, err := h.location(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryDTO(s, loc))
}

// ListWeeklySummaries returns the week's summary for every employee.
// GET /api/payroll/weekly?week_start=YYYY-MM-DD
func (h *Handler) ListWeeklySummaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	week, err := h.weekFromQuery(r, "")
	if err != nil {
		writeDomainError(w, "Invalid week", err)
		return
	}

	ids := make([]generic.EntityID, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	summaries, err := h.Engine.WeeklySummaries(ctx, ids, week.Start, week.End)
	if err != nil {
		writeDomainError(w, "Failed to compute weekly summaries", err)
		return
	}
	loc, err := h.location(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}

	dtos := make([]WeeklySummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toSummaryDTO(s, loc)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MarkPaid freezes a week and deducts the cash advance.
// POST /api/employees/{id}/payroll/weekly/pay
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	var req MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	week, err := weekFrom(emp.ID, req.WeekStart, req.WeekEnd)
	if err != nil {
		writeDomainError(w, "Invalid week", err)
		return
	}

	ctx := r.Context()
	snap, err := h.Engine.MarkPaid(ctx, week, req.PaidBy)
	if err != nil {
		writeDomainError(w, "Failed to mark week paid", err)
		return
	}
	loc, err := h.location(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentDTO(snap, loc))
}

// ListPayments returns an employee's paid weeks.
// GET /api/employees/{id}/payroll/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	snaps, err := h.Store.ListPayments(ctx, emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}
	loc, err := h.location(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}

	dtos := make([]PaymentDTO, len(snaps))
	for i, s := range snaps {
		dtos[i] = toPaymentDTO(s, loc)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetYearlyDeductions returns the employee's statutory amounts for a year.
// GET /api/employees/{id}/deductions/{year}
func (h *Handler) GetYearlyDeductions(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	sss, pagIBIG, err := h.Store.YearlyDeductions(r.Context(), emp.ID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get yearly deductions", err)
		return
	}

	writeJSON(w, http.StatusOK, YearlyDeductionsDTO{
		EmployeeID:    string(emp.ID),
		Year:          year,
		SSS:           money(sss),
		PagIBIG:       money(pagIBIG),
		WeeklySSS:     money(payroll.WeeklyStatutory(sss)),
		WeeklyPagIBIG: money(payroll.WeeklyStatutory(pagIBIG)),
	})
}

// SetYearlyDeductions stores the employee's statutory amounts for a year.
// PUT /api/employees/{id}/deductions/{year}
func (h *Handler) SetYearlyDeductions(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	var req YearlyDeductionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Store.SetYearlyDeductions(r.Context(), emp.ID, year, req.SSS, req.PagIBIG); err != nil {
		writeDomainError(w, "Failed to set yearly deductions", err)
		return
	}

	writeJSON(w, http.StatusOK, YearlyDeductionsDTO{
		EmployeeID:    string(emp.ID),
		Year:          year,
		SSS:           money(req.SSS),
		PagIBIG:       money(req.PagIBIG),
		WeeklySSS:     money(payroll.WeeklyStatutory(req.SSS)),
		WeeklyPagIBIG: money(payroll.WeeklyStatutory(req.PagIBIG)),
	})
}

// =============================================================================
// CASH ADVANCE HANDLERS
// =============================================================================

// GetAdvances returns the employee's advance balance and history.
// GET /api/employees/{id}/advances
func (h *Handler) GetAdvances(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.employee(w, r)
	if !ok {
		return
	}
	h.writeAdvanceBalance(w, r.Context(), emp.ID, http.StatusOK)
}

// CreateAdvance records a new cash advance.
// POST /api/employees/{id}/advances
func (h *Handler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	emp, req, day, ok := h.advanceRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if _, err := h.Advances.RecordAdvance(ctx, emp.ID, req.Amount, day, req.Reason); err != nil {
		writeDomainError(w, "Failed to record advance", err)
		return
	}
	h.writeAdvanceBalance(w, ctx, emp.ID, http.StatusCreated)
}

// CreateAdvancePayment records a manual repayment outside payroll.
// POST /api/employees/{id}/advances/payments
func (h *Handler) CreateAdvancePayment(w http.ResponseWriter, r *http.Request) {
	emp, req, day, ok := h.advanceRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	_, err := h.Advances.RecordPayment(ctx, advance.Payment{
		EmployeeID:     emp.ID,
		Amount:         req.Amount,
		At:             day,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
		CreatedBy:      req.CreatedBy,
	})
	if err != nil {
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	h.writeAdvanceBalance(w, ctx, emp.ID, http.StatusCreated)
}

func (h *Handler) advanceRequest(w http.ResponseWriter, r *http.Request) (*sqlite.Employee, AdvanceRequest, generic.TimePoint, bool) {
	var req AdvanceRequest
	emp, ok := h.employee(w, r)
	if !ok {
		return nil, req, generic.TimePoint{}, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, req, generic.TimePoint{}, false
	}

	var day generic.TimePoint
	if req.Date != "" {
		d, err := generic.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return nil, req, generic.TimePoint{}, false
		}
		day = d
	} else {
		loc, err := h.location(r.Context())
		if err != nil {
			writeDomainError(w, "Failed to load policy", err)
			return nil, req, generic.TimePoint{}, false
		}
		day = generic.DateOf(h.clock.Now(), loc)
	}
	return emp, req, day, true
}

func (h *Handler) writeAdvanceBalance(w http.ResponseWriter, ctx context.Context, id generic.EntityID, status int) {
	bal, err := h.Advances.Balance(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get advance balance", err)
		return
	}
	history, err := h.Advances.History(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get advance history", err)
		return
	}
	writeJSON(w, status, toAdvanceBalanceDTO(id, bal, history))
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// GetPolicy returns the effective policy with defaults filled in.
// GET /api/policy
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, d, err := h.Store.Policies(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}
	_, version, err := h.Store.PolicyDocument(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load policy", err)
		return
	}
	writeJSON(w, http.StatusOK, PolicyDTO{Config: factory.ToJSON(p, d), Version: version})
}

// UpdatePolicy replaces the stored policy document. Absent fields take
// their defaults.
// PUT /api/policy
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req factory.PolicyJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	doc, err := json.Marshal(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy configuration", err)
		return
	}

	ctx := r.Context()
	if _, err := h.Store.SavePolicyDocument(ctx, string(doc), r.Header.Get("X-Updated-By")); err != nil {
		writeDomainError(w, "Invalid policy configuration", err)
		return
	}
	h.log.InfoContext(ctx, "policy updated", "document", string(doc))

	h.GetPolicy(w, r)
}

// Ready reports whether the database answers. Unlike /health it fails
// while the store is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.log.ErrorContext(r.Context(), "readiness check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error's sentinel.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
