/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND HOURS:
  The engine keeps full decimal precision. Responses round money and hours
  to 2 decimals as strings ("2890.00"), so clients never see float drift.
  Requests accept decimals as JSON numbers or strings.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	SalaryPerDay *string `json:"salary_per_day"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	SalaryPerDay decimal.NullDecimal `json:"salary_per_day"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// ClockRequest is the body of clock-in and clock-out. An absent At means now.
type ClockRequest struct {
	At *time.Time `json:"at,omitempty"`
}

// RecordRequest is an admin-supplied raw record. An absent salary copies the
// employee's current rate.
type RecordRequest struct {
	ID           string              `json:"id,omitempty"`
	ClockIn      time.Time           `json:"clock_in"`
	ClockOut     *time.Time          `json:"clock_out,omitempty"`
	SalaryPerDay decimal.NullDecimal `json:"salary_per_day"`
}

// RawRecordDTO is a stored clock-in/clock-out pair.
type RawRecordDTO struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	ClockIn      string  `json:"clock_in"`
	ClockOut     *string `json:"clock_out"`
	SalaryPerDay *string `json:"salary_per_day"`
}

// DayRecordDTO is a normalized day.
type DayRecordDTO struct {
	RecordID      string       `json:"record_id"`
	WorkDate      string       `json:"work_date"`
	ClockIn       string       `json:"clock_in"`
	ClockOut      string       `json:"clock_out"`
	IsOpen        bool         `json:"is_open"`
	HoursWorked   string       `json:"hours_worked"`
	RegularHours  string       `json:"regular_hours"`
	OvertimeHours string       `json:"overtime_hours"`
	HolidayHours  string       `json:"holiday_hours"`
	IsHoliday     bool         `json:"is_holiday"`
	LateMinutes   int          `json:"late_minutes"`
	LateTier      string       `json:"late_tier"`
	SalaryPerHour *string      `json:"salary_per_hour"`
	AmountEarned  *string      `json:"amount_earned"`
	Warnings      []WarningDTO `json:"warnings,omitempty"`
}

// DayRecordsDTO is the response of the day-records endpoint.
type DayRecordsDTO struct {
	Records  []DayRecordDTO `json:"records"`
	Rejected []RejectedDTO  `json:"rejected,omitempty"`
}

// RejectedDTO is a record that failed validation.
type RejectedDTO struct {
	RecordID string `json:"record_id"`
	Error    string `json:"error"`
}

// WarningDTO is a non-fatal annotation.
type WarningDTO struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	RecordID string `json:"record_id,omitempty"`
}

// =============================================================================
// PAYROLL
// =============================================================================

// WeeklySummaryDTO is the weekly payroll of one employee.
type WeeklySummaryDTO struct {
	EmployeeID string `json:"employee_id"`
	WeekStart  string `json:"week_start"`
	WeekEnd    string `json:"week_end"`
	DaysWorked int    `json:"days_worked"`

	TotalRegularHours  string `json:"total_regular_hours"`
	TotalOvertimeHours string `json:"total_overtime_hours"`
	TotalHolidayHours  string `json:"total_holiday_hours"`
	TotalLateMinutes   int    `json:"total_late_minutes"`

	RegularPay  string `json:"regular_pay"`
	OvertimePay string `json:"overtime_pay"`
	HolidayPay  string `json:"holiday_pay"`
	GrossPay    string `json:"gross_pay"`

	SSSDeduction         string `json:"sss_deduction"`
	PagIBIGDeduction     string `json:"pag_ibig_deduction"`
	CashAdvanceDeduction string `json:"cash_advance_deduction"`
	TotalDeductions      string `json:"total_deductions"`
	NetPay               string `json:"net_pay"`
	RemainingBalance     string `json:"remaining_balance"`

	IsPaid bool   `json:"is_paid"`
	PaidAt string `json:"paid_at,omitempty"`
	PaidBy string `json:"paid_by,omitempty"`

	Details  []DayRecordDTO `json:"details"`
	Warnings []WarningDTO   `json:"warnings,omitempty"`
}

// MarkPaidRequest marks a week paid. An empty WeekEnd means WeekStart + 6.
type MarkPaidRequest struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end,omitempty"`
	PaidBy    string `json:"paid_by"`
}

// PaymentDTO is a stored payment snapshot.
type PaymentDTO struct {
	ID               string `json:"id"`
	EmployeeID       string `json:"employee_id"`
	WeekStart        string `json:"week_start"`
	WeekEnd          string `json:"week_end"`
	DaysWorked       int    `json:"days_worked"`
	RegularHours     string `json:"regular_hours"`
	OvertimeHours    string `json:"overtime_hours"`
	HolidayHours     string `json:"holiday_hours"`
	LateMinutes      int    `json:"late_minutes"`
	SSS              string `json:"sss"`
	PagIBIG          string `json:"pag_ibig"`
	CashAdvance      string `json:"cash_advance"`
	RemainingBalance string `json:"remaining_balance"`
	RegularPay       string `json:"regular_pay"`
	OvertimePay      string `json:"overtime_pay"`
	HolidayPay       string `json:"holiday_pay"`
	GrossPay         string `json:"gross_pay"`
	NetPay           string `json:"net_pay"`
	PaidAt           string `json:"paid_at"`
	PaidBy           string `json:"paid_by,omitempty"`
}

// YearlyDeductionsRequest sets statutory yearly amounts.
type YearlyDeductionsRequest struct {
	SSS     decimal.Decimal `json:"sss"`
	PagIBIG decimal.Decimal `json:"pag_ibig"`
}

// YearlyDeductionsDTO echoes the yearly amounts and their weekly share.
type YearlyDeductionsDTO struct {
	EmployeeID    string `json:"employee_id"`
	Year          int    `json:"year"`
	SSS           string `json:"sss"`
	PagIBIG       string `json:"pag_ibig"`
	WeeklySSS     string `json:"weekly_sss"`
	WeeklyPagIBIG string `json:"weekly_pag_ibig"`
}

// =============================================================================
// CASH ADVANCES
// =============================================================================

// AdvanceRequest records an advance or a manual repayment. An empty Date
// means today in the operating timezone.
type AdvanceRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
}

// TransactionDTO represents a ledger line.
type TransactionDTO struct {
	ID             string `json:"id"`
	EntityID       string `json:"entity_id"`
	Type           string `json:"type"`
	EffectiveAt    string `json:"effective_at"`
	Delta          string `json:"delta"`
	Running        string `json:"running_balance,omitempty"`
	ReferenceID    string `json:"reference_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// AdvanceBalanceDTO summarizes an employee's cash advances.
type AdvanceBalanceDTO struct {
	EmployeeID string           `json:"employee_id"`
	Advanced   string           `json:"advanced"`
	Repaid     string           `json:"repaid"`
	Adjusted   string           `json:"adjusted"`
	Remaining  string           `json:"remaining"`
	History    []TransactionDTO `json:"history"`
}

// =============================================================================
// POLICY AND SCENARIOS
// =============================================================================

// PolicyDTO is the effective policy with every field set.
type PolicyDTO struct {
	Config  factory.PolicyJSON `json:"config"`
	Version int                `json:"version"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:           string(e.ID),
		Name:         e.Name,
		Email:        e.Email,
		SalaryPerDay: nullMoney(e.SalaryPerDay),
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}

func toRawRecordDTO(r attendance.RawRecord, loc *time.Location) RawRecordDTO {
	dto := RawRecordDTO{
		ID:           r.ID,
		EmployeeID:   string(r.EmployeeID),
		ClockIn:      r.ClockIn.In(loc).Format(time.RFC3339),
		SalaryPerDay: nullMoney(r.SalaryPerDay),
	}
	if r.ClockOut != nil {
		out := r.ClockOut.In(loc).Format(time.RFC3339)
		dto.ClockOut = &out
	}
	return dto
}

func toWarningDTOs(ws []attendance.Warning) []WarningDTO {
	if len(ws) == 0 {
		return nil
	}
	dtos := make([]WarningDTO, len(ws))
	for i, w := range ws {
		dtos[i] = WarningDTO{Code: string(w.Code), Message: w.Message, RecordID: w.RecordID}
	}
	return dtos
}

func toDayRecordDTO(d attendance.DayRecord, loc *time.Location) DayRecordDTO {
	return DayRecordDTO{
		RecordID:      d.RecordID,
		WorkDate:      d.WorkDate.String(),
		ClockIn:       d.ClockIn.In(loc).Format(time.RFC3339),
		ClockOut:      d.ClockOut.In(loc).Format(time.RFC3339),
		IsOpen:        d.IsOpen,
		HoursWorked:   money(d.HoursWorked),
		RegularHours:  money(d.RegularHours),
		OvertimeHours: money(d.OvertimeHours),
		HolidayHours:  money(d.HolidayHours),
		IsHoliday:     d.IsHoliday,
		LateMinutes:   d.LateMinutes,
		LateTier:      string(d.LateTier),
		SalaryPerHour: nullMoney(d.SalaryPerHour),
		AmountEarned:  nullMoney(d.AmountEarned),
		Warnings:      toWarningDTOs(d.Warnings),
	}
}

func toDayRecordDTOs(records []attendance.DayRecord, loc *time.Location) []DayRecordDTO {
	dtos := make([]DayRecordDTO, len(records))
	for i, d := range records {
		dtos[i] = toDayRecordDTO(d, loc)
	}
	return dtos
}

func toSummaryDTO(s payroll.Summary, loc *time.Location) WeeklySummaryDTO {
	dto := WeeklySummaryDTO{
		EmployeeID:           string(s.EmployeeID),
		WeekStart:            s.WeekStart.String(),
		WeekEnd:              s.WeekEnd.String(),
		DaysWorked:           s.DaysWorked,
		TotalRegularHours:    money(s.Totals.RegularHours),
		TotalOvertimeHours:   money(s.Totals.OvertimeHours),
		TotalHolidayHours:    money(s.Totals.HolidayHours),
		TotalLateMinutes:     s.Totals.LateMinutes,
		RegularPay:           money(s.Pay.RegularPay),
		OvertimePay:          money(s.Pay.OvertimePay),
		HolidayPay:           money(s.Pay.HolidayPay),
		GrossPay:             money(s.Pay.GrossPay),
		SSSDeduction:         money(s.Deductions.SSS),
		PagIBIGDeduction:     money(s.Deductions.PagIBIG),
		CashAdvanceDeduction: money(s.Deductions.CashAdvance),
		TotalDeductions:      money(s.Deductions.Total),
		NetPay:               money(s.Pay.NetPay),
		RemainingBalance:     money(s.RemainingBalance),
		IsPaid:               s.IsPaid,
		PaidBy:               s.PaidBy,
		Details:              toDayRecordDTOs(s.Details, loc),
		Warnings:             toWarningDTOs(s.Warnings),
	}
	if s.PaidAt != nil {
		dto.PaidAt = s.PaidAt.In(loc).Format(time.RFC3339)
	}
	return dto
}

func toPaymentDTO(p payroll.PaymentSnapshot, loc *time.Location) PaymentDTO {
	return PaymentDTO{
		ID:               p.ID,
		EmployeeID:       string(p.EmployeeID),
		WeekStart:        p.WeekStart.String(),
		WeekEnd:          p.WeekEnd.String(),
		DaysWorked:       p.DaysWorked,
		RegularHours:     money(p.Totals.RegularHours),
		OvertimeHours:    money(p.Totals.OvertimeHours),
		HolidayHours:     money(p.Totals.HolidayHours),
		LateMinutes:      p.Totals.LateMinutes,
		SSS:              money(p.SSS),
		PagIBIG:          money(p.PagIBIG),
		CashAdvance:      money(p.CashAdvance),
		RemainingBalance: money(p.RemainingBalance),
		RegularPay:       money(p.RegularPay),
		OvertimePay:      money(p.OvertimePay),
		HolidayPay:       money(p.HolidayPay),
		GrossPay:         money(p.GrossPay),
		NetPay:           money(p.NetPay),
		PaidAt:           p.PaidAt.In(loc).Format(time.RFC3339),
		PaidBy:           p.PaidBy,
	}
}

func toTransactionDTO(tx generic.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:             string(tx.ID),
		EntityID:       string(tx.EntityID),
		Type:           string(tx.Type),
		EffectiveAt:    tx.EffectiveAt.String(),
		Delta:          money(tx.Delta.Value),
		ReferenceID:    tx.ReferenceID,
		Reason:         tx.Reason,
		IdempotencyKey: tx.IdempotencyKey,
		CreatedBy:      tx.CreatedBy,
	}
	if !tx.CreatedAt.IsZero() {
		dto.CreatedAt = tx.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toAdvanceBalanceDTO(id generic.EntityID, bal generic.Balance, history []advance.Entry) AdvanceBalanceDTO {
	remaining := bal.Remaining().Value
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	dto := AdvanceBalanceDTO{
		EmployeeID: string(id),
		Advanced:   money(bal.Granted.Value),
		Repaid:     money(bal.Paid.Value),
		Adjusted:   money(bal.Adjustments.Value),
		Remaining:  money(remaining),
		History:    make([]TransactionDTO, len(history)),
	}
	for i, e := range history {
		dto.History[i] = toTransactionDTO(e.Transaction)
		dto.History[i].Running = money(e.Running)
	}
	return dto
}
