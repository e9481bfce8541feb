package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

var (
	_ payroll.AttendanceReader      = (*Store)(nil)
	_ payroll.PolicyProvider        = (*Store)(nil)
	_ payroll.YearlyDeductionReader = (*Store)(nil)
	_ payroll.SnapshotReader        = (*Store)(nil)
	_ payroll.PaymentWriter         = (*Store)(nil)
)

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// Employee is a person on the payroll.
type Employee struct {
	ID           generic.EntityID
	Name         string
	Email        string
	SalaryPerDay decimal.NullDecimal
	CreatedAt    time.Time
}

// SaveEmployee creates or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	if emp.ID == "" {
		return generic.ErrMissingEmployee
	}
	if emp.SalaryPerDay.Valid && emp.SalaryPerDay.Decimal.IsNegative() {
		return fmt.Errorf("%w: negative daily salary", generic.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO employees (id, name, email, salary_per_day, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			salary_per_day = excluded.salary_per_day
	`
	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, nullString(emp.Email), emp.SalaryPerDay, formatTime(createdAt))
	return err
}

// GetEmployee retrieves an employee by ID. Returns nil, nil when absent.
func (s *Store) GetEmployee(ctx context.Context, id generic.EntityID) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, salary_per_day, created_at FROM employees WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, salary_per_day, created_at FROM employees ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (Employee, error) {
	var (
		emp       Employee
		email     sql.NullString
		createdAt string
	)
	if err := row.Scan(&emp.ID, &emp.Name, &email, &emp.SalaryPerDay, &createdAt); err != nil {
		return Employee{}, err
	}
	emp.Email = email.String
	emp.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return emp, nil
}

// =============================================================================
// ATTENDANCE STORE (payroll.AttendanceReader)
// =============================================================================

const selectRecords = `
	SELECT id, employee_id, clock_in, clock_out, salary_per_day
	FROM attendance_records
`

// ClockIn opens a shift at the given instant. The employee's current daily
// salary is copied onto the record so later raises don't rewrite history.
func (s *Store) ClockIn(ctx context.Context, employeeID generic.EntityID, at time.Time) (attendance.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return attendance.RawRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var salary decimal.NullDecimal
	err = tx.QueryRowContext(ctx, "SELECT salary_per_day FROM employees WHERE id = ?", employeeID).Scan(&salary)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.RawRecord{}, fmt.Errorf("%w: employee %s", generic.ErrEntityNotFound, employeeID)
	}
	if err != nil {
		return attendance.RawRecord{}, err
	}

	if _, err := openRecord(ctx, tx, employeeID); err == nil {
		return attendance.RawRecord{}, fmt.Errorf("%w: employee %s", generic.ErrShiftAlreadyOpen, employeeID)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return attendance.RawRecord{}, err
	}

	rec := attendance.RawRecord{
		ID:           uuid.NewString(),
		EmployeeID:   employeeID,
		ClockIn:      at,
		SalaryPerDay: salary,
	}
	if err := upsertRecord(ctx, tx, rec); err != nil {
		return attendance.RawRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return attendance.RawRecord{}, err
	}
	return rec, nil
}

// ClockOut closes the employee's open shift.
func (s *Store) ClockOut(ctx context.Context, employeeID generic.EntityID, at time.Time) (attendance.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return attendance.RawRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rec, err := openRecord(ctx, tx, employeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.RawRecord{}, fmt.Errorf("%w: employee %s", generic.ErrNoOpenShift, employeeID)
	}
	if err != nil {
		return attendance.RawRecord{}, err
	}

	rec.ClockOut = &at
	if err := attendance.ValidateRaw(rec); err != nil {
		return attendance.RawRecord{}, err
	}
	if err := upsertRecord(ctx, tx, rec); err != nil {
		return attendance.RawRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return attendance.RawRecord{}, err
	}
	return rec, nil
}

// SaveRecord creates or corrects a record. An empty ID gets a new one.
func (s *Store) SaveRecord(ctx context.Context, rec attendance.RawRecord) (attendance.RawRecord, error) {
	if err := attendance.ValidateRaw(rec); err != nil {
		return attendance.RawRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees WHERE id = ?", rec.EmployeeID).Scan(&exists); err != nil {
		return attendance.RawRecord{}, err
	}
	if exists == 0 {
		return attendance.RawRecord{}, fmt.Errorf("%w: employee %s", generic.ErrEntityNotFound, rec.EmployeeID)
	}

	if err := upsertRecord(ctx, s.db, rec); err != nil {
		if isUniqueConstraintError(err) {
			return attendance.RawRecord{}, fmt.Errorf("%w: employee %s", generic.ErrShiftAlreadyOpen, rec.EmployeeID)
		}
		return attendance.RawRecord{}, err
	}
	return rec, nil
}

// GetRecord returns a raw record by ID. Returns nil, nil when absent.
func (s *Store) GetRecord(ctx context.Context, id string) (*attendance.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectRecords+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecordsInRange returns raw records with a clock-in in [from, to),
// ordered by clock-in.
func (s *Store) RecordsInRange(ctx context.Context, employeeID generic.EntityID, from, to time.Time) ([]attendance.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRecords + `
		WHERE employee_id = ? AND clock_in >= ? AND clock_in < ?
		ORDER BY clock_in ASC
	`
	rows, err := s.db.QueryContext(ctx, query, employeeID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.RawRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// OpenShifts returns every record without a clock-out whose clock-in is
// before cutoff, oldest first.
func (s *Store) OpenShifts(ctx context.Context, cutoff time.Time) ([]attendance.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRecords + `
		WHERE clock_out IS NULL AND clock_in < ?
		ORDER BY clock_in ASC
	`
	rows, err := s.db.QueryContext(ctx, query, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to query open shifts: %w", err)
	}
	defer rows.Close()

	var records []attendance.RawRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func openRecord(ctx context.Context, db querier, employeeID generic.EntityID) (attendance.RawRecord, error) {
	return scanRecord(db.QueryRowContext(ctx,
		selectRecords+" WHERE employee_id = ? AND clock_out IS NULL", employeeID))
}

func upsertRecord(ctx context.Context, db execer, rec attendance.RawRecord) error {
	var clockOut sql.NullString
	if rec.ClockOut != nil {
		clockOut = sql.NullString{String: formatTime(*rec.ClockOut), Valid: true}
	}

	query := `
		INSERT INTO attendance_records (id, employee_id, clock_in, clock_out, salary_per_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			clock_in = excluded.clock_in,
			clock_out = excluded.clock_out,
			salary_per_day = excluded.salary_per_day
	`
	_, err := db.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, formatTime(rec.ClockIn), clockOut, rec.SalaryPerDay, formatTime(time.Now()))
	return err
}

func scanRecord(row scanner) (attendance.RawRecord, error) {
	var (
		rec      attendance.RawRecord
		clockIn  string
		clockOut sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.EmployeeID, &clockIn, &clockOut, &rec.SalaryPerDay); err != nil {
		return attendance.RawRecord{}, err
	}

	var err error
	if rec.ClockIn, err = parseTime(clockIn); err != nil {
		return attendance.RawRecord{}, err
	}
	if clockOut.Valid {
		out, err := parseTime(clockOut.String)
		if err != nil {
			return attendance.RawRecord{}, err
		}
		rec.ClockOut = &out
	}
	return rec, nil
}

// =============================================================================
// POLICY STORE (payroll.PolicyProvider)
// =============================================================================

const policyRowID = "default"

// Policies parses the stored document. No stored document means defaults.
func (s *Store) Policies(ctx context.Context) (attendance.Policy, payroll.DeductionPolicy, error) {
	doc, _, err := s.PolicyDocument(ctx)
	if err != nil {
		return attendance.Policy{}, payroll.DeductionPolicy{}, err
	}
	return s.policies.ParsePolicy(doc)
}

// PolicyDocument returns the stored JSON document and its version. Both are
// zero values when nothing was saved yet.
func (s *Store) PolicyDocument(ctx context.Context) (string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		doc     string
		version int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json, version FROM policy_settings WHERE id = ?", policyRowID,
	).Scan(&doc, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to load policy: %w", err)
	}
	return doc, version, nil
}

// SavePolicyDocument validates and stores a new policy document, bumping
// its version. An invalid document is rejected and the old one kept.
func (s *Store) SavePolicyDocument(ctx context.Context, doc, updatedBy string) (int, error) {
	if _, _, err := s.policies.ParsePolicy(doc); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := formatTime(time.Now())
	query := `
		INSERT INTO policy_settings (id, config_json, version, updated_by, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_json = excluded.config_json,
			version = policy_settings.version + 1,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, policyRowID, doc, nullString(updatedBy), now, now); err != nil {
		return 0, fmt.Errorf("failed to save policy: %w", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM policy_settings WHERE id = ?", policyRowID).Scan(&version)
	return version, err
}

// =============================================================================
// YEARLY DEDUCTION STORE (payroll.YearlyDeductionReader)
// =============================================================================

// SetYearlyDeductions stores the yearly statutory amounts for an employee.
func (s *Store) SetYearlyDeductions(ctx context.Context, employeeID generic.EntityID, year int, sss, pagIBIG decimal.Decimal) error {
	if sss.IsNegative() || pagIBIG.IsNegative() {
		return fmt.Errorf("%w: negative yearly deduction", generic.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO yearly_deductions (employee_id, year, sss, pag_ibig, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year) DO UPDATE SET
			sss = excluded.sss,
			pag_ibig = excluded.pag_ibig,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, employeeID, year, sss, pagIBIG, formatTime(time.Now()))
	return err
}

// YearlyDeductions returns both statutory amounts. Unknown years are zero.
func (s *Store) YearlyDeductions(ctx context.Context, employeeID generic.EntityID, year int) (sss, pagIBIG decimal.Decimal, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRowContext(ctx,
		"SELECT sss, pag_ibig FROM yearly_deductions WHERE employee_id = ? AND year = ?",
		employeeID, year,
	).Scan(&sss, &pagIBIG)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, decimal.Zero, nil
	}
	return sss, pagIBIG, err
}

// SSS returns the yearly SSS amount.
func (s *Store) SSS(ctx context.Context, employeeID generic.EntityID, year int) (decimal.Decimal, error) {
	sss, _, err := s.YearlyDeductions(ctx, employeeID, year)
	return sss, err
}

// PagIBIG returns the yearly Pag-IBIG amount.
func (s *Store) PagIBIG(ctx context.Context, employeeID generic.EntityID, year int) (decimal.Decimal, error) {
	_, pagIBIG, err := s.YearlyDeductions(ctx, employeeID, year)
	return pagIBIG, err
}

// =============================================================================
// SNAPSHOT STORE (payroll.SnapshotReader / payroll.PaymentWriter)
// =============================================================================

const selectSnapshots = `
	SELECT id, employee_id, week_start, week_end,
	       days_worked, regular_hours, overtime_hours, holiday_hours, late_minutes,
	       sss, pag_ibig, cash_advance, remaining_balance,
	       regular_pay, overtime_pay, holiday_pay, gross_pay, net_pay, paid_at, paid_by
	FROM payment_snapshots
`

// GetIfPaid returns the week's snapshot, or nil if it isn't paid.
func (s *Store) GetIfPaid(ctx context.Context, employeeID generic.EntityID, weekStart, weekEnd generic.TimePoint) (*payroll.PaymentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		selectSnapshots+" WHERE employee_id = ? AND week_start = ? AND week_end = ?",
		employeeID, formatDay(weekStart), formatDay(weekEnd))
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListPayments returns an employee's snapshots ordered by week.
func (s *Store) ListPayments(ctx context.Context, employeeID generic.EntityID) ([]payroll.PaymentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		selectSnapshots+" WHERE employee_id = ? ORDER BY week_start ASC", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []payroll.PaymentSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// SavePayment stores the snapshot and appends the cash-advance repayment in
// one database transaction. A snapshot sharing any day with a stored one
// fails with generic.ErrAlreadyPaid. The overlap and balance checks run
// inside the transaction, so concurrent payments can't pay a day twice or
// overdraw the advance.
func (s *Store) SavePayment(ctx context.Context, snap payroll.PaymentSnapshot, payment *advance.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Days are YYYY-MM-DD, so string order is date order
	var paidStart, paidEnd string
	err = tx.QueryRowContext(ctx, `
		SELECT week_start, week_end FROM payment_snapshots
		WHERE employee_id = ? AND week_start <= ? AND week_end >= ?
		LIMIT 1`,
		snap.EmployeeID, formatDay(snap.WeekEnd), formatDay(snap.WeekStart),
	).Scan(&paidStart, &paidEnd)
	switch {
	case err == nil:
		return fmt.Errorf("%w: overlaps paid week %s..%s", generic.ErrAlreadyPaid, paidStart, paidEnd)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check paid weeks: %w", err)
	}

	query := `
		INSERT INTO payment_snapshots
		(id, employee_id, week_start, week_end,
		 days_worked, regular_hours, overtime_hours, holiday_hours, late_minutes,
		 sss, pag_ibig, cash_advance, remaining_balance,
		 regular_pay, overtime_pay, holiday_pay, gross_pay, net_pay,
		 paid_at, paid_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		snap.ID, snap.EmployeeID, formatDay(snap.WeekStart), formatDay(snap.WeekEnd),
		snap.DaysWorked, snap.Totals.RegularHours, snap.Totals.OvertimeHours,
		snap.Totals.HolidayHours, snap.Totals.LateMinutes,
		snap.SSS, snap.PagIBIG, snap.CashAdvance, snap.RemainingBalance,
		snap.RegularPay, snap.OvertimePay, snap.HolidayPay, snap.GrossPay, snap.NetPay,
		formatTime(snap.PaidAt), nullString(snap.PaidBy), formatTime(time.Now()),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrAlreadyPaid
		}
		return fmt.Errorf("failed to save payment snapshot: %w", err)
	}

	if payment != nil {
		txs, err := loadTx(ctx, tx, payment.EmployeeID, advance.PolicyID)
		if err != nil {
			return err
		}
		bal := generic.Summarize(payment.EmployeeID, advance.PolicyID, txs, generic.UnitMoney, generic.TimePoint{})
		if !bal.CanPay(generic.NewMoney(payment.Amount)) {
			return &advance.OverpaymentError{
				EmployeeID: payment.EmployeeID,
				Remaining:  decimal.Max(bal.Remaining().Value, decimal.Zero),
				Requested:  payment.Amount,
			}
		}
		if err := appendTx(ctx, tx, advance.PaymentTransaction(*payment)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanSnapshot(row scanner) (payroll.PaymentSnapshot, error) {
	var (
		snap      payroll.PaymentSnapshot
		weekStart string
		weekEnd   string
		paidAt    string
		paidBy    sql.NullString
	)
	err := row.Scan(
		&snap.ID, &snap.EmployeeID, &weekStart, &weekEnd,
		&snap.DaysWorked, &snap.Totals.RegularHours, &snap.Totals.OvertimeHours,
		&snap.Totals.HolidayHours, &snap.Totals.LateMinutes,
		&snap.SSS, &snap.PagIBIG, &snap.CashAdvance, &snap.RemainingBalance,
		&snap.RegularPay, &snap.OvertimePay, &snap.HolidayPay, &snap.GrossPay, &snap.NetPay,
		&paidAt, &paidBy,
	)
	if err != nil {
		return payroll.PaymentSnapshot{}, err
	}

	if snap.WeekStart, err = parseDay(weekStart); err != nil {
		return payroll.PaymentSnapshot{}, err
	}
	if snap.WeekEnd, err = parseDay(weekEnd); err != nil {
		return payroll.PaymentSnapshot{}, err
	}
	if snap.PaidAt, err = parseTime(paidAt); err != nil {
		return payroll.PaymentSnapshot{}, err
	}
	snap.PaidBy = paidBy.String
	return snap, nil
}
