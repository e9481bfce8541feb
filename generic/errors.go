/*
errors.go - Centralized error types for the engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Domain packages wrap these with structured errors carrying context.

ERROR CATEGORIES:
  1. Ledger errors - Transaction persistence failures
  2. Validation errors - Inputs that would corrupt money figures
  3. Integrity errors - Paid history vs live recomputation conflicts

USAGE:
  Domain packages wrap generic errors:

    if errors.Is(err, generic.ErrNegativeDuration) {
        // reject the record before it reaches payroll
    }

SEE ALSO:
  - attendance/errors.go: ValidationError
  - advance/ledger.go: OverpaymentError
  - payroll/errors.go: ConflictError
*/
package generic

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateIdempotencyKey is returned when a transaction with the same
	// idempotency key already exists. This is expected behavior for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrTransactionFailed is returned when a transaction cannot be persisted.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrInsufficientBalance is returned when a payment exceeds the outstanding balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrEntityNotFound is returned when a referenced employee doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrNegativeDuration is returned for an attendance record whose clock-out
	// precedes its (adjusted) clock-in.
	ErrNegativeDuration = errors.New("negative work duration")

	// ErrMissingEmployee is returned for a record without an employee id.
	ErrMissingEmployee = errors.New("missing employee id")

	// ErrInvalidPolicy is returned when a policy field is out of range.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrInvalidAmount is returned for zero or negative ledger amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrPaidWeekConflict is returned when a caller asks for a live
	// recomputation of a week that already has a payment snapshot.
	ErrPaidWeekConflict = errors.New("paid week cannot be recomputed from live data")

	// ErrAlreadyPaid is returned when marking a week paid twice.
	ErrAlreadyPaid = errors.New("week already paid")

	// ErrRecordOutsideWeek is returned when a day record doesn't belong to
	// the (employee, week) group being aggregated.
	ErrRecordOutsideWeek = errors.New("record outside aggregation group")

	// ErrShiftAlreadyOpen is returned when clocking in while a shift is open.
	ErrShiftAlreadyOpen = errors.New("shift already open")

	// ErrNoOpenShift is returned when clocking out with no open shift.
	ErrNoOpenShift = errors.New("no open shift")

	// ErrOpenShiftInWeek is returned when marking a week paid while one of
	// its shifts has no clock-out.
	ErrOpenShiftInWeek = errors.New("week has an open shift")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrNegativeDuration) ||
		errors.Is(err, ErrMissingEmployee) ||
		errors.Is(err, ErrInvalidPolicy) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrRecordOutsideWeek) ||
		errors.Is(err, ErrNoOpenShift)
}

// IsConflict returns true if the error reports a clash with stored state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateIdempotencyKey) ||
		errors.Is(err, ErrPaidWeekConflict) ||
		errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrShiftAlreadyOpen) ||
		errors.Is(err, ErrOpenShiftInWeek)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}
