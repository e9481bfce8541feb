package payroll

import (
	"fmt"
	"time"
)

// ConflictError reports an operation refused by the week's stored state.
// Err wraps generic.ErrPaidWeekConflict, generic.ErrAlreadyPaid or
// generic.ErrOpenShiftInWeek.
type ConflictError struct {
	Week   Week
	PaidAt string
	Err    error
}

func (e *ConflictError) Error() string {
	if e.PaidAt != "" {
		return fmt.Sprintf("week %s (paid %s): %v", e.Week.Key(), e.PaidAt, e.Err)
	}
	return fmt.Sprintf("week %s: %v", e.Week.Key(), e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func conflict(w Week, snap *PaymentSnapshot, err error) error {
	ce := &ConflictError{Week: w, Err: err}
	if snap != nil {
		ce.PaidAt = snap.PaidAt.Format(time.RFC3339)
	}
	return ce
}
