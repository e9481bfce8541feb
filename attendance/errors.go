package attendance

import (
	"fmt"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// ValidationError reports a raw record that would corrupt money figures if
// it reached payroll.
type ValidationError struct {
	RecordID   string
	EmployeeID generic.EntityID
	ClockIn    time.Time
	ClockOut   time.Time
	Reason     string
	Err        error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid attendance record %s (employee %s): %s",
		e.RecordID, e.EmployeeID, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateRaw checks the preconditions of Normalize that don't depend on
// the policy.
func ValidateRaw(r RawRecord) error {
	if r.EmployeeID == "" {
		return &ValidationError{
			RecordID: r.ID,
			ClockIn:  r.ClockIn,
			Reason:   "employee id is required",
			Err:      generic.ErrMissingEmployee,
		}
	}
	if r.ClockOut != nil && r.ClockOut.Before(r.ClockIn) {
		return &ValidationError{
			RecordID:   r.ID,
			EmployeeID: r.EmployeeID,
			ClockIn:    r.ClockIn,
			ClockOut:   *r.ClockOut,
			Reason:     "clock-out precedes clock-in",
			Err:        generic.ErrNegativeDuration,
		}
	}
	return nil
}
