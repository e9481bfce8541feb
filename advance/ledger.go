/*
Package advance tracks employee cash advances on the append-only ledger.

PURPOSE:
  Wraps the generic ledger with cash-advance rules. An advance is a TxGrant
  (money owed by the employee), every repayment is a TxConsumption, and the
  outstanding balance is replayed from those entries.

INVARIANT:
  The remaining balance is never negative. RecordPayment refuses a payment
  larger than what is owed, so payroll can't deduct against a debt that
  doesn't exist.

EXAMPLE:
  ledger := advance.NewLedger(store)
  _, _ = ledger.RecordAdvance(ctx, "emp-1", decimal.NewFromInt(1000), day, "rent")
  _, _ = ledger.RecordPayment(ctx, advance.Payment{EmployeeID: "emp-1", Amount: decimal.NewFromInt(100), ...})
  remaining, _ := ledger.RemainingBalance(ctx, "emp-1") // 900

SEE ALSO:
  - generic/ledger.go: Base ledger
  - payroll/engine.go: Reads RemainingBalance and records weekly deductions
*/
package advance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// Ledger is the cash-advance view over a generic ledger.
type Ledger struct {
	inner generic.Ledger
	calc  generic.BalanceCalculator
}

// NewLedger creates a cash-advance ledger over store.
func NewLedger(store generic.Store) *Ledger {
	inner := generic.NewLedger(store)
	return &Ledger{
		inner: inner,
		calc:  generic.BalanceCalculator{Ledger: inner},
	}
}

// Payment describes one repayment of outstanding advances.
type Payment struct {
	EmployeeID     generic.EntityID
	Amount         decimal.Decimal
	At             generic.TimePoint
	ReferenceID    string // e.g. the payroll week it was deducted from
	Reason         string
	IdempotencyKey string
	CreatedBy      string
}

// OverpaymentError reports a payment larger than the outstanding balance.
type OverpaymentError struct {
	EmployeeID generic.EntityID
	Remaining  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %s exceeds outstanding advances %s for %s",
		e.Requested, e.Remaining, e.EmployeeID)
}

func (e *OverpaymentError) Unwrap() error {
	return generic.ErrInsufficientBalance
}

// RecordAdvance appends a new advance for employeeID.
func (l *Ledger) RecordAdvance(ctx context.Context, employeeID generic.EntityID, amount decimal.Decimal, at generic.TimePoint, reason string) (generic.Transaction, error) {
	if !amount.IsPositive() {
		return generic.Transaction{}, generic.ErrInvalidAmount
	}
	if employeeID == "" {
		return generic.Transaction{}, generic.ErrMissingEmployee
	}
	tx := generic.Transaction{
		ID:           generic.TransactionID(uuid.NewString()),
		EntityID:     employeeID,
		PolicyID:     PolicyID,
		ResourceType: ResourceCashAdvance,
		EffectiveAt:  at,
		Delta:        generic.NewMoney(amount),
		Type:         generic.TxGrant,
		Reason:       reason,
	}
	if err := l.inner.Append(ctx, tx); err != nil {
		return generic.Transaction{}, fmt.Errorf("record advance: %w", err)
	}
	return tx, nil
}

// RecordPayment appends a repayment. The payment must not exceed the
// remaining balance. A repeated IdempotencyKey returns
// generic.ErrDuplicateIdempotencyKey and writes nothing.
func (l *Ledger) RecordPayment(ctx context.Context, p Payment) (generic.Transaction, error) {
	if !p.Amount.IsPositive() {
		return generic.Transaction{}, generic.ErrInvalidAmount
	}

	bal, err := l.Balance(ctx, p.EmployeeID)
	if err != nil {
		return generic.Transaction{}, err
	}
	if !bal.CanPay(generic.NewMoney(p.Amount)) {
		return generic.Transaction{}, &OverpaymentError{
			EmployeeID: p.EmployeeID,
			Remaining:  decimal.Max(bal.Remaining().Value, decimal.Zero),
			Requested:  p.Amount,
		}
	}

	tx := PaymentTransaction(p)
	if err := l.inner.Append(ctx, tx); err != nil {
		return generic.Transaction{}, fmt.Errorf("record payment: %w", err)
	}
	return tx, nil
}

// PaymentTransaction builds the ledger entry for p without writing it.
// Stores that persist a payroll payment atomically append it themselves.
func PaymentTransaction(p Payment) generic.Transaction {
	return generic.Transaction{
		ID:             generic.TransactionID(uuid.NewString()),
		EntityID:       p.EmployeeID,
		PolicyID:       PolicyID,
		ResourceType:   ResourceCashAdvance,
		EffectiveAt:    p.At,
		Delta:          generic.NewMoney(p.Amount.Neg()),
		Type:           generic.TxConsumption,
		ReferenceID:    p.ReferenceID,
		Reason:         p.Reason,
		IdempotencyKey: p.IdempotencyKey,
		CreatedBy:      p.CreatedBy,
	}
}

// RemainingBalance returns Σadvances − Σpayments for employeeID, never
// below zero.
func (l *Ledger) RemainingBalance(ctx context.Context, employeeID generic.EntityID) (decimal.Decimal, error) {
	bal, err := l.Balance(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	remaining := bal.Remaining().Value
	if remaining.IsNegative() {
		return decimal.Zero, nil
	}
	return remaining, nil
}

// Balance returns the categorized advance balance for employeeID.
func (l *Ledger) Balance(ctx context.Context, employeeID generic.EntityID) (generic.Balance, error) {
	bal, err := l.calc.CalculateBalance(ctx, employeeID, PolicyID, generic.UnitMoney, generic.TimePoint{})
	if err != nil {
		return generic.Balance{}, fmt.Errorf("advance balance for %s: %w", employeeID, err)
	}
	return bal, nil
}

// Entry is one line of an employee's advance history with the running balance.
type Entry struct {
	Transaction generic.Transaction
	Running     decimal.Decimal
}

// History returns the ledger lines for employeeID in effective order with
// the balance after each line.
func (l *Ledger) History(ctx context.Context, employeeID generic.EntityID) ([]Entry, error) {
	txs, err := l.inner.Transactions(ctx, employeeID, PolicyID)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(txs))
	running := decimal.Zero
	for _, tx := range txs {
		running = running.Add(tx.Delta.Value)
		entries = append(entries, Entry{Transaction: tx, Running: running})
	}
	return entries, nil
}
