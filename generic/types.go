/*
Package generic provides the shared building blocks of the payroll engine.

PURPOSE:
  This package contains domain-agnostic types used by the attendance,
  advance and payroll packages: exact decimal quantities, calendar time
  points, week/year periods, an injectable clock, and the append-only
  ledger that backs cash-advance balances.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 7.5 hours, 1200.00 money)
  - Transaction: An immutable ledger entry recording balance changes
  - Entity/Policy IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Immutability: Transactions are never modified, only reversed
  2. Precision: Uses decimal.Decimal for hours and money, never float64
  3. Type Safety: Strong typing for IDs prevents mixing entity/policy IDs
  4. Auditability: Every transaction has reason, reference, and idempotency key

USAGE:
  amount := generic.NewMoney(decimal.NewFromInt(1000))
  tx := generic.Transaction{
      EntityID: "emp-123",
      PolicyID: "cash-advance",
      Delta:    amount,
      Type:     generic.TxGrant,
  }

SEE ALSO:
  - time.go: TimePoint and Clock
  - period.go: Period and week boundaries
  - ledger.go: Transaction persistence interface
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
	UnitMoney   Unit = "money"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

// NewMoney wraps a decimal as a money amount.
func NewMoney(value decimal.Decimal) Amount {
	return Amount{Value: value, Unit: UnitMoney}
}

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntityID string
type PolicyID string
type TransactionID string

// ResourceType identifies what kind of balance a ledger entry belongs to.
// Domain packages define their own concrete types.
//
//	// In advance/types.go
//	type Resource string
//	func (r Resource) ResourceID() string { return string(r) }
//	func (r Resource) ResourceDomain() string { return "advance" }
type ResourceType interface {
	// ResourceID returns the unique identifier for this resource type.
	ResourceID() string

	// ResourceDomain returns which domain this resource belongs to.
	ResourceDomain() string
}

// =============================================================================
// TRANSACTION - Atomic change to a balance
// =============================================================================

type TransactionType string

const (
	TxGrant       TransactionType = "grant"       // Balance created (cash advance handed out)
	TxConsumption TransactionType = "consumption" // Balance paid down (payroll deduction, manual repayment)
	TxAdjustment  TransactionType = "adjustment"  // Manual admin correction
	TxReversal    TransactionType = "reversal"    // Undo a previous transaction
)

type Transaction struct {
	ID             TransactionID
	EntityID       EntityID
	PolicyID       PolicyID
	ResourceType   ResourceType
	EffectiveAt    TimePoint
	Delta          Amount
	Type           TransactionType
	ReferenceID    string
	Reason         string
	IdempotencyKey string
	Metadata       map[string]string

	// Audit fields
	CreatedBy string
	CreatedAt time.Time
}
