/*
ledger.go - Append-only money ledger

PURPOSE:
  The ledger is the record of every cash advance and every repayment.
  What an employee owes is replayed from it on demand; nothing stores a
  running balance that could drift from the entries.

RULES:
  1. Entries are only appended. A mistake is undone with a TxReversal of
     the opposite sign and both entries stay.
  2. An idempotency key is accepted once. Payroll keys every deduction by
     employee and week, so a retried "mark paid" is rejected instead of
     deducting twice.
  3. A batch is all or nothing, including duplicate keys inside the batch.

EXAMPLE:
  advance 1000 on 03-01      TxGrant        +1000
  week of 03-03 paid         TxConsumption   -100
  week of 03-10 paid         TxConsumption    -90
  => 810 outstanding

SEE ALSO:
  - store.go: Persistence contract
  - balance.go: Replay into a Balance
  - advance/ledger.go: Overpayment guard on top of this ledger
*/
package generic

import (
	"context"
	"fmt"
)

// Ledger appends and reads back money entries.
type Ledger interface {
	// Append adds one entry. A reused idempotency key fails with
	// ErrDuplicateIdempotencyKey.
	Append(ctx context.Context, tx Transaction) error

	// AppendBatch adds entries atomically.
	AppendBatch(ctx context.Context, txs []Transaction) error

	// Transactions returns an entity's entries in effective order.
	Transactions(ctx context.Context, entityID EntityID, policyID PolicyID) ([]Transaction, error)
}

// StoreLedger is a Ledger over any Store.
type StoreLedger struct {
	Store Store
}

func NewLedger(store Store) *StoreLedger {
	return &StoreLedger{Store: store}
}

func (l *StoreLedger) Append(ctx context.Context, tx Transaction) error {
	return l.AppendBatch(ctx, []Transaction{tx})
}

func (l *StoreLedger) AppendBatch(ctx context.Context, txs []Transaction) error {
	if err := l.checkKeys(ctx, txs); err != nil {
		return err
	}
	if len(txs) == 1 {
		return l.Store.Append(ctx, txs[0])
	}
	return l.Store.AppendBatch(ctx, txs)
}

func (l *StoreLedger) Transactions(ctx context.Context, entityID EntityID, policyID PolicyID) ([]Transaction, error) {
	return l.Store.Load(ctx, entityID, policyID)
}

// checkKeys rejects keys already stored or repeated within txs. Stores
// enforce the same rule; checking first gives a clean sentinel error.
func (l *StoreLedger) checkKeys(ctx context.Context, txs []Transaction) error {
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		key := tx.IdempotencyKey
		if key == "" {
			continue
		}
		if seen[key] {
			return fmt.Errorf("%w: %s repeated in batch", ErrDuplicateIdempotencyKey, key)
		}
		seen[key] = true

		exists, err := l.Store.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrDuplicateIdempotencyKey, key)
		}
	}
	return nil
}
