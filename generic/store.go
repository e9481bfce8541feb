/*
store.go - Ledger persistence contract

PURPOSE:
  What a backend must provide for the money ledger. There is no update and
  no delete; corrections are new entries.

  store/sqlite.Store is the production backend; generic/store.Memory backs
  unit tests.
*/
package generic

import "context"

// Store persists ledger entries.
type Store interface {
	// Append writes one entry. A stored idempotency key fails with
	// ErrDuplicateIdempotencyKey.
	Append(ctx context.Context, tx Transaction) error

	// AppendBatch writes all entries or none.
	AppendBatch(ctx context.Context, txs []Transaction) error

	// Load returns the entity's entries ordered by EffectiveAt.
	Load(ctx context.Context, entityID EntityID, policyID PolicyID) ([]Transaction, error)

	// LoadRange is Load limited to effective days in [from, to].
	LoadRange(ctx context.Context, entityID EntityID, policyID PolicyID, from, to TimePoint) ([]Transaction, error)

	// Exists reports whether an idempotency key is taken.
	Exists(ctx context.Context, idempotencyKey string) (bool, error)
}

// TxStore runs several Store calls as one unit.
type TxStore interface {
	Store

	// WithTx commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error
}
