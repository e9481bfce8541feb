// Package store provides an in-memory generic.Store for tests and local runs.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory ledger storage
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	transactions map[key][]generic.Transaction
	idempotency  map[string]bool
}

type key struct {
	EntityID generic.EntityID
	PolicyID generic.PolicyID
}

func NewMemory() *Memory {
	return &Memory{
		transactions: make(map[key][]generic.Transaction),
		idempotency:  make(map[string]bool),
	}
}

var _ generic.TxStore = (*Memory)(nil)

// Append adds a single transaction.
func (m *Memory) Append(_ context.Context, tx generic.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.IdempotencyKey != "" && m.idempotency[tx.IdempotencyKey] {
		return generic.ErrDuplicateIdempotencyKey
	}
	m.appendLocked(tx)
	return nil
}

// AppendBatch adds multiple transactions atomically: either every key is
// new and all are written, or nothing is.
func (m *Memory) AppendBatch(_ context.Context, txs []generic.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.IdempotencyKey == "" {
			continue
		}
		if m.idempotency[tx.IdempotencyKey] || seen[tx.IdempotencyKey] {
			return generic.ErrDuplicateIdempotencyKey
		}
		seen[tx.IdempotencyKey] = true
	}

	for _, tx := range txs {
		m.appendLocked(tx)
	}
	return nil
}

// appendLocked inserts tx after every entry with the same or earlier
// EffectiveAt, so equal-date entries keep their write order.
func (m *Memory) appendLocked(tx generic.Transaction) {
	k := key{EntityID: tx.EntityID, PolicyID: tx.PolicyID}
	txs := m.transactions[k]

	i := sort.Search(len(txs), func(i int) bool {
		return txs[i].EffectiveAt.After(tx.EffectiveAt)
	})

	txs = append(txs, generic.Transaction{})
	copy(txs[i+1:], txs[i:])
	txs[i] = tx
	m.transactions[k] = txs

	if tx.IdempotencyKey != "" {
		m.idempotency[tx.IdempotencyKey] = true
	}
}

func (m *Memory) Load(_ context.Context, entityID generic.EntityID, policyID generic.PolicyID) ([]generic.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadLocked(entityID, policyID, nil, nil), nil
}

func (m *Memory) LoadRange(_ context.Context, entityID generic.EntityID, policyID generic.PolicyID, from, to generic.TimePoint) ([]generic.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadLocked(entityID, policyID, &from, &to), nil
}

func (m *Memory) loadLocked(entityID generic.EntityID, policyID generic.PolicyID, from, to *generic.TimePoint) []generic.Transaction {
	var result []generic.Transaction
	for _, tx := range m.transactions[key{EntityID: entityID, PolicyID: policyID}] {
		if from != nil && tx.EffectiveAt.Before(*from) {
			continue
		}
		if to != nil && tx.EffectiveAt.After(*to) {
			continue
		}
		result = append(result, tx)
	}
	return result
}

func (m *Memory) Exists(_ context.Context, idempotencyKey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idempotency[idempotencyKey], nil
}

// WithTx runs fn against a view of the store and restores the previous
// state if fn fails. The store stays locked for the duration of fn.
func (m *Memory) WithTx(ctx context.Context, fn func(generic.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.snapshotLocked()
	if err := fn(&txView{parent: m}); err != nil {
		m.transactions = saved.transactions
		m.idempotency = saved.idempotency
		return err
	}
	return nil
}

type memorySnapshot struct {
	transactions map[key][]generic.Transaction
	idempotency  map[string]bool
}

func (m *Memory) snapshotLocked() memorySnapshot {
	txs := make(map[key][]generic.Transaction, len(m.transactions))
	for k, v := range m.transactions {
		txs[k] = append([]generic.Transaction(nil), v...)
	}
	idem := make(map[string]bool, len(m.idempotency))
	for k, v := range m.idempotency {
		idem[k] = v
	}
	return memorySnapshot{transactions: txs, idempotency: idem}
}

// txView operates on the parent without re-acquiring its lock.
type txView struct {
	parent *Memory
}

func (v *txView) Append(_ context.Context, tx generic.Transaction) error {
	if tx.IdempotencyKey != "" && v.parent.idempotency[tx.IdempotencyKey] {
		return generic.ErrDuplicateIdempotencyKey
	}
	v.parent.appendLocked(tx)
	return nil
}

func (v *txView) AppendBatch(ctx context.Context, txs []generic.Transaction) error {
	for _, tx := range txs {
		if err := v.Append(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func (v *txView) Load(_ context.Context, entityID generic.EntityID, policyID generic.PolicyID) ([]generic.Transaction, error) {
	return v.parent.loadLocked(entityID, policyID, nil, nil), nil
}

func (v *txView) LoadRange(_ context.Context, entityID generic.EntityID, policyID generic.PolicyID, from, to generic.TimePoint) ([]generic.Transaction, error) {
	return v.parent.loadLocked(entityID, policyID, &from, &to), nil
}

func (v *txView) Exists(_ context.Context, idempotencyKey string) (bool, error) {
	return v.parent.idempotency[idempotencyKey], nil
}
