package generic_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/generic/store"
)

type testResource string

func (r testResource) ResourceID() string     { return string(r) }
func (r testResource) ResourceDomain() string { return "test" }

func moneyTx(id string, day int, delta int64, typ generic.TransactionType) generic.Transaction {
	return generic.Transaction{
		ID:             generic.TransactionID(id),
		EntityID:       "emp-1",
		PolicyID:       "advances",
		ResourceType:   testResource("loan"),
		EffectiveAt:    generic.NewTimePoint(2025, time.March, day),
		Delta:          generic.NewMoney(decimal.NewFromInt(delta)),
		Type:           typ,
		IdempotencyKey: id,
	}
}

func TestBalanceCalculator_GrantsMinusPayments(t *testing.T) {
	// GIVEN: An advance of 1000 followed by two payments
	// WHEN: Replaying the ledger
	// THEN: Remaining is 1000 - 100 - 90

	ctx := context.Background()
	ledger := generic.NewLedger(store.NewMemory())

	require.NoError(t, ledger.Append(ctx, moneyTx("a1", 1, 1000, generic.TxGrant)))
	require.NoError(t, ledger.Append(ctx, moneyTx("p1", 8, -100, generic.TxConsumption)))
	require.NoError(t, ledger.Append(ctx, moneyTx("p2", 15, -90, generic.TxConsumption)))

	calc := generic.BalanceCalculator{Ledger: ledger}
	bal, err := calc.CalculateBalance(ctx, "emp-1", "advances", generic.UnitMoney, generic.TimePoint{})
	require.NoError(t, err)

	assert.True(t, bal.Granted.Value.Equal(decimal.NewFromInt(1000)))
	assert.True(t, bal.Paid.Value.Equal(decimal.NewFromInt(190)))
	assert.True(t, bal.Remaining().Value.Equal(decimal.NewFromInt(810)))
	assert.True(t, bal.CanPay(generic.NewMoney(decimal.NewFromInt(810))))
	assert.False(t, bal.CanPay(generic.NewMoney(decimal.NewFromInt(811))))
}

func TestBalanceCalculator_AsOfExcludesLaterEntries(t *testing.T) {
	ctx := context.Background()
	ledger := generic.NewLedger(store.NewMemory())

	require.NoError(t, ledger.Append(ctx, moneyTx("a1", 1, 500, generic.TxGrant)))
	require.NoError(t, ledger.Append(ctx, moneyTx("p1", 20, -200, generic.TxConsumption)))

	calc := generic.BalanceCalculator{Ledger: ledger}
	bal, err := calc.CalculateBalance(ctx, "emp-1", "advances", generic.UnitMoney, generic.NewTimePoint(2025, time.March, 10))
	require.NoError(t, err)
	assert.True(t, bal.Remaining().Value.Equal(decimal.NewFromInt(500)))
}

func TestLedger_DuplicateIdempotencyKeyRejected(t *testing.T) {
	ctx := context.Background()
	ledger := generic.NewLedger(store.NewMemory())

	require.NoError(t, ledger.Append(ctx, moneyTx("a1", 1, 500, generic.TxGrant)))
	err := ledger.Append(ctx, moneyTx("a1", 2, 500, generic.TxGrant))
	assert.ErrorIs(t, err, generic.ErrDuplicateIdempotencyKey)

	err = ledger.AppendBatch(ctx, []generic.Transaction{
		moneyTx("b1", 3, 10, generic.TxGrant),
		moneyTx("a1", 4, 10, generic.TxGrant),
	})
	assert.ErrorIs(t, err, generic.ErrDuplicateIdempotencyKey)

	txs, err := ledger.Transactions(ctx, "emp-1", "advances")
	require.NoError(t, err)
	assert.Len(t, txs, 1, "rejected batch must not be partially written")
}

func TestMemoryStore_WithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	err := mem.WithTx(ctx, func(s generic.Store) error {
		require.NoError(t, s.Append(ctx, moneyTx("a1", 1, 500, generic.TxGrant)))
		return generic.ErrTransactionFailed
	})
	assert.ErrorIs(t, err, generic.ErrTransactionFailed)

	exists, err := mem.Exists(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_LoadRangeOrdersByEffectiveDate(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.Append(ctx, moneyTx("late", 20, -1, generic.TxConsumption)))
	require.NoError(t, mem.Append(ctx, moneyTx("early", 2, 10, generic.TxGrant)))
	require.NoError(t, mem.Append(ctx, moneyTx("mid", 10, -1, generic.TxConsumption)))

	txs, err := mem.LoadRange(ctx, "emp-1", "advances",
		generic.NewTimePoint(2025, time.March, 1), generic.NewTimePoint(2025, time.March, 15))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, generic.TransactionID("early"), txs[0].ID)
	assert.Equal(t, generic.TransactionID("mid"), txs[1].ID)
}

func TestLedger_RepeatedKeyInBatchRejected(t *testing.T) {
	ctx := context.Background()
	ledger := generic.NewLedger(store.NewMemory())

	dup := moneyTx("p1", 3, -10, generic.TxConsumption)
	err := ledger.AppendBatch(ctx, []generic.Transaction{moneyTx("a1", 1, 100, generic.TxGrant), dup, dup})
	assert.ErrorIs(t, err, generic.ErrDuplicateIdempotencyKey)

	txs, err := ledger.Transactions(ctx, "emp-1", "advances")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestGetOrCreateResource(t *testing.T) {
	generic.RegisterResource(testResource("loan"))

	assert.Equal(t, testResource("loan"), generic.GetOrCreateResource("loan"))

	unknown := generic.GetOrCreateResource("retired-benefit")
	assert.Equal(t, "retired-benefit", unknown.ResourceID())
	assert.Equal(t, "unknown", unknown.ResourceDomain())
	assert.Nil(t, generic.LookupResource("retired-benefit"))
}
