package advance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/generic/store"
)

func day(d int) generic.TimePoint {
	return generic.NewTimePoint(2025, time.March, d)
}

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestLedger_AdvanceThenPayments(t *testing.T) {
	// GIVEN: A 1000 advance
	// WHEN: Two weekly payroll deductions of 100 and 90
	// THEN: 810 remains outstanding
	ctx := context.Background()
	ledger := advance.NewLedger(store.NewMemory())

	_, err := ledger.RecordAdvance(ctx, "emp-1", money(1000), day(1), "rent")
	require.NoError(t, err)

	_, err = ledger.RecordPayment(ctx, advance.Payment{
		EmployeeID: "emp-1", Amount: money(100), At: day(9),
		ReferenceID: "2025-03-03", IdempotencyKey: "pay:emp-1:2025-03-03",
	})
	require.NoError(t, err)
	_, err = ledger.RecordPayment(ctx, advance.Payment{
		EmployeeID: "emp-1", Amount: money(90), At: day(16),
		ReferenceID: "2025-03-10", IdempotencyKey: "pay:emp-1:2025-03-10",
	})
	require.NoError(t, err)

	remaining, err := ledger.RemainingBalance(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, remaining.Equal(money(810)), "got %s", remaining)

	bal, err := ledger.Balance(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, bal.Granted.Value.Equal(money(1000)))
	assert.True(t, bal.Paid.Value.Equal(money(190)))
}

func TestLedger_NoAdvances_ZeroBalance(t *testing.T) {
	ledger := advance.NewLedger(store.NewMemory())

	remaining, err := ledger.RemainingBalance(context.Background(), "emp-404")
	require.NoError(t, err)
	assert.True(t, remaining.IsZero())
}

func TestLedger_Overpayment_Rejected(t *testing.T) {
	// GIVEN: 50 outstanding
	// WHEN: Paying 60
	// THEN: OverpaymentError, balance unchanged
	ctx := context.Background()
	ledger := advance.NewLedger(store.NewMemory())
	_, err := ledger.RecordAdvance(ctx, "emp-1", money(50), day(1), "")
	require.NoError(t, err)

	_, err = ledger.RecordPayment(ctx, advance.Payment{EmployeeID: "emp-1", Amount: money(60), At: day(2)})

	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrInsufficientBalance)
	var over *advance.OverpaymentError
	require.ErrorAs(t, err, &over)
	assert.True(t, over.Remaining.Equal(money(50)))
	assert.True(t, over.Requested.Equal(money(60)))

	remaining, err := ledger.RemainingBalance(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, remaining.Equal(money(50)))
}

func TestLedger_NonPositiveAmounts_Rejected(t *testing.T) {
	ctx := context.Background()
	ledger := advance.NewLedger(store.NewMemory())

	_, err := ledger.RecordAdvance(ctx, "emp-1", decimal.Zero, day(1), "")
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)

	_, err = ledger.RecordAdvance(ctx, "emp-1", money(-5), day(1), "")
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)

	_, err = ledger.RecordPayment(ctx, advance.Payment{EmployeeID: "emp-1", Amount: decimal.Zero, At: day(1)})
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)
}

func TestLedger_MissingEmployee(t *testing.T) {
	ledger := advance.NewLedger(store.NewMemory())

	_, err := ledger.RecordAdvance(context.Background(), "", money(10), day(1), "")
	assert.ErrorIs(t, err, generic.ErrMissingEmployee)
}

func TestLedger_DuplicatePaymentKey_WritesOnce(t *testing.T) {
	ctx := context.Background()
	ledger := advance.NewLedger(store.NewMemory())
	_, err := ledger.RecordAdvance(ctx, "emp-1", money(500), day(1), "")
	require.NoError(t, err)

	p := advance.Payment{EmployeeID: "emp-1", Amount: money(50), At: day(9), IdempotencyKey: "pay:emp-1:w10"}
	_, err = ledger.RecordPayment(ctx, p)
	require.NoError(t, err)
	_, err = ledger.RecordPayment(ctx, p)
	assert.ErrorIs(t, err, generic.ErrDuplicateIdempotencyKey)

	remaining, err := ledger.RemainingBalance(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, remaining.Equal(money(450)))
}

func TestLedger_History_RunningBalance(t *testing.T) {
	ctx := context.Background()
	ledger := advance.NewLedger(store.NewMemory())
	_, err := ledger.RecordAdvance(ctx, "emp-1", money(300), day(1), "")
	require.NoError(t, err)
	_, err = ledger.RecordAdvance(ctx, "emp-1", money(200), day(5), "")
	require.NoError(t, err)
	_, err = ledger.RecordPayment(ctx, advance.Payment{EmployeeID: "emp-1", Amount: money(150), At: day(3)})
	require.NoError(t, err)

	history, err := ledger.History(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Effective order: +300 (1st), -150 (3rd), +200 (5th)
	assert.Equal(t, generic.TxGrant, history[0].Transaction.Type)
	assert.Equal(t, generic.TxConsumption, history[1].Transaction.Type)
	assert.True(t, history[0].Running.Equal(money(300)))
	assert.True(t, history[1].Running.Equal(money(150)))
	assert.True(t, history[2].Running.Equal(money(350)))
}

func TestLedger_Reversal_RestoresBalance(t *testing.T) {
	// GIVEN: A mistaken payment corrected by a reversal entry
	// THEN: Both entries remain and the balance is restored
	ctx := context.Background()
	mem := store.NewMemory()
	ledger := advance.NewLedger(mem)
	_, err := ledger.RecordAdvance(ctx, "emp-1", money(100), day(1), "")
	require.NoError(t, err)
	paid, err := ledger.RecordPayment(ctx, advance.Payment{EmployeeID: "emp-1", Amount: money(40), At: day(2)})
	require.NoError(t, err)

	require.NoError(t, mem.Append(ctx, generic.Transaction{
		ID:           "rev-1",
		EntityID:     "emp-1",
		PolicyID:     advance.PolicyID,
		ResourceType: advance.ResourceCashAdvance,
		EffectiveAt:  day(3),
		Delta:        paid.Delta.Neg(),
		Type:         generic.TxReversal,
		ReferenceID:  string(paid.ID),
	}))

	remaining, err := ledger.RemainingBalance(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, remaining.Equal(money(100)))

	history, err := ledger.History(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestResource_Registered(t *testing.T) {
	rt := generic.LookupResource("cash_advance")
	require.NotNil(t, rt)
	assert.Equal(t, "advance", rt.ResourceDomain())
}
