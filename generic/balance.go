/*
balance.go - Balance calculation from ledger transactions

PURPOSE:
  Replays an entity's transactions into a categorized balance. This answers
  "how much does this employee still owe?" for cash advances, and keeps the
  breakdown needed to explain the figure.

BALANCE COMPONENTS:
  Granted:     Sum of TxGrant deltas (advances handed out)
  Paid:        Sum of TxConsumption deltas, stored positive
  Adjustments: Manual corrections and reversals (signed)

  Remaining = Granted - Paid + Adjustments

SEE ALSO:
  - ledger.go: Source of transactions
  - advance/ledger.go: Uses Remaining as the advance reader contract
*/
package generic

import "context"

// Balance is a replayed view over one entity+policy ledger.
type Balance struct {
	EntityID EntityID
	PolicyID PolicyID
	AsOf     TimePoint

	Granted     Amount
	Paid        Amount
	Adjustments Amount
}

// Remaining returns granted - paid + adjustments.
func (b Balance) Remaining() Amount {
	return b.Granted.Sub(b.Paid).Add(b.Adjustments)
}

// CanPay reports whether a payment of amount keeps the balance non-negative.
func (b Balance) CanPay(amount Amount) bool {
	return !b.Remaining().Sub(amount).IsNegative()
}

// BalanceCalculator computes balances from a ledger.
type BalanceCalculator struct {
	Ledger Ledger
}

// Summarize folds transactions into a Balance. Transactions effective after
// asOf are ignored; a zero asOf includes everything.
func Summarize(entityID EntityID, policyID PolicyID, txs []Transaction, unit Unit, asOf TimePoint) Balance {
	var (
		granted     = NewAmount(0, unit)
		paid        = NewAmount(0, unit)
		adjustments = NewAmount(0, unit)
	)

	for _, tx := range txs {
		if !asOf.IsZero() && tx.EffectiveAt.After(asOf) {
			continue
		}
		switch tx.Type {
		case TxGrant:
			granted = granted.Add(tx.Delta)
		case TxConsumption:
			paid = paid.Add(tx.Delta.Neg()) // Store as positive
		case TxAdjustment, TxReversal:
			adjustments = adjustments.Add(tx.Delta)
		}
	}

	return Balance{
		EntityID:    entityID,
		PolicyID:    policyID,
		AsOf:        asOf,
		Granted:     granted,
		Paid:        paid,
		Adjustments: adjustments,
	}
}

// CalculateBalance loads every transaction for entity+policy and summarizes.
func (bc *BalanceCalculator) CalculateBalance(
	ctx context.Context,
	entityID EntityID,
	policyID PolicyID,
	unit Unit,
	asOf TimePoint,
) (Balance, error) {
	txs, err := bc.Ledger.Transactions(ctx, entityID, policyID)
	if err != nil {
		return Balance{}, err
	}
	return Summarize(entityID, policyID, txs, unit, asOf), nil
}
