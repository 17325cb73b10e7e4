package core

import "github.com/shopspring/decimal"

// LineTotal computes quantity × cost per unit, rounded to the currency's
// two minor-unit places.
func LineTotal(quantity int, costPerUnit decimal.Decimal) decimal.Decimal {
	return costPerUnit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// AggregateTotal sums already-computed line totals.
func AggregateTotal(totals []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum
}

// CumulativeTotals returns the running prefix sums over the list in its
// current order. Reordering the input changes every subsequent value; the
// legacy per-article request detail view depends on exactly that.
func CumulativeTotals(totals []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(totals))
	sum := decimal.Zero
	for i, t := range totals {
		sum = sum.Add(t)
		out[i] = sum
	}
	return out
}

// RemainingBudget computes allotted − persisted − in-progress. The result
// may go negative; overrun is a displayed warning, never a rejection, so the
// value is returned as-is without clamping.
func RemainingBudget(allotted, existingPersisted, inProgress decimal.Decimal) decimal.Decimal {
	return allotted.Sub(existingPersisted).Sub(inProgress)
}
