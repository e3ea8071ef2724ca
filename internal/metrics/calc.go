// Package metrics derives all displayed ratios from raw goal/actual fields.
// Every function here is total and side-effect free; callers decide how to
// display a nil result.
package metrics

import (
	"github.com/shopspring/decimal"
)

// orZero is the single nil-to-zero normalization used throughout this
// package. Keeping it in one place is what guarantees "absent" and "zero"
// are conflated only where the ratio definitions say so.
func orZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

// FromCount adapts an optional transaction count to an optional decimal so
// count metrics run through the same ratio functions as currency metrics.
func FromCount(v *int64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromInt(*v)
	return &d
}

// PercentToGoal returns actual/goal*100, or 0 when the goal is missing,
// zero, or negative. A missing actual counts as 0.
func PercentToGoal(actual, goal *decimal.Decimal) float64 {
	g := orZero(goal)
	if g.Sign() <= 0 {
		return 0
	}
	a := orZero(actual)
	pct, _ := a.Div(g).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// AverageValuePerTransaction returns salesActual / txnActual, or nil unless
// both are present and the transaction count is positive.
func AverageValuePerTransaction(salesActual *decimal.Decimal, txnActual *int64) *decimal.Decimal {
	if salesActual == nil || txnActual == nil || *txnActual <= 0 {
		return nil
	}
	atv := salesActual.Div(decimal.NewFromInt(*txnActual))
	return &atv
}

// MarginPercent returns marginActual/salesActual*100, or nil unless sales
// are present and positive. A missing margin counts as 0.
func MarginPercent(marginActual, salesActual *decimal.Decimal) *float64 {
	if salesActual == nil || salesActual.Sign() <= 0 {
		return nil
	}
	pct, _ := orZero(marginActual).Div(*salesActual).Mul(decimal.NewFromInt(100)).Float64()
	return &pct
}

// GoalShare returns dayGoal/totalGoal*100, or 0 when the month total is not
// positive.
func GoalShare(dayGoal *decimal.Decimal, totalGoal decimal.Decimal) float64 {
	if totalGoal.Sign() <= 0 {
		return 0
	}
	pct, _ := orZero(dayGoal).Div(totalGoal).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
