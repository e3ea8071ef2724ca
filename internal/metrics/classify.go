package metrics

import "github.com/shopspring/decimal"

// Category is a day's performance rating against its goal.
type Category int

const (
	// Fail means below the near threshold, or no usable goal.
	Fail Category = iota
	// Near means within 5% under goal.
	Near
	// Hit means on or above a positive goal.
	Hit
)

// Both the two-way cell background and the three-way detail badge derive
// from these two constants; changing one changes both views.
const (
	hitThresholdPct  = 100.0
	nearThresholdPct = 95.0
)

// Classify rates an actual against its goal. A missing goal classifies the
// same as a zero goal: Fail.
func Classify(actual, goal *decimal.Decimal) Category {
	pct := PercentToGoal(actual, goal)
	switch {
	case pct >= hitThresholdPct:
		return Hit
	case pct >= nearThresholdPct:
		return Near
	default:
		return Fail
	}
}

// Ok collapses the three categories into the binary good/bad background
// state: only Hit is good.
func (c Category) Ok() bool {
	return c == Hit
}

// Badge returns the detail-view label for the category.
func (c Category) Badge() string {
	switch c {
	case Hit:
		return "On / Above Goal"
	case Near:
		return "Near Goal"
	default:
		return "Below Goal"
	}
}

func (c Category) String() string {
	switch c {
	case Hit:
		return "hit"
	case Near:
		return "near"
	default:
		return "fail"
	}
}
