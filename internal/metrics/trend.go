package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"goalboard/internal/model"
)

// Projection is the month-to-date summary and full-month extrapolation.
type Projection struct {
	MTDActual       decimal.Decimal
	TotalGoalSales  decimal.Decimal
	TrendingSales   decimal.Decimal
	TrendingPercent float64
}

// Project computes a run-rate extrapolation for the month: if the elapsed
// portion of the month is at X% of its prorated goal, the remainder is
// assumed to track the same rate.
//
// Elapsed goal covers days up to and including asOf. Actuals count across
// the whole month, so values recorded ahead of schedule still contribute.
func Project(ms model.MonthState, asOf time.Time) Projection {
	var elapsedGoal, mtdActual decimal.Decimal

	for _, d := range ms.Days {
		if d.SalesGoal != nil && !d.Date.After(asOf) {
			elapsedGoal = elapsedGoal.Add(*d.SalesGoal)
		}
		if d.SalesActual != nil {
			mtdActual = mtdActual.Add(*d.SalesActual)
		}
	}

	trending := mtdActual
	if elapsedGoal.Sign() > 0 {
		// Multiply before dividing so a fully elapsed month projects
		// exactly its month-to-date actual.
		trending = mtdActual.Mul(ms.TotalGoalSales).Div(elapsedGoal)
	}

	return Projection{
		MTDActual:       mtdActual,
		TotalGoalSales:  ms.TotalGoalSales,
		TrendingSales:   trending,
		TrendingPercent: PercentToGoal(&trending, &ms.TotalGoalSales),
	}
}
