// Package reconcile keeps a keyed set of view cells consistent with a month
// snapshot. Cells are created for dates not yet rendered and patched in
// place afterward, so a single-day save repaints exactly one cell. The
// package never touches presentation: it hands values to an opaque
// CellHandle and the render target does the rest.
package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"goalboard/internal/metrics"
	"goalboard/internal/model"
	"goalboard/internal/month"
)

// Mode is a cell's display mode.
type Mode int

const (
	// GoalTile shows forecast values only: the day has no recorded actuals
	// and is today or later.
	GoalTile Mode = iota
	// ActualTile shows recorded performance: the day is in the past, or has
	// at least one actual recorded.
	ActualTile
)

// CellMetrics carries everything a render target needs to draw one cell.
type CellMetrics struct {
	Day              model.DayRecord
	ATVActual        *decimal.Decimal
	SalesPercent     float64
	TxnPercent       float64
	GoalSharePercent float64
}

// CellHandle is one rendered day cell. Render replaces the cell's content
// wholesale; status is nil for goal tiles, which stay neutral.
type CellHandle interface {
	Render(date time.Time, mode Mode, m CellMetrics, status *metrics.Category)
}

// Grid reconciles a month snapshot against date-keyed cells. The leading
// pad (weekday offset before the first of the month) is structural, not
// date-keyed, and is recomputed only on a full reconcile.
type Grid struct {
	newCell    func(date time.Time) CellHandle
	cells      map[string]CellHandle
	leadingPad int
}

// NewGrid returns a grid that creates cells with the given factory.
func NewGrid(newCell func(date time.Time) CellHandle) *Grid {
	return &Grid{
		newCell: newCell,
		cells:   make(map[string]CellHandle),
	}
}

// LeadingPad returns the number of placeholder cells before the first of
// the month, as of the last full Reconcile.
func (g *Grid) LeadingPad() int {
	return g.leadingPad
}

// Dates returns the keys of all rendered cells.
func (g *Grid) Dates() []string {
	keys := make([]string, 0, len(g.cells))
	for k := range g.cells {
		keys = append(keys, k)
	}
	return keys
}

// Reset discards every cell. Called when a different (location, month) is
// loaded; within one month cells are only ever patched.
func (g *Grid) Reset() {
	g.cells = make(map[string]CellHandle)
	g.leadingPad = 0
}

// Reconcile brings every cell in line with the snapshot, creating missing
// ones in date order. Cells for dates still present are never removed or
// reordered.
func (g *Grid) Reconcile(ms model.MonthState, today time.Time) {
	if len(ms.Days) > 0 {
		g.leadingPad = int(ms.Days[0].Date.Weekday())
	}
	for _, d := range ms.Days {
		g.renderDay(ms, d, today)
	}
}

// Patch repaints the single cell for date from the snapshot. A date the
// snapshot does not contain fails with month.ErrUnknownDate — the stale
// reference is surfaced, never rendered.
func (g *Grid) Patch(ms model.MonthState, date time.Time, today time.Time) error {
	d, ok := ms.Day(date)
	if !ok {
		return fmt.Errorf("%w: %s", month.ErrUnknownDate, date.Format(model.DateLayout))
	}
	g.renderDay(ms, d, today)
	return nil
}

func (g *Grid) renderDay(ms model.MonthState, d model.DayRecord, today time.Time) {
	key := d.Key()
	cell, ok := g.cells[key]
	if !ok {
		cell = g.newCell(d.Date)
		g.cells[key] = cell
	}

	mode := TileMode(d, today)

	m := CellMetrics{
		Day:              d,
		ATVActual:        metrics.AverageValuePerTransaction(d.SalesActual, d.TxnActual),
		SalesPercent:     metrics.PercentToGoal(d.SalesActual, d.SalesGoal),
		TxnPercent:       metrics.PercentToGoal(metrics.FromCount(d.TxnActual), metrics.FromCount(d.TxnGoal)),
		GoalSharePercent: metrics.GoalShare(d.SalesGoal, ms.TotalGoalSales),
	}

	var status *metrics.Category
	if mode == ActualTile {
		c := metrics.Classify(d.SalesActual, d.SalesGoal)
		status = &c
	}

	cell.Render(d.Date, mode, m, status)
}

// TileMode decides goal tile vs actual tile: past days and days with any
// recorded actual show actuals; today without actuals and future days show
// the goal.
func TileMode(d model.DayRecord, today time.Time) Mode {
	if d.HasActuals() {
		return ActualTile
	}
	// Compare calendar dates, not instants: record dates are midnight UTC
	// while today is usually local time.
	if d.Key() < today.Format(model.DateLayout) {
		return ActualTile
	}
	return GoalTile
}
