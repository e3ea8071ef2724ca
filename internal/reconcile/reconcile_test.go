package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"goalboard/internal/metrics"
	"goalboard/internal/model"
	"goalboard/internal/month"
)

// fakeCell records every render so tests can assert on repaint counts and
// last-rendered payloads.
type fakeCell struct {
	renders int
	date    time.Time
	mode    Mode
	m       CellMetrics
	status  *metrics.Category
}

func (c *fakeCell) Render(date time.Time, mode Mode, m CellMetrics, status *metrics.Category) {
	c.renders++
	c.date = date
	c.mode = mode
	c.m = m
	c.status = status
}

// snapshot renders a cell's payload to a comparable string.
func (c *fakeCell) snapshot() string {
	status := "none"
	if c.status != nil {
		status = c.status.String()
	}
	return fmt.Sprintf("%s|%d|%.4f|%.4f|%s",
		c.date.Format(model.DateLayout), c.mode, c.m.SalesPercent, c.m.TxnPercent, status)
}

type fakeGrid struct {
	*Grid
	cells map[string]*fakeCell
}

func newFakeGrid() *fakeGrid {
	fg := &fakeGrid{cells: make(map[string]*fakeCell)}
	fg.Grid = NewGrid(func(date time.Time) CellHandle {
		c := &fakeCell{}
		fg.cells[date.Format(model.DateLayout)] = c
		return c
	})
	return fg
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// loadScenario builds a three-day store: one hit day,
// one near day, one untouched future day.
func loadScenario(t *testing.T) *month.Store {
	t.Helper()
	s := month.NewStore()
	err := s.Load("loc-1", "2025-06", []model.DayRecord{
		{Date: date(t, "2025-06-01"), SalesGoal: dec("1000"), SalesActual: dec("1000")},
		{Date: date(t, "2025-06-02"), SalesGoal: dec("1000"), SalesActual: dec("950")},
		{Date: date(t, "2025-06-03"), SalesGoal: dec("1000")},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestReconcileScenario(t *testing.T) {
	store := loadScenario(t)
	fg := newFakeGrid()
	today := date(t, "2025-06-02")

	ms := store.State()
	if !ms.TotalGoalSales.Equal(decimal.RequireFromString("3000")) {
		t.Fatalf("TotalGoalSales = %v, want 3000", ms.TotalGoalSales)
	}

	fg.Reconcile(ms, today)

	d1 := fg.cells["2025-06-01"]
	if d1.status == nil || *d1.status != metrics.Hit {
		t.Errorf("day1 status = %v, want hit", d1.status)
	}
	d2 := fg.cells["2025-06-02"]
	if d2.status == nil || *d2.status != metrics.Near {
		t.Errorf("day2 status = %v, want near", d2.status)
	}
	d3 := fg.cells["2025-06-03"]
	if d3.mode != GoalTile {
		t.Errorf("day3 mode = %v, want GoalTile", d3.mode)
	}
	if d3.status != nil {
		t.Errorf("day3 status = %v, want none (goal tiles stay neutral)", d3.status)
	}
}

// After reconciling, the rendered date set equals exactly the snapshot's
// date set.
func TestReconcileRoundTrip(t *testing.T) {
	store := loadScenario(t)
	fg := newFakeGrid()

	fg.Reconcile(store.State(), date(t, "2025-06-02"))

	got := fg.Dates()
	sort.Strings(got)
	want := []string{"2025-06-01", "2025-06-02", "2025-06-03"}
	if len(got) != len(want) {
		t.Fatalf("rendered dates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rendered dates = %v, want %v", got, want)
		}
	}
}

// Patching one date repaints only that cell; the others' last-rendered
// content is identical to before the patch.
func TestPatchRepaintsExactlyOneCell(t *testing.T) {
	store := loadScenario(t)
	fg := newFakeGrid()
	today := date(t, "2025-06-02")

	fg.Reconcile(store.State(), today)

	before := map[string]string{}
	renders := map[string]int{}
	for k, c := range fg.cells {
		before[k] = c.snapshot()
		renders[k] = c.renders
	}

	d2 := date(t, "2025-06-02")
	if _, err := store.Patch(d2, model.DayActuals{NetSales: dec("1200")}); err != nil {
		t.Fatal(err)
	}
	if err := fg.Patch(store.State(), d2, today); err != nil {
		t.Fatal(err)
	}

	for k, c := range fg.cells {
		if k == "2025-06-02" {
			if c.renders != renders[k]+1 {
				t.Errorf("patched cell renders = %d, want %d", c.renders, renders[k]+1)
			}
			if c.status == nil || *c.status != metrics.Hit {
				t.Errorf("patched cell status = %v, want hit at 120%%", c.status)
			}
			continue
		}
		if c.renders != renders[k] {
			t.Errorf("cell %s was repainted by a single-day patch", k)
		}
		if c.snapshot() != before[k] {
			t.Errorf("cell %s content changed: %s -> %s", k, before[k], c.snapshot())
		}
	}
}

func TestPatchUnknownDate(t *testing.T) {
	store := loadScenario(t)
	fg := newFakeGrid()
	fg.Reconcile(store.State(), date(t, "2025-06-02"))

	err := fg.Patch(store.State(), date(t, "2025-07-15"), date(t, "2025-06-02"))
	if !errors.Is(err, month.ErrUnknownDate) {
		t.Fatalf("Patch(unknown date) error = %v, want ErrUnknownDate", err)
	}
	if len(fg.Dates()) != 3 {
		t.Errorf("cell count changed after failed patch")
	}
}

func TestLeadingPad(t *testing.T) {
	store := loadScenario(t)
	fg := newFakeGrid()

	// 2025-06-01 is a Sunday: no pad cells.
	fg.Reconcile(store.State(), date(t, "2025-06-02"))
	if fg.LeadingPad() != 0 {
		t.Errorf("LeadingPad = %d, want 0 for a Sunday start", fg.LeadingPad())
	}

	s := month.NewStore()
	if err := s.Load("loc-1", "2025-07", []model.DayRecord{
		{Date: date(t, "2025-07-01"), SalesGoal: dec("1000")}, // a Tuesday
	}); err != nil {
		t.Fatal(err)
	}
	fg2 := newFakeGrid()
	fg2.Reconcile(s.State(), date(t, "2025-07-01"))
	if fg2.LeadingPad() != 2 {
		t.Errorf("LeadingPad = %d, want 2 for a Tuesday start", fg2.LeadingPad())
	}
}

func TestTileMode(t *testing.T) {
	today := date(t, "2025-06-02")
	tests := []struct {
		name string
		rec  model.DayRecord
		want Mode
	}{
		{"past no actuals", model.DayRecord{Date: date(t, "2025-06-01")}, ActualTile},
		{"today no actuals", model.DayRecord{Date: today}, GoalTile},
		{"today with actuals", model.DayRecord{Date: today, SalesActual: dec("1")}, ActualTile},
		{"future no actuals", model.DayRecord{Date: date(t, "2025-06-03")}, GoalTile},
		{"future recorded early", model.DayRecord{Date: date(t, "2025-06-03"), SalesActual: dec("1")}, ActualTile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TileMode(tt.rec, today); got != tt.want {
				t.Errorf("TileMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Record dates are midnight UTC but the clock runs in the operator's zone;
// the same calendar day must stay a goal tile even when the local evening
// is already past midnight UTC.
func TestTileModeLocalZone(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	rec := model.DayRecord{Date: date(t, "2025-06-02")}
	now := time.Date(2025, 6, 2, 20, 0, 0, 0, est) // 2025-06-03 01:00 UTC

	if got := TileMode(rec, now); got != GoalTile {
		t.Errorf("TileMode(today, evening local clock) = %v, want GoalTile", got)
	}
}
