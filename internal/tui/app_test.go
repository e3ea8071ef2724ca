package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"goalboard/internal/config"
	"goalboard/internal/model"
)

func TestMonthShift(t *testing.T) {
	tests := []struct {
		in    string
		delta int
		want  string
	}{
		{"2025-06", 1, "2025-07"},
		{"2025-06", -1, "2025-05"},
		{"2025-12", 1, "2026-01"},
		{"2025-01", -1, "2024-12"},
		{"2025-06", 0, "2025-06"},
		{"garbage", 1, "garbage"},
	}

	for _, tt := range tests {
		if got := monthShift(tt.in, tt.delta); got != tt.want {
			t.Errorf("monthShift(%q, %d) = %q, want %q", tt.in, tt.delta, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, -1, 0}, // empty range collapses to lo
	}

	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	v, err := parseCount("  42 ")
	if err != nil || v == nil || *v != 42 {
		t.Errorf("parseCount(\"  42 \") = %v, %v", v, err)
	}

	v, err = parseCount("")
	if err != nil || v != nil {
		t.Errorf("parseCount(\"\") should be nil, nil; got %v, %v", v, err)
	}

	if _, err = parseCount("12.5"); err == nil {
		t.Error("parseCount(\"12.5\") should fail")
	}
}

func TestParseMoney(t *testing.T) {
	v, err := parseMoney("$1,234.56")
	if err != nil || v == nil {
		t.Fatalf("parseMoney($1,234.56) = %v, %v", v, err)
	}
	if want := decimal.RequireFromString("1234.56"); !v.Equal(want) {
		t.Errorf("parseMoney($1,234.56) = %s, want %s", v, want)
	}

	v, err = parseMoney("  ")
	if err != nil || v != nil {
		t.Errorf("parseMoney(blank) should be nil, nil; got %v, %v", v, err)
	}

	if _, err = parseMoney("12x"); err == nil {
		t.Error("parseMoney(\"12x\") should fail")
	}
}

func TestTodayIndex(t *testing.T) {
	today := time.Now().Truncate(24 * time.Hour)
	ms := model.MonthState{
		Days: []model.DayRecord{
			{Date: today.AddDate(0, 0, -1)},
			{Date: today},
			{Date: today.AddDate(0, 0, 1)},
		},
	}
	if got := todayIndex(ms); got != 1 {
		t.Errorf("todayIndex = %d, want 1", got)
	}

	other := model.MonthState{
		Days: []model.DayRecord{{Date: today.AddDate(0, 1, 0)}},
	}
	if got := todayIndex(other); got != 0 {
		t.Errorf("todayIndex on foreign month = %d, want 0", got)
	}
}

func TestResetGridRegistersCells(t *testing.T) {
	a := NewApp(config.DefaultConfig(), "loc-1", "2025-06")

	goal := decimal.RequireFromString("100")
	days := []model.DayRecord{
		{Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), SalesGoal: &goal},
		{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), SalesGoal: &goal},
	}
	if err := a.store.Load("loc-1", "2025-06", days); err != nil {
		t.Fatalf("Load: %v", err)
	}

	a.grid.Reconcile(a.store.State(), time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

	if len(a.cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(a.cells))
	}
	for _, key := range []string{"2025-06-01", "2025-06-02"} {
		cell, ok := a.cells[key]
		if !ok {
			t.Fatalf("no cell for %s", key)
		}
		if cell.Renders() != 1 {
			t.Errorf("cell %s rendered %d times, want 1", key, cell.Renders())
		}
	}

	// June 2025 starts on a Sunday
	if pad := a.grid.LeadingPad(); pad != 0 {
		t.Errorf("leading pad = %d, want 0", pad)
	}

	// A month change discards every cell
	a.resetGrid()
	if len(a.cells) != 0 {
		t.Errorf("cells after reset = %d, want 0", len(a.cells))
	}
}

// Month navigation with no client configured (first-run form completed
// without a server URL) must be a no-op, not a load against a nil client.
func TestMonthKeysWithoutClient(t *testing.T) {
	a := NewApp(config.DefaultConfig(), "loc-1", "2025-06")
	a.needSetup = false
	a.setupForm = nil
	a.client = nil

	for _, key := range []string{"[", "]", "r"} {
		m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		if cmd != nil {
			t.Errorf("Update(%q) with nil client returned a command", key)
		}
		got := m.(App)
		if got.yearMonth != "2025-06" {
			t.Errorf("Update(%q) shifted month to %s", key, got.yearMonth)
		}
	}
}
