package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"goalboard/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func i64(v int64) *int64 { return &v }

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func testState(t *testing.T) model.MonthState {
	t.Helper()
	return model.MonthState{
		LocationID: "loc-1",
		Month:      "2025-06",
		VersionID:  "v1",
		Days: []model.DayRecord{
			{Date: date(t, "2025-06-01"), VersionID: "v1", TxnGoal: i64(40),
				SalesGoal: dec("1000.50"), SalesActual: dec("990")},
			{Date: date(t, "2025-06-02"), VersionID: "v1", SalesGoal: dec("1000")},
		},
		TotalGoalSales: decimal.RequireFromString("2000.50"),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := openTestCache(t)

	if err := c.SaveMonth(testState(t)); err != nil {
		t.Fatalf("SaveMonth() error: %v", err)
	}

	ms, fetchedAt, found, err := c.LoadMonth("loc-1", "2025-06")
	if err != nil {
		t.Fatalf("LoadMonth() error: %v", err)
	}
	if !found {
		t.Fatal("found = false after save")
	}
	if fetchedAt.IsZero() {
		t.Error("fetchedAt is zero")
	}
	if ms.VersionID != "v1" || len(ms.Days) != 2 {
		t.Fatalf("state = %+v", ms)
	}
	if !ms.TotalGoalSales.Equal(decimal.RequireFromString("2000.50")) {
		t.Errorf("TotalGoalSales = %v, want 2000.50", ms.TotalGoalSales)
	}

	d1 := ms.Days[0]
	if d1.Key() != "2025-06-01" {
		t.Errorf("first day = %s, want 2025-06-01 (date order)", d1.Key())
	}
	if d1.SalesGoal == nil || !d1.SalesGoal.Equal(decimal.RequireFromString("1000.50")) {
		t.Errorf("SalesGoal = %v, want 1000.50", d1.SalesGoal)
	}
	if d1.TxnActual != nil {
		t.Errorf("TxnActual = %v, want nil preserved", d1.TxnActual)
	}
	if ms.Days[1].SalesActual != nil {
		t.Errorf("day2 SalesActual = %v, want nil", ms.Days[1].SalesActual)
	}
}

func TestLoadMonthMissing(t *testing.T) {
	c := openTestCache(t)
	_, _, found, err := c.LoadMonth("loc-1", "2025-06")
	if err != nil {
		t.Fatalf("LoadMonth() error: %v", err)
	}
	if found {
		t.Error("found = true for empty cache")
	}
}

func TestSaveMonthReplaces(t *testing.T) {
	c := openTestCache(t)
	if err := c.SaveMonth(testState(t)); err != nil {
		t.Fatal(err)
	}

	next := testState(t)
	next.Days = next.Days[:1]
	if err := c.SaveMonth(next); err != nil {
		t.Fatal(err)
	}

	ms, _, _, err := c.LoadMonth("loc-1", "2025-06")
	if err != nil {
		t.Fatal(err)
	}
	if len(ms.Days) != 1 {
		t.Errorf("len(Days) = %d, want 1 after replacement", len(ms.Days))
	}
}

func TestSaveDay(t *testing.T) {
	c := openTestCache(t)
	if err := c.SaveMonth(testState(t)); err != nil {
		t.Fatal(err)
	}

	rec := model.DayRecord{
		Date:        date(t, "2025-06-02"),
		TxnActual:   i64(33),
		SalesActual: dec("1200"),
	}
	if err := c.SaveDay("loc-1", rec); err != nil {
		t.Fatalf("SaveDay() error: %v", err)
	}

	ms, _, _, err := c.LoadMonth("loc-1", "2025-06")
	if err != nil {
		t.Fatal(err)
	}
	d2 := ms.Days[1]
	if d2.TxnActual == nil || *d2.TxnActual != 33 {
		t.Errorf("TxnActual = %v, want 33", d2.TxnActual)
	}
	if d2.SalesActual == nil || !d2.SalesActual.Equal(decimal.RequireFromString("1200")) {
		t.Errorf("SalesActual = %v, want 1200", d2.SalesActual)
	}
	if d2.SalesGoal == nil || !d2.SalesGoal.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("SalesGoal = %v, goals must not change", d2.SalesGoal)
	}
}
