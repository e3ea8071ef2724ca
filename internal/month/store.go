// Package month owns the authoritative in-memory snapshot of one
// (location, month) pair of day records.
package month

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"goalboard/internal/model"
)

var (
	// ErrEmptyMonth indicates a month load with no forecast rows. Callers
	// show a "no forecast" state rather than an empty grid.
	ErrEmptyMonth = errors.New("month: no records for location/month")

	// ErrUnknownDate indicates a patch or lookup against a date the loaded
	// month does not contain — a stale reference, not a fatal condition.
	ErrUnknownDate = errors.New("month: no record for date")
)

// Store holds the canonical MonthState. It is mutated only through Load and
// Patch, both of which run on the caller's single event-loop goroutine.
type Store struct {
	state  model.MonthState
	loaded bool
}

// NewStore returns an empty store. It holds nothing until the first Load.
func NewStore() *Store {
	return &Store{}
}

// Loaded reports whether a month snapshot is present.
func (s *Store) Loaded() bool {
	return s.loaded
}

// State returns the current snapshot. The Days slice is shared; callers
// must treat it as read-only and go through Patch for mutation.
func (s *Store) State() model.MonthState {
	return s.state
}

// Load replaces the snapshot entirely with the given records, sorted by
// date, and recomputes the cached goal total. An empty load fails with
// ErrEmptyMonth and leaves the previous snapshot untouched.
func (s *Store) Load(locationID, yearMonth string, records []model.DayRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: %s %s", ErrEmptyMonth, locationID, yearMonth)
	}

	days := make([]model.DayRecord, len(records))
	copy(days, records)
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	var total decimal.Decimal
	for _, d := range days {
		if d.SalesGoal != nil {
			total = total.Add(*d.SalesGoal)
		}
	}

	s.state = model.MonthState{
		LocationID:     locationID,
		Month:          yearMonth,
		VersionID:      days[0].VersionID,
		Days:           days,
		TotalGoalSales: total,
	}
	s.loaded = true
	return nil
}

// Get returns the record for the given date or ErrUnknownDate.
func (s *Store) Get(date time.Time) (model.DayRecord, error) {
	if i := s.index(date); i >= 0 {
		return s.state.Days[i], nil
	}
	return model.DayRecord{}, fmt.Errorf("%w: %s", ErrUnknownDate, date.Format(model.DateLayout))
}

// Patch replaces the operator-editable fields of the record at date with
// the given actuals and returns the updated record. Goal fields are never
// touched; a patch never creates a day. Patching an absent date fails with
// ErrUnknownDate — days exist only by way of a month load.
func (s *Store) Patch(date time.Time, a model.DayActuals) (model.DayRecord, error) {
	i := s.index(date)
	if i < 0 {
		return model.DayRecord{}, fmt.Errorf("%w: %s", ErrUnknownDate, date.Format(model.DateLayout))
	}

	rec := &s.state.Days[i]
	rec.TxnActual = a.Transactions
	rec.SalesActual = a.NetSales
	rec.MarginActual = a.GrossMargin
	return *rec, nil
}

func (s *Store) index(date time.Time) int {
	key := date.Format(model.DateLayout)
	for i, d := range s.state.Days {
		if d.Key() == key {
			return i
		}
	}
	return -1
}
