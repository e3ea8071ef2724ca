// Package edit orchestrates a single day's edit lifecycle: open a live copy
// of the record, recompute derived values on every change, persist to the
// remote service, verify by read-back, and commit into the month store only
// after verification. A failed save never touches the store.
package edit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"goalboard/internal/metrics"
	"goalboard/internal/model"
	"goalboard/internal/month"
)

// State is the session's position in the save lifecycle.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
	StateVerifying
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	case StateVerifying:
		return "verifying"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "closed"
	}
}

var (
	// ErrRemoteWrite indicates the upsert was rejected by the remote service.
	ErrRemoteWrite = errors.New("edit: remote write failed")

	// ErrVerifyFailed indicates the post-write read-back errored or returned
	// no row. The write may have partially succeeded; the session still
	// fails so the user retries rather than trusting a false success.
	ErrVerifyFailed = errors.New("edit: save verification failed")

	// ErrNotEditable indicates a save was attempted outside Open/Failed,
	// or a second save while one is in flight.
	ErrNotEditable = errors.New("edit: session not editable")

	// ErrNotVerified indicates a commit without a verified save.
	ErrNotVerified = errors.New("edit: commit without verified save")
)

// Remote is the slice of the remote data service this package needs.
// *remote.Client satisfies it.
type Remote interface {
	UpsertActuals(ctx context.Context, locationID string, rows []model.ActualsRow) error
	ReadDayActuals(ctx context.Context, locationID string, date time.Time) (model.DayActuals, bool, error)
}

// Draft is the detached working copy of one day plus its derived values.
type Draft struct {
	Record model.DayRecord

	ATVActual     *decimal.Decimal
	MarginPercent *float64
	TxnPercent    float64
	SalesPercent  float64
	ATVPercent    float64
	Category      metrics.Category

	Dirty bool
}

// Session runs one day's edit. It is created by Open and never reused:
// opening another day always starts a new session. Save runs off the event
// loop, so state is guarded by a mutex.
type Session struct {
	mu         sync.Mutex
	state      State
	locationID string
	draft      Draft
	verified   bool
	detached   bool
	err        error
}

// Open starts a session for the given date, snapshotting the record from
// the store — not from whatever possibly-stale payload the caller clicked
// on. Fails with month.ErrUnknownDate if the store has no such day.
func Open(store *month.Store, locationID string, date time.Time) (*Session, error) {
	rec, err := store.Get(date)
	if err != nil {
		return nil, err
	}

	s := &Session{
		state:      StateOpen,
		locationID: locationID,
		draft:      Draft{Record: rec},
	}
	s.recompute()
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error from the most recent failed save, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Draft returns a copy of the working draft.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Date returns the day this session edits.
func (s *Session) Date() time.Time {
	return s.draft.Record.Date
}

// SetTransactions updates the draft's transaction count and recomputes.
// Ignored unless the session is editable.
func (s *Session) SetTransactions(v *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editable() {
		return
	}
	s.draft.Record.TxnActual = v
	s.draft.Dirty = true
	s.recompute()
}

// SetNetSales updates the draft's net sales and recomputes.
func (s *Session) SetNetSales(v *decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editable() {
		return
	}
	s.draft.Record.SalesActual = v
	s.draft.Dirty = true
	s.recompute()
}

// SetGrossMargin updates the draft's gross margin and recomputes.
func (s *Session) SetGrossMargin(v *decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editable() {
		return
	}
	s.draft.Record.MarginActual = v
	s.draft.Dirty = true
	s.recompute()
}

// ClearAll blanks every actual field in the draft and recomputes. Purely
// local; nothing reaches the remote service until Save.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editable() {
		return
	}
	s.draft.Record.TxnActual = nil
	s.draft.Record.SalesActual = nil
	s.draft.Record.MarginActual = nil
	s.draft.Dirty = true
	s.recompute()
}

// Save runs the optimistic-update protocol: write the draft's actuals to
// the remote service, then verify by reading the same (location, date) row
// back. On success the session is left awaiting Commit; on any failure it
// transitions to Failed with the draft preserved for retry.
//
// Save blocks on the network and is meant to run off the event loop. At
// most one save can be in flight; a second call fails with ErrNotEditable.
func (s *Session) Save(ctx context.Context, r Remote) error {
	s.mu.Lock()
	if !s.editable() {
		s.mu.Unlock()
		return fmt.Errorf("%w: state %s", ErrNotEditable, s.state)
	}
	s.state = StateSubmitting
	s.err = nil
	row := model.ActualsRow{
		Date:       s.draft.Record.Date,
		DayActuals: s.draft.Record.Actuals(),
	}
	loc := s.locationID
	s.mu.Unlock()

	if err := r.UpsertActuals(ctx, loc, []model.ActualsRow{row}); err != nil {
		return s.fail(fmt.Errorf("%w: %v", ErrRemoteWrite, err))
	}

	s.mu.Lock()
	s.state = StateVerifying
	s.mu.Unlock()

	_, found, err := r.ReadDayActuals(ctx, loc, row.Date)
	if err != nil {
		return s.fail(fmt.Errorf("%w: %v", ErrVerifyFailed, err))
	}
	if !found {
		return s.fail(fmt.Errorf("%w: no row after write", ErrVerifyFailed))
	}

	// The row exists; its values are not compared against the draft, so a
	// concurrent writer's values would pass as success. Last write wins.
	s.mu.Lock()
	s.verified = true
	s.mu.Unlock()
	return nil
}

// Commit applies the verified draft to the store and finishes the session.
// Must follow a successful Save; runs on the event loop with the rest of
// the store's mutations. The store error (e.g. the month was reloaded and
// the date is gone) passes through untouched.
func (s *Session) Commit(store *month.Store) (model.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateVerifying || !s.verified {
		return model.DayRecord{}, fmt.Errorf("%w: state %s", ErrNotVerified, s.state)
	}

	rec, err := store.Patch(s.draft.Record.Date, s.draft.Record.Actuals())
	if err != nil {
		return model.DayRecord{}, err
	}

	s.state = StateCommitted
	s.draft.Dirty = false
	return rec, nil
}

// Close ends observation of the session. An in-flight save is not
// interrupted: the session is marked detached and its eventual commit must
// still be applied so a save is never silently lost.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSubmitting, StateVerifying:
		s.detached = true
	default:
		s.state = StateClosed
	}
}

// Detached reports whether the detail view closed while a save was in
// flight.
func (s *Session) Detached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.err = err
	return err
}

// editable: field edits and saves are allowed while open or after a failed
// save (retry without re-entering values).
func (s *Session) editable() bool {
	return s.state == StateOpen || s.state == StateFailed
}

func (s *Session) recompute() {
	rec := s.draft.Record
	s.draft.ATVActual = metrics.AverageValuePerTransaction(rec.SalesActual, rec.TxnActual)
	s.draft.MarginPercent = metrics.MarginPercent(rec.MarginActual, rec.SalesActual)
	s.draft.TxnPercent = metrics.PercentToGoal(metrics.FromCount(rec.TxnActual), metrics.FromCount(rec.TxnGoal))
	s.draft.SalesPercent = metrics.PercentToGoal(rec.SalesActual, rec.SalesGoal)
	s.draft.ATVPercent = metrics.PercentToGoal(s.draft.ATVActual, rec.ATVGoal)
	s.draft.Category = metrics.Classify(rec.SalesActual, rec.SalesGoal)
}
