// Package model defines the core data types shared across goalboard.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical day key format.
const DateLayout = "2006-01-02"

// MonthLayout is the canonical year-month format.
const MonthLayout = "2006-01"

// DayRecord is one calendar day of forecast goals and recorded actuals.
// Its identity within a month is Date. Nil actual fields mean "not yet
// recorded", which is distinct from a recorded zero.
type DayRecord struct {
	Date      time.Time
	VersionID string

	TxnGoal   *int64
	TxnActual *int64

	SalesGoal    *decimal.Decimal
	SalesActual  *decimal.Decimal
	ATVGoal      *decimal.Decimal
	MarginActual *decimal.Decimal
}

// Key returns the record's date key ("2006-01-02").
func (r DayRecord) Key() string {
	return r.Date.Format(DateLayout)
}

// HasActuals reports whether any actual field has been recorded.
func (r DayRecord) HasActuals() bool {
	return r.TxnActual != nil || r.SalesActual != nil || r.MarginActual != nil
}

// Actuals extracts the operator-editable fields of the record.
func (r DayRecord) Actuals() DayActuals {
	return DayActuals{
		Transactions: r.TxnActual,
		NetSales:     r.SalesActual,
		GrossMargin:  r.MarginActual,
	}
}

// DayActuals is the operator-editable slice of a day: transaction count,
// net sales, and gross margin. It doubles as the write/read-back payload
// of the remote service.
type DayActuals struct {
	Transactions *int64
	NetSales     *decimal.Decimal
	GrossMargin  *decimal.Decimal
}

// ActualsRow pairs a date with its actuals for batch upserts.
type ActualsRow struct {
	Date time.Time
	DayActuals
}

// MonthState is the authoritative snapshot of one (location, month) pair:
// the ordered day records plus cached totals. It is replaced wholesale on a
// month load and patched one day at a time on a verified save.
type MonthState struct {
	LocationID string
	Month      string // "2006-01"
	VersionID  string

	// Days is ordered by date ascending, at most one record per date.
	Days []DayRecord

	// TotalGoalSales caches the sum of SalesGoal across Days.
	TotalGoalSales decimal.Decimal
}

// Day returns the record for the given date, if present.
func (ms MonthState) Day(date time.Time) (DayRecord, bool) {
	key := date.Format(DateLayout)
	for _, d := range ms.Days {
		if d.Key() == key {
			return d, true
		}
	}
	return DayRecord{}, false
}

// Location is a store/site the signed-in operator may view.
type Location struct {
	ID   string
	Name string
}
