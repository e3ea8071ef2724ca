// Package store provides a SQLite-backed cache of the last fetched month
// snapshots, so the grid can render something useful when the remote
// service is slow or unreachable. It is a read-side convenience only:
// edits always go through the remote save protocol, never through here.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"goalboard/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache is the snapshot database.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveMonth replaces the cached snapshot for the state's (location, month).
func (c *Cache) SaveMonth(ms model.MonthState) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT OR REPLACE INTO month_snapshots
		(location_id, month, version_id, fetched_at) VALUES (?, ?, ?, ?)`,
		ms.LocationID, ms.Month, ms.VersionID, now,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`DELETE FROM day_records WHERE location_id = ? AND month = ?`,
		ms.LocationID, ms.Month)
	if err != nil {
		return err
	}

	for _, d := range ms.Days {
		_, err = tx.Exec(`INSERT OR REPLACE INTO day_records
			(location_id, month, date, version_id, txn_goal, txn_actual,
			 sales_goal, sales_actual, atv_goal, margin_actual)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ms.LocationID, ms.Month, d.Key(), d.VersionID,
			nullInt(d.TxnGoal), nullInt(d.TxnActual),
			nullDec(d.SalesGoal), nullDec(d.SalesActual),
			nullDec(d.ATVGoal), nullDec(d.MarginActual),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveDay updates one cached day's actuals in place, keeping the cache in
// step with a committed single-day patch.
func (c *Cache) SaveDay(locationID string, rec model.DayRecord) error {
	_, err := c.db.Exec(`UPDATE day_records
		SET txn_actual = ?, sales_actual = ?, margin_actual = ?
		WHERE location_id = ? AND date = ?`,
		nullInt(rec.TxnActual), nullDec(rec.SalesActual), nullDec(rec.MarginActual),
		locationID, rec.Key(),
	)
	return err
}

// LoadMonth reads the cached snapshot for (location, month). The second
// return is the fetch time; found is false when nothing is cached.
func (c *Cache) LoadMonth(locationID, yearMonth string) (ms model.MonthState, fetchedAt time.Time, found bool, err error) {
	var versionID sql.NullString
	var fetched string
	row := c.db.QueryRow(`SELECT version_id, fetched_at FROM month_snapshots
		WHERE location_id = ? AND month = ?`, locationID, yearMonth)
	if scanErr := row.Scan(&versionID, &fetched); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return model.MonthState{}, time.Time{}, false, nil
		}
		return model.MonthState{}, time.Time{}, false, scanErr
	}
	fetchedAt, _ = time.Parse(time.RFC3339, fetched)

	rows, err := c.db.Query(`SELECT date, version_id, txn_goal, txn_actual,
		sales_goal, sales_actual, atv_goal, margin_actual
		FROM day_records WHERE location_id = ? AND month = ? ORDER BY date ASC`,
		locationID, yearMonth)
	if err != nil {
		return model.MonthState{}, time.Time{}, false, err
	}
	defer func() { _ = rows.Close() }()

	var days []model.DayRecord
	var total decimal.Decimal
	for rows.Next() {
		var dateStr string
		var recVersion sql.NullString
		var txnGoal, txnActual sql.NullInt64
		var salesGoal, salesActual, atvGoal, marginActual sql.NullString

		if err := rows.Scan(&dateStr, &recVersion, &txnGoal, &txnActual,
			&salesGoal, &salesActual, &atvGoal, &marginActual); err != nil {
			return model.MonthState{}, time.Time{}, false, err
		}

		date, err := time.Parse(model.DateLayout, dateStr)
		if err != nil {
			return model.MonthState{}, time.Time{}, false, fmt.Errorf("cached date %q: %w", dateStr, err)
		}

		d := model.DayRecord{
			Date:         date,
			VersionID:    recVersion.String,
			TxnGoal:      intPtr(txnGoal),
			TxnActual:    intPtr(txnActual),
			SalesGoal:    decPtr(salesGoal),
			SalesActual:  decPtr(salesActual),
			ATVGoal:      decPtr(atvGoal),
			MarginActual: decPtr(marginActual),
		}
		if d.SalesGoal != nil {
			total = total.Add(*d.SalesGoal)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return model.MonthState{}, time.Time{}, false, err
	}

	return model.MonthState{
		LocationID:     locationID,
		Month:          yearMonth,
		VersionID:      versionID.String,
		Days:           days,
		TotalGoalSales: total,
	}, fetchedAt, true, nil
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullDec(v *decimal.Decimal) any {
	if v == nil {
		return nil
	}
	return v.String()
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func decPtr(v sql.NullString) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil
	}
	return &d
}
