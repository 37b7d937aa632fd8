// internal/store/updatelog/updatelog.go
//
// Helpers for the `updatelog` table, which records the dates on which an
// update run completed.  One row per date; the DATE primary key makes a
// second run on the same day a no-op.
package updatelog

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// dateFmt is the DATE column's literal shape.
const dateFmt = "2006-01-02"

// MarkRan records that an update ran on date.  Duplicate dates are
// swallowed at SQL level.
func MarkRan(ctx context.Context, db *sqlx.DB, date time.Time) error {
	const q = `INSERT IGNORE INTO updatelog (date) VALUES (?)`
	_, err := db.ExecContext(ctx, q, date.Format(dateFmt))
	return err
}

// LastRun returns the most recent recorded date, or the zero time when no
// update has ever run.
func LastRun(ctx context.Context, db *sqlx.DB) (time.Time, error) {
	const q = `SELECT MAX(date) FROM updatelog`
	var last sql.NullTime
	if err := db.GetContext(ctx, &last, q); err != nil {
		return time.Time{}, err
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return last.Time, nil
}

// Ran reports whether an update ran on date.
func Ran(ctx context.Context, db *sqlx.DB, date time.Time) (bool, error) {
	const q = `SELECT 1 FROM updatelog WHERE date = ? LIMIT 1`
	var dummy int
	err := db.GetContext(ctx, &dummy, q, date.Format(dateFmt))
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
