// internal/store/tracking/tracking.go
//
// Generic key/value store over the `tracking` table.
//
// The table carries operational breadcrumbs the admin frontend shares
// with its cron jobs: last-seen versions, one-shot migration markers, and
// similar.  `k` is unique, so Set is an upsert; `time` records the Unix
// second of the last write.
package tracking

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Record mirrors one row in the `tracking` table.
type Record struct {
	K    string `db:"k"`
	V    string `db:"v"`
	Time int64  `db:"time"`
}

// Set inserts or replaces the value for key, stamping the write time.
func Set(ctx context.Context, db *sqlx.DB, key, value string) error {
	const q = `
        INSERT INTO tracking (k, v, time)
        VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE v = VALUES(v), time = VALUES(time)`
	_, err := db.ExecContext(ctx, q, key, value, time.Now().Unix())
	return err
}

// Get fetches the row for key.  Returns sql.ErrNoRows when absent.
func Get(ctx context.Context, db *sqlx.DB, key string) (*Record, error) {
	const q = `SELECT k, v, time FROM tracking WHERE k = ? LIMIT 1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, key); err != nil {
		return nil, err
	}
	return &rec, nil
}

// All returns every tracking row, ordered by key for stable output.
func All(ctx context.Context, db *sqlx.DB) ([]Record, error) {
	const q = `SELECT k, v, time FROM tracking ORDER BY k`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes the row for key, if any.
func Delete(ctx context.Context, db *sqlx.DB, key string) error {
	const q = `DELETE FROM tracking WHERE k = ?`
	_, err := db.ExecContext(ctx, q, key)
	return err
}
