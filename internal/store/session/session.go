// internal/store/session/session.go
//
// Persistence helpers for the `sessions` table.
//
// Context
// -------
// The external webmail frontend keeps its HTTP sessions in this table:
// one row per session, keyed by the unique session_id, with an activity
// timestamp and an opaque serialized payload.  The frontend writes rows
// on login and bumps `atime` on activity; the reaping that the frontend
// delegates to "an external job" is ReapIdle, driven by internal/cleanup.
//
// These helpers accept a *sqlx.DB and perform single parameterised
// statements.  They are thin; callers own transactions when they need
// them.
//
// Notes
// -----
// • Save is an upsert: session_id is unique, so a second Save refreshes
//   the payload and atime instead of inserting a duplicate.
// • Oxford commas, two spaces after periods.
package session

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Record mirrors one row in the `sessions` table.
type Record struct {
	SessionID string    `db:"session_id"`
	Atime     time.Time `db:"atime"`
	Data      string    `db:"data"`
}

// Save inserts or refreshes the session row for id, bumping atime.
func Save(ctx context.Context, db *sqlx.DB, id, data string) error {
	const q = `
        INSERT INTO sessions (session_id, atime, data)
        VALUES (?, NOW(), ?)
        ON DUPLICATE KEY UPDATE atime = NOW(), data = VALUES(data)`
	_, err := db.ExecContext(ctx, q, id, data)
	return err
}

// Get fetches the session row for id.  Returns sql.ErrNoRows when the
// session does not exist.
func Get(ctx context.Context, db *sqlx.DB, id string) (*Record, error) {
	const q = `
        SELECT session_id, atime, data
        FROM   sessions
        WHERE  session_id = ?
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Touch bumps atime without rewriting the payload.  Missing sessions are
// a silent no-op, matching the frontend's fire-and-forget keepalive.
func Touch(ctx context.Context, db *sqlx.DB, id string) error {
	const q = `UPDATE sessions SET atime = NOW() WHERE session_id = ?`
	_, err := db.ExecContext(ctx, q, id)
	return err
}

// Delete removes the session row for id, if any.
func Delete(ctx context.Context, db *sqlx.DB, id string) error {
	const q = `DELETE FROM sessions WHERE session_id = ?`
	_, err := db.ExecContext(ctx, q, id)
	return err
}

// ReapIdle deletes sessions whose atime is older than olderThan and
// returns the number of rows removed.
func ReapIdle(ctx context.Context, db *sqlx.DB, olderThan time.Duration) (int64, error) {
	const q = `
        DELETE FROM sessions
        WHERE  atime < DATE_SUB(NOW(), INTERVAL ? SECOND)`
	res, err := db.ExecContext(ctx, q, int64(olderThan.Seconds()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
