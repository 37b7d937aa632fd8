// internal/store/auditlog/auditlog.go
//
// Insert-only audit trail over the `log` table.
//
// Context
// -------
// Every admin action lands here: who (admin), from where (ip), against
// what (domain, username), and what happened (event, loglevel, msg).
// The table defines no delete path and this package follows suit; growth
// is an operator concern handled outside the daemon.
//
// Six secondary indexes back the Search filter: timestamp, admin, domain,
// username, event, and loglevel.  The WHERE clause is assembled only from
// those columns, so every search stays on an index.
//
// Notes
// -----
// • Record applies the column defaults (`event=''`, `loglevel='info'`)
//   in Go as well, so callers reading the Entry back see what was stored.
// • Oxford commas, two spaces after periods.
package auditlog

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/viamail/mailadmin/internal/metrics"
)

// Entry mirrors one row in the `log` table.
type Entry struct {
	ID        uint64    `db:"id"`
	Timestamp time.Time `db:"timestamp"`
	Admin     string    `db:"admin"`
	Domain    string    `db:"domain"`
	Username  string    `db:"username"`
	IP        string    `db:"ip"`
	Event     string    `db:"event"`
	Loglevel  string    `db:"loglevel"`
	Msg       string    `db:"msg"`
}

// Record inserts one audit entry.  Empty Event and Loglevel fall back to
// the schema defaults `''` and `'info'`.
func Record(ctx context.Context, db *sqlx.DB, e *Entry) error {
	if e.Loglevel == "" {
		e.Loglevel = "info"
	}

	const q = `
        INSERT INTO log (admin, domain, username, ip, event, loglevel, msg)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, q,
		e.Admin, e.Domain, e.Username, e.IP, e.Event, e.Loglevel, e.Msg)
	if err != nil {
		return err
	}
	metrics.AuditEventsTotal.Inc()
	return nil
}

// Filter narrows a Search.  Zero-valued fields are ignored; Limit falls
// back to 50 and is capped at 500 to keep result pages bounded.
type Filter struct {
	Admin    string
	Domain   string
	Username string
	Event    string
	Loglevel string
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// Search returns entries matching f, newest first.
func Search(ctx context.Context, db *sqlx.DB, f Filter) ([]Entry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if f.Admin != "" {
		add("admin = ?", f.Admin)
	}
	if f.Domain != "" {
		add("domain = ?", f.Domain)
	}
	if f.Username != "" {
		add("username = ?", f.Username)
	}
	if f.Event != "" {
		add("event = ?", f.Event)
	}
	if f.Loglevel != "" {
		add("loglevel = ?", f.Loglevel)
	}
	if !f.Since.IsZero() {
		add("timestamp >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		add("timestamp < ?", f.Until)
	}

	q := `SELECT id, timestamp, admin, domain, username, ip, event, loglevel, msg
            FROM log`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"

	limit := f.Limit
	switch {
	case limit <= 0:
		limit = 50
	case limit > 500:
		limit = 500
	}
	args = append(args, limit, f.Offset)

	var rows []Entry
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
