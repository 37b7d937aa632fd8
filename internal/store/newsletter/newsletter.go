// internal/store/newsletter/newsletter.go
//
// Mailing-list (un)subscribe confirmation tokens over the
// `newsletter_subunsub_confirms` table.
//
// Context
// -------
// A subscribe or unsubscribe request is only honoured after the subscriber
// clicks a confirmation link.  Each outstanding confirmation is one row:
// the list (mlid), the subscriber address, the request kind, a single-use
// token, and a Unix-second deadline.  The unique (mlid, subscriber, kind)
// triple means a repeated request replaces the earlier token instead of
// stacking a second one.
//
// Notes
// -----
// • Consume is transactional: the row is read with FOR UPDATE and deleted
//   in the same transaction, so a token can never be redeemed twice.
// • Oxford commas, two spaces after periods.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Request kinds.  The column is free-text in the schema, but this package
// only ever writes these two values.
const (
	KindSubscribe   = "subscribe"
	KindUnsubscribe = "unsubscribe"
)

// ErrTokenExpired is returned by Consume when the token exists but its
// deadline has passed.  The stale row is removed as a side effect.
var ErrTokenExpired = errors.New("newsletter: confirmation token expired")

// Record mirrors one row in the `newsletter_subunsub_confirms` table.
type Record struct {
	ID         uint64 `db:"id"`
	Mail       string `db:"mail"`
	Mlid       string `db:"mlid"`
	Subscriber string `db:"subscriber"`
	Kind       string `db:"kind"`
	Token      string `db:"token"`
	Expired    int64  `db:"expired"`
}

// Create issues a confirmation token for (mlid, subscriber, kind) and
// returns it.  A repeated request replaces the outstanding token and
// pushes the deadline out to now+ttl.  `mail` is the list's posting
// address, carried for the confirmation e-mail template.
func Create(ctx context.Context, db *sqlx.DB, mail, mlid, subscriber, kind string, ttl time.Duration) (string, error) {
	if kind != KindSubscribe && kind != KindUnsubscribe {
		return "", fmt.Errorf("newsletter: unknown kind %q", kind)
	}

	token := uuid.NewString()
	const q = `
        INSERT INTO newsletter_subunsub_confirms
            (mail, mlid, subscriber, kind, token, expired)
        VALUES (?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
            mail    = VALUES(mail),
            token   = VALUES(token),
            expired = VALUES(expired)`
	_, err := db.ExecContext(ctx, q,
		mail, mlid, subscriber, kind, token, time.Now().Add(ttl).Unix())
	if err != nil {
		return "", err
	}
	return token, nil
}

// Consume redeems a token for the given list: the matching row is
// returned and deleted in one transaction.  Returns sql.ErrNoRows for an
// unknown token and ErrTokenExpired for a lapsed one.
func Consume(ctx context.Context, db *sqlx.DB, mlid, token string) (*Record, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const sel = `
        SELECT id, mail, mlid, subscriber, kind, token, expired
        FROM   newsletter_subunsub_confirms
        WHERE  mlid = ? AND token = ?
        LIMIT  1
        FOR UPDATE`
	var rec Record
	if err := tx.GetContext(ctx, &rec, sel, mlid, token); err != nil {
		return nil, err
	}

	const del = `DELETE FROM newsletter_subunsub_confirms WHERE id = ?`
	if _, err := tx.ExecContext(ctx, del, rec.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if rec.Expired > 0 && rec.Expired < time.Now().Unix() {
		return nil, ErrTokenExpired
	}
	return &rec, nil
}

// PurgeExpired removes tokens whose deadline passed before now, returning
// the number of rows removed.
func PurgeExpired(ctx context.Context, db *sqlx.DB, now time.Time) (int64, error) {
	const q = `
        DELETE FROM newsletter_subunsub_confirms
        WHERE  expired > 0
          AND  expired < ?`
	res, err := db.ExecContext(ctx, q, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
