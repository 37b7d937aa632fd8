// internal/store/ownership/ownership.go
//
// Domain-verification workflow state over the `domain_ownership` table.
//
// Context
// -------
// Before an admin may manage a domain (or attach an alias domain), they
// must prove control of it: the frontend hands out a verify code, the
// admin publishes it in DNS or on a well-known URL, and a verifier probes
// for it.  One row tracks each pending or settled claim, keyed by the
// unique (admin, domain, alias_domain) triple; `expire` is a Unix second
// after which an unverified claim lapses.
//
// The `admin` column refers to an account managed by the external
// frontend.  Nothing here enforces that linkage; it is an application
// contract, not a schema one.
//
// Notes
// -----
// • Begin refreshes an existing claim rather than violating the unique
//   triple: new code, verified reset, message cleared.
// • PurgeExpired only touches unverified rows.  Verified claims persist
//   as proof even after their code window lapses.
// • Oxford commas, two spaces after periods.
package ownership

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/jmoiron/sqlx"
)

// Record mirrors one row in the `domain_ownership` table.
type Record struct {
	ID          uint64         `db:"id"`
	Admin       string         `db:"admin"`
	Domain      string         `db:"domain"`
	AliasDomain string         `db:"alias_domain"`
	VerifyCode  string         `db:"verify_code"`
	Verified    bool           `db:"verified"`
	Message     sql.NullString `db:"message"`
	LastVerify  sql.NullTime   `db:"last_verify"`
	Expire      int64          `db:"expire"`
}

// newCode returns a fresh hex verify code.  20 random bytes keeps the
// rendered string inside the column's VARCHAR(100).
func newCode() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Begin creates or refreshes the claim for (admin, domain, aliasDomain)
// and returns the verify code the admin must publish.  The claim expires
// ttl from now unless verified first.
func Begin(ctx context.Context, db *sqlx.DB, admin, domain, aliasDomain string, ttl time.Duration) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", err
	}

	const q = `
        INSERT INTO domain_ownership
            (admin, domain, alias_domain, verify_code, verified, message, last_verify, expire)
        VALUES (?, ?, ?, ?, 0, '', NULL, ?)
        ON DUPLICATE KEY UPDATE
            verify_code = VALUES(verify_code),
            verified    = 0,
            message     = '',
            last_verify = NULL,
            expire      = VALUES(expire)`
	_, err = db.ExecContext(ctx, q,
		admin, domain, aliasDomain, code, time.Now().Add(ttl).Unix())
	if err != nil {
		return "", err
	}
	return code, nil
}

// Attempt records the outcome of one verification probe: last_verify is
// stamped, the probe message stored, and verified set when ok.  Returns
// sql.ErrNoRows when no claim exists for the triple.
func Attempt(ctx context.Context, db *sqlx.DB, admin, domain, aliasDomain string, ok bool, message string) error {
	const q = `
        UPDATE domain_ownership
        SET    last_verify = NOW(),
               message     = ?,
               verified    = ?
        WHERE  admin = ? AND domain = ? AND alias_domain = ?`
	res, err := db.ExecContext(ctx, q, message, ok, admin, domain, aliasDomain)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Get fetches the claim for the triple.  Returns sql.ErrNoRows when
// absent.
func Get(ctx context.Context, db *sqlx.DB, admin, domain, aliasDomain string) (*Record, error) {
	const q = `
        SELECT id, admin, domain, alias_domain, verify_code, verified,
               message, last_verify, expire
        FROM   domain_ownership
        WHERE  admin = ? AND domain = ? AND alias_domain = ?
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, admin, domain, aliasDomain); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Verified reports whether any admin has a settled claim on domain.
// `expire` only bounds the verification window; a claim that settled
// stays valid after it.
func Verified(ctx context.Context, db *sqlx.DB, domain string) (bool, error) {
	const q = `
        SELECT 1
        FROM   domain_ownership
        WHERE  domain = ?
          AND  verified = 1
        LIMIT  1`
	var dummy int
	err := db.GetContext(ctx, &dummy, q, domain)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Pending returns the admin's unverified claims that have not lapsed yet.
func Pending(ctx context.Context, db *sqlx.DB, admin string) ([]Record, error) {
	const q = `
        SELECT id, admin, domain, alias_domain, verify_code, verified,
               message, last_verify, expire
        FROM   domain_ownership
        WHERE  admin = ?
          AND  verified = 0
          AND  expire > ?
        ORDER  BY domain, alias_domain`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q, admin, time.Now().Unix()); err != nil {
		return nil, err
	}
	return rows, nil
}

// PurgeExpired removes unverified claims whose expire passed before now,
// returning the number of rows removed.
func PurgeExpired(ctx context.Context, db *sqlx.DB, now time.Time) (int64, error) {
	const q = `
        DELETE FROM domain_ownership
        WHERE  verified = 0
          AND  expire > 0
          AND  expire < ?`
	res, err := db.ExecContext(ctx, q, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
