// internal/store/settings/settings.go
//
// Account-scoped application settings over the `settings` table.
//
// Context
// -------
// Values are stored JSON-encoded inside a one-field envelope,
// `{"value": …}`, so any JSON-encodable shape round-trips through one
// TEXT column.  The (account, k) pair is unique; the empty account means
// the `global` scope, which also serves as the fallback when a per-account
// row is absent.
//
// Notes
// -----
// • Get unmarshals into the caller's out pointer, so callers pick the
//   concrete type and bad stored JSON surfaces as a normal error.
// • Oxford commas, two spaces after periods.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GlobalAccount is the scope used when the caller passes an empty account.
const GlobalAccount = "global"

// envelope is the stored JSON shape.
type envelope struct {
	Value json.RawMessage `json:"value"`
}

func scope(account string) string {
	if account == "" {
		return GlobalAccount
	}
	return account
}

// Set stores value for (account, key), replacing any earlier value.
func Set(ctx context.Context, db *sqlx.DB, account, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("settings: encode %s/%s: %w", scope(account), key, err)
	}
	blob, err := json.Marshal(envelope{Value: raw})
	if err != nil {
		return err
	}

	const q = `
        INSERT INTO settings (account, k, v)
        VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE v = VALUES(v)`
	_, err = db.ExecContext(ctx, q, scope(account), key, string(blob))
	return err
}

// Get loads the value for (account, key) into out, which must be a
// pointer.  A missing per-account row falls back to the global scope;
// sql.ErrNoRows is returned when neither exists.
func Get(ctx context.Context, db *sqlx.DB, account, key string, out any) error {
	blob, err := fetch(ctx, db, scope(account), key)
	if errors.Is(err, sql.ErrNoRows) && scope(account) != GlobalAccount {
		blob, err = fetch(ctx, db, GlobalAccount, key)
	}
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return fmt.Errorf("settings: decode %s/%s: %w", scope(account), key, err)
	}
	return json.Unmarshal(env.Value, out)
}

func fetch(ctx context.Context, db *sqlx.DB, account, key string) (string, error) {
	const q = `SELECT v FROM settings WHERE account = ? AND k = ? LIMIT 1`
	var v string
	if err := db.GetContext(ctx, &v, q, account, key); err != nil {
		return "", err
	}
	return v, nil
}

// All returns every key in the account's scope, with values still inside
// their envelopes decoded to raw JSON.
func All(ctx context.Context, db *sqlx.DB, account string) (map[string]json.RawMessage, error) {
	const q = `SELECT k, v FROM settings WHERE account = ? ORDER BY k`
	rows, err := db.QueryxContext(ctx, q, scope(account))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		var env envelope
		if err := json.Unmarshal([]byte(v), &env); err != nil {
			return nil, fmt.Errorf("settings: decode %s/%s: %w", scope(account), k, err)
		}
		out[k] = env.Value
	}
	return out, rows.Err()
}

// Delete removes the key from the account's scope, if present.
func Delete(ctx context.Context, db *sqlx.DB, account, key string) error {
	const q = `DELETE FROM settings WHERE account = ? AND k = ?`
	_, err := db.ExecContext(ctx, q, scope(account), key)
	return err
}
