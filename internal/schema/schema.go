// internal/schema/schema.go
//
// Administrative database schema.
//
// Context
// -------
// The admin database holds seven independent tables.  There are no foreign
// keys, triggers, or stored procedures; every relationship (e.g., an
// ownership row's admin column referring to an admin account) is an
// application-level contract, not a schema guarantee.  The DDL below is the
// interface contract: the external webmail frontend reads and writes these
// exact columns, so names, types, and defaults must not drift.
//
// `Ensure` applies the DDL idempotently at boot.  Operators who prefer to
// manage the database out-of-band can render the same statements via
// `Statements()` and run them with their own tooling.
//
// Notes
// -----
//   - MySQL/MariaDB dialect, matching the go-sql-driver pool in
//     internal/database.
//   - Secondary indexes are created through a guard query because MariaDB
//     below 10.5 has no CREATE INDEX IF NOT EXISTS.
//   - Oxford commas, two spaces after periods.
package schema

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// tables maps table name to its CREATE statement.  Order matters only for
// readability; nothing references anything else.
var tables = []struct {
	name string
	ddl  string
}{
	{"sessions", `
        CREATE TABLE IF NOT EXISTS sessions (
            session_id CHAR(128) NOT NULL,
            atime      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            data       TEXT,
            UNIQUE INDEX idx_sessions_session_id (session_id)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"log", `
        CREATE TABLE IF NOT EXISTS log (
            id        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            timestamp TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
            admin     VARCHAR(255) NOT NULL DEFAULT '',
            domain    VARCHAR(255) NOT NULL DEFAULT '',
            username  VARCHAR(255) NOT NULL DEFAULT '',
            ip        VARCHAR(40)  NOT NULL DEFAULT '',
            event     VARCHAR(20)  NOT NULL DEFAULT '',
            loglevel  VARCHAR(10)  NOT NULL DEFAULT 'info',
            msg       TEXT,
            PRIMARY KEY (id),
            INDEX idx_log_timestamp (timestamp),
            INDEX idx_log_admin     (admin),
            INDEX idx_log_domain    (domain),
            INDEX idx_log_username  (username),
            INDEX idx_log_event     (event),
            INDEX idx_log_loglevel  (loglevel)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"updatelog", `
        CREATE TABLE IF NOT EXISTS updatelog (
            date DATE NOT NULL,
            PRIMARY KEY (date)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"tracking", `
        CREATE TABLE IF NOT EXISTS tracking (
            k    VARCHAR(255) NOT NULL,
            v    TEXT,
            time BIGINT NOT NULL DEFAULT 0,
            UNIQUE INDEX idx_tracking_k (k)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"domain_ownership", `
        CREATE TABLE IF NOT EXISTS domain_ownership (
            id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            admin        VARCHAR(255) NOT NULL DEFAULT '',
            domain       VARCHAR(255) NOT NULL DEFAULT '',
            alias_domain VARCHAR(255) NOT NULL DEFAULT '',
            verify_code  VARCHAR(100) NOT NULL DEFAULT '',
            verified     TINYINT(1)   NOT NULL DEFAULT 0,
            message      TEXT,
            last_verify  TIMESTAMP NULL DEFAULT NULL,
            expire       BIGINT NOT NULL DEFAULT 0,
            PRIMARY KEY (id),
            UNIQUE INDEX idx_ownership_triple (admin, domain, alias_domain)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"newsletter_subunsub_confirms", `
        CREATE TABLE IF NOT EXISTS newsletter_subunsub_confirms (
            id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            mail       VARCHAR(255) NOT NULL DEFAULT '',
            mlid       VARCHAR(255) NOT NULL DEFAULT '',
            subscriber VARCHAR(255) NOT NULL DEFAULT '',
            kind       VARCHAR(20)  NOT NULL DEFAULT '',
            token      VARCHAR(255) NOT NULL DEFAULT '',
            expired    BIGINT NOT NULL DEFAULT 0,
            PRIMARY KEY (id),
            UNIQUE INDEX idx_confirms_triple (mlid, subscriber, kind)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"settings", `
        CREATE TABLE IF NOT EXISTS settings (
            id      BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
            account VARCHAR(255) NOT NULL DEFAULT 'global',
            k       VARCHAR(255) NOT NULL,
            v       TEXT,
            PRIMARY KEY (id),
            UNIQUE INDEX idx_settings_account_k (account, k)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// Ensure creates every table (and its indexes) that does not already exist.
// It is safe to call on every boot; existing tables are left untouched.
func Ensure(ctx context.Context, db *sqlx.DB) error {
	for _, t := range tables {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("schema: create %s: %w", t.name, err)
		}
	}
	return nil
}

// Statements returns the raw DDL in apply order, one statement per table.
// Indexes are embedded in the CREATE TABLE bodies, so replaying these
// against an empty database reproduces the full schema.
func Statements() []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.ddl)
	}
	return out
}

// Tables lists the table names in apply order.
func Tables() []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.name)
	}
	return out
}
