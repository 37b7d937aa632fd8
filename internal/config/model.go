// internal/config/model.go
//
// Typed configuration model for admind.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `MAILADMIN_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so the rest of the
// daemon only ever sees plain strings.
//
// Validation happens immediately after unmarshal; the daemon fails fast
// if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.
package config

import (
	"strings"
	"time"

	"github.com/viamail/mailadmin/internal/webmail"
)

//
// HTTP section
//

// HTTP holds web-server tunables for the admin API.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the admin-database DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host,
// port, or flags without touching Vault.  The *secret* (`Password`) may
// be a literal or a `vault:` reference resolved at load time; when the
// template carries a `%s` verb, the password is spliced in.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

// EffectiveDSN returns the DSN with the password spliced into the
// template's `%s` slot.  Templates without a slot pass through as-is.
func (d Database) EffectiveDSN() string {
	if strings.Contains(d.DSN, "%s") {
		return strings.Replace(d.DSN, "%s", d.Password, 1)
	}
	return d.DSN
}

//
// Cleanup section
//

// Cleanup tunes the background lifecycle jobs: session reaping, domain
// ownership purging, and newsletter token expiry.  Zero values fall back
// to the defaults applied in the loader.
type Cleanup struct {
	Interval       time.Duration `koanf:"interval"`
	SessionIdleTTL time.Duration `koanf:"session_idle_ttl"`
}

//
// Ownership section
//

// Ownership tunes the domain-verification workflow.
type Ownership struct {
	CodeTTL time.Duration `koanf:"code_ttl"`
}

//
// Newsletter section
//

// Newsletter tunes the (un)subscribe confirmation tokens.
type Newsletter struct {
	TokenTTL time.Duration `koanf:"token_ttl"`
}

//
// Geo section
//

// Geo points at an optional MaxMind database used by the request-info
// middleware.  Empty path disables geolocation.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or MAILADMIN_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the daemon lifetime.
type Config struct {
	HTTP       HTTP           `koanf:"http"`
	Database   Database       `koanf:"database"`
	Cleanup    Cleanup        `koanf:"cleanup"`
	Ownership  Ownership      `koanf:"ownership"`
	Newsletter Newsletter     `koanf:"newsletter"`
	Geo        Geo            `koanf:"geo"`
	Webmail    webmail.Config `koanf:"webmail"`
	Paths      Paths          `koanf:"-"` // not loaded from config files
}
