// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file — `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `MAILADMIN_`, where `__` maps to “.”
     (e.g., `MAILADMIN_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
defaulted, validated, enriched with the runtime root path, and cached in
an `atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Secrets
-------
`ResolveSecrets()` runs after Load when a Vault client is available.  It
walks the handful of secret-bearing fields (database password, webmail
SMTP password) and replaces `vault:` references in place, then re-caches.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/admind` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/viamail/mailadmin/internal/vault"
	"github.com/viamail/mailadmin/internal/webmail"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves MAILADMIN_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to executable heuristic for the
// production layout (<root>/bin/admind).
func rootDir() string {
	if r := os.Getenv("MAILADMIN_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, defaults, validates, and caches
// Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: MAILADMIN_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("MAILADMIN_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "MAILADMIN_")
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	cfg := Config{Webmail: webmail.Defaults()}
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	applyDefaults(&cfg)
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}
	if err := cfg.Webmail.Validate(); err != nil {
		zap.S().Errorw("webmail config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"cleanup_interval", cfg.Cleanup.Interval,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// applyDefaults fills the tunables the YAML may omit.
func applyDefaults(cfg *Config) {
	if cfg.Cleanup.Interval <= 0 {
		cfg.Cleanup.Interval = 10 * time.Minute
	}
	if cfg.Cleanup.SessionIdleTTL <= 0 {
		cfg.Cleanup.SessionIdleTTL = 24 * time.Hour
	}
	if cfg.Ownership.CodeTTL <= 0 {
		cfg.Ownership.CodeTTL = 24 * time.Hour
	}
	if cfg.Newsletter.TokenTTL <= 0 {
		cfg.Newsletter.TokenTTL = 48 * time.Hour
	}
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// ResolveSecrets replaces `vault:` references in the secret-bearing fields
// and re-caches the config.  Call after Load once a Vault client exists;
// a nil client is a no-op so dev setups without Vault keep working.
func ResolveSecrets(ctx context.Context, cli *vault.Client) error {
	cfg := current.Load()
	if cfg == nil || cli == nil {
		return nil
	}

	next := *cfg // shallow copy; only scalar fields are rewritten

	var err error
	if next.Database.Password, err = cli.Resolve(ctx, cfg.Database.Password); err != nil {
		return err
	}
	if next.Webmail.SMTP.Pass, err = cli.Resolve(ctx, cfg.Webmail.SMTP.Pass); err != nil {
		return err
	}

	current.Store(&next)
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
