// internal/config/loader_test.go
//
// Loader tests against a throwaway config root.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
http:
  listen_addr: "127.0.0.1:9999"

database:
  dsn: "mailadmin:%s@tcp(127.0.0.1:3306)/mailadmin"
  password: "pw"

webmail:
  db_dsnw: "mysql://rc:pw@localhost/rcdb"
  imap_host: "imap.example.com"
  imap_port: 993
  smtp_host: "smtp.example.com"
  smtp_port: 587
`

func writeRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"),
		[]byte(testYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoad(t *testing.T) {
	t.Setenv("MAILADMIN_ROOT", writeRoot(t))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.HTTP.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if got := cfg.Database.EffectiveDSN(); got != "mailadmin:pw@tcp(127.0.0.1:3306)/mailadmin" {
		t.Errorf("EffectiveDSN = %q", got)
	}

	// Omitted tunables pick up defaults.
	if cfg.Cleanup.Interval != 10*time.Minute {
		t.Errorf("cleanup interval default = %v", cfg.Cleanup.Interval)
	}
	if cfg.Ownership.CodeTTL != 24*time.Hour {
		t.Errorf("ownership code_ttl default = %v", cfg.Ownership.CodeTTL)
	}

	// Webmail defaults survive a partial webmail block.
	if cfg.Webmail.Skin != "elastic" {
		t.Errorf("webmail skin default = %q", cfg.Webmail.Skin)
	}

	// Load caches; Get returns the same pointer.
	if Get() != cfg {
		t.Error("Get() did not return the cached config")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MAILADMIN_ROOT", writeRoot(t))
	t.Setenv("MAILADMIN_HTTP__LISTEN_ADDR", "0.0.0.0:8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTP.ListenAddr != "0.0.0.0:8080" {
		t.Errorf("env override ignored, listen_addr = %q", cfg.HTTP.ListenAddr)
	}
}

func TestLoadRejectsMissingDSN(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
http:
  listen_addr: "127.0.0.1:9999"
webmail:
  db_dsnw: "mysql://rc:pw@localhost/rcdb"
  imap_host: "imap.example.com"
  smtp_host: "smtp.example.com"
`
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"),
		[]byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAILADMIN_ROOT", root)

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for missing database.dsn")
	}
}

func TestEffectiveDSNWithoutSlot(t *testing.T) {
	d := Database{DSN: "mailadmin:literal@tcp(db:3306)/mailadmin"}
	if got := d.EffectiveDSN(); got != d.DSN {
		t.Errorf("EffectiveDSN rewrote a slotless DSN: %q", got)
	}
}
