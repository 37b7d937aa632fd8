// cmd/admind/main.go
//
// mailadmin – admin-database daemon entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load and validate config; resolve `vault:` secrets when VAULT_ADDR
//     is present.
//
//  4. Open the admin DB and apply the schema idempotently.
//
//  5. Optionally open the GeoLite2 database for request enrichment.
//
//  6. Start the cleanup runner and the HTTP API (sessions, audit log,
//     settings, tracking, ownership, newsletter confirms, updatelog,
//     webmail contract, /metrics) under one errgroup.
//
//  7. On SIGINT/SIGTERM, drain the HTTP server and wait for the group.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/viamail/mailadmin/internal/cleanup"
	"github.com/viamail/mailadmin/internal/config"
	"github.com/viamail/mailadmin/internal/database"
	"github.com/viamail/mailadmin/internal/logger"
	"github.com/viamail/mailadmin/internal/middleware"
	"github.com/viamail/mailadmin/internal/requestinfo"
	"github.com/viamail/mailadmin/internal/schema"
	"github.com/viamail/mailadmin/internal/server"
	"github.com/viamail/mailadmin/internal/vault"
	"github.com/viamail/mailadmin/internal/web"
)

const serverEnvPath = "/usr/local/etc/mailadmin/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Config + secrets ────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	if os.Getenv("VAULT_ADDR") != "" {
		vcli, err := vault.New(ctx, logOut.Infof)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		if err := config.ResolveSecrets(ctx, vcli); err != nil {
			logOut.Fatalf("resolve secrets: %v", err)
		}
		cfg = config.Get()
	}

	//
	// ── 2.  Admin DB connect + schema ───────────────────────────────────
	//
	db, err := database.Open(cfg.Database.EffectiveDSN())
	if err != nil {
		logOut.Fatalf("connect admin DB: %v", err)
	}
	defer db.Close()

	if err := schema.Ensure(ctx, db); err != nil {
		logOut.Fatalf("ensure schema: %v", err)
	}
	logOut.Infow("admin DB online", "tables", len(schema.Tables()))

	//
	// ── 3.  Optional geolocation ────────────────────────────────────────
	//
	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
			logOut.Warnw("geo DB unavailable, lookups disabled",
				"path", cfg.Geo.DBPath, "err", err)
		}
	}

	//
	// ── 4.  Cleanup runner + HTTP API ───────────────────────────────────
	//
	cleaner := cleanup.New(db,
		cfg.Cleanup.Interval, cfg.Cleanup.SessionIdleTTL, logOut)

	api := &web.API{
		DB:            db,
		Webmail:       &cfg.Webmail,
		Cleaner:       cleaner,
		OwnershipTTL:  cfg.Ownership.CodeTTL,
		NewsletterTTL: cfg.Newsletter.TokenTTL,
		Log:           logOut,
	}

	handler := api.Router()
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}
	srv := server.New(cfg.HTTP.ListenAddr, handler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return cleaner.Run(gctx) })

	g.Go(func() error {
		logOut.Infow("http listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		logOut.Fatalf("daemon stopped: %v", err)
	}
	logOut.Infow("daemon stopped cleanly")
}
