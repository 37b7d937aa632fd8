// internal/cleanup/cleanup.go
//
// Background lifecycle jobs for the admin database.
//
// Context
// -------
// Three tables accumulate rows that the writing side never removes:
//
//   - sessions                      – reaped once idle past the TTL
//   - domain_ownership              – unverified claims lapse via `expire`
//   - newsletter_subunsub_confirms  – tokens lapse via `expired`
//
// Runner owns one ticker and sweeps all three on every pass.  Each sweep
// is independent: a failure in one job is logged and counted, and the
// remaining jobs still run.
//
// Notes
// -----
// • Run blocks until ctx is cancelled; main drives it from an errgroup.
// • Counts land in the daemon log and the Prometheus counters.
package cleanup

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/viamail/mailadmin/internal/metrics"
	"github.com/viamail/mailadmin/internal/store/newsletter"
	"github.com/viamail/mailadmin/internal/store/ownership"
	"github.com/viamail/mailadmin/internal/store/session"
)

// Runner sweeps the expirable tables on a fixed interval.
type Runner struct {
	db             *sqlx.DB
	interval       time.Duration
	sessionIdleTTL time.Duration
	log            *zap.SugaredLogger
}

// New returns a Runner.  interval and sessionIdleTTL must be positive;
// the config loader guarantees that.
func New(db *sqlx.DB, interval, sessionIdleTTL time.Duration, log *zap.SugaredLogger) *Runner {
	return &Runner{
		db:             db,
		interval:       interval,
		sessionIdleTTL: sessionIdleTTL,
		log:            log,
	}
}

// Run sweeps immediately, then on every tick until ctx is cancelled.
// The returned error is always nil today; the signature matches
// errgroup.Group.Go.
func (r *Runner) Run(ctx context.Context) error {
	r.Sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs all three jobs once.  Exported so an operator endpoint or a
// test can force a pass outside the ticker.
func (r *Runner) Sweep(ctx context.Context) {
	now := time.Now()
	failed := false

	if n, err := session.ReapIdle(ctx, r.db, r.sessionIdleTTL); err != nil {
		r.log.Errorw("session reap failed", "err", err)
		failed = true
	} else if n > 0 {
		r.log.Infow("sessions reaped", "count", n, "idle_ttl", r.sessionIdleTTL)
		metrics.SessionsReapedTotal.Add(float64(n))
	}

	if n, err := ownership.PurgeExpired(ctx, r.db, now); err != nil {
		r.log.Errorw("ownership purge failed", "err", err)
		failed = true
	} else if n > 0 {
		r.log.Infow("expired ownership claims purged", "count", n)
		metrics.OwnershipPurgedTotal.Add(float64(n))
	}

	if n, err := newsletter.PurgeExpired(ctx, r.db, now); err != nil {
		r.log.Errorw("newsletter token purge failed", "err", err)
		failed = true
	} else if n > 0 {
		r.log.Infow("expired confirmation tokens purged", "count", n)
		metrics.ConfirmsPurgedTotal.Add(float64(n))
	}

	if failed {
		metrics.CleanupErrorsTotal.Inc()
	}
	metrics.CleanupRunsTotal.Inc()
}
