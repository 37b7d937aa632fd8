// internal/web/router.go
//
// Admin API router.
//
// Context
// -------
// The external webmail frontend and operator tooling talk to the stores
// through this chi router.  Everything is JSON in, JSON out.  The chain
// is: security headers → request enrichment → routes.  /metrics and
// /healthz sit outside the API prefix so probes and scrapers skip the
// enrichment cost.
//
// Route map
// ---------
//   GET    /healthz
//   GET    /metrics
//   PUT    /api/sessions/{id}           upsert session payload
//   GET    /api/sessions/{id}
//   POST   /api/sessions/{id}/touch
//   DELETE /api/sessions/{id}
//   POST   /api/log                     record audit entry
//   GET    /api/log                     search audit entries
//   GET    /api/settings/{account}
//   GET    /api/settings/{account}/{key}
//   PUT    /api/settings/{account}/{key}
//   DELETE /api/settings/{account}/{key}
//   GET    /api/tracking
//   GET    /api/tracking/{key}
//   PUT    /api/tracking/{key}
//   DELETE /api/tracking/{key}
//   POST   /api/ownership               begin verification
//   POST   /api/ownership/attempt       record probe outcome
//   GET    /api/ownership/pending       ?admin=
//   GET    /api/ownership/verified      ?domain=
//   POST   /api/newsletter/confirms     issue token
//   POST   /api/newsletter/confirms/consume
//   POST   /api/updatelog               mark update run
//   GET    /api/updatelog/last
//   GET    /api/webmail/config          sanitized frontend contract
//   POST   /api/ops/cleanup             force a cleanup sweep
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/viamail/mailadmin/internal/cleanup"
	"github.com/viamail/mailadmin/internal/middleware"
	"github.com/viamail/mailadmin/internal/requestinfo"
	"github.com/viamail/mailadmin/internal/webmail"
)

// API carries the handler dependencies.  Construct once in main.
type API struct {
	DB            *sqlx.DB
	Webmail       *webmail.Config
	Cleaner       *cleanup.Runner
	OwnershipTTL  time.Duration
	NewsletterTTL time.Duration
	Log           *zap.SugaredLogger
}

// Router assembles the full handler chain.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", a.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(requestinfo.Enrich)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Put("/", a.handleSessionSave)
			r.Get("/", a.handleSessionGet)
			r.Post("/touch", a.handleSessionTouch)
			r.Delete("/", a.handleSessionDelete)
		})

		r.Post("/log", a.handleLogRecord)
		r.Get("/log", a.handleLogSearch)

		r.Route("/settings/{account}", func(r chi.Router) {
			r.Get("/", a.handleSettingsAll)
			r.Get("/{key}", a.handleSettingsGet)
			r.Put("/{key}", a.handleSettingsSet)
			r.Delete("/{key}", a.handleSettingsDelete)
		})

		r.Get("/tracking", a.handleTrackingAll)
		r.Get("/tracking/{key}", a.handleTrackingGet)
		r.Put("/tracking/{key}", a.handleTrackingSet)
		r.Delete("/tracking/{key}", a.handleTrackingDelete)

		r.Post("/ownership", a.handleOwnershipBegin)
		r.Post("/ownership/attempt", a.handleOwnershipAttempt)
		r.Get("/ownership/pending", a.handleOwnershipPending)
		r.Get("/ownership/verified", a.handleOwnershipVerified)

		r.Post("/newsletter/confirms", a.handleConfirmCreate)
		r.Post("/newsletter/confirms/consume", a.handleConfirmConsume)

		r.Post("/updatelog", a.handleUpdatelogMark)
		r.Get("/updatelog/last", a.handleUpdatelogLast)

		r.Get("/webmail/config", a.handleWebmailConfig)

		r.Post("/ops/cleanup", a.handleOpsCleanup)
	})

	return middleware.Security(r)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := a.DB.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
