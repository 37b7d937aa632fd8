// Package metrics holds Prometheus instruments that are used across the
// daemon.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuditEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Cumulative number of rows written to the audit log.",
		})

	SessionsReapedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_reaped_total",
			Help: "Cumulative number of idle sessions removed by cleanup.",
		})

	OwnershipPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ownership_purged_total",
			Help: "Cumulative number of expired domain-ownership rows purged.",
		})

	ConfirmsPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "newsletter_confirms_purged_total",
			Help: "Cumulative number of expired confirmation tokens purged.",
		})

	CleanupRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cleanup_runs_total",
			Help: "Cumulative number of completed cleanup passes.",
		})

	CleanupErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cleanup_errors_total",
			Help: "Cumulative number of cleanup passes that hit an error.",
		})
)

func init() {
	prometheus.MustRegister(
		AuditEventsTotal,
		SessionsReapedTotal,
		OwnershipPurgedTotal,
		ConfirmsPurgedTotal,
		CleanupRunsTotal,
		CleanupErrorsTotal,
	)
}
