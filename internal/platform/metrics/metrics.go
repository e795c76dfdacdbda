// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "practice_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	SessionsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_sessions_scheduled_total",
		Help: "Sessions created, recurring occurrences included.",
	})

	SessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_session_transitions_total",
		Help: "Session status transitions by target status.",
	}, []string{"status"})

	LedgerTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_ledger_transactions_total",
		Help: "Ledger transactions written, by kind.",
	}, []string{"kind"})

	LedgerReversals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_ledger_reversals_total",
		Help: "Ledger transactions deleted.",
	})

	PartialFanouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_partial_fanouts_total",
		Help: "Group charges that failed after some members were billed.",
	})

	BalanceDrift = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_balance_drift_corrections_total",
		Help: "Client balances corrected by reconciliation.",
	})

	ReportCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practice_report_cache_lookups_total",
		Help: "Dashboard cache lookups by result.",
	}, []string{"result"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
