// Package metrics exposes sync counters. Degraded fee-type matches get their
// own tier label so first-row fallbacks are visible operationally.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// label values
const (
	ResultSuccess    = "success"
	ResultUnverified = "unverified"
	ResultFailed     = "failed"

	OrderFull    = "full"
	OrderPartial = "partial"
)

var (
	// FeeSubmissions counts fee line submissions by outcome.
	FeeSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "veracore",
		Subsystem: "sync",
		Name:      "fee_submissions_total",
		Help:      "Fee line submissions by outcome.",
	}, []string{"result"})

	// FeeMatchTier counts which disambiguation tier selected the fee row.
	FeeMatchTier = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "veracore",
		Subsystem: "sync",
		Name:      "fee_match_tier_total",
		Help:      "Fee type search matches by disambiguation tier.",
	}, []string{"tier"})

	// OrdersSynced counts work orders by sync completeness.
	OrdersSynced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "veracore",
		Subsystem: "sync",
		Name:      "orders_synced_total",
		Help:      "Work orders processed by sync completeness.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(FeeSubmissions, FeeMatchTier, OrdersSynced)
}

// Handler returns the exposition endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
