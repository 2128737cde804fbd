// Package metrics exposes the Prometheus instrumentation for the partner
// module.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	rollupRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partner",
		Subsystem: "rollup",
		Name:      "runs_total",
		Help:      "Total number of location agent-rollup recomputations by outcome.",
	}, []string{"result"})

	smsDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partner",
		Subsystem: "sms",
		Name:      "dispatch_total",
		Help:      "Total number of outbound SMS dispatch decisions by outcome.",
	}, []string{"outcome"})
)

// RecordRollupRun counts one per-location rollup recomputation.
func RecordRollupRun(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	rollupRuns.WithLabelValues(result).Inc()
}

// RecordSmsDispatch counts a dispatch decision: "queued", "skipped" (no
// phone number) or "error".
func RecordSmsDispatch(outcome string) {
	if outcome == "" {
		outcome = "error"
	}
	smsDispatches.WithLabelValues(outcome).Inc()
}

// Register mounts the Prometheus scrape endpoint.
func Register(r *mux.Router, path string) {
	if path == "" {
		path = "/debug/prometheus"
	}
	r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
}
