// Package metrics defines and registers all custom Prometheus metrics for the
// Kontakty API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init through promauto; the /metrics endpoint serves that registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kontakty"

// ── Contact metrics ───────────────────────────────────────────────────────────

// ContactMutationsTotal counts write operations on contacts.
// Labels:
//   - operation: "create", "update", or "delete"
//   - result: "ok", "conflict", "not_found", "invalid", or "error"
var ContactMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contacts_mutations_total",
		Help:      "Total number of contact mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - operation: "login" or "register"
//   - result: "ok", "invalid", "locked", "conflict", or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreOperationDuration measures round trips to the backing stores.
// Labels:
//   - store: "postgres", "mongo", or "redis"
//   - operation: repository method name (e.g. "contact_create")
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of calls to the backing stores.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"store", "operation"},
)

// ObserveStore records the time elapsed since start. Use with defer:
//
//	defer metrics.ObserveStore("postgres", "contact_list", time.Now())
func ObserveStore(store, op string, start time.Time) {
	StoreOperationDuration.WithLabelValues(store, op).Observe(time.Since(start).Seconds())
}
