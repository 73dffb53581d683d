// Package metrics defines and registers the custom Prometheus metrics of the
// employee registry. It is the single source of truth for metric names,
// labels, and help strings. Metrics are registered with the default
// registry on import through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "employees"

// Result label values.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultConflict = "conflict"
	ResultInvalid  = "invalid"
	ResultError    = "error"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// ── Service metrics ───────────────────────────────────────────────────────────

// OperationsTotal counts employee service calls.
// Labels:
//   - operation: service method (e.g. "create", "toggle_status")
//   - result: ok, not_found, conflict, invalid or error
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "employee_operations_total",
		Help:      "Total number of employee service operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// OperationDuration measures how long each service operation takes,
// including time spent waiting for the per-employee serializer.
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "employee_operation_duration_seconds",
		Help:      "Duration of employee service operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// CreatedTotal counts newly created employees.
var CreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "employees_created_total",
		Help:      "Total number of employees created.",
	},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheLookupsTotal counts read-through cache lookups.
// Label:
//   - result: hit, miss or error
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "employee_cache_lookups_total",
		Help:      "Total number of employee cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Serializer metrics ────────────────────────────────────────────────────────

// SerializerQueueDepth tracks pending mutations in each serializer worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SerializerQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "serializer_queue_depth",
		Help:      "Current number of mutations pending in each serializer worker channel.",
	},
	[]string{"worker_id"},
)
