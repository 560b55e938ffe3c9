package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/edvin/flowplane/internal/apperr"
)

var (
	// WorkflowOperations counts provisioning state machine transitions by outcome.
	WorkflowOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowplane_workflow_operations_total",
			Help: "Tenant workflow operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// StoreConflictRetries counts provisioning attempts retried after a unique-constraint race.
	StoreConflictRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flowplane_store_conflict_retries_total",
			Help: "Provisioning attempts retried after a concurrent insert or update",
		},
	)

	EngineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowplane_engine_requests_total",
			Help: "Requests to the workflow engine by operation and result",
		},
		[]string{"operation", "result"},
	)

	EngineRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowplane_engine_request_duration_seconds",
			Help:    "Workflow engine request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// EngineBreakerState is 0 closed, 1 half-open, 2 open.
	EngineBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowplane_engine_circuit_breaker_state",
			Help: "Workflow engine circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	CatalogSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowplane_catalog_syncs_total",
			Help: "Catalog sync runs by result",
		},
		[]string{"result"},
	)

	CatalogTemplatesSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowplane_catalog_templates_synced_total",
			Help: "Templates written by catalog sync, by change",
		},
		[]string{"change"},
	)
)

// Outcome maps an error to a low-cardinality metric label.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	return apperr.ErrorCode(err)
}
