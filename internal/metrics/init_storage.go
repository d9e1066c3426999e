package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStorageMetrics() {
	r.StorageOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "l2domains_storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	r.StorageOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "l2domains_storage_operation_duration_seconds",
			Help:    "Storage operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	r.StoredAnalyses = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "l2domains_stored_analyses",
			Help: "Analyses currently held in the database",
		},
	)
}

func (r *Registry) initLogMetrics() {
	r.LogEntriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "l2domains_log_entries_total",
			Help: "Emitted log entries by level",
		},
		[]string{"level"},
	)
}
