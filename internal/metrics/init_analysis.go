package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "l2domains_analyses_total",
			Help: "Total number of broadcast-domain analyses",
		},
		[]string{"status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "l2domains_analysis_duration_seconds",
			Help:    "Wall time of a complete analysis, including graph construction",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "l2domains_graph_nodes",
			Help: "Nodes in the most recently built broadcast graph, by kind",
		},
		[]string{"kind"},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "l2domains_graph_edges",
			Help: "Edges in the most recently built broadcast graph",
		},
	)

	r.SearchesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "l2domains_searches_total",
			Help: "Total number of per-interface reachability searches",
		},
	)

	r.SearchVisitedStates = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "l2domains_search_visited_states",
			Help:    "Distinct (node, state) pairs visited by one search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		},
	)

	r.SearchDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "l2domains_search_duration_seconds",
			Help:    "Duration of one reachability search",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)

	r.BroadcastDomains = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "l2domains_broadcast_domains",
			Help: "Broadcast domains found by the most recent analysis",
		},
	)

	r.RelevantInterfaces = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "l2domains_layer3_relevant_interfaces",
			Help: "Layer-3 relevant interfaces in the most recent analysis",
		},
	)

	r.SnapshotReloadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "l2domains_snapshot_reloads_total",
			Help: "Snapshot directory reloads triggered by file changes",
		},
		[]string{"status"},
	)
}
