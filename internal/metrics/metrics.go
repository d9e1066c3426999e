package metrics

import (
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"

	"l2domains/internal/broadcast"
)

var _ broadcast.Observer = (*Registry)(nil)

// ObserveGraph records the size of a freshly built broadcast graph
func (r *Registry) ObserveGraph(nodes map[broadcast.NodeKind]int, edges int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Kinds absent from this graph must not keep the previous graph's count
	r.GraphNodes.Reset()
	for kind, n := range nodes {
		r.GraphNodes.WithLabelValues(kind.String()).Set(float64(n))
	}
	r.GraphEdges.Set(float64(edges))
}

// ObserveSearch records one reachability search
func (r *Registry) ObserveSearch(visited int, duration time.Duration) {
	r.SearchesTotal.Inc()
	r.SearchVisitedStates.Observe(float64(visited))
	r.SearchDuration.Observe(duration.Seconds())
}

// RecordAnalysis records a finished analysis. domains and relevant are ignored
// when err is non-nil.
func (r *Registry) RecordAnalysis(domains, relevant int, duration time.Duration, err error) {
	if err != nil {
		r.AnalysesTotal.WithLabelValues("error").Inc()
		return
	}
	r.AnalysesTotal.WithLabelValues("success").Inc()
	r.AnalysisDuration.Observe(duration.Seconds())
	r.BroadcastDomains.Set(float64(domains))
	r.RelevantInterfaces.Set(float64(relevant))
}

// RecordSnapshotReload records a watcher-triggered reload
func (r *Registry) RecordSnapshotReload(err error) {
	r.SnapshotReloadsTotal.WithLabelValues(statusOf(err)).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	r.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// RecordStorageOperation records a storage operation
func (r *Registry) RecordStorageOperation(operation string, duration time.Duration, err error) {
	r.StorageOperationsTotal.WithLabelValues(operation, statusOf(err)).Inc()
	r.StorageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetStoredAnalyses sets the number of analyses held in the database
func (r *Registry) SetStoredAnalyses(n int) {
	r.StoredAnalyses.Set(float64(n))
}

// LogHook counts log entries; pass it to logging.WithEntryHook
func (r *Registry) LogHook(e zapcore.Entry) error {
	r.LogEntriesTotal.WithLabelValues(e.Level.String()).Inc()
	return nil
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
