package handler

import (
	"net/http"

	"go.uber.org/zap"

	"l2domains/internal/metrics"
)

// Routes registers the API on a new mux and wraps it in the standard
// middleware. events serves the SSE stream; it may be nil.
func Routes(h *AnalysisHandler, events http.Handler, reg *metrics.Registry, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Analysis endpoints
	mux.HandleFunc("POST /api/analyses", h.CreateAnalysis)
	mux.HandleFunc("GET /api/analyses", h.ListAnalyses)
	mux.HandleFunc("GET /api/analyses/{id}", h.GetAnalysis)
	mux.HandleFunc("DELETE /api/analyses/{id}", h.DeleteAnalysis)
	mux.HandleFunc("GET /api/analyses/{id}/domains", h.GetDomains)
	mux.HandleFunc("GET /api/analyses/{id}/snapshot", h.GetSnapshot)
	mux.HandleFunc("POST /api/analyses/{id}/reanalyze", h.Reanalyze)

	// SSE events endpoint
	if events != nil {
		mux.Handle("GET /api/events", events)
	}

	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("GET /healthz", h.Health)

	return Chain(mux,
		Recover(logger),
		Logger(logger),
		Metrics(reg),
		BodyLimit(MaxBodyBytes),
	)
}
