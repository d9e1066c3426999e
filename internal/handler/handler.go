package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"l2domains/internal/codec"
	"l2domains/internal/domain"
)

// AnalysisService is the subset of service.AnalysisService the API needs
type AnalysisService interface {
	Analyze(ctx context.Context, snapshot *domain.Snapshot) (*domain.Analysis, error)
	Reanalyze(ctx context.Context, id string) (*domain.Analysis, error)
	Get(ctx context.Context, id string) (*domain.Analysis, error)
	Domains(ctx context.Context, id string) (domain.BroadcastDomains, error)
	Snapshot(ctx context.Context, id string) (*domain.Snapshot, error)
	List(ctx context.Context) ([]*domain.Analysis, error)
	Delete(ctx context.Context, id string) error
}

// AnalysisHandler handles analysis API requests
type AnalysisHandler struct {
	svc    AnalysisService
	logger *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(svc AnalysisService, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{svc: svc, logger: logger}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DomainGroup is one broadcast domain in the grouped domains view
type DomainGroup struct {
	ID         int                        `json:"id"`
	Interfaces []domain.NodeInterfacePair `json:"interfaces"`
}

// CreateAnalysis computes and stores the domains of an uploaded snapshot. The
// body is YAML or JSON according to Content-Type.
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForContentType(r.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(w, "Unsupported content type", err.Error(), http.StatusUnsupportedMediaType)
		return
	}

	snapshot, err := c.Parse(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "Snapshot too large", err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Invalid snapshot", err.Error(), http.StatusBadRequest)
		return
	}
	if name := r.URL.Query().Get("name"); name != "" {
		snapshot.Name = name
	}

	a, err := h.svc.Analyze(r.Context(), snapshot)
	if err != nil {
		h.writeServiceError(w, "Failed to analyze snapshot", err)
		return
	}

	h.writeAnalysis(w, r, a, http.StatusCreated)
}

// ListAnalyses returns stored analyses without their domains
func (h *AnalysisHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list analyses", err)
		return
	}
	h.writeJSON(w, list, http.StatusOK)
}

// GetAnalysis returns one analysis in the format asked for by ?format= or Accept
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get analysis", err)
		return
	}
	h.writeAnalysis(w, r, a, http.StatusOK)
}

// GetDomains returns the interface-to-domain map, or the grouped view with
// ?view=groups.
func (h *AnalysisHandler) GetDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.svc.Domains(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get domains", err)
		return
	}

	if r.URL.Query().Get("view") != "groups" {
		h.writeJSON(w, domains, http.StatusOK)
		return
	}

	groups := make([]DomainGroup, 0, domains.Count())
	for _, members := range domains.Groups() {
		groups = append(groups, DomainGroup{ID: domains[members[0]], Interfaces: members})
	}
	h.writeJSON(w, groups, http.StatusOK)
}

// GetSnapshot returns the snapshot an analysis was computed from
func (h *AnalysisHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get snapshot", err)
		return
	}

	c := negotiate(r)
	w.Header().Set("Content-Type", contentType(c))
	if err := c.ExportSnapshot(s, w); err != nil {
		h.logger.Error("failed to export snapshot", zap.Error(err))
	}
}

// Reanalyze recomputes a stored analysis from its stored snapshot
func (h *AnalysisHandler) Reanalyze(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Reanalyze(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to reanalyze", err)
		return
	}
	h.writeAnalysis(w, r, a, http.StatusCreated)
}

// DeleteAnalysis removes a stored analysis
func (h *AnalysisHandler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, "Failed to delete analysis", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports that the server is up
func (h *AnalysisHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Helper methods

// negotiate picks the response codec from ?format= or Accept, defaulting to JSON
func negotiate(r *http.Request) codec.Codec {
	if f := r.URL.Query().Get("format"); f != "" {
		if c, err := codec.ForFormat(f); err == nil {
			return c
		}
	}
	if c, err := codec.ForContentType(r.Header.Get("Accept")); err == nil {
		return c
	}
	return codec.NewJSONCodec()
}

func contentType(c codec.Codec) string {
	if c.Format() == "yaml" {
		return "application/yaml"
	}
	return "application/json"
}

func (h *AnalysisHandler) writeAnalysis(w http.ResponseWriter, r *http.Request, a *domain.Analysis, statusCode int) {
	c := negotiate(r)
	w.Header().Set("Content-Type", contentType(c))
	w.WriteHeader(statusCode)
	if err := c.Export(a, w); err != nil {
		h.logger.Error("failed to export analysis", zap.String("id", a.ID), zap.Error(err))
	}
}

// writeServiceError maps service errors to status codes
func (h *AnalysisHandler) writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidSnapshot):
		h.writeError(w, message, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, context.DeadlineExceeded):
		h.writeError(w, message, err.Error(), http.StatusGatewayTimeout)
	default:
		h.logger.Error(message, zap.Error(err))
		h.writeError(w, message, err.Error(), http.StatusInternalServerError)
	}
}

func (h *AnalysisHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", zap.Error(err))
	}
}

func (h *AnalysisHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
