package watcher

import (
	"context"

	"go.uber.org/zap"

	"l2domains/internal/domain"
	"l2domains/internal/loader"
	"l2domains/internal/metrics"
)

// Analyzer is the part of service.AnalysisService a reload needs
type Analyzer interface {
	Analyze(ctx context.Context, snapshot *domain.Snapshot) (*domain.Analysis, error)
}

// Reloader loads a snapshot from disk and analyzes it
type Reloader struct {
	Path     string
	Analyzer Analyzer
	Metrics  *metrics.Registry
	Logger   *zap.Logger
}

// Reload loads and analyzes the snapshot once
func (r *Reloader) Reload(ctx context.Context) (*domain.Analysis, error) {
	a, err := r.reload(ctx)
	if r.Metrics != nil {
		r.Metrics.RecordSnapshotReload(err)
	}
	return a, err
}

func (r *Reloader) reload(ctx context.Context) (*domain.Analysis, error) {
	snapshot, err := loader.Load(r.Path)
	if err != nil {
		return nil, err
	}
	return r.Analyzer.Analyze(ctx, snapshot)
}

// OnChange adapts Reload to a Watcher callback, logging the outcome
func (r *Reloader) OnChange(ctx context.Context) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	a, err := r.Reload(ctx)
	if err != nil {
		logger.Error("snapshot reload failed", zap.String("path", r.Path), zap.Error(err))
		return
	}
	logger.Info("snapshot reloaded",
		zap.String("path", r.Path),
		zap.String("analysis", a.ID),
		zap.Int("domains", a.DomainCount))
}
