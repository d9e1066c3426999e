package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"l2domains/internal/broadcast"
	"l2domains/internal/domain"
	"l2domains/internal/metrics"
	"l2domains/internal/repository"
)

// Storage operation names used as metric labels
const (
	opSave   = "save_analysis"
	opGet    = "get_analysis"
	opList   = "list_analyses"
	opDelete = "delete_analysis"
	opCount  = "count_analyses"
)

// Option configures an AnalysisService
type Option func(*AnalysisService)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *AnalysisService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records computations and storage calls in reg
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *AnalysisService) {
		s.metrics = reg
	}
}

// WithWorkers sets how many searches run concurrently per computation
func WithWorkers(n int) Option {
	return func(s *AnalysisService) {
		s.workers = n
	}
}

// WithTimeout bounds each computation. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(s *AnalysisService) {
		s.timeout = d
	}
}

// AnalysisService provides business logic for broadcast-domain analyses
type AnalysisService struct {
	repo     repository.Repository
	eventBus *EventBus
	logger   *zap.Logger
	metrics  *metrics.Registry
	workers  int
	timeout  time.Duration

	now   func() time.Time
	newID func() string
}

// NewAnalysisService creates a new analysis service. repo and eventBus may be
// nil for a service that only calls Compute.
func NewAnalysisService(repo repository.Repository, eventBus *EventBus, opts ...Option) *AnalysisService {
	s := &AnalysisService{
		repo:     repo,
		eventBus: eventBus,
		logger:   zap.NewNop(),
		workers:  1,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute validates a snapshot and computes its broadcast domains without
// storing anything. The returned analysis has an id but is not persisted.
func (s *AnalysisService) Compute(ctx context.Context, snapshot *domain.Snapshot) (*domain.Analysis, error) {
	a, _, err := s.compute(ctx, snapshot)
	return a, err
}

// ComputeWithHubs is Compute that also returns the inferred Layer-1 hubs
func (s *AnalysisService) ComputeWithHubs(ctx context.Context, snapshot *domain.Snapshot) (*domain.Analysis, []*broadcast.L1Hub, error) {
	a, computer, err := s.compute(ctx, snapshot)
	if err != nil {
		return nil, nil, err
	}
	return a, broadcast.SortedHubs(computer.Hubs()), nil
}

func (s *AnalysisService) compute(ctx context.Context, snapshot *domain.Snapshot) (*domain.Analysis, *broadcast.L3AdjacencyComputer, error) {
	if snapshot == nil {
		return nil, nil, fmt.Errorf("%w: no snapshot", domain.ErrInvalidSnapshot)
	}
	snapshot.Normalize()
	if err := snapshot.Validate(); err != nil {
		s.recordAnalysis(nil, 0, err)
		return nil, nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	opts := []broadcast.Option{
		broadcast.WithLogger(s.logger.Named("broadcast")),
		broadcast.WithWorkers(s.workers),
	}
	if s.metrics != nil {
		opts = append(opts, broadcast.WithObserver(s.metrics))
	}

	start := s.now()
	vxlan := snapshot.VxlanTopology()
	computer := broadcast.NewL3AdjacencyComputer(snapshot.Configurations, snapshot.Layer1Topologies(), vxlan, opts...)
	domains, err := computer.FindAllBroadcastDomainsContext(ctx)
	elapsed := s.now().Sub(start)
	s.recordAnalysis(domains, elapsed, err)
	if err != nil {
		return nil, nil, fmt.Errorf("compute broadcast domains for %s: %w", snapshot.Name, err)
	}

	a := &domain.Analysis{
		ID:          s.newID(),
		Snapshot:    snapshot.Name,
		CreatedAt:   start.UTC(),
		Duration:    elapsed,
		Devices:     len(snapshot.Configurations),
		Interfaces:  snapshot.InterfaceCount(),
		Hubs:        len(computer.Hubs()),
		VxlanEdges:  vxlan.Len(),
		DomainCount: domains.Count(),
		Domains:     domains,
	}
	return a, computer, nil
}

// Analyze computes broadcast domains for a snapshot and stores the result
func (s *AnalysisService) Analyze(ctx context.Context, snapshot *domain.Snapshot) (*domain.Analysis, error) {
	a, err := s.Compute(ctx, snapshot)
	if err != nil {
		name := ""
		if snapshot != nil {
			name = snapshot.Name
		}
		s.logger.Warn("analysis failed", zap.String("snapshot", name), zap.Error(err))
		s.eventBus.Publish(Event{
			Type:    EventAnalysisFailed,
			Payload: map[string]string{"snapshot": name, "error": err.Error()},
		})
		return nil, err
	}

	if err := s.track(opSave, func() error {
		return s.repo.SaveAnalysis(ctx, a, snapshot)
	}); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}
	s.refreshStored(ctx)

	s.logger.Info("analysis completed",
		zap.String("id", a.ID),
		zap.String("snapshot", a.Snapshot),
		zap.Int("devices", a.Devices),
		zap.Int("domains", a.DomainCount),
		zap.Duration("duration", a.Duration))

	s.eventBus.Publish(Event{
		Type:    EventAnalysisCompleted,
		Payload: a.Summary(),
	})

	return a, nil
}

// Reanalyze recomputes a stored analysis from its stored snapshot and stores
// the result as a new analysis.
func (s *AnalysisService) Reanalyze(ctx context.Context, id string) (*domain.Analysis, error) {
	snapshot, err := s.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, snapshot)
}

// Get retrieves a stored analysis including its domains
func (s *AnalysisService) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	var a *domain.Analysis
	err := s.track(opGet, func() (err error) {
		a, err = s.repo.GetAnalysis(ctx, id)
		return err
	})
	return a, err
}

// Domains retrieves only the domain memberships of a stored analysis
func (s *AnalysisService) Domains(ctx context.Context, id string) (domain.BroadcastDomains, error) {
	var d domain.BroadcastDomains
	err := s.track(opGet, func() (err error) {
		d, err = s.repo.GetDomains(ctx, id)
		return err
	})
	return d, err
}

// Snapshot retrieves the input a stored analysis was computed from
func (s *AnalysisService) Snapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := s.track(opGet, func() (err error) {
		snap, err = s.repo.GetSnapshot(ctx, id)
		return err
	})
	return snap, err
}

// List returns stored analyses newest first, without domains
func (s *AnalysisService) List(ctx context.Context) ([]*domain.Analysis, error) {
	var list []*domain.Analysis
	err := s.track(opList, func() (err error) {
		list, err = s.repo.ListAnalyses(ctx)
		return err
	})
	return list, err
}

// Delete removes a stored analysis
func (s *AnalysisService) Delete(ctx context.Context, id string) error {
	if err := s.track(opDelete, func() error {
		return s.repo.DeleteAnalysis(ctx, id)
	}); err != nil {
		return err
	}
	s.refreshStored(ctx)

	s.eventBus.Publish(Event{
		Type:    EventAnalysisDeleted,
		Payload: map[string]string{"id": id},
	})
	return nil
}

// track times a repository call and records it
func (s *AnalysisService) track(op string, fn func() error) error {
	if s.repo == nil {
		return fmt.Errorf("%s: no repository configured", op)
	}
	start := time.Now()
	err := fn()
	if s.metrics != nil {
		s.metrics.RecordStorageOperation(op, time.Since(start), err)
	}
	return err
}

func (s *AnalysisService) refreshStored(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	var n int
	if err := s.track(opCount, func() (err error) {
		n, err = s.repo.CountAnalyses(ctx)
		return err
	}); err != nil {
		s.logger.Warn("failed to count analyses", zap.Error(err))
		return
	}
	s.metrics.SetStoredAnalyses(n)
}

func (s *AnalysisService) recordAnalysis(domains domain.BroadcastDomains, d time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAnalysis(domains.Count(), len(domains), d, err)
}
