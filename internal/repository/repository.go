package repository

import (
	"context"

	"l2domains/internal/domain"
)

// Repository defines the interface for analysis persistence
type Repository interface {
	// Write operations
	SaveAnalysis(ctx context.Context, a *domain.Analysis, snapshot *domain.Snapshot) error
	DeleteAnalysis(ctx context.Context, id string) error

	// Read operations; missing analyses yield domain.ErrNotFound
	GetAnalysis(ctx context.Context, id string) (*domain.Analysis, error)
	GetDomains(ctx context.Context, id string) (domain.BroadcastDomains, error)
	GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error)
	ListAnalyses(ctx context.Context) ([]*domain.Analysis, error)
	CountAnalyses(ctx context.Context) (int, error)

	// Close releases resources
	Close() error
}
