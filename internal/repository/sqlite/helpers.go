package sqlite

import (
	"time"

	"l2domains/internal/domain"
)

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the analyses table:
// 1. Add field to analysisRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update analysisColumns constant - APPEND to end
// 4. Update toDomain() and newAnalysisRow()
// 5. Update insertArgs() and the VALUES placeholder count in SaveAnalysis
// 6. Add the column to migrate() in sqlite.go
// 7. Update relevant tests
//
// CRITICAL: Column order must match between:
// - analysisColumns constant
// - scanArgs() return slice
// - insertArgs() return slice

// ============================================================================
// Analysis Row Scanner
// ============================================================================

const analysisColumns = `id, snapshot, created_at, duration_ns, devices, interfaces, hubs, vxlan_edges, domain_count`

// analysisRow holds all columns from an analysis query for scanning
type analysisRow struct {
	ID          string
	Snapshot    string
	CreatedAt   int64 // unix nanoseconds
	DurationNS  int64
	Devices     int
	Interfaces  int
	Hubs        int
	VxlanEdges  int
	DomainCount int
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match analysisColumns order exactly
func (r *analysisRow) scanArgs() []any {
	return []any{
		&r.ID,          // 1
		&r.Snapshot,    // 2
		&r.CreatedAt,   // 3
		&r.DurationNS,  // 4
		&r.Devices,     // 5
		&r.Interfaces,  // 6
		&r.Hubs,        // 7
		&r.VxlanEdges,  // 8
		&r.DomainCount, // 9
	}
}

// insertArgs returns the values for an INSERT listing analysisColumns
func (r *analysisRow) insertArgs() []any {
	return []any{
		r.ID,
		r.Snapshot,
		r.CreatedAt,
		r.DurationNS,
		r.Devices,
		r.Interfaces,
		r.Hubs,
		r.VxlanEdges,
		r.DomainCount,
	}
}

func newAnalysisRow(a *domain.Analysis) *analysisRow {
	return &analysisRow{
		ID:          a.ID,
		Snapshot:    a.Snapshot,
		CreatedAt:   a.CreatedAt.UnixNano(),
		DurationNS:  int64(a.Duration),
		Devices:     a.Devices,
		Interfaces:  a.Interfaces,
		Hubs:        a.Hubs,
		VxlanEdges:  a.VxlanEdges,
		DomainCount: a.DomainCount,
	}
}

// toDomain converts the row to a domain.Analysis without memberships
func (r *analysisRow) toDomain() *domain.Analysis {
	return &domain.Analysis{
		ID:          r.ID,
		Snapshot:    r.Snapshot,
		CreatedAt:   time.Unix(0, r.CreatedAt).UTC(),
		Duration:    time.Duration(r.DurationNS),
		Devices:     r.Devices,
		Interfaces:  r.Interfaces,
		Hubs:        r.Hubs,
		VxlanEdges:  r.VxlanEdges,
		DomainCount: r.DomainCount,
	}
}
