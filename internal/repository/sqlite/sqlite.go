package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"l2domains/internal/codec"
	"l2domains/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dbPath, ":memory:") {
		// Every connection to :memory: opens a separate database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		snapshot TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		devices INTEGER NOT NULL,
		interfaces INTEGER NOT NULL,
		hubs INTEGER NOT NULL,
		vxlan_edges INTEGER NOT NULL,
		domain_count INTEGER NOT NULL,
		snapshot_data JSON
	);

	CREATE TABLE IF NOT EXISTS domain_members (
		analysis_id TEXT NOT NULL,
		hostname TEXT NOT NULL,
		interface TEXT NOT NULL,
		domain_id INTEGER NOT NULL,
		PRIMARY KEY (analysis_id, hostname, interface),
		FOREIGN KEY (analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
	CREATE INDEX IF NOT EXISTS idx_domain_members_domain ON domain_members(analysis_id, domain_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveAnalysis stores an analysis, its memberships and its input snapshot in
// one transaction. Saving an existing id replaces it.
func (r *Repository) SaveAnalysis(ctx context.Context, a *domain.Analysis, snapshot *domain.Snapshot) error {
	if a.ID == "" {
		return fmt.Errorf("analysis has no id")
	}

	var snapshotData sql.NullString
	if snapshot != nil {
		var buf bytes.Buffer
		if err := codec.NewJSONCodec().ExportSnapshot(snapshot, &buf); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		snapshotData = sql.NullString{String: buf.String(), Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM domain_members WHERE analysis_id = ?`, a.ID); err != nil {
		return fmt.Errorf("failed to clear memberships: %w", err)
	}

	row := newAnalysisRow(a)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO analyses (`+analysisColumns+`, snapshot_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			snapshot = excluded.snapshot,
			created_at = excluded.created_at,
			duration_ns = excluded.duration_ns,
			devices = excluded.devices,
			interfaces = excluded.interfaces,
			hubs = excluded.hubs,
			vxlan_edges = excluded.vxlan_edges,
			domain_count = excluded.domain_count,
			snapshot_data = excluded.snapshot_data
	`, append(row.insertArgs(), snapshotData)...)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO domain_members (analysis_id, hostname, interface, domain_id)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare membership insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range a.Domains.Memberships() {
		if _, err := stmt.ExecContext(ctx, a.ID, m.Interface.Hostname, m.Interface.Interface, m.Domain); err != nil {
			return fmt.Errorf("failed to insert membership %s: %w", m.Interface, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetAnalysis loads an analysis including its domains
func (r *Repository) GetAnalysis(ctx context.Context, id string) (*domain.Analysis, error) {
	var row analysisRow
	err := r.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id).
		Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}

	a := row.toDomain()
	if a.Domains, err = r.loadDomains(ctx, id); err != nil {
		return nil, err
	}
	return a, nil
}

// GetDomains loads only the domain memberships of an analysis
func (r *Repository) GetDomains(ctx context.Context, id string) (domain.BroadcastDomains, error) {
	if err := r.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	return r.loadDomains(ctx, id)
}

func (r *Repository) loadDomains(ctx context.Context, id string) (domain.BroadcastDomains, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT hostname, interface, domain_id
		FROM domain_members
		WHERE analysis_id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	var memberships []domain.DomainMembership
	for rows.Next() {
		var hostname, iface string
		var domainID int
		if err := rows.Scan(&hostname, &iface, &domainID); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, domain.DomainMembership{
			Interface: domain.NewNodeInterfacePair(hostname, iface),
			Domain:    domainID,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}

	return domain.BroadcastDomainsFromMemberships(memberships), nil
}

// GetSnapshot loads the snapshot an analysis was computed from
func (r *Repository) GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	var data sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT snapshot_data FROM analyses WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	if !data.Valid {
		return nil, fmt.Errorf("analysis %s has no stored snapshot: %w", id, domain.ErrNotFound)
	}

	s, err := codec.NewJSONCodec().Parse(strings.NewReader(data.String))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}

// ListAnalyses returns all analyses newest first, without domain memberships
func (r *Repository) ListAnalyses(ctx context.Context) ([]*domain.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+analysisColumns+`
		FROM analyses
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	analyses := []*domain.Analysis{}
	for rows.Next() {
		var row analysisRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return analyses, nil
}

// CountAnalyses returns the number of stored analyses
func (r *Repository) CountAnalyses(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return n, nil
}

// DeleteAnalysis removes an analysis and its memberships
func (r *Repository) DeleteAnalysis(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM domain_members WHERE analysis_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) ensureExists(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM analyses WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query analysis: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
