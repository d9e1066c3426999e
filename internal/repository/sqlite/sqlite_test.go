package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"l2domains/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// assertNotFound fails the test unless err wraps domain.ErrNotFound
func assertNotFound(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func nip(host, iface string) domain.NodeInterfacePair {
	return domain.NewNodeInterfacePair(host, iface)
}

func testAnalysis(id string, created time.Time) *domain.Analysis {
	domains := domain.BroadcastDomains{
		nip("r1", "eth0"): 1,
		nip("r2", "eth0"): 1,
		nip("r3", "eth1"): 2,
	}
	return &domain.Analysis{
		ID:          id,
		Snapshot:    "lab",
		CreatedAt:   created,
		Duration:    1500 * time.Microsecond,
		Devices:     3,
		Interfaces:  7,
		Hubs:        1,
		VxlanEdges:  0,
		DomainCount: domains.Count(),
		Domains:     domains,
	}
}

func testSnapshot() *domain.Snapshot {
	s := domain.NewSnapshot("lab")
	r1 := domain.NewConfiguration("r1")
	r1.AddInterface(&domain.Interface{Name: "eth0", Type: domain.InterfaceTypePhysical})
	s.AddConfiguration(r1)
	r2 := domain.NewConfiguration("r2")
	r2.AddInterface(&domain.Interface{Name: "eth0", Type: domain.InterfaceTypePhysical})
	s.AddConfiguration(r2)
	s.Layer1 = []domain.Layer1Edge{domain.NewLayer1Edge("r1", "eth0", "r2", "eth0")}
	return s
}

// ============================================================================
// Analysis Tests
// ============================================================================

func TestSaveAndGetAnalysis(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := testAnalysis("a-1", created)
	assertNoError(t, repo.SaveAnalysis(ctx, a, testSnapshot()))

	got, err := repo.GetAnalysis(ctx, "a-1")
	assertNoError(t, err)

	assertEqual(t, "lab", got.Snapshot)
	assertEqual(t, created, got.CreatedAt)
	assertEqual(t, 1500*time.Microsecond, got.Duration)
	assertEqual(t, 3, got.Devices)
	assertEqual(t, 7, got.Interfaces)
	assertEqual(t, 2, got.DomainCount)
	assertEqual(t, a.Domains, got.Domains)
}

func TestGetAnalysisNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetAnalysis(context.Background(), "missing")
	assertNotFound(t, err)

	_, err = repo.GetDomains(context.Background(), "missing")
	assertNotFound(t, err)

	_, err = repo.GetSnapshot(context.Background(), "missing")
	assertNotFound(t, err)
}

func TestSaveAnalysisRequiresID(t *testing.T) {
	repo := newTestRepo(t)

	a := testAnalysis("", time.Now())
	if err := repo.SaveAnalysis(context.Background(), a, nil); err == nil {
		t.Fatal("expected error for analysis without id")
	}
}

func TestSaveAnalysisReplacesMemberships(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := testAnalysis("a-1", time.Now().UTC())
	assertNoError(t, repo.SaveAnalysis(ctx, a, nil))

	a.Domains = domain.BroadcastDomains{nip("r9", "eth9"): 1}
	a.DomainCount = 1
	assertNoError(t, repo.SaveAnalysis(ctx, a, nil))

	domains, err := repo.GetDomains(ctx, "a-1")
	assertNoError(t, err)
	assertEqual(t, a.Domains, domains)

	n, err := repo.CountAnalyses(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, n)
}

func TestGetDomainsEmptyResult(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := testAnalysis("empty", time.Now().UTC())
	a.Domains = domain.BroadcastDomains{}
	a.DomainCount = 0
	assertNoError(t, repo.SaveAnalysis(ctx, a, nil))

	domains, err := repo.GetDomains(ctx, "empty")
	assertNoError(t, err)
	assertEqual(t, 0, len(domains))
}

func TestGetSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.SaveAnalysis(ctx, testAnalysis("a-1", time.Now().UTC()), testSnapshot()))

	s, err := repo.GetSnapshot(ctx, "a-1")
	assertNoError(t, err)
	assertEqual(t, "lab", s.Name)
	assertEqual(t, []string{"r1", "r2"}, s.Hostnames())
	// Stored cables come back in both directions
	assertEqual(t, 2, len(s.Layer1))

	// Analyses saved without their input report the snapshot as missing
	assertNoError(t, repo.SaveAnalysis(ctx, testAnalysis("a-2", time.Now().UTC()), nil))
	_, err = repo.GetSnapshot(ctx, "a-2")
	assertNotFound(t, err)
}

func TestListAnalyses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.ListAnalyses(ctx)
	assertNoError(t, err)
	assertEqual(t, 0, len(list))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assertNoError(t, repo.SaveAnalysis(ctx, testAnalysis("old", base), nil))
	assertNoError(t, repo.SaveAnalysis(ctx, testAnalysis("new", base.Add(time.Hour)), nil))

	list, err = repo.ListAnalyses(ctx)
	assertNoError(t, err)
	assertEqual(t, 2, len(list))
	assertEqual(t, "new", list[0].ID)
	assertEqual(t, "old", list[1].ID)

	// Listings carry summaries only
	if list[0].Domains != nil {
		t.Errorf("expected listing without domains, got %v", list[0].Domains)
	}
	assertEqual(t, 2, list[0].DomainCount)
}

func TestDeleteAnalysis(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.SaveAnalysis(ctx, testAnalysis("a-1", time.Now().UTC()), testSnapshot()))
	assertNoError(t, repo.DeleteAnalysis(ctx, "a-1"))

	_, err := repo.GetAnalysis(ctx, "a-1")
	assertNotFound(t, err)

	var members int
	assertNoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM domain_members`).Scan(&members))
	assertEqual(t, 0, members)

	assertNotFound(t, repo.DeleteAnalysis(ctx, "a-1"))
}

func TestFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l2domains.db")
	ctx := context.Background()

	repo, err := New(path)
	assertNoError(t, err)
	assertNoError(t, repo.SaveAnalysis(ctx, testAnalysis("a-1", time.Now().UTC()), nil))
	assertNoError(t, repo.Close())

	reopened, err := New(path)
	assertNoError(t, err)
	defer reopened.Close()

	n, err := reopened.CountAnalyses(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, n)
}
