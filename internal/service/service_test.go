package service

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"l2domains/internal/domain"
	"l2domains/internal/metrics"
	"l2domains/internal/repository/sqlite"
)

func nip(host, iface string) domain.NodeInterfacePair {
	return domain.NewNodeInterfacePair(host, iface)
}

func routed(name, addr string) *domain.Interface {
	return &domain.Interface{
		Name:      name,
		Type:      domain.InterfaceTypePhysical,
		Addresses: []netip.Prefix{netip.MustParsePrefix(addr)},
	}
}

func access(name string, vlan uint32) *domain.Interface {
	return &domain.Interface{
		Name:           name,
		Type:           domain.InterfaceTypePhysical,
		Switchport:     true,
		SwitchportMode: domain.SwitchportModeAccess,
		AccessVlan:     domain.Vlan(vlan),
	}
}

// labSnapshot has r1 and r2 behind an access switch and r3 cabled straight to r4
func labSnapshot() *domain.Snapshot {
	s := domain.NewSnapshot("lab")
	for host, addr := range map[string]string{
		"r1": "10.0.0.1/24",
		"r2": "10.0.0.2/24",
		"r3": "10.0.1.1/31",
		"r4": "10.0.1.0/31",
	} {
		c := domain.NewConfiguration(host)
		c.AddInterface(routed("eth0", addr))
		s.AddConfiguration(c)
	}
	sw := domain.NewConfiguration("sw1")
	sw.AddInterface(access("ge1", 10))
	sw.AddInterface(access("ge2", 10))
	s.AddConfiguration(sw)

	for _, e := range []domain.Layer1Edge{
		domain.NewLayer1Edge("r1", "eth0", "sw1", "ge1"),
		domain.NewLayer1Edge("r2", "eth0", "sw1", "ge2"),
		domain.NewLayer1Edge("r3", "eth0", "r4", "eth0"),
	} {
		s.Layer1 = append(s.Layer1, e, e.Reverse())
	}
	return s
}

type fixture struct {
	svc    *AnalysisService
	events chan Event
	reg    *metrics.Registry
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	bus := NewEventBus()
	events := make(chan Event, 16)
	bus.Subscribe(events)

	reg := metrics.NewRegistry()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithMetrics(reg)}, opts...)
	return &fixture{
		svc:    NewAnalysisService(repo, bus, opts...),
		events: events,
		reg:    reg,
	}
}

func (f *fixture) nextEvent(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-f.events:
		return ev
	default:
		t.Fatal("expected an event")
		return Event{}
	}
}

func TestCompute(t *testing.T) {
	svc := NewAnalysisService(nil, nil)

	a, err := svc.Compute(context.Background(), labSnapshot())
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "lab", a.Snapshot)
	assert.Equal(t, 5, a.Devices)
	assert.Equal(t, 6, a.Interfaces)
	assert.Equal(t, 2, a.DomainCount)
	assert.Len(t, a.Domains, 4)
	assert.True(t, a.Domains.SameDomain(nip("r1", "eth0"), nip("r2", "eth0")))
	assert.True(t, a.Domains.SameDomain(nip("r3", "eth0"), nip("r4", "eth0")))
	assert.False(t, a.Domains.SameDomain(nip("r1", "eth0"), nip("r3", "eth0")))
}

func TestComputeWorkersAgree(t *testing.T) {
	seq, err := NewAnalysisService(nil, nil).Compute(context.Background(), labSnapshot())
	require.NoError(t, err)
	par, err := NewAnalysisService(nil, nil, WithWorkers(4)).Compute(context.Background(), labSnapshot())
	require.NoError(t, err)

	assert.Equal(t, seq.Domains, par.Domains)
}

func TestComputeWithHubs(t *testing.T) {
	a, hubs, err := NewAnalysisService(nil, nil).ComputeWithHubs(context.Background(), labSnapshot())
	require.NoError(t, err)
	assert.Equal(t, len(hubs), a.Hubs)
	assert.NotEmpty(t, hubs)
}

func TestComputeRejectsInvalidSnapshot(t *testing.T) {
	svc := NewAnalysisService(nil, nil)

	_, err := svc.Compute(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	s := labSnapshot()
	s.Configurations["ghost"] = domain.NewConfiguration("other")
	_, err = svc.Compute(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
}

func TestComputeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalysisService(nil, nil).Compute(ctx, labSnapshot())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzePersistsAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Analyze(ctx, labSnapshot())
	require.NoError(t, err)

	ev := f.nextEvent(t)
	assert.Equal(t, EventAnalysisCompleted, ev.Type)
	summary, ok := ev.Payload.(*domain.Analysis)
	require.True(t, ok, "payload is %T", ev.Payload)
	assert.Equal(t, a.ID, summary.ID)
	assert.Nil(t, summary.Domains)

	stored, err := f.svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Domains, stored.Domains)
	assert.Equal(t, a.CreatedAt.UnixNano(), stored.CreatedAt.UnixNano())

	domains, err := f.svc.Domains(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Domains, domains)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.reg.AnalysesTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.reg.StoredAnalyses))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.reg.StorageOperationsTotal.WithLabelValues(opSave, "success")))
}

func TestAnalyzeFailurePublishes(t *testing.T) {
	f := newFixture(t)

	s := labSnapshot()
	s.Layer1 = append(s.Layer1, domain.Layer1Edge{Node1: nip("r1", "eth0")})
	_, err := f.svc.Analyze(context.Background(), s)
	require.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	ev := f.nextEvent(t)
	assert.Equal(t, EventAnalysisFailed, ev.Type)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.reg.AnalysesTotal.WithLabelValues("error")))

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReanalyze(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Analyze(ctx, labSnapshot())
	require.NoError(t, err)
	f.nextEvent(t)

	second, err := f.svc.Reanalyze(ctx, first.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Domains, second.Domains)

	_, err = f.svc.Reanalyze(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Analyze(ctx, labSnapshot())
	require.NoError(t, err)
	f.nextEvent(t)

	require.NoError(t, f.svc.Delete(ctx, a.ID))
	ev := f.nextEvent(t)
	assert.Equal(t, EventAnalysisDeleted, ev.Type)
	assert.Equal(t, map[string]string{"id": a.ID}, ev.Payload)

	_, err = f.svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, a.ID), domain.ErrNotFound)
	assert.Equal(t, float64(0), testutil.ToFloat64(f.reg.StoredAnalyses))
}

func TestDeterministicIDsAndClock(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }
	f.svc.newID = func() string { return "run-1" }

	a, err := f.svc.Analyze(context.Background(), labSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "run-1", a.ID)
	assert.Equal(t, fixed, a.CreatedAt)
	assert.Zero(t, a.Duration)
}

func TestServiceWithoutRepository(t *testing.T) {
	svc := NewAnalysisService(nil, nil)

	_, err := svc.Analyze(context.Background(), labSnapshot())
	assert.Error(t, err)
	_, err = svc.List(context.Background())
	assert.Error(t, err)
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	fast := make(chan Event, 1)
	full := make(chan Event)
	bus.Subscribe(fast)
	bus.Subscribe(full)

	// A subscriber that cannot receive does not block others
	bus.Publish(Event{Type: EventAnalysisDeleted})
	assert.Equal(t, EventAnalysisDeleted, (<-fast).Type)

	bus.Unsubscribe(fast)
	bus.Publish(Event{Type: EventAnalysisCompleted})
	select {
	case ev := <-fast:
		t.Fatalf("unsubscribed channel received %v", ev)
	default:
	}

	var nilBus *EventBus
	nilBus.Publish(Event{Type: EventAnalysisFailed})
}

func TestErrorsWrapNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Domains(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
