package broadcast

import (
	"context"
	"fmt"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"l2domains/internal/domain"
)

func TestE2eSimpleNetwork(t *testing.T) {
	n1, n2, n3 := nip("c1", "i1"), nip("c2", "i2"), nip("c3", "i3")

	t.Run("no L1 puts everything in one domain", func(t *testing.T) {
		domains := compute(simple3InterfaceNetwork(), nil)
		require.Len(t, domains, 3)
		assert.Equal(t, 1, domains.Count())
	})

	t.Run("L1 splits connected from unconnected", func(t *testing.T) {
		domains := compute(simple3InterfaceNetwork(), domain.NewLayer1Topology(domain.NewLayer1Edge("c1", "i1", "c3", "i3")))
		require.Len(t, domains, 3)
		assert.True(t, domains.SameDomain(n1, n3))
		assert.False(t, domains.SameDomain(n1, n2))
	})

	t.Run("dangling edge isolates its interface", func(t *testing.T) {
		domains := compute(simple3InterfaceNetwork(),
			domain.NewLayer1Topology(domain.NewLayer1Edge("c1", "i1", "no-such-host", "no-such-iface")))
		require.Len(t, domains, 3)
		assert.True(t, domains.SameDomain(n2, n3))
		assert.False(t, domains.SameDomain(n1, n2))
	})

	t.Run("encapsulation vlan isolates even without L1", func(t *testing.T) {
		configs := simple3InterfaceNetwork()
		configs["c1"].Interface("i1").EncapsulationVlan = domain.Vlan(4)
		domains := compute(configs, nil)
		require.Len(t, domains, 3)
		assert.True(t, domains.SameDomain(n2, n3))
		assert.False(t, domains.SameDomain(n1, n2))
	})
}

func TestE2eDomainIDsAreSequential(t *testing.T) {
	domains := compute(simple3InterfaceNetwork(),
		domain.NewLayer1Topology(domain.NewLayer1Edge("c1", "i1", "c3", "i3")))
	want := domain.BroadcastDomains{
		nip("c1", "i1"): 1,
		nip("c3", "i3"): 1,
		nip("c2", "i2"): 2,
	}
	if diff := cmp.Diff(want, domains); diff != "" {
		t.Errorf("domains mismatch (-want +got):\n%s", diff)
	}
}

func TestE2eVxlan(t *testing.T) {
	configs, l1 := vxlanNetwork()
	domains := compute(configs, l1, WithLogger(zaptest.NewLogger(t)))

	assert.True(t, domains.SameDomain(nip("h11", "h11i"), nip("h21", "h21i")))
	assert.True(t, domains.SameDomain(nip("h12", "h12i"), nip("h22", "h22i")))
	assert.False(t, domains.SameDomain(nip("h11", "h11i"), nip("h22", "h22i")))
	assert.True(t, domains.SameDomain(nip("r1", "r1r2"), nip("r2", "r2r1")))
	assert.False(t, domains.SameDomain(nip("r1", "r1r2"), nip("h11", "h11i")))
}

func TestE2eVxlanWithoutOverlay(t *testing.T) {
	configs, l1 := vxlanNetwork()
	c := NewL3AdjacencyComputer(configs, domain.NewLayer1Topologies(l1, configs), domain.EmptyVxlanTopology())
	domains := c.FindAllBroadcastDomains()

	assert.False(t, domains.SameDomain(nip("h11", "h11i"), nip("h21", "h21i")))
}

// trunkNetwork connects a router to a switch over a trunk. The router's
// untagged address rides the native VLAN 30; its subinterface uses VLAN 10.
func trunkNetwork() (map[string]*domain.Configuration, *domain.Layer1Topology) {
	allowed := domain.IntegerSpaceOf(10, 30)
	sw := device("sw",
		accessPort("p1", 10),
		accessPort("p2", 30),
		accessPort("p3", 20),
		trunkPort("t1", &allowed, domain.Vlan(30)),
	)
	r := device("r",
		physicalL3("e0", "10.0.30.254/24"),
		&domain.Interface{
			Name:              "e0.10",
			Type:              domain.InterfaceTypeLogical,
			Addresses:         []netip.Prefix{netip.MustParsePrefix("10.0.10.254/24")},
			EncapsulationVlan: domain.Vlan(10),
			Dependencies:      []domain.Dependency{{Interface: "e0", Type: domain.DependencyBind}},
		},
	)
	configs := configsOf(sw, r,
		device("h10", physicalL3("eth0", "10.0.10.1/24")),
		device("h20", physicalL3("eth0", "10.0.20.1/24")),
		device("h30", physicalL3("eth0", "10.0.30.1/24")),
	)
	l1 := bidirectional(
		domain.NewLayer1Edge("h10", "eth0", "sw", "p1"),
		domain.NewLayer1Edge("h30", "eth0", "sw", "p2"),
		domain.NewLayer1Edge("h20", "eth0", "sw", "p3"),
		domain.NewLayer1Edge("r", "e0", "sw", "t1"),
	)
	return configs, l1
}

func TestE2eTrunkAndAccess(t *testing.T) {
	configs, l1 := trunkNetwork()
	domains := compute(configs, l1)

	assert.True(t, domains.SameDomain(nip("r", "e0"), nip("h30", "eth0")), "native vlan is untagged")
	assert.True(t, domains.SameDomain(nip("r", "e0.10"), nip("h10", "eth0")), "tagged subinterface")
	assert.False(t, domains.SameDomain(nip("r", "e0"), nip("r", "e0.10")))
	assert.False(t, domains.SameDomain(nip("h20", "eth0"), nip("h10", "eth0")), "vlan 20 is not allowed on the trunk")
	assert.Equal(t, 3, domains.Count())
	assert.NotContains(t, domains, nip("sw", "p1"), "switchports are not layer-3 relevant")
}

func TestE2eTrunkBetweenSwitches(t *testing.T) {
	allowed := domain.IntegerSpaceOf(10)
	configs := configsOf(
		device("sw1", accessPort("p1", 10), accessPort("p2", 20), trunkPort("t", &allowed, nil)),
		device("sw2", accessPort("q1", 10), accessPort("q2", 20), trunkPort("t", nil, domain.Vlan(1))),
		device("a", physicalL3("eth0", "10.0.10.1/24")),
		device("b", physicalL3("eth0", "10.0.20.1/24")),
		device("c", physicalL3("eth0", "10.0.10.2/24")),
		device("d", physicalL3("eth0", "10.0.20.2/24")),
	)
	l1 := bidirectional(
		domain.NewLayer1Edge("a", "eth0", "sw1", "p1"),
		domain.NewLayer1Edge("b", "eth0", "sw1", "p2"),
		domain.NewLayer1Edge("c", "eth0", "sw2", "q1"),
		domain.NewLayer1Edge("d", "eth0", "sw2", "q2"),
		domain.NewLayer1Edge("sw1", "t", "sw2", "t"),
	)
	domains := compute(configs, l1)

	assert.True(t, domains.SameDomain(nip("a", "eth0"), nip("c", "eth0")))
	assert.False(t, domains.SameDomain(nip("b", "eth0"), nip("d", "eth0")))
}

func TestE2eIRB(t *testing.T) {
	configs := configsOf(
		device("sw",
			accessPort("p1", 10),
			&domain.Interface{
				Name:      "Vlan10",
				Type:      domain.InterfaceTypeVlan,
				Vlan:      domain.Vlan(10),
				Addresses: []netip.Prefix{netip.MustParsePrefix("10.0.10.254/24")},
			},
			&domain.Interface{
				Name:      "Vlan20",
				Type:      domain.InterfaceTypeVlan,
				Vlan:      domain.Vlan(20),
				Addresses: []netip.Prefix{netip.MustParsePrefix("10.0.20.254/24")},
			},
		),
		device("h", physicalL3("eth0", "10.0.10.1/24")),
	)
	domains := compute(configs, bidirectional(domain.NewLayer1Edge("h", "eth0", "sw", "p1")))

	assert.True(t, domains.SameDomain(nip("sw", "Vlan10"), nip("h", "eth0")))
	assert.False(t, domains.SameDomain(nip("sw", "Vlan20"), nip("h", "eth0")))
}

func TestE2eVlanUnawareBridge(t *testing.T) {
	bridgePort := func(name string) *domain.Interface {
		return &domain.Interface{Name: name, Type: domain.InterfaceTypePhysical, Switchport: true, Bridge: "br0"}
	}
	host := func(hostname, addr, tagged string) *domain.Configuration {
		return device(hostname,
			physicalL3("eth0", addr),
			&domain.Interface{
				Name:              "eth0.5",
				Type:              domain.InterfaceTypeLogical,
				Addresses:         []netip.Prefix{netip.MustParsePrefix(tagged)},
				EncapsulationVlan: domain.Vlan(5),
				Dependencies:      []domain.Dependency{{Interface: "eth0", Type: domain.DependencyBind}},
			},
		)
	}
	configs := configsOf(
		device("lx",
			bridgePort("e1"),
			bridgePort("e2"),
			&domain.Interface{
				Name:      "br0",
				Type:      domain.InterfaceTypeBridge,
				Addresses: []netip.Prefix{netip.MustParsePrefix("192.168.1.1/24")},
			},
		),
		host("h1", "192.168.1.2/24", "192.168.5.2/24"),
		host("h2", "192.168.1.3/24", "192.168.5.3/24"),
	)
	l1 := bidirectional(
		domain.NewLayer1Edge("h1", "eth0", "lx", "e1"),
		domain.NewLayer1Edge("h2", "eth0", "lx", "e2"),
	)
	domains := compute(configs, l1)

	assert.True(t, domains.SameDomain(nip("h1", "eth0"), nip("h2", "eth0")))
	assert.True(t, domains.SameDomain(nip("h1", "eth0"), nip("lx", "br0")))
	assert.True(t, domains.SameDomain(nip("h1", "eth0.5"), nip("h2", "eth0.5")), "tags cross a VLAN-unaware bridge")
	assert.False(t, domains.SameDomain(nip("lx", "br0"), nip("h1", "eth0.5")), "bridge interface is untagged only")
}

func TestE2eBareL1InterfacesAreRelevant(t *testing.T) {
	configs := simple3InterfaceNetwork()
	configs["c4"] = device("c4", &domain.Interface{Name: "e0", Type: domain.InterfaceTypePhysical})

	c := NewL3AdjacencyComputer(configs, domain.NewLayer1Topologies(nil, configs), nil)
	domains := c.FindAllBroadcastDomains()

	assert.Contains(t, c.Layer3RelevantInterfaces(), nip("c4", "e0"))
	assert.True(t, domains.SameDomain(nip("c4", "e0"), nip("c1", "i1")))
}

func TestE2eUnconnectedL3GetsOwnDomain(t *testing.T) {
	configs := simple3InterfaceNetwork()
	configs["c1"].AddInterface(&domain.Interface{
		Name:      "tun0",
		Type:      domain.InterfaceTypeTunnel,
		Addresses: []netip.Prefix{netip.MustParsePrefix("172.16.0.1/30")},
	})
	configs["c1"].AddInterface(&domain.Interface{
		Name:      "Loopback0",
		Type:      domain.InterfaceTypeLoopback,
		Addresses: []netip.Prefix{netip.MustParsePrefix("1.1.1.1/32")},
	})
	domains := compute(configs, nil)

	require.Contains(t, domains, nip("c1", "tun0"))
	assert.NotContains(t, domains, nip("c1", "Loopback0"))
	assert.False(t, domains.SameDomain(nip("c1", "tun0"), nip("c1", "i1")))
	assert.Equal(t, 2, domains.Count())
}

// ringNetwork trunks three switches in a loop, each with a host in VLAN 10
func ringNetwork() (map[string]*domain.Configuration, *domain.Layer1Topology) {
	var cs []*domain.Configuration
	var edges []domain.Layer1Edge
	names := []string{"s1", "s2", "s3"}
	for i, sw := range names {
		cs = append(cs,
			device(sw, accessPort("host", 10), trunkPort("left", nil, domain.Vlan(1)), trunkPort("right", nil, domain.Vlan(1))),
			device("h"+sw, physicalL3("eth0", "10.0.10.1/24")),
		)
		edges = append(edges,
			domain.NewLayer1Edge("h"+sw, "eth0", sw, "host"),
			domain.NewLayer1Edge(sw, "right", names[(i+1)%len(names)], "left"),
		)
	}
	// A port cabled to itself.
	cs = append(cs, device("loop", physicalL3("self", "10.9.9.9/24")))
	edges = append(edges, domain.NewLayer1Edge("loop", "self", "loop", "self"))
	return configsOf(cs...), bidirectional(edges...)
}

func TestSearchTerminatesOnLoops(t *testing.T) {
	configs, l1 := ringNetwork()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := NewL3AdjacencyComputer(configs, domain.NewLayer1Topologies(l1, configs), nil)
	domains, err := c.FindAllBroadcastDomainsContext(ctx)
	require.NoError(t, err)

	assert.True(t, domains.SameDomain(nip("hs1", "eth0"), nip("hs2", "eth0")))
	assert.True(t, domains.SameDomain(nip("hs1", "eth0"), nip("hs3", "eth0")))
	assert.False(t, domains.SameDomain(nip("hs1", "eth0"), nip("loop", "self")))
}

func TestParallelMatchesSequential(t *testing.T) {
	fixtures := map[string]func() (map[string]*domain.Configuration, *domain.Layer1Topology){
		"vxlan": vxlanNetwork,
		"trunk": trunkNetwork,
		"ring":  ringNetwork,
	}
	for name, fixture := range fixtures {
		t.Run(name, func(t *testing.T) {
			configs, l1 := fixture()
			topologies := domain.NewLayer1Topologies(l1, configs)
			vxlan := domain.ComputeInitialVxlanTopology(configs)

			sequential := NewL3AdjacencyComputer(configs, topologies, vxlan).FindAllBroadcastDomains()
			parallel, err := NewL3AdjacencyComputer(configs, topologies, vxlan, WithWorkers(4)).
				FindAllBroadcastDomainsContext(context.Background())
			require.NoError(t, err)

			if diff := cmp.Diff(sequential, parallel); diff != "" {
				t.Errorf("parallel result differs (-sequential +parallel):\n%s", diff)
			}
		})
	}
}

func TestFindAllBroadcastDomainsContextCancelled(t *testing.T) {
	configs, l1 := vxlanNetwork()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		c := NewL3AdjacencyComputer(configs, domain.NewLayer1Topologies(l1, configs), nil, WithWorkers(workers))
		_, err := c.FindAllBroadcastDomainsContext(ctx)
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}

func TestFindBroadcastDomain(t *testing.T) {
	configs, l1 := vxlanNetwork()
	c := NewL3AdjacencyComputer(configs, domain.NewLayer1Topologies(l1, configs), domain.ComputeInitialVxlanTopology(configs))

	assert.Equal(t,
		[]domain.NodeInterfacePair{nip("h11", "h11i"), nip("h21", "h21i")},
		c.FindBroadcastDomain(nip("h11", "h11i")))
	assert.Nil(t, c.FindBroadcastDomain(nip("r1", "r1h11")))
}

type recordingObserver struct {
	mu       sync.Mutex
	nodes    map[NodeKind]int
	edges    int
	searches int
}

func (o *recordingObserver) ObserveGraph(nodes map[NodeKind]int, edges int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nodes, o.edges = nodes, edges
}

func (o *recordingObserver) ObserveSearch(int, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.searches++
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	domains := compute(simple3InterfaceNetwork(), nil, WithObserver(obs))

	assert.Equal(t, 1, domains.Count())
	assert.Equal(t, 3, obs.nodes[KindL1Interface])
	assert.Equal(t, 1, obs.nodes[KindL1Hub])
	assert.Equal(t, 3, obs.nodes[KindL3])
	// 3 hub pairs plus 3 L1/L3 pairs
	assert.Equal(t, 12, obs.edges)
	assert.Equal(t, 1, obs.searches, "one search covers the single domain")
}

func TestParallelSearchesEachDomainOnce(t *testing.T) {
	const hosts, workers = 200, 4
	var cs []*domain.Configuration
	for i := range hosts {
		cs = append(cs, device(fmt.Sprintf("h%03d", i), physicalL3("eth0", fmt.Sprintf("10.0.%d.%d/16", i/250, i%250+1))))
	}
	configs := configsOf(cs...)

	obs := &recordingObserver{}
	c := NewL3AdjacencyComputer(configs, domain.NewLayer1Topologies(nil, configs), nil,
		WithWorkers(workers), WithObserver(obs))
	domains, err := c.FindAllBroadcastDomainsContext(context.Background())
	require.NoError(t, err)

	assert.Len(t, domains, hosts)
	assert.Equal(t, 1, domains.Count())
	assert.Equal(t, 1, domains[nip("h000", "eth0")])
	// Only searches already running when the first one finishes can overlap it.
	assert.LessOrEqual(t, obs.searches, workers)
}

func TestE2eUnwiredSwitchportsAreNotEndpoints(t *testing.T) {
	noVlan := accessPort("e0", 1)
	noVlan.AccessVlan = nil
	noBridge := &domain.Interface{
		Name:           "e0",
		Type:           domain.InterfaceTypePhysical,
		Switchport:     true,
		SwitchportMode: domain.SwitchportModeNone,
	}
	configs := simple3InterfaceNetwork()
	configs["sw1"] = device("sw1", noVlan)
	configs["sw2"] = device("sw2", noBridge)

	c := NewL3AdjacencyComputer(configs, domain.NewLayer1Topologies(nil, configs), nil, WithLogger(zaptest.NewLogger(t)))
	domains := c.FindAllBroadcastDomains()

	assert.Equal(t, []domain.NodeInterfacePair{nip("c1", "i1"), nip("c2", "i2"), nip("c3", "i3")}, c.Layer3RelevantInterfaces())
	assert.NotContains(t, domains, nip("sw1", "e0"))
	assert.NotContains(t, domains, nip("sw2", "e0"))
	assert.Equal(t, 1, domains.Count())
}
