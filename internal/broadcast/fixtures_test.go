package broadcast

import (
	"net/netip"

	"l2domains/internal/domain"
)

func nip(host, iface string) domain.NodeInterfacePair {
	return domain.NewNodeInterfacePair(host, iface)
}

func physicalL3(name, addr string) *domain.Interface {
	return &domain.Interface{
		Name:      name,
		Type:      domain.InterfaceTypePhysical,
		Addresses: []netip.Prefix{netip.MustParsePrefix(addr)},
	}
}

func accessPort(name string, vlan uint32) *domain.Interface {
	return &domain.Interface{
		Name:           name,
		Type:           domain.InterfaceTypePhysical,
		Switchport:     true,
		SwitchportMode: domain.SwitchportModeAccess,
		AccessVlan:     domain.Vlan(vlan),
	}
}

func trunkPort(name string, allowed *domain.IntegerSpace, native *uint32) *domain.Interface {
	return &domain.Interface{
		Name:           name,
		Type:           domain.InterfaceTypePhysical,
		Switchport:     true,
		SwitchportMode: domain.SwitchportModeTrunk,
		AllowedVlans:   allowed,
		NativeVlan:     native,
	}
}

func device(hostname string, ifaces ...*domain.Interface) *domain.Configuration {
	c := domain.NewConfiguration(hostname)
	for _, i := range ifaces {
		c.AddInterface(i)
	}
	return c
}

func configsOf(cs ...*domain.Configuration) map[string]*domain.Configuration {
	out := make(map[string]*domain.Configuration, len(cs))
	for _, c := range cs {
		out[c.Hostname] = c
	}
	return out
}

// bidirectional returns each edge together with its reverse
func bidirectional(edges ...domain.Layer1Edge) *domain.Layer1Topology {
	var all []domain.Layer1Edge
	for _, e := range edges {
		all = append(all, e, e.Reverse())
	}
	return domain.NewLayer1Topology(all...)
}

// simple3InterfaceNetwork is three devices with one addressed port each
func simple3InterfaceNetwork() map[string]*domain.Configuration {
	return configsOf(
		device("c1", physicalL3("i1", "1.2.3.1/24")),
		device("c2", physicalL3("i2", "1.2.3.2/24")),
		device("c3", physicalL3("i3", "1.2.3.3/24")),
	)
}

func unicastVni(vni, vlan uint32, src, peer string) domain.Layer2Vni {
	return domain.Layer2Vni{
		VNI:                vni,
		VLAN:               vlan,
		SourceAddress:      netip.MustParseAddr(src),
		BumTransportMethod: domain.BumUnicastFloodGroup,
		BumTransportIPs:    []netip.Addr{netip.MustParseAddr(peer)},
		SrcVrf:             "default",
	}
}

// vxlanNetwork bridges VLANs 10 and 20 between two routers over VXLAN:
//
//	h11 <=>           <=> h21
//	    vlan10     vlan10
//	        r1 <=> r2
//	    vlan20     vlan20
//	h12 <=>           <=> h22
func vxlanNetwork() (map[string]*domain.Configuration, *domain.Layer1Topology) {
	r1 := device("r1", accessPort("r1h11", 10), accessPort("r1h12", 20), physicalL3("r1r2", "10.0.0.1/24"))
	r1.AddVrf(&domain.Vrf{Name: "default", Layer2Vnis: []domain.Layer2Vni{
		unicastVni(10010, 10, "10.0.0.1", "10.0.0.2"),
		unicastVni(10020, 20, "10.0.0.1", "10.0.0.2"),
	}})
	r2 := device("r2", accessPort("r2h21", 10), accessPort("r2h22", 20), physicalL3("r2r1", "10.0.0.2/24"))
	r2.AddVrf(&domain.Vrf{Name: "default", Layer2Vnis: []domain.Layer2Vni{
		unicastVni(10010, 10, "10.0.0.2", "10.0.0.1"),
		unicastVni(10020, 20, "10.0.0.2", "10.0.0.1"),
	}})
	configs := configsOf(
		device("h11", physicalL3("h11i", "10.0.10.1/24")),
		device("h12", physicalL3("h12i", "10.0.20.1/24")),
		device("h21", physicalL3("h21i", "10.0.10.2/24")),
		device("h22", physicalL3("h22i", "10.0.20.2/24")),
		r1, r2,
	)
	l1 := bidirectional(
		domain.NewLayer1Edge("h11", "h11i", "r1", "r1h11"),
		domain.NewLayer1Edge("h12", "h12i", "r1", "r1h12"),
		domain.NewLayer1Edge("r1", "r1r2", "r2", "r2r1"),
		domain.NewLayer1Edge("h21", "h21i", "r2", "r2h21"),
		domain.NewLayer1Edge("h22", "h22i", "r2", "r2h22"),
	)
	return configs, l1
}

func compute(configs map[string]*domain.Configuration, l1 *domain.Layer1Topology, opts ...Option) domain.BroadcastDomains {
	c := NewL3AdjacencyComputer(configs,
		domain.NewLayer1Topologies(l1, configs),
		domain.ComputeInitialVxlanTopology(configs),
		opts...)
	return c.FindAllBroadcastDomains()
}
