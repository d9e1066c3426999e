package domain

import (
	"cmp"
	"maps"
	"net/netip"
	"slices"
	"strings"
)

// VniLayer distinguishes bridged (Layer-2) from routed (Layer-3) VNIs
type VniLayer string

const (
	VniLayer2 VniLayer = "LAYER_2"
	VniLayer3 VniLayer = "LAYER_3"
)

// VxlanNode is one VNI on one device
type VxlanNode struct {
	Hostname string   `json:"hostname" yaml:"hostname"`
	VNI      uint32   `json:"vni" yaml:"vni"`
	Layer    VniLayer `json:"layer" yaml:"layer"`
}

// Compare orders nodes by hostname, VNI, then layer
func (n VxlanNode) Compare(other VxlanNode) int {
	if c := strings.Compare(n.Hostname, other.Hostname); c != 0 {
		return c
	}
	if c := cmp.Compare(n.VNI, other.VNI); c != 0 {
		return c
	}
	return strings.Compare(string(n.Layer), string(other.Layer))
}

// VxlanEdge is an undirected adjacency between two VTEPs sharing a VNI
type VxlanEdge struct {
	Node1 VxlanNode `json:"node1" yaml:"node1"`
	Node2 VxlanNode `json:"node2" yaml:"node2"`
}

// canonical orders the endpoints so an edge and its reverse compare equal
func (e VxlanEdge) canonical() VxlanEdge {
	if e.Node2.Compare(e.Node1) < 0 {
		return VxlanEdge{Node1: e.Node2, Node2: e.Node1}
	}
	return e
}

// VxlanTopology is an immutable set of undirected VNI adjacencies
type VxlanTopology struct {
	edges map[VxlanEdge]struct{}
}

// NewVxlanTopology builds a topology from edges given in either direction
func NewVxlanTopology(edges ...VxlanEdge) *VxlanTopology {
	t := &VxlanTopology{edges: make(map[VxlanEdge]struct{}, len(edges))}
	for _, e := range edges {
		t.edges[e.canonical()] = struct{}{}
	}
	return t
}

// EmptyVxlanTopology returns a topology with no edges
func EmptyVxlanTopology() *VxlanTopology {
	return NewVxlanTopology()
}

// Edges returns every edge once, endpoints ordered, in sorted order
func (t *VxlanTopology) Edges() []VxlanEdge {
	edges := slices.Collect(maps.Keys(t.edges))
	slices.SortFunc(edges, func(a, b VxlanEdge) int {
		if c := a.Node1.Compare(b.Node1); c != 0 {
			return c
		}
		return a.Node2.Compare(b.Node2)
	})
	return edges
}

// Layer2Edges returns only the edges between Layer-2 VNIs
func (t *VxlanTopology) Layer2Edges() []VxlanEdge {
	var out []VxlanEdge
	for _, e := range t.Edges() {
		if e.Node1.Layer == VniLayer2 && e.Node2.Layer == VniLayer2 {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of undirected edges
func (t *VxlanTopology) Len() int {
	return len(t.edges)
}

type vtep struct {
	hostname string
	settings Layer2Vni
}

// ComputeInitialVxlanTopology derives adjacencies from the VNI settings alone,
// without considering whether VTEP addresses are reachable. Two Layer-2 VNIs
// are adjacent when they share a VNI, live on different devices, agree on BUM
// transport method and UDP port, and either list each other's source address in
// their unicast flood lists or use the same multicast group.
func ComputeInitialVxlanTopology(configs map[string]*Configuration) *VxlanTopology {
	byVni := make(map[uint32][]vtep)
	for _, hostname := range slices.Sorted(maps.Keys(configs)) {
		c := configs[hostname]
		for _, vrfName := range c.VrfNames() {
			for _, vni := range c.Vrfs[vrfName].Layer2Vnis {
				byVni[vni.VNI] = append(byVni[vni.VNI], vtep{hostname: hostname, settings: vni})
			}
		}
	}

	var edges []VxlanEdge
	for vni, vteps := range byVni {
		for i := range vteps {
			for j := i + 1; j < len(vteps); j++ {
				a, b := vteps[i], vteps[j]
				if a.hostname == b.hostname || !vnisCompatible(a.settings, b.settings) {
					continue
				}
				edges = append(edges, VxlanEdge{
					Node1: VxlanNode{Hostname: a.hostname, VNI: vni, Layer: VniLayer2},
					Node2: VxlanNode{Hostname: b.hostname, VNI: vni, Layer: VniLayer2},
				})
			}
		}
	}
	return NewVxlanTopology(edges...)
}

func vnisCompatible(a, b Layer2Vni) bool {
	if a.BumTransportMethod != b.BumTransportMethod || a.Port() != b.Port() {
		return false
	}
	switch a.BumTransportMethod {
	case BumUnicastFloodGroup:
		if !a.SourceAddress.IsValid() || !b.SourceAddress.IsValid() {
			return false
		}
		return slices.Contains(a.BumTransportIPs, b.SourceAddress) &&
			slices.Contains(b.BumTransportIPs, a.SourceAddress)
	case BumMulticastGroup:
		return len(a.BumTransportIPs) > 0 && sameAddrSet(a.BumTransportIPs, b.BumTransportIPs)
	}
	return false
}

func sameAddrSet(a, b []netip.Addr) bool {
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.SortFunc(as, netip.Addr.Compare)
	slices.SortFunc(bs, netip.Addr.Compare)
	return slices.Equal(slices.Compact(as), slices.Compact(bs))
}
