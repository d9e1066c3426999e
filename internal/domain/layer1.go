package domain

import (
	"maps"
	"slices"
)

// Layer1Edge is one direction of a physical cable between two interfaces
type Layer1Edge struct {
	Node1 NodeInterfacePair `json:"node1" yaml:"node1"`
	Node2 NodeInterfacePair `json:"node2" yaml:"node2"`
}

// NewLayer1Edge creates an edge between two host/interface pairs
func NewLayer1Edge(host1, iface1, host2, iface2 string) Layer1Edge {
	return Layer1Edge{
		Node1: NewNodeInterfacePair(host1, iface1),
		Node2: NewNodeInterfacePair(host2, iface2),
	}
}

// Reverse returns the edge in the opposite direction
func (e Layer1Edge) Reverse() Layer1Edge {
	return Layer1Edge{Node1: e.Node2, Node2: e.Node1}
}

// Compare orders edges by first endpoint, then second
func (e Layer1Edge) Compare(other Layer1Edge) int {
	if c := e.Node1.Compare(other.Node1); c != 0 {
		return c
	}
	return e.Node2.Compare(other.Node2)
}

// Layer1Topology is an immutable set of directed Layer-1 edges. Endpoints need
// not exist in any configuration.
type Layer1Topology struct {
	edges map[Layer1Edge]struct{}
}

// NewLayer1Topology builds a topology from edges, dropping duplicates
func NewLayer1Topology(edges ...Layer1Edge) *Layer1Topology {
	t := &Layer1Topology{edges: make(map[Layer1Edge]struct{}, len(edges))}
	for _, e := range edges {
		t.edges[e] = struct{}{}
	}
	return t
}

// EmptyLayer1Topology returns a topology with no edges
func EmptyLayer1Topology() *Layer1Topology {
	return NewLayer1Topology()
}

// Edges returns all edges in sorted order
func (t *Layer1Topology) Edges() []Layer1Edge {
	edges := slices.Collect(maps.Keys(t.edges))
	slices.SortFunc(edges, Layer1Edge.Compare)
	return edges
}

// Nodes returns every interface mentioned by any edge, in sorted order
func (t *Layer1Topology) Nodes() []NodeInterfacePair {
	seen := make(map[NodeInterfacePair]struct{}, 2*len(t.edges))
	for e := range t.edges {
		seen[e.Node1] = struct{}{}
		seen[e.Node2] = struct{}{}
	}
	nodes := slices.Collect(maps.Keys(seen))
	SortNodeInterfacePairs(nodes)
	return nodes
}

// Contains reports whether the directed edge is present
func (t *Layer1Topology) Contains(e Layer1Edge) bool {
	_, ok := t.edges[e]
	return ok
}

// Len returns the number of directed edges
func (t *Layer1Topology) Len() int {
	return len(t.edges)
}

// Layer1Topologies pairs the cabling as given with its logical view
type Layer1Topologies struct {
	// Raw is the cabling between physical ports
	Raw *Layer1Topology
	// Logical replaces channel-group members with their aggregate interface
	Logical *Layer1Topology
}

// NewLayer1Topologies derives the logical topology from the raw one. An endpoint
// that is a channel-group member whose aggregate exists on the same device is
// replaced by the aggregate. Unknown endpoints are kept unchanged.
func NewLayer1Topologies(raw *Layer1Topology, configs map[string]*Configuration) Layer1Topologies {
	if raw == nil {
		raw = EmptyLayer1Topology()
	}
	logical := make([]Layer1Edge, 0, raw.Len())
	for _, e := range raw.Edges() {
		logical = append(logical, Layer1Edge{
			Node1: logicalEndpoint(e.Node1, configs),
			Node2: logicalEndpoint(e.Node2, configs),
		})
	}
	return Layer1Topologies{Raw: raw, Logical: NewLayer1Topology(logical...)}
}

func logicalEndpoint(nip NodeInterfacePair, configs map[string]*Configuration) NodeInterfacePair {
	c := configs[nip.Hostname]
	if c == nil {
		return nip
	}
	iface := c.Interface(nip.Interface)
	if iface == nil || !iface.IsAggregated() {
		return nip
	}
	if c.Interface(iface.ChannelGroup) == nil {
		return nip
	}
	return NewNodeInterfacePair(nip.Hostname, iface.ChannelGroup)
}
