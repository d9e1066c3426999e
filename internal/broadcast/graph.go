package broadcast

import (
	"l2domains/internal/domain"
)

type bridgeKey struct {
	hostname string
	bridge   string
}

// Graph is the heterogeneous broadcast graph of one snapshot. Nodes live in an
// arena indexed by NodeID; the lookup maps index them by what they model.
type Graph struct {
	nodes []*Node

	physical  map[domain.NodeInterfacePair]NodeID
	l2        map[domain.NodeInterfacePair]NodeID
	l3        map[domain.NodeInterfacePair]NodeID
	hubs      map[string]NodeID
	bridges   map[bridgeKey]NodeID
	vnis      map[domain.VxlanNode]NodeID
	edgeCount int

	// upper marks L1 interfaces that carry an L2 or L3 node
	upper map[NodeID]bool
}

func newGraph() *Graph {
	return &Graph{
		physical: make(map[domain.NodeInterfacePair]NodeID),
		l2:       make(map[domain.NodeInterfacePair]NodeID),
		l3:       make(map[domain.NodeInterfacePair]NodeID),
		hubs:     make(map[string]NodeID),
		bridges:  make(map[bridgeKey]NodeID),
		vnis:     make(map[domain.VxlanNode]NodeID),
		upper:    make(map[NodeID]bool),
	}
}

// Node returns the node with the given id
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges after deduplication
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// CountByKind returns the number of nodes of each kind
func (g *Graph) CountByKind() map[NodeKind]int {
	counts := make(map[NodeKind]int)
	for _, n := range g.nodes {
		counts[n.Kind]++
	}
	return counts
}

// PhysicalInterface returns the L1 node of an interface
func (g *Graph) PhysicalInterface(nip domain.NodeInterfacePair) (NodeID, bool) {
	id, ok := g.physical[nip]
	return id, ok
}

// L3Interface returns the L3 node of an interface
func (g *Graph) L3Interface(nip domain.NodeInterfacePair) (NodeID, bool) {
	id, ok := g.l3[nip]
	return id, ok
}

// Hub returns the hub node with the given id
func (g *Graph) Hub(hubID string) (NodeID, bool) {
	id, ok := g.hubs[hubID]
	return id, ok
}

// IsLayer3Relevant reports whether a node is an endpoint of broadcast domains:
// an L3 node, or an L1 interface with nothing stacked on it.
func (g *Graph) IsLayer3Relevant(id NodeID) bool {
	n := g.nodes[id]
	switch n.Kind {
	case KindL3:
		return true
	case KindL1Interface:
		if g.upper[id] {
			return false
		}
		_, hasL3 := g.l3[n.Interface]
		return !hasL3
	}
	return false
}

// Layer3Relevant returns the relevant nodes keyed by interface. When an
// interface has both an L1 and an L3 node, the L3 node wins.
func (g *Graph) Layer3Relevant() map[domain.NodeInterfacePair]NodeID {
	out := make(map[domain.NodeInterfacePair]NodeID, len(g.l3)+len(g.physical))
	for nip, id := range g.physical {
		if g.IsLayer3Relevant(id) {
			out[nip] = id
		}
	}
	for nip, id := range g.l3 {
		out[nip] = id
	}
	return out
}

func (g *Graph) add(n *Node) NodeID {
	n.ID = NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return n.ID
}

func (g *Graph) addPhysical(nip domain.NodeInterfacePair) NodeID {
	if id, ok := g.physical[nip]; ok {
		return id
	}
	id := g.add(&Node{Kind: KindL1Interface, Hostname: nip.Hostname, Interface: nip})
	g.physical[nip] = id
	return id
}

func (g *Graph) addHub(hubID string) NodeID {
	if id, ok := g.hubs[hubID]; ok {
		return id
	}
	id := g.add(&Node{Kind: KindL1Hub, HubID: hubID})
	g.hubs[hubID] = id
	return id
}

func (g *Graph) addL2(nip domain.NodeInterfacePair) NodeID {
	if id, ok := g.l2[nip]; ok {
		return id
	}
	id := g.add(&Node{Kind: KindL2, Hostname: nip.Hostname, Interface: nip})
	g.l2[nip] = id
	return id
}

func (g *Graph) addL3(nip domain.NodeInterfacePair, bridged bool) NodeID {
	if id, ok := g.l3[nip]; ok {
		return id
	}
	id := g.add(&Node{Kind: KindL3, Hostname: nip.Hostname, Interface: nip, Bridged: bridged})
	g.l3[nip] = id
	return id
}

// bridgeDomain returns a device's VLAN-aware bridge domain when bridge is
// empty, otherwise the named VLAN-unaware bridge, creating it on first use.
func (g *Graph) bridgeDomain(hostname, bridge string) NodeID {
	key := bridgeKey{hostname: hostname, bridge: bridge}
	if id, ok := g.bridges[key]; ok {
		return id
	}
	id := g.add(&Node{Kind: KindBridgeDomain, Hostname: hostname, Bridge: bridge})
	g.bridges[key] = id
	return id
}

func (g *Graph) addL2Vni(vn domain.VxlanNode) NodeID {
	if id, ok := g.vnis[vn]; ok {
		return id
	}
	id := g.add(&Node{Kind: KindL2Vni, Hostname: vn.Hostname, VNI: vn.VNI})
	g.vnis[vn] = id
	return id
}

// addEdge adds a typed edge unless an equal one already exists
func (g *Graph) addEdge(kind EdgeKind, from, to NodeID, fn Function) {
	src, dst := g.nodes[from], g.nodes[to]
	checkEdge(kind, src, dst, fn)
	for _, e := range src.out {
		if e.Kind == kind && e.To == to && Equal(e.Fn, fn) {
			return
		}
	}
	src.out = append(src.out, Edge{Kind: kind, To: to, Fn: fn})
	g.edgeCount++
}

// connect adds a forward/reverse edge pair
func (g *Graph) connect(a, b NodeID, forward EdgeKind, fwd Function, reverse EdgeKind, rev Function) {
	g.addEdge(forward, a, b, fwd)
	g.addEdge(reverse, b, a, rev)
}
