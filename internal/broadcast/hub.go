package broadcast

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"l2domains/internal/domain"
)

// GlobalHubID names the hub joining every physical interface that no Layer-1
// edge mentions. Without cabling data those ports are assumed to share one
// medium.
const GlobalHubID = "Batfish Global Ethernet Hub"

// L1Hub is a shared Ethernet medium and the physical interfaces attached to it
type L1Hub struct {
	ID      string                     `json:"id" yaml:"id"`
	Members []domain.NodeInterfacePair `json:"members" yaml:"members"`
}

// PhysicalInterfaces returns every interface modelled as a physical port, sorted
func PhysicalInterfaces(configs map[string]*domain.Configuration, logger *zap.Logger) []domain.NodeInterfacePair {
	if logger == nil {
		logger = zap.NewNop()
	}
	var out []domain.NodeInterfacePair
	for _, hostname := range slices.Sorted(maps.Keys(configs)) {
		c := configs[hostname]
		for _, name := range c.InterfaceNames() {
			iface := c.Interfaces[name]
			nip := domain.NewNodeInterfacePair(hostname, name)
			switch {
			case !iface.Type.IsPhysical():
				logger.Debug("not creating physical interface: not a physical interface", zap.Stringer("interface", nip))
			case iface.IsAggregated():
				logger.Debug("not creating physical interface: member of an aggregate", zap.Stringer("interface", nip))
			case !iface.Active():
				logger.Debug("not creating physical interface: not active", zap.Stringer("interface", nip))
			default:
				out = append(out, nip)
			}
		}
	}
	return out
}

// ComputeL1Hubs groups physical interfaces into shared media using the logical
// Layer-1 topology.
//
// Interfaces connected by edges whose endpoints both exist share a hub named
// after the smallest member. An interface mentioned only by dangling edges gets
// a hub of its own. Interfaces never mentioned join GlobalHubID.
func ComputeL1Hubs(configs map[string]*domain.Configuration, layer1 *domain.Layer1Topology, logger *zap.Logger) map[string]*L1Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if layer1 == nil {
		layer1 = domain.EmptyLayer1Topology()
	}
	physical := PhysicalInterfaces(configs, logger)
	known := make(map[domain.NodeInterfacePair]bool, len(physical))
	for _, nip := range physical {
		known[nip] = true
	}
	mentioned := make(map[domain.NodeInterfacePair]bool)
	for _, nip := range layer1.Nodes() {
		mentioned[nip] = true
	}

	hubs := make(map[string]*L1Hub)

	var global []domain.NodeInterfacePair
	for _, nip := range physical {
		if !mentioned[nip] {
			global = append(global, nip)
		}
	}
	if len(global) == 0 {
		logger.Debug("not creating a global hub: all physical interfaces have L1 edges")
	} else {
		logger.Debug("creating a global hub", zap.Int("interfaces", len(global)))
		hubs[GlobalHubID] = &L1Hub{ID: GlobalHubID, Members: global}
	}

	var attached []domain.NodeInterfacePair
	for _, nip := range physical {
		if mentioned[nip] {
			attached = append(attached, nip)
		}
	}
	if len(attached) == 0 {
		logger.Debug("no physical interface is mentioned in L1, so only the global hub exists")
	} else {
		clusters := newUnionFind(attached)
		for _, e := range layer1.Edges() {
			// Only apply edges where both interfaces exist.
			if known[e.Node1] && known[e.Node2] {
				clusters.union(e.Node1, e.Node2)
			}
		}
		groups := make(map[domain.NodeInterfacePair][]domain.NodeInterfacePair)
		for _, nip := range attached {
			root := clusters.find(nip)
			groups[root] = append(groups[root], nip)
		}
		for _, members := range groups {
			// attached is sorted, so members[0] is the smallest.
			id := "Hub for " + members[0].String()
			hubs[id] = &L1Hub{ID: id, Members: members}
		}
	}

	warnPartialL2Cabling(configs, global, layer1.Nodes(), logger)
	return hubs
}

// SortedHubs returns hubs ordered by id
func SortedHubs(hubs map[string]*L1Hub) []*L1Hub {
	out := make([]*L1Hub, 0, len(hubs))
	for _, id := range slices.Sorted(maps.Keys(hubs)) {
		out = append(out, hubs[id])
	}
	return out
}

func warnPartialL2Cabling(configs map[string]*domain.Configuration, global, mentioned []domain.NodeInterfacePair, logger *zap.Logger) {
	isSwitchport := func(nip domain.NodeInterfacePair) bool {
		c := configs[nip.Hostname]
		if c == nil {
			return false
		}
		iface := c.Interface(nip.Interface)
		return iface != nil && iface.Switchport
	}
	var l2Global []domain.NodeInterfacePair
	for _, nip := range global {
		if isSwitchport(nip) {
			l2Global = append(l2Global, nip)
		}
	}
	l2Mentioned := 0
	for _, nip := range mentioned {
		if isSwitchport(nip) {
			l2Mentioned++
		}
	}
	if len(l2Global) > 0 && l2Mentioned > 0 {
		logger.Warn("some L2 interfaces are mentioned in L1 but not all",
			zap.Int("mentioned", l2Mentioned),
			zap.Int("unmentioned", len(l2Global)),
			zap.Stringers("unmentioned_interfaces", l2Global))
	}
}
