package broadcast

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"l2domains/internal/domain"
)

// builder assembles a Graph from one snapshot's inputs
type builder struct {
	configs map[string]*domain.Configuration
	logger  *zap.Logger
	g       *Graph
}

// BuildGraph constructs the broadcast graph: physical ports and hubs, Layer-2
// ports and bridge domains, Layer-2 VNIs and their overlay peers, and Layer-3
// interfaces. It never fails; inconsistent inputs are logged and left out.
func BuildGraph(configs map[string]*domain.Configuration, layer1 domain.Layer1Topologies, vxlan *domain.VxlanTopology, logger *zap.Logger) (*Graph, map[string]*L1Hub) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if vxlan == nil {
		vxlan = domain.EmptyVxlanTopology()
	}
	b := &builder{configs: configs, logger: logger, g: newGraph()}

	for _, nip := range PhysicalInterfaces(configs, logger) {
		b.g.addPhysical(nip)
	}
	hubs := ComputeL1Hubs(configs, layer1.Logical, logger)
	for _, hub := range SortedHubs(hubs) {
		hubID := b.g.addHub(hub.ID)
		members := make([]NodeID, 0, len(hub.Members))
		for _, nip := range hub.Members {
			members = append(members, b.g.physical[nip])
		}
		b.g.connectToHub(hubID, members...)
	}

	for _, hostname := range slices.Sorted(maps.Keys(configs)) {
		c := configs[hostname]
		for _, name := range c.InterfaceNames() {
			b.connectL2Interface(c, c.Interfaces[name])
		}
	}

	b.addL2Vnis(vxlan)

	for _, hostname := range slices.Sorted(maps.Keys(configs)) {
		c := configs[hostname]
		for _, name := range c.InterfaceNames() {
			b.addL3Interface(c, c.Interfaces[name])
		}
	}

	return b.g, hubs
}

// correspondingPhysical finds the L1 node carrying i: its own, or its BIND parent's
func (b *builder) correspondingPhysical(c *domain.Configuration, i *domain.Interface) (NodeID, domain.NodeInterfacePair, bool) {
	nip := domain.NewNodeInterfacePair(c.Hostname, i.Name)
	if id, ok := b.g.physical[nip]; ok {
		return id, nip, true
	}
	parent, ok := i.BindParent()
	if !ok {
		b.logger.Debug("no corresponding physical interface", zap.Stringer("interface", nip))
		return 0, nip, false
	}
	parentNip := domain.NewNodeInterfacePair(c.Hostname, parent)
	if c.Interface(parent) == nil {
		b.logger.Warn("subinterface parent is missing, skipping",
			zap.Stringer("interface", nip), zap.Stringer("parent", parentNip))
		return 0, parentNip, false
	}
	id, ok := b.g.physical[parentNip]
	if !ok {
		b.logger.Debug("subinterface parent has no physical interface",
			zap.Stringer("interface", nip), zap.Stringer("parent", parentNip))
		return 0, parentNip, false
	}
	return id, parentNip, true
}

func (b *builder) connectL2Interface(c *domain.Configuration, i *domain.Interface) {
	nip := domain.NewNodeInterfacePair(c.Hostname, i.Name)
	if !i.Switchport {
		b.logger.Debug("skipping non-L2 interface: switchport is not set", zap.Stringer("interface", nip))
		return
	}
	phys, physNip, ok := b.correspondingPhysical(c, i)
	if !ok {
		return
	}
	// A switched port is never a bare endpoint, even when its wiring is skipped below.
	b.g.upper[phys] = true
	if physNip != nip {
		// Multiple L2 subinterfaces of one port all share the port.
		b.logger.Warn("faking L2 connection for subinterface to its parent",
			zap.Stringer("interface", nip), zap.Stringer("parent", physNip))
	}

	switch i.Mode() {
	case domain.SwitchportModeAccess:
		if i.AccessVlan == nil {
			b.logger.Warn("skipping L2 connection: access mode vlan is missing", zap.Stringer("interface", nip))
			return
		}
		b.g.connectAccess(phys, b.g.addL2(nip), b.g.bridgeDomain(c.Hostname, ""), *i.AccessVlan)
	case domain.SwitchportModeTrunk:
		allowed := domain.AllIntegers
		if i.AllowedVlans != nil {
			allowed = *i.AllowedVlans
		}
		b.g.connectTrunk(phys, b.g.addL2(nip), b.g.bridgeDomain(c.Hostname, ""), allowed, i.NativeVlan)
	case domain.SwitchportModeNone:
		if i.Bridge == "" {
			b.logger.Warn("surprised by L2 interface with no mode and no bridge: unsure how to connect",
				zap.Stringer("interface", nip))
			return
		}
		b.g.connectUnawareBridgePort(phys, b.g.addL2(nip), b.g.bridgeDomain(c.Hostname, i.Bridge))
	default:
		b.logger.Warn("surprised by L2 interface: unsure how to connect",
			zap.Stringer("interface", nip), zap.String("mode", string(i.Mode())))
	}
}

func (b *builder) addL2Vnis(vxlan *domain.VxlanTopology) {
	for _, hostname := range slices.Sorted(maps.Keys(b.configs)) {
		c := b.configs[hostname]
		for _, vrfName := range c.VrfNames() {
			for _, settings := range c.Vrfs[vrfName].Layer2Vnis {
				vn := domain.VxlanNode{Hostname: hostname, VNI: settings.VNI, Layer: domain.VniLayer2}
				if _, dup := b.g.vnis[vn]; dup {
					b.logger.Warn("duplicate layer-2 VNI on device, keeping the first",
						zap.String("hostname", hostname), zap.Uint32("vni", settings.VNI))
					continue
				}
				vni := b.g.addL2Vni(vn)
				b.g.connectL2Vni(b.g.bridgeDomain(hostname, ""), vni, settings.VLAN)
			}
		}
	}

	for _, e := range vxlan.Layer2Edges() {
		a, okA := b.g.vnis[e.Node1]
		z, okZ := b.g.vnis[e.Node2]
		if !okA || !okZ {
			b.logger.Debug("skipping VXLAN edge with an unknown endpoint",
				zap.String("node1", e.Node1.Hostname), zap.String("node2", e.Node2.Hostname),
				zap.Uint32("vni", e.Node1.VNI))
			continue
		}
		b.g.connectVxlanPeers(a, z)
	}
}

func (b *builder) shouldCreateL3(nip domain.NodeInterfacePair, i *domain.Interface) bool {
	switch {
	case len(i.Addresses) == 0:
		b.logger.Debug("not creating L3 interface: no addresses", zap.Stringer("interface", nip))
	case !i.Active():
		b.logger.Debug("not creating L3 interface: not active", zap.Stringer("interface", nip))
	case i.Type == domain.InterfaceTypeLoopback:
		b.logger.Debug("skipping L3 interface: loopback", zap.Stringer("interface", nip))
	case i.Switchport:
		b.logger.Warn("skipping L3 interface: has switchport set to true", zap.Stringer("interface", nip))
	default:
		return true
	}
	return false
}

func (b *builder) addL3Interface(c *domain.Configuration, i *domain.Interface) {
	nip := domain.NewNodeInterfacePair(c.Hostname, i.Name)
	if !b.shouldCreateL3(nip, i) {
		return
	}
	bridged := i.Type == domain.InterfaceTypeVlan || i.Type == domain.InterfaceTypeBridge
	l3 := b.g.addL3(nip, bridged)

	if i.Type.IsPhysical() {
		phys, ok := b.g.physical[nip]
		if !ok {
			b.logger.Warn("L3 interface: surprised not to find physical interface, skipping", zap.Stringer("interface", nip))
			return
		}
		b.connectRouted(l3, phys, nip, nip, i.EncapsulationVlan)
		return
	}

	if parent, ok := i.BindParent(); ok {
		parentNip := domain.NewNodeInterfacePair(c.Hostname, parent)
		if c.Interface(parent) == nil {
			b.logger.Warn("not connecting L3 interface to parent: parent not found",
				zap.Stringer("interface", nip), zap.Stringer("parent", parentNip))
			return
		}
		phys, ok := b.g.physical[parentNip]
		if !ok {
			b.logger.Warn("not connecting L3 interface to parent: physical interface not found",
				zap.Stringer("interface", nip), zap.Stringer("parent", parentNip))
			return
		}
		b.connectRouted(l3, phys, nip, parentNip, i.EncapsulationVlan)
		return
	}

	switch i.Type {
	case domain.InterfaceTypeTunnel:
		// Tunnels do not use Layer-2 adjacency.
	case domain.InterfaceTypeVlan:
		if i.Vlan == nil {
			b.logger.Warn("not connecting L3 interface: surprised vlan is not set", zap.Stringer("interface", nip))
			return
		}
		b.logger.Debug("connecting IRB interface to bridge domain",
			zap.Stringer("interface", nip), zap.Uint32("vlan", *i.Vlan))
		b.g.connectIRB(l3, b.g.bridgeDomain(c.Hostname, ""), *i.Vlan)
	case domain.InterfaceTypeBridge:
		bridge := i.BridgeName()
		b.logger.Debug("connecting bridge interface to VLAN-unaware bridge",
			zap.Stringer("interface", nip), zap.String("bridge", bridge))
		b.g.connectBridgeInterface(l3, b.g.bridgeDomain(c.Hostname, bridge))
	default:
		b.logger.Warn("surprised by L3 interface: unsure how to connect",
			zap.Stringer("interface", nip), zap.String("type", string(i.Type)))
	}
}

func (b *builder) connectRouted(l3, phys NodeID, nip, physNip domain.NodeInterfacePair, encap *uint32) {
	if encap == nil {
		b.logger.Debug("L3 interface connected to physical interface untagged",
			zap.Stringer("interface", nip), zap.Stringer("physical", physNip))
		b.g.connectL3Untagged(l3, phys)
		return
	}
	b.logger.Debug("L3 interface connected to physical interface with encapsulation",
		zap.Stringer("interface", nip), zap.Stringer("physical", physNip), zap.Uint32("vlan", *encap))
	b.g.connectL3Dot1q(l3, phys, *encap)
}
