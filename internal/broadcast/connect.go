package broadcast

import "l2domains/internal/domain"

// Each helper below wires one kind of attachment as a forward/reverse pair.

func (g *Graph) connectToHub(hub NodeID, members ...NodeID) {
	for _, m := range members {
		g.connect(m, hub, EdgeL1ToHub, Identity(), EdgeHubToL1, Identity())
	}
}

// connectAccess attaches a port in access mode: untagged frames enter VLAN vlan,
// and leave untagged.
func (g *Graph) connectAccess(phys, l2, bd NodeID, vlan uint32) {
	g.upper[phys] = true
	g.connect(phys, l2,
		EdgeL1ToL2, Compose(FilterByOuterTag(domain.EmptySpace, true), AssignVlanFromOuterTag(domain.Vlan(vlan))),
		EdgeL2ToPhysical, ClearVlanID())
	g.connect(l2, bd,
		EdgeL2ToBridgeDomain, Identity(),
		EdgeBridgeDomainToL2, FilterByVlanID(domain.IntegerSpaceOf(vlan)))
}

// connectTrunk attaches a trunk port. Tagged frames in allowed keep their VLAN;
// untagged frames join the native VLAN when it is allowed.
func (g *Graph) connectTrunk(phys, l2, bd NodeID, allowed domain.IntegerSpace, native *uint32) {
	g.upper[phys] = true
	nativeAllowed := native != nil && allowed.Contains(*native)
	g.connect(phys, l2,
		EdgeL1ToL2, Compose(FilterByOuterTag(allowed, nativeAllowed), AssignVlanFromOuterTag(native)),
		EdgeL2ToPhysical, Compose(PushVlanID(native), ClearVlanID()))
	g.connect(l2, bd,
		EdgeL2ToBridgeDomain, Identity(),
		EdgeBridgeDomainToL2, FilterByVlanID(allowed))
}

// connectUnawareBridgePort attaches a port to a VLAN-unaware bridge, which
// forwards frames with their tags unchanged.
func (g *Graph) connectUnawareBridgePort(phys, l2, bd NodeID) {
	g.upper[phys] = true
	g.connect(phys, l2, EdgeL1ToL2, Identity(), EdgeL2ToPhysical, Identity())
	g.connect(l2, bd, EdgeL2ToBridgeDomain, Identity(), EdgeBridgeDomainToL2, Identity())
}

// connectL3Untagged attaches a routed interface sending and accepting untagged frames
func (g *Graph) connectL3Untagged(l3, phys NodeID) {
	g.upper[phys] = true
	g.connect(phys, l3,
		EdgeL1ToL3, FilterByOuterTag(domain.EmptySpace, true),
		EdgeNonBridgedL3ToPhysical, Identity())
}

// connectL3Dot1q attaches a routed (sub-)interface using 802.1Q encapsulation
func (g *Graph) connectL3Dot1q(l3, phys NodeID, tag uint32) {
	g.upper[phys] = true
	g.connect(phys, l3,
		EdgeL1ToL3, Compose(FilterByOuterTag(domain.IntegerSpaceOf(tag), false), PopTag(1)),
		EdgeNonBridgedL3ToPhysical, PushTag(tag))
}

// connectIRB attaches an IRB interface to the VLAN-aware bridge domain in vlan
func (g *Graph) connectIRB(l3, bd NodeID, vlan uint32) {
	g.connect(bd, l3,
		EdgeBridgeDomainToL3, Compose(FilterByVlanID(domain.IntegerSpaceOf(vlan)), ClearVlanID()),
		EdgeBridgedL3ToBridgeDomain, SetVlanID(vlan))
}

// connectBridgeInterface attaches a routed bridge interface to its VLAN-unaware
// bridge; it only exchanges untagged frames.
func (g *Graph) connectBridgeInterface(l3, bd NodeID) {
	g.connect(bd, l3,
		EdgeBridgeDomainToL3, FilterByOuterTag(domain.EmptySpace, true),
		EdgeBridgedL3ToBridgeDomain, Identity())
}

// connectL2Vni maps a local VLAN to a Layer-2 VNI
func (g *Graph) connectL2Vni(bd, vni NodeID, vlan uint32) {
	g.connect(bd, vni,
		EdgeBridgeDomainToL2Vni, Compose(FilterByVlanID(domain.IntegerSpaceOf(vlan)), ClearVlanID()),
		EdgeL2VniToBridgeDomain, SetVlanID(vlan))
}

func (g *Graph) connectVxlanPeers(a, b NodeID) {
	g.connect(a, b, EdgeL2VniToL2Vni, Identity(), EdgeL2VniToL2Vni, Identity())
}
