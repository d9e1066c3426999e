package broadcast

import "fmt"

// EdgeKind is a typed relation between two node kinds. Each kind accepts only
// the function variants that make sense for a frame crossing it.
type EdgeKind uint8

const (
	EdgeL1ToHub EdgeKind = iota
	EdgeHubToL1
	EdgeL1ToL2
	EdgeL2ToPhysical
	EdgeL1ToL3
	EdgeNonBridgedL3ToPhysical
	EdgeL2ToBridgeDomain
	EdgeBridgeDomainToL2
	EdgeBridgeDomainToL3
	EdgeBridgedL3ToBridgeDomain
	EdgeBridgeDomainToL2Vni
	EdgeL2VniToBridgeDomain
	EdgeL2VniToL2Vni
)

type edgeRule struct {
	name    string
	from    NodeKind
	to      NodeKind
	allowed Variant
}

var edgeRules = map[EdgeKind]edgeRule{
	EdgeL1ToHub: {"L1ToHub", KindL1Interface, KindL1Hub, VariantIdentity},
	EdgeHubToL1: {"HubToL1", KindL1Hub, KindL1Interface, VariantIdentity},
	EdgeL1ToL2: {"L1ToL2", KindL1Interface, KindL2,
		VariantIdentity | VariantFilterByOuterTag | VariantAssignVlanFromOuterTag},
	EdgeL2ToPhysical: {"L2ToPhysical", KindL2, KindL1Interface,
		VariantIdentity | VariantClearVlanID | VariantPushVlanID},
	EdgeL1ToL3: {"L1ToL3", KindL1Interface, KindL3,
		VariantIdentity | VariantFilterByOuterTag | VariantPopTag},
	EdgeNonBridgedL3ToPhysical: {"NonBridgedL3ToPhysical", KindL3, KindL1Interface,
		VariantIdentity | VariantPushTag},
	EdgeL2ToBridgeDomain: {"L2ToBridgeDomain", KindL2, KindBridgeDomain,
		VariantIdentity | VariantTranslateVlan},
	EdgeBridgeDomainToL2: {"BridgeDomainToL2", KindBridgeDomain, KindL2,
		VariantIdentity | VariantFilterByVlanID | VariantTranslateVlan},
	EdgeBridgeDomainToL3: {"BridgeDomainToL3", KindBridgeDomain, KindL3,
		VariantIdentity | VariantFilterByVlanID | VariantClearVlanID | VariantFilterByOuterTag},
	EdgeBridgedL3ToBridgeDomain: {"BridgedL3ToBridgeDomain", KindL3, KindBridgeDomain,
		VariantIdentity | VariantSetVlanID},
	EdgeBridgeDomainToL2Vni: {"BridgeDomainToL2Vni", KindBridgeDomain, KindL2Vni,
		VariantIdentity | VariantFilterByVlanID | VariantClearVlanID},
	EdgeL2VniToBridgeDomain: {"L2VniToBridgeDomain", KindL2Vni, KindBridgeDomain,
		VariantIdentity | VariantSetVlanID},
	EdgeL2VniToL2Vni: {"L2VniToL2Vni", KindL2Vni, KindL2Vni, VariantIdentity},
}

func (k EdgeKind) String() string {
	if r, ok := edgeRules[k]; ok {
		return r.name
	}
	return fmt.Sprintf("EdgeKind(%d)", uint8(k))
}

// Allowed returns the function variants this kind accepts
func (k EdgeKind) Allowed() Variant {
	return edgeRules[k].allowed
}

// Edge is a directed, typed connection carrying one function
type Edge struct {
	Kind EdgeKind
	To   NodeID
	Fn   Function
}

// checkEdge panics unless the endpoints and function fit the edge kind
func checkEdge(kind EdgeKind, from, to *Node, fn Function) {
	rule, ok := edgeRules[kind]
	mustWire(ok, "unknown edge kind %d", kind)
	mustWire(from.Kind == rule.from && to.Kind == rule.to,
		"%s edge cannot connect %s to %s", rule.name, from, to)
	mustWire(fn.Variants()&^rule.allowed == 0,
		"%s edge does not accept %s (allowed: %s)", rule.name, fn, rule.allowed)
}
