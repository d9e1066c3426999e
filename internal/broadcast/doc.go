// Package broadcast computes Layer-2 broadcast domains.
//
// A broadcast domain is a set of interfaces that can exchange unrouted frames.
// The package models four protocol layers as one heterogeneous directed graph:
//
//   - L1Interface and L1Hub nodes for physical ports and the media joining them
//   - L2 nodes and BridgeDomain nodes for switchports and VLAN-aware or
//     VLAN-unaware bridges
//   - L2Vni nodes for VXLAN-bridged VLANs and their overlay peers
//   - L3 nodes for routed interfaces, bridged (IRB, bridge interface) or not
//
// # Function Algebra
//
// Every edge carries a Function describing how a frame's State (its outer
// 802.1Q tag and the VLAN it is switched in) changes when it crosses the edge,
// or whether the frame is dropped. Functions form a closed union: Identity,
// Compose, FilterByOuterTag, FilterByVlanID, AssignVlanFromOuterTag,
// ClearVlanID, PopTag, PushTag, PushVlanID, SetVlanID and TranslateVlan.
// Constructors normalize trivial cases to Identity, and each EdgeKind accepts
// only the variants that make sense for it; a mismatch panics while the graph is
// built.
//
// Some functions require their input to be in a given shape (PushTag needs an
// untagged frame, for example). Violations panic with *InvariantError. Build with
// the nocheck tag to compile those checks out.
//
// # Search
//
// Graph.Search explores (node, state) pairs from one origin. Because the state
// space per node is finite and visited pairs are never re-expanded, the search
// terminates on any topology, including loops and self-loops. Only one outer tag
// is modelled; QinQ stacks are out of scope.
//
// # Usage
//
//	c := broadcast.NewL3AdjacencyComputer(configs, layer1, vxlan,
//		broadcast.WithLogger(logger))
//	domains := c.FindAllBroadcastDomains()
//	if domains.SameDomain(a, b) {
//		// a and b are Layer-2 adjacent
//	}
package broadcast
