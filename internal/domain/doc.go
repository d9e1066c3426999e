// Package domain defines the vendor-independent network model consumed by the
// broadcast-domain analysis.
//
// This package contains the entities and value objects describing one network
// snapshot: device configurations, physical cabling, and VXLAN overlay adjacency.
// It also holds the analysis result type.
//
// # Core Types
//
// Configuration represents one device: its interfaces (with switchport, VLAN,
// encapsulation and bridging settings) and its VRFs with Layer-2 VNIs.
//
// NodeInterfacePair identifies an interface across the whole network by hostname and
// interface name. It is totally ordered so that every derived collection can be
// iterated deterministically, and encodes as host[iface].
//
// IntegerSpace is an immutable set of unsigned integers stored as closed ranges. It
// models allowed VLAN lists and tag filters.
//
// # Topologies
//
// Layer1Topology is a set of physical cable edges. Layer1Topologies pairs the raw
// cabling with the logical view in which aggregated (channel-group) members are
// replaced by their aggregate interface. Edges may dangle: an endpoint need not exist
// in any configuration.
//
// VxlanTopology is the set of resolved VTEP-to-VTEP adjacencies per VNI.
// ComputeInitialVxlanTopology derives it from the flood lists configured on each VNI.
//
// # Snapshot and Result
//
// Snapshot bundles everything one analysis run needs. BroadcastDomains maps each
// Layer-3 relevant interface to a domain id that is stable only within one run.
// Analysis is the stored record of one run.
//
// # Design Principles
//
// - Immutable value objects where possible
// - No database or external dependencies
// - Deterministic ordering for every exported collection
package domain
