package broadcast

import (
	"fmt"

	"l2domains/internal/domain"
)

// NodeKind is the protocol layer a graph node models
type NodeKind uint8

const (
	// KindL1Interface is a physical (or aggregated) port
	KindL1Interface NodeKind = iota
	// KindL1Hub is a shared medium joining cabled ports
	KindL1Hub
	// KindL2 is an interface in switching mode
	KindL2
	// KindBridgeDomain is a device's VLAN-aware bridge or one of its VLAN-unaware bridges
	KindBridgeDomain
	// KindL2Vni is one Layer-2 VNI on one device
	KindL2Vni
	// KindL3 is a routed interface, bridged (IRB or bridge interface) or not
	KindL3
)

func (k NodeKind) String() string {
	switch k {
	case KindL1Interface:
		return "L1Interface"
	case KindL1Hub:
		return "L1Hub"
	case KindL2:
		return "L2"
	case KindBridgeDomain:
		return "BridgeDomain"
	case KindL2Vni:
		return "L2Vni"
	case KindL3:
		return "L3"
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// NodeID is the stable arena index of a node within one Graph
type NodeID int32

// Node is one vertex of the broadcast graph. Nodes are created by the builder
// and never change afterwards, apart from gaining outgoing edges during
// construction.
type Node struct {
	ID   NodeID
	Kind NodeKind

	// Hostname is empty only for hubs
	Hostname string
	// Interface is set for L1, L2 and L3 nodes
	Interface domain.NodeInterfacePair
	// HubID is set for hubs
	HubID string
	// Bridge is the VLAN-unaware bridge name; empty for the VLAN-aware domain
	Bridge string
	// VNI is set for L2Vni nodes
	VNI uint32
	// Bridged marks L3 nodes attached to a bridge domain rather than a port
	Bridged bool

	out []Edge
}

// VlanAware reports whether a bridge-domain node switches by VLAN id
func (n *Node) VlanAware() bool {
	return n.Kind == KindBridgeDomain && n.Bridge == ""
}

// Out returns the outgoing edges
func (n *Node) Out() []Edge {
	return n.out
}

func (n *Node) String() string {
	switch n.Kind {
	case KindL1Interface, KindL2:
		return fmt.Sprintf("%s(%s)", n.Kind, n.Interface)
	case KindL3:
		if n.Bridged {
			return fmt.Sprintf("L3(%s, bridged)", n.Interface)
		}
		return fmt.Sprintf("L3(%s)", n.Interface)
	case KindL1Hub:
		return fmt.Sprintf("L1Hub(%s)", n.HubID)
	case KindBridgeDomain:
		if n.Bridge != "" {
			return fmt.Sprintf("BridgeDomain(%s, bridge %s)", n.Hostname, n.Bridge)
		}
		return fmt.Sprintf("BridgeDomain(%s)", n.Hostname)
	case KindL2Vni:
		return fmt.Sprintf("L2Vni(%s, %d)", n.Hostname, n.VNI)
	}
	return n.Kind.String()
}
