package domain

import "net/netip"

// InterfaceType classifies an interface by what it is, not how it is configured
type InterfaceType string

const (
	InterfaceTypePhysical   InterfaceType = "PHYSICAL"
	InterfaceTypeAggregated InterfaceType = "AGGREGATED"
	InterfaceTypeVlan       InterfaceType = "VLAN"
	InterfaceTypeLoopback   InterfaceType = "LOOPBACK"
	InterfaceTypeTunnel     InterfaceType = "TUNNEL"
	InterfaceTypeLogical    InterfaceType = "LOGICAL"
	InterfaceTypeBridge     InterfaceType = "BRIDGE"
	InterfaceTypeUnknown    InterfaceType = "UNKNOWN"
)

// IsPhysical reports whether interfaces of this type take part in the logical
// Layer-1 topology.
func (t InterfaceType) IsPhysical() bool {
	return t == InterfaceTypePhysical || t == InterfaceTypeAggregated
}

// SwitchportMode is the Layer-2 mode of a switchport
type SwitchportMode string

const (
	SwitchportModeNone   SwitchportMode = "NONE"
	SwitchportModeAccess SwitchportMode = "ACCESS"
	SwitchportModeTrunk  SwitchportMode = "TRUNK"
)

// DependencyType describes how one interface depends on another
type DependencyType string

const (
	// DependencyBind marks a sub-interface bound to its parent port
	DependencyBind DependencyType = "BIND"
	// DependencyAggregate marks an aggregate depending on a member
	DependencyAggregate DependencyType = "AGGREGATE"
)

// Dependency names another interface on the same device
type Dependency struct {
	Interface string         `json:"interface" yaml:"interface"`
	Type      DependencyType `json:"type" yaml:"type"`
}

// Interface is the vendor-independent configuration of one interface
type Interface struct {
	Name     string        `json:"name" yaml:"name,omitempty"`
	Hostname string        `json:"hostname" yaml:"-"`
	Type     InterfaceType `json:"type" yaml:"type"`
	Disabled bool          `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Vrf      string        `json:"vrf,omitempty" yaml:"vrf,omitempty"`

	Addresses []netip.Prefix `json:"addresses,omitempty" yaml:"addresses,omitempty"`

	// Layer-2 settings
	Switchport     bool           `json:"switchport,omitempty" yaml:"switchport,omitempty"`
	SwitchportMode SwitchportMode `json:"switchport_mode,omitempty" yaml:"switchport_mode,omitempty"`
	AccessVlan     *uint32        `json:"access_vlan,omitempty" yaml:"access_vlan,omitempty"`
	NativeVlan     *uint32        `json:"native_vlan,omitempty" yaml:"native_vlan,omitempty"`
	// AllowedVlans is nil when every VLAN is allowed on a trunk
	AllowedVlans *IntegerSpace `json:"allowed_vlans,omitempty" yaml:"allowed_vlans,omitempty"`
	// Bridge names the VLAN-unaware bridge this port or BRIDGE interface belongs to
	Bridge string `json:"bridge,omitempty" yaml:"bridge,omitempty"`

	// Layer-3 settings
	EncapsulationVlan *uint32 `json:"encapsulation_vlan,omitempty" yaml:"encapsulation_vlan,omitempty"`
	// Vlan is the VLAN an IRB (VLAN-type) interface routes for
	Vlan *uint32 `json:"vlan,omitempty" yaml:"vlan,omitempty"`

	ChannelGroup string       `json:"channel_group,omitempty" yaml:"channel_group,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Vlan returns a pointer to v, for filling optional VLAN fields
func Vlan(v uint32) *uint32 {
	return &v
}

// NIP returns the network-wide identifier of the interface
func (i *Interface) NIP() NodeInterfacePair {
	return NewNodeInterfacePair(i.Hostname, i.Name)
}

// Active reports whether the interface is administratively up
func (i *Interface) Active() bool {
	return !i.Disabled
}

// IsAggregated reports whether the interface is a member of a channel group
func (i *Interface) IsAggregated() bool {
	return i.ChannelGroup != ""
}

// Mode returns the switchport mode, treating an unset mode as NONE
func (i *Interface) Mode() SwitchportMode {
	if i.SwitchportMode == "" {
		return SwitchportModeNone
	}
	return i.SwitchportMode
}

// BindParent returns the parent named by the first BIND dependency
func (i *Interface) BindParent() (string, bool) {
	for _, d := range i.Dependencies {
		if d.Type == DependencyBind {
			return d.Interface, true
		}
	}
	return "", false
}

// BridgeName returns the VLAN-unaware bridge a BRIDGE-type interface stands for.
// It defaults to the interface's own name.
func (i *Interface) BridgeName() string {
	if i.Bridge != "" {
		return i.Bridge
	}
	return i.Name
}

// ShouldCreatePhysical reports whether the interface is modelled as a physical
// port: an active PHYSICAL or AGGREGATED interface that is not itself a
// channel-group member.
func (i *Interface) ShouldCreatePhysical() bool {
	return i.Type.IsPhysical() && !i.IsAggregated() && i.Active()
}

// ShouldCreateL3 reports whether the interface terminates Layer 3: it has an
// address, is active, and is neither a loopback nor a switchport.
func (i *Interface) ShouldCreateL3() bool {
	return len(i.Addresses) > 0 && i.Active() && i.Type != InterfaceTypeLoopback && !i.Switchport
}
