package domain

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"
)

// DefaultVxlanUDPPort is the IANA-assigned VXLAN port used when a VNI sets none
const DefaultVxlanUDPPort uint16 = 4789

// BumTransportMethod is how broadcast, unknown-unicast and multicast traffic
// reaches remote VTEPs
type BumTransportMethod string

const (
	BumUnicastFloodGroup BumTransportMethod = "UNICAST_FLOOD_GROUP"
	BumMulticastGroup    BumTransportMethod = "MULTICAST_GROUP"
)

// Layer2Vni binds a local VLAN to a VXLAN network identifier
type Layer2Vni struct {
	VNI  uint32 `json:"vni" yaml:"vni"`
	VLAN uint32 `json:"vlan" yaml:"vlan"`

	// SourceAddress is the local VTEP address; the zero Addr means unset
	SourceAddress      netip.Addr         `json:"source_address" yaml:"source_address"`
	BumTransportMethod BumTransportMethod `json:"bum_transport_method" yaml:"bum_transport_method"`
	// BumTransportIPs are the flood-list peers for unicast flooding, or the
	// multicast group for multicast transport
	BumTransportIPs []netip.Addr `json:"bum_transport_ips,omitempty" yaml:"bum_transport_ips,omitempty"`
	UDPPort         uint16       `json:"udp_port,omitempty" yaml:"udp_port,omitempty"`
	SrcVrf          string       `json:"src_vrf,omitempty" yaml:"src_vrf,omitempty"`
}

// Port returns the UDP port, defaulting to DefaultVxlanUDPPort
func (v *Layer2Vni) Port() uint16 {
	if v.UDPPort == 0 {
		return DefaultVxlanUDPPort
	}
	return v.UDPPort
}

// Vrf is a routing instance and the Layer-2 VNIs configured in it
type Vrf struct {
	Name       string      `json:"name" yaml:"name,omitempty"`
	Layer2Vnis []Layer2Vni `json:"layer2_vnis,omitempty" yaml:"layer2_vnis,omitempty"`
}

// Configuration is the vendor-independent model of one device
type Configuration struct {
	Hostname   string                `json:"hostname" yaml:"hostname"`
	Interfaces map[string]*Interface `json:"interfaces" yaml:"interfaces"`
	Vrfs       map[string]*Vrf       `json:"vrfs,omitempty" yaml:"vrfs,omitempty"`
}

// NewConfiguration creates an empty configuration with initialized maps
func NewConfiguration(hostname string) *Configuration {
	return &Configuration{
		Hostname:   hostname,
		Interfaces: make(map[string]*Interface),
		Vrfs:       make(map[string]*Vrf),
	}
}

// AddInterface adds or replaces an interface, stamping its owner
func (c *Configuration) AddInterface(iface *Interface) {
	if iface.Name == "" {
		return
	}
	if c.Interfaces == nil {
		c.Interfaces = make(map[string]*Interface)
	}
	iface.Hostname = c.Hostname
	c.Interfaces[iface.Name] = iface
}

// AddVrf adds or replaces a VRF
func (c *Configuration) AddVrf(vrf *Vrf) {
	if vrf.Name == "" {
		return
	}
	if c.Vrfs == nil {
		c.Vrfs = make(map[string]*Vrf)
	}
	c.Vrfs[vrf.Name] = vrf
}

// Interface returns an interface by name, or nil if not found
func (c *Configuration) Interface(name string) *Interface {
	return c.Interfaces[name]
}

// InterfaceNames returns all interface names in sorted order
func (c *Configuration) InterfaceNames() []string {
	return slices.Sorted(maps.Keys(c.Interfaces))
}

// VrfNames returns all VRF names in sorted order
func (c *Configuration) VrfNames() []string {
	return slices.Sorted(maps.Keys(c.Vrfs))
}

// Normalize fills names from map keys and stamps every interface with the hostname.
// Loaders call it after decoding, where names are usually given only as keys.
func (c *Configuration) Normalize() {
	for name, iface := range c.Interfaces {
		if iface == nil {
			delete(c.Interfaces, name)
			continue
		}
		iface.Name = name
		iface.Hostname = c.Hostname
	}
	for name, vrf := range c.Vrfs {
		if vrf == nil {
			delete(c.Vrfs, name)
			continue
		}
		vrf.Name = name
	}
}

// Validate checks the configuration for values the analysis cannot interpret
func (c *Configuration) Validate() error {
	if c.Hostname == "" {
		return fmt.Errorf("configuration has no hostname")
	}
	for _, name := range c.InterfaceNames() {
		iface := c.Interfaces[name]
		if iface.ChannelGroup != "" && iface.ChannelGroup == name {
			return fmt.Errorf("interface %s: channel group refers to itself", iface.NIP())
		}
		if parent, ok := iface.BindParent(); ok && parent == name {
			return fmt.Errorf("interface %s: bound to itself", iface.NIP())
		}
	}
	for _, name := range c.VrfNames() {
		for _, vni := range c.Vrfs[name].Layer2Vnis {
			switch vni.BumTransportMethod {
			case BumUnicastFloodGroup, BumMulticastGroup:
			default:
				return fmt.Errorf("%s vrf %s vni %d: unknown BUM transport method %q",
					c.Hostname, name, vni.VNI, vni.BumTransportMethod)
			}
		}
	}
	return nil
}
