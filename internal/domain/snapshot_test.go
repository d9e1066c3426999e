package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const deviceYAML = `
hostname: r1
interfaces:
  eth0:
    type: PHYSICAL
    addresses: [10.0.0.1/24]
  eth1:
    type: PHYSICAL
    switchport: true
    switchport_mode: TRUNK
    allowed_vlans: 10-20,30
    native_vlan: 1
vrfs:
  default:
    layer2_vnis:
      - vni: 10010
        vlan: 10
        source_address: 1.1.1.1
        bum_transport_method: UNICAST_FLOOD_GROUP
        bum_transport_ips: [2.2.2.2]
`

func TestConfigurationFromYAML(t *testing.T) {
	var c Configuration
	require.NoError(t, yaml.Unmarshal([]byte(deviceYAML), &c))
	c.Normalize()
	require.NoError(t, c.Validate())

	eth0 := c.Interface("eth0")
	require.NotNil(t, eth0)
	assert.Equal(t, NewNodeInterfacePair("r1", "eth0"), eth0.NIP())
	assert.True(t, eth0.ShouldCreateL3())
	assert.True(t, eth0.ShouldCreatePhysical())

	eth1 := c.Interface("eth1")
	require.NotNil(t, eth1)
	assert.Equal(t, SwitchportModeTrunk, eth1.Mode())
	assert.Equal(t, "10-20,30", eth1.AllowedVlans.String())
	assert.Equal(t, uint32(1), *eth1.NativeVlan)
	assert.False(t, eth1.ShouldCreateL3())

	vnis := c.Vrfs["default"].Layer2Vnis
	require.Len(t, vnis, 1)
	assert.Equal(t, "default", c.Vrfs["default"].Name)
	assert.Equal(t, DefaultVxlanUDPPort, vnis[0].Port())
	assert.Equal(t, "1.1.1.1", vnis[0].SourceAddress.String())
}

func TestInterfaceHelpers(t *testing.T) {
	sub := &Interface{
		Name:         "eth0.10",
		Type:         InterfaceTypeLogical,
		Dependencies: []Dependency{{Interface: "eth0", Type: DependencyBind}},
	}
	parent, ok := sub.BindParent()
	assert.True(t, ok)
	assert.Equal(t, "eth0", parent)
	assert.Equal(t, SwitchportModeNone, sub.Mode())

	_, ok = (&Interface{Name: "eth0"}).BindParent()
	assert.False(t, ok)

	assert.Equal(t, "br0", (&Interface{Name: "br0", Type: InterfaceTypeBridge}).BridgeName())
	assert.Equal(t, "bridge", (&Interface{Name: "br0", Bridge: "bridge"}).BridgeName())

	assert.False(t, (&Interface{Name: "e1", Type: InterfaceTypePhysical, ChannelGroup: "po1"}).ShouldCreatePhysical())
	assert.False(t, (&Interface{Name: "e1", Type: InterfaceTypePhysical, Disabled: true}).ShouldCreatePhysical())
	assert.False(t, (&Interface{Name: "lo0", Type: InterfaceTypeLoopback}).ShouldCreatePhysical())
}

func TestSnapshotValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := NewSnapshot("lab")
		s.AddConfiguration(vtepConfig("r1", unicast(1, "1.1.1.1")))
		s.Layer1 = []Layer1Edge{NewLayer1Edge("r1", "e0", "ghost", "e0")}
		assert.NoError(t, s.Validate())
	})

	t.Run("collects every problem", func(t *testing.T) {
		bad := NewConfiguration("r1")
		bad.AddInterface(&Interface{Name: "po1", Type: InterfaceTypeAggregated, ChannelGroup: "po1"})

		weird := vtepConfig("r2", Layer2Vni{VNI: 1, BumTransportMethod: "CARRIER_PIGEON"})

		s := NewSnapshot("lab")
		s.AddConfiguration(bad)
		s.AddConfiguration(weird)
		s.Layer1 = []Layer1Edge{NewLayer1Edge("r1", "", "r2", "e0")}

		err := s.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidSnapshot))
		assert.ErrorContains(t, err, "channel group refers to itself")
		assert.ErrorContains(t, err, "CARRIER_PIGEON")
		assert.ErrorContains(t, err, "empty endpoint")
	})

	t.Run("mismatched key", func(t *testing.T) {
		s := NewSnapshot("lab")
		s.Configurations["r1"] = NewConfiguration("r2")
		assert.ErrorIs(t, s.Validate(), ErrInvalidSnapshot)
	})
}

func TestSnapshotNormalize(t *testing.T) {
	c := &Configuration{
		Interfaces: map[string]*Interface{
			"eth0": {Type: InterfaceTypePhysical},
			"gone": nil,
		},
	}
	s := &Snapshot{Configurations: map[string]*Configuration{"r1": c, "r2": nil}}

	s.Normalize()

	assert.Equal(t, []string{"r1"}, s.Hostnames())
	assert.Equal(t, "r1", c.Hostname)
	assert.Equal(t, []string{"eth0"}, c.InterfaceNames())
	assert.Equal(t, NewNodeInterfacePair("r1", "eth0"), c.Interface("eth0").NIP())
	assert.Equal(t, 1, s.InterfaceCount())
}

func TestSnapshotVxlanTopology(t *testing.T) {
	s := NewSnapshot("lab")
	s.AddConfiguration(vtepConfig("r1", unicast(100, "1.1.1.1", "2.2.2.2")))
	s.AddConfiguration(vtepConfig("r2", unicast(100, "2.2.2.2", "1.1.1.1")))

	assert.Equal(t, 1, s.VxlanTopology().Len(), "derived from VNI settings")

	s.Vxlan = []VxlanEdge{}
	assert.Equal(t, 0, s.VxlanTopology().Len(), "explicit empty topology wins")
}

func TestBroadcastDomains(t *testing.T) {
	a := NewNodeInterfacePair("r1", "a")
	b := NewNodeInterfacePair("r1", "b")
	c := NewNodeInterfacePair("r2", "c")
	missing := NewNodeInterfacePair("r9", "x")

	d := BroadcastDomains{c: 1, a: 2, b: 1}

	assert.True(t, d.SameDomain(b, c))
	assert.False(t, d.SameDomain(a, b))
	assert.False(t, d.SameDomain(a, missing))
	assert.Equal(t, 2, d.Count())
	assert.Equal(t, []NodeInterfacePair{a, b, c}, d.Interfaces())
	assert.Equal(t, [][]NodeInterfacePair{{a}, {b, c}}, d.Groups())

	rows := d.Memberships()
	require.Len(t, rows, 3)
	assert.Equal(t, DomainMembership{Interface: a, Domain: 2}, rows[0])
	assert.Equal(t, d, BroadcastDomainsFromMemberships(rows))
}
