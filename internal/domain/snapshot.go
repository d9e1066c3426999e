package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Snapshot is everything one analysis run needs
type Snapshot struct {
	Name           string                    `json:"name" yaml:"name"`
	Configurations map[string]*Configuration `json:"configurations" yaml:"configurations"`
	Layer1         []Layer1Edge              `json:"layer1,omitempty" yaml:"layer1,omitempty"`
	// Vxlan, when non-nil, overrides the topology derived from VNI settings
	Vxlan []VxlanEdge `json:"vxlan,omitempty" yaml:"vxlan,omitempty"`
}

// NewSnapshot creates an empty snapshot with initialized maps
func NewSnapshot(name string) *Snapshot {
	return &Snapshot{
		Name:           name,
		Configurations: make(map[string]*Configuration),
	}
}

// AddConfiguration adds or replaces a device configuration
func (s *Snapshot) AddConfiguration(c *Configuration) {
	if c.Hostname == "" {
		return
	}
	if s.Configurations == nil {
		s.Configurations = make(map[string]*Configuration)
	}
	c.Normalize()
	s.Configurations[c.Hostname] = c
}

// Hostnames returns all device names in sorted order
func (s *Snapshot) Hostnames() []string {
	return slices.Sorted(maps.Keys(s.Configurations))
}

// Normalize fills hostnames from map keys and normalizes every configuration
func (s *Snapshot) Normalize() {
	for hostname, c := range s.Configurations {
		if c == nil {
			delete(s.Configurations, hostname)
			continue
		}
		if c.Hostname == "" {
			c.Hostname = hostname
		}
		c.Normalize()
	}
}

// Validate reports every problem found, wrapped in ErrInvalidSnapshot.
// Dangling Layer-1 or VXLAN references are not errors.
func (s *Snapshot) Validate() error {
	var errs []error
	for _, hostname := range s.Hostnames() {
		c := s.Configurations[hostname]
		if c.Hostname != hostname {
			errs = append(errs, fmt.Errorf("configuration key %q has hostname %q", hostname, c.Hostname))
			continue
		}
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, e := range s.Layer1 {
		if e.Node1.Hostname == "" || e.Node1.Interface == "" || e.Node2.Hostname == "" || e.Node2.Interface == "" {
			errs = append(errs, fmt.Errorf("layer1 edge %s -> %s has an empty endpoint", e.Node1, e.Node2))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, errors.Join(errs...))
	}
	return nil
}

// Layer1Topologies returns the raw and logical Layer-1 topologies
func (s *Snapshot) Layer1Topologies() Layer1Topologies {
	return NewLayer1Topologies(NewLayer1Topology(s.Layer1...), s.Configurations)
}

// VxlanTopology returns the explicit VXLAN topology if given, otherwise the one
// computed from VNI settings.
func (s *Snapshot) VxlanTopology() *VxlanTopology {
	if s.Vxlan != nil {
		return NewVxlanTopology(s.Vxlan...)
	}
	return ComputeInitialVxlanTopology(s.Configurations)
}

// InterfaceCount returns the number of interfaces across all devices
func (s *Snapshot) InterfaceCount() int {
	n := 0
	for _, c := range s.Configurations {
		n += len(c.Interfaces)
	}
	return n
}
