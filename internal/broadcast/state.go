package broadcast

import "fmt"

// State is what the search tracks about a frame as it crosses the graph: the
// single 802.1Q outer tag it carries on the wire, and the VLAN it is switched in
// inside a device. Either may be absent. State is comparable and immutable.
type State struct {
	outerTag uint32
	hasTag   bool
	vlanID   uint32
	hasVlan  bool
}

// EmptyState is an untagged frame outside any VLAN
var EmptyState = State{}

// NewState builds a state from optional fields
func NewState(outerTag, vlanID *uint32) State {
	s := State{}
	if outerTag != nil {
		s = s.WithOuterTag(*outerTag)
	}
	if vlanID != nil {
		s = s.WithVlanID(*vlanID)
	}
	return s
}

// OuterTag returns the outer tag, if any
func (s State) OuterTag() (uint32, bool) {
	return s.outerTag, s.hasTag
}

// VlanID returns the VLAN id, if any
func (s State) VlanID() (uint32, bool) {
	return s.vlanID, s.hasVlan
}

// WithOuterTag returns a copy carrying tag
func (s State) WithOuterTag(tag uint32) State {
	s.outerTag, s.hasTag = tag, true
	return s
}

// WithoutOuterTag returns a copy with no outer tag
func (s State) WithoutOuterTag() State {
	s.outerTag, s.hasTag = 0, false
	return s
}

// WithVlanID returns a copy in VLAN v
func (s State) WithVlanID(v uint32) State {
	s.vlanID, s.hasVlan = v, true
	return s
}

// WithoutVlanID returns a copy outside any VLAN
func (s State) WithoutVlanID() State {
	s.vlanID, s.hasVlan = 0, false
	return s
}

func (s State) String() string {
	tag, vlan := "-", "-"
	if s.hasTag {
		tag = fmt.Sprint(s.outerTag)
	}
	if s.hasVlan {
		vlan = fmt.Sprint(s.vlanID)
	}
	return fmt.Sprintf("{tag=%s vlan=%s}", tag, vlan)
}
