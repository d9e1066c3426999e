package domain

import (
	"fmt"
	"slices"
	"strings"
)

// NodeInterfacePair identifies an interface by the device that owns it. It
// encodes as the text form host[iface] in YAML, JSON and map keys.
type NodeInterfacePair struct {
	Hostname  string
	Interface string
}

// NewNodeInterfacePair creates a pair from a hostname and an interface name
func NewNodeInterfacePair(hostname, iface string) NodeInterfacePair {
	return NodeInterfacePair{Hostname: hostname, Interface: iface}
}

// String renders the pair as host[iface]
func (p NodeInterfacePair) String() string {
	return fmt.Sprintf("%s[%s]", p.Hostname, p.Interface)
}

// Compare orders pairs by hostname, then interface name
func (p NodeInterfacePair) Compare(other NodeInterfacePair) int {
	if c := strings.Compare(p.Hostname, other.Hostname); c != 0 {
		return c
	}
	return strings.Compare(p.Interface, other.Interface)
}

// Less reports whether p sorts before other
func (p NodeInterfacePair) Less(other NodeInterfacePair) bool {
	return p.Compare(other) < 0
}

// SortNodeInterfacePairs sorts pairs in place
func SortNodeInterfacePairs(pairs []NodeInterfacePair) {
	slices.SortFunc(pairs, NodeInterfacePair.Compare)
}

// ParseNodeInterfacePair parses the host[iface] form produced by String
func ParseNodeInterfacePair(s string) (NodeInterfacePair, error) {
	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") || open == len(s)-2 {
		return NodeInterfacePair{}, fmt.Errorf("malformed interface reference %q: want host[iface]", s)
	}
	return NewNodeInterfacePair(s[:open], s[open+1:len(s)-1]), nil
}

// MarshalText implements encoding.TextMarshaler
func (p NodeInterfacePair) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *NodeInterfacePair) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeInterfacePair(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
