package domain

import (
	"maps"
	"slices"
)

// BroadcastDomains maps every Layer-3 relevant interface to a domain id. Ids
// are meaningful only within one result: two interfaces share a broadcast domain
// iff they map to the same id.
type BroadcastDomains map[NodeInterfacePair]int

// DomainMembership is one row of a flattened result
type DomainMembership struct {
	Interface NodeInterfacePair `json:"interface" yaml:"interface"`
	Domain    int               `json:"domain" yaml:"domain"`
}

// SameDomain reports whether both interfaces are in the result and share a domain
func (d BroadcastDomains) SameDomain(a, b NodeInterfacePair) bool {
	da, okA := d[a]
	db, okB := d[b]
	return okA && okB && da == db
}

// Interfaces returns every interface in the result, sorted
func (d BroadcastDomains) Interfaces() []NodeInterfacePair {
	nips := slices.Collect(maps.Keys(d))
	SortNodeInterfacePairs(nips)
	return nips
}

// Count returns the number of distinct domains
func (d BroadcastDomains) Count() int {
	ids := make(map[int]struct{}, len(d))
	for _, id := range d {
		ids[id] = struct{}{}
	}
	return len(ids)
}

// Groups returns the members of each domain. Members are sorted and groups are
// ordered by their smallest member, so the output does not depend on id values.
func (d BroadcastDomains) Groups() [][]NodeInterfacePair {
	byID := make(map[int][]NodeInterfacePair)
	var order []int
	for _, nip := range d.Interfaces() {
		id := d[nip]
		if _, ok := byID[id]; !ok {
			order = append(order, id)
		}
		byID[id] = append(byID[id], nip)
	}
	groups := make([][]NodeInterfacePair, 0, len(order))
	for _, id := range order {
		groups = append(groups, byID[id])
	}
	return groups
}

// Memberships flattens the result into rows sorted by interface
func (d BroadcastDomains) Memberships() []DomainMembership {
	rows := make([]DomainMembership, 0, len(d))
	for _, nip := range d.Interfaces() {
		rows = append(rows, DomainMembership{Interface: nip, Domain: d[nip]})
	}
	return rows
}

// BroadcastDomainsFromMemberships rebuilds a result from flattened rows
func BroadcastDomainsFromMemberships(rows []DomainMembership) BroadcastDomains {
	d := make(BroadcastDomains, len(rows))
	for _, r := range rows {
		d[r.Interface] = r.Domain
	}
	return d
}
