package domain

import "time"

// Analysis is one stored broadcast-domain computation
type Analysis struct {
	ID        string        `json:"id" yaml:"id"`
	Snapshot  string        `json:"snapshot" yaml:"snapshot"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`

	Devices     int `json:"devices" yaml:"devices"`
	Interfaces  int `json:"interfaces" yaml:"interfaces"`
	Hubs        int `json:"hubs" yaml:"hubs"`
	VxlanEdges  int `json:"vxlan_edges" yaml:"vxlan_edges"`
	DomainCount int `json:"domain_count" yaml:"domain_count"`

	// Domains is nil in listings; Get and Domains fill it
	Domains BroadcastDomains `json:"domains,omitempty" yaml:"domains,omitempty"`
}

// Summary returns a copy without the domain map, for listings
func (a *Analysis) Summary() *Analysis {
	s := *a
	s.Domains = nil
	return &s
}
