package codec

import (
	"fmt"
	"time"

	"l2domains/internal/domain"
)

// Cable is an undirected physical link between two interfaces
type Cable struct {
	A domain.NodeInterfacePair `json:"a" yaml:"a"`
	B domain.NodeInterfacePair `json:"b" yaml:"b"`
}

// VxlanLink declares two devices adjacent on a Layer-2 VNI
type VxlanLink struct {
	VNI   uint32    `json:"vni" yaml:"vni"`
	Hosts [2]string `json:"hosts" yaml:"hosts"`
}

// snapshotDocument is the single-file snapshot layout shared by JSON and YAML
type snapshotDocument struct {
	Name    string                           `json:"name" yaml:"name"`
	Devices map[string]*domain.Configuration `json:"devices" yaml:"devices"`
	Cables  []Cable                          `json:"cables,omitempty" yaml:"cables,omitempty"`
	// Vxlan overrides the derived overlay when present, even if empty
	Vxlan *[]VxlanLink `json:"vxlan,omitempty" yaml:"vxlan,omitempty"`
}

type domainGroup struct {
	ID         int                        `json:"id" yaml:"id"`
	Interfaces []domain.NodeInterfacePair `json:"interfaces" yaml:"interfaces"`
}

// analysisDocument is the exported form of an analysis
type analysisDocument struct {
	ID         string        `json:"id,omitempty" yaml:"id,omitempty"`
	Snapshot   string        `json:"snapshot" yaml:"snapshot"`
	CreatedAt  time.Time     `json:"created_at" yaml:"created_at"`
	Duration   string        `json:"duration" yaml:"duration"`
	Devices    int           `json:"devices" yaml:"devices"`
	Interfaces int           `json:"interfaces" yaml:"interfaces"`
	Hubs       int           `json:"hubs" yaml:"hubs"`
	VxlanEdges int           `json:"vxlan_edges" yaml:"vxlan_edges"`
	Domains    []domainGroup `json:"domains" yaml:"domains"`
}

// CablesToEdges expands undirected cables into Layer-1 edges in both directions
func CablesToEdges(cables []Cable) ([]domain.Layer1Edge, error) {
	var zero domain.NodeInterfacePair
	edges := make([]domain.Layer1Edge, 0, 2*len(cables))
	for i, c := range cables {
		if c.A == zero || c.B == zero {
			return nil, fmt.Errorf("cable %d: both ends are required", i+1)
		}
		e := domain.Layer1Edge{Node1: c.A, Node2: c.B}
		edges = append(edges, e, e.Reverse())
	}
	return edges, nil
}

// EdgesToCables folds directed edges back into cables, one per unordered pair
func EdgesToCables(edges []domain.Layer1Edge) []Cable {
	topo := domain.NewLayer1Topology(edges...)
	var cables []Cable
	for _, e := range topo.Edges() {
		if e.Node2.Less(e.Node1) && topo.Contains(e.Reverse()) {
			continue
		}
		cables = append(cables, Cable{A: e.Node1, B: e.Node2})
	}
	return cables
}

// LinksToEdges converts declared VXLAN links into Layer-2 VNI edges
func LinksToEdges(links []VxlanLink) ([]domain.VxlanEdge, error) {
	edges := make([]domain.VxlanEdge, 0, len(links))
	for _, l := range links {
		if l.Hosts[0] == "" || l.Hosts[1] == "" {
			return nil, fmt.Errorf("vxlan link for vni %d names an empty host", l.VNI)
		}
		edges = append(edges, domain.VxlanEdge{
			Node1: domain.VxlanNode{Hostname: l.Hosts[0], VNI: l.VNI, Layer: domain.VniLayer2},
			Node2: domain.VxlanNode{Hostname: l.Hosts[1], VNI: l.VNI, Layer: domain.VniLayer2},
		})
	}
	return edges, nil
}

// EdgesToLinks converts Layer-2 VNI edges into links, in topology order
func EdgesToLinks(edges []domain.VxlanEdge) []VxlanLink {
	links := make([]VxlanLink, 0, len(edges))
	for _, e := range domain.NewVxlanTopology(edges...).Layer2Edges() {
		links = append(links, VxlanLink{VNI: e.Node1.VNI, Hosts: [2]string{e.Node1.Hostname, e.Node2.Hostname}})
	}
	return links
}

func (d *snapshotDocument) toSnapshot() (*domain.Snapshot, error) {
	s := domain.NewSnapshot(d.Name)
	for hostname, c := range d.Devices {
		if c == nil {
			c = domain.NewConfiguration(hostname)
		}
		if c.Hostname == "" {
			c.Hostname = hostname
		}
		s.Configurations[hostname] = c
	}
	s.Normalize()
	layer1, err := CablesToEdges(d.Cables)
	if err != nil {
		return nil, err
	}
	s.Layer1 = layer1
	if d.Vxlan != nil {
		edges, err := LinksToEdges(*d.Vxlan)
		if err != nil {
			return nil, err
		}
		s.Vxlan = edges
	}
	return s, nil
}

func newSnapshotDocument(s *domain.Snapshot) *snapshotDocument {
	d := &snapshotDocument{
		Name:    s.Name,
		Devices: s.Configurations,
		Cables:  EdgesToCables(s.Layer1),
	}
	if s.Vxlan != nil {
		links := EdgesToLinks(s.Vxlan)
		d.Vxlan = &links
	}
	return d
}

func newAnalysisDocument(a *domain.Analysis) *analysisDocument {
	d := &analysisDocument{
		ID:         a.ID,
		Snapshot:   a.Snapshot,
		CreatedAt:  a.CreatedAt,
		Duration:   a.Duration.String(),
		Devices:    a.Devices,
		Interfaces: a.Interfaces,
		Hubs:       a.Hubs,
		VxlanEdges: a.VxlanEdges,
		Domains:    make([]domainGroup, 0, a.Domains.Count()),
	}
	for _, members := range a.Domains.Groups() {
		d.Domains = append(d.Domains, domainGroup{ID: a.Domains[members[0]], Interfaces: members})
	}
	return d
}
