package broadcast

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"l2domains/internal/domain"
)

// Observer receives measurements of a computation. The metrics package
// provides a Prometheus-backed implementation.
type Observer interface {
	ObserveGraph(nodes map[NodeKind]int, edges int)
	ObserveSearch(visited int, duration time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveGraph(map[NodeKind]int, int) {}
func (nopObserver) ObserveSearch(int, time.Duration)   {}

// Option configures an L3AdjacencyComputer
type Option func(*L3AdjacencyComputer)

// WithLogger sets the logger used while building and searching
func WithLogger(logger *zap.Logger) Option {
	return func(c *L3AdjacencyComputer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the measurement sink
func WithObserver(o Observer) Option {
	return func(c *L3AdjacencyComputer) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithWorkers bounds the number of concurrent searches used by
// FindAllBroadcastDomainsContext. Values below 1 mean one worker.
func WithWorkers(n int) Option {
	return func(c *L3AdjacencyComputer) {
		c.workers = max(n, 1)
	}
}

// L3AdjacencyComputer computes the broadcast domains of one snapshot. It builds
// the graph once on construction; the Find methods only read it and may be
// called concurrently.
type L3AdjacencyComputer struct {
	graph    *Graph
	hubs     map[string]*L1Hub
	relevant map[domain.NodeInterfacePair]NodeID
	logger   *zap.Logger
	observer Observer
	workers  int
}

// NewL3AdjacencyComputer builds the broadcast graph from device configurations,
// Layer-1 topologies and the VXLAN topology.
func NewL3AdjacencyComputer(configs map[string]*domain.Configuration, layer1 domain.Layer1Topologies, vxlan *domain.VxlanTopology, opts ...Option) *L3AdjacencyComputer {
	c := &L3AdjacencyComputer{
		logger:   zap.NewNop(),
		observer: nopObserver{},
		workers:  1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.graph, c.hubs = BuildGraph(configs, layer1, vxlan, c.logger)
	c.relevant = c.graph.Layer3Relevant()
	c.observer.ObserveGraph(c.graph.CountByKind(), c.graph.EdgeCount())
	c.logger.Debug("built broadcast graph",
		zap.Int("nodes", c.graph.NodeCount()),
		zap.Int("edges", c.graph.EdgeCount()),
		zap.Int("hubs", len(c.hubs)),
		zap.Int("layer3_relevant", len(c.relevant)))
	return c
}

// Graph returns the underlying graph
func (c *L3AdjacencyComputer) Graph() *Graph {
	return c.graph
}

// Hubs returns the inferred Layer-1 hubs keyed by id
func (c *L3AdjacencyComputer) Hubs() map[string]*L1Hub {
	return c.hubs
}

// Layer3RelevantInterfaces returns the interfaces that receive a domain, sorted
func (c *L3AdjacencyComputer) Layer3RelevantInterfaces() []domain.NodeInterfacePair {
	nips := slices.Collect(maps.Keys(c.relevant))
	domain.SortNodeInterfacePairs(nips)
	return nips
}

// FindBroadcastDomain returns every relevant interface sharing a broadcast
// domain with nip, sorted. It returns nil if nip is not relevant.
func (c *L3AdjacencyComputer) FindBroadcastDomain(nip domain.NodeInterfacePair) []domain.NodeInterfacePair {
	origin, ok := c.relevant[nip]
	if !ok {
		return nil
	}
	return c.interfacesOf(c.search(context.Background(), origin))
}

// FindAllBroadcastDomains assigns a domain id to every Layer-3 relevant
// interface. Interfaces are seeded in sorted order and ids are assigned
// sequentially from 1, so the result is deterministic.
func (c *L3AdjacencyComputer) FindAllBroadcastDomains() domain.BroadcastDomains {
	domains, _ := c.assign(func(nip domain.NodeInterfacePair) ([]domain.NodeInterfacePair, error) {
		return c.interfacesOf(c.search(context.Background(), c.relevant[nip])), nil
	})
	return domains
}

// FindAllBroadcastDomainsContext is FindAllBroadcastDomains with searches run in
// parallel on the configured number of workers. An interface already reached by
// a finished search is not searched again. The result is identical to the
// sequential one.
func (c *L3AdjacencyComputer) FindAllBroadcastDomainsContext(ctx context.Context) (domain.BroadcastDomains, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.workers <= 1 {
		return c.assign(func(nip domain.NodeInterfacePair) ([]domain.NodeInterfacePair, error) {
			res, err := c.searchContext(ctx, c.relevant[nip])
			if err != nil {
				return nil, err
			}
			return c.interfacesOf(res), nil
		})
	}

	seeds := c.Layer3RelevantInterfaces()
	var (
		mu      sync.Mutex
		claimed = make(map[domain.NodeInterfacePair]bool, len(seeds))
		found   = make(map[domain.NodeInterfacePair][]domain.NodeInterfacePair)
	)
	isClaimed := func(nip domain.NodeInterfacePair) bool {
		mu.Lock()
		defer mu.Unlock()
		return claimed[nip]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, nip := range seeds {
		if isClaimed(nip) {
			continue
		}
		g.Go(func() error {
			if isClaimed(nip) {
				return nil
			}
			res, err := c.searchContext(gctx, c.relevant[nip])
			if err != nil {
				return err
			}
			members := c.interfacesOf(res)
			mu.Lock()
			defer mu.Unlock()
			found[nip] = members
			claimed[nip] = true
			for _, m := range members {
				claimed[m] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(domain.BroadcastDomains, len(c.relevant))
	next := 1
	for _, nip := range seeds {
		members, ok := found[nip]
		if !ok {
			continue
		}
		fresh := false
		for _, m := range members {
			if _, done := out[m]; !done {
				out[m] = next
				fresh = true
			}
		}
		if fresh {
			next++
		}
	}
	return renumber(out), nil
}

// renumber assigns ids 1..n to domains in order of their smallest member,
// which is the order the sequential walk discovers them in.
func renumber(d domain.BroadcastDomains) domain.BroadcastDomains {
	out := make(domain.BroadcastDomains, len(d))
	for i, members := range d.Groups() {
		for _, m := range members {
			out[m] = i + 1
		}
	}
	return out
}

// assign walks relevant interfaces in sorted order; each one not yet assigned
// starts a new domain covering everything its search reaches.
func (c *L3AdjacencyComputer) assign(find func(domain.NodeInterfacePair) ([]domain.NodeInterfacePair, error)) (domain.BroadcastDomains, error) {
	out := make(domain.BroadcastDomains, len(c.relevant))
	next := 1
	for _, nip := range c.Layer3RelevantInterfaces() {
		if _, done := out[nip]; done {
			continue
		}
		members, err := find(nip)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if _, done := out[m]; !done {
				out[m] = next
			}
		}
		next++
	}
	c.logger.Debug("found broadcast domains",
		zap.Int("interfaces", len(out)), zap.Int("domains", next-1))
	return out, nil
}

func (c *L3AdjacencyComputer) search(ctx context.Context, origin NodeID) SearchResult {
	res, _ := c.searchContext(ctx, origin)
	return res
}

func (c *L3AdjacencyComputer) searchContext(ctx context.Context, origin NodeID) (SearchResult, error) {
	start := time.Now()
	res, err := c.graph.SearchContext(ctx, origin)
	if err != nil {
		return res, err
	}
	c.observer.ObserveSearch(res.Visited, time.Since(start))
	return res, nil
}

// interfacesOf maps reached nodes back to sorted interfaces
func (c *L3AdjacencyComputer) interfacesOf(res SearchResult) []domain.NodeInterfacePair {
	out := make([]domain.NodeInterfacePair, 0, len(res.Reached))
	for _, id := range res.Reached {
		out = append(out, c.graph.Node(id).Interface)
	}
	domain.SortNodeInterfacePairs(out)
	return out
}
