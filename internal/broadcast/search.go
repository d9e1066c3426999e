package broadcast

import "context"

type nodeAndState struct {
	node  NodeID
	state State
}

// SearchResult is the outcome of one search
type SearchResult struct {
	// Reached holds every Layer-3 relevant node reached, including the origin
	Reached []NodeID
	// Visited is the number of distinct (node, state) pairs explored
	Visited int
}

// cancelCheckInterval is how many expansions run between context checks
const cancelCheckInterval = 1024

// Search explores every (node, state) pair reachable from origin, which
// originates an untagged frame outside any VLAN. Layer-3 nodes receive frames
// but never forward them; only the origin sends. The visited set bounds the work
// by |nodes| x |distinct states|, so the search terminates on any topology.
func (g *Graph) Search(origin NodeID) SearchResult {
	res, _ := g.SearchContext(context.Background(), origin)
	return res
}

// SearchContext is Search with cancellation
func (g *Graph) SearchContext(ctx context.Context, origin NodeID) (SearchResult, error) {
	start := nodeAndState{node: origin, state: EmptyState}
	visited := map[nodeAndState]struct{}{start: {}}
	reached := map[NodeID]struct{}{origin: {}}
	order := []NodeID{origin}
	queue := []nodeAndState{start}

	for steps := 0; len(queue) > 0; steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return SearchResult{}, err
			}
		}
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		n := g.nodes[cur.node]
		if n.Kind == KindL3 && cur != start {
			continue
		}
		for _, e := range n.out {
			next, ok := e.Fn.Apply(cur.state)
			if !ok {
				continue
			}
			key := nodeAndState{node: e.To, state: next}
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}
			queue = append(queue, key)
			if _, ok := reached[e.To]; !ok && g.receives(e.To, next) {
				reached[e.To] = struct{}{}
				order = append(order, e.To)
			}
		}
	}
	return SearchResult{Reached: order, Visited: len(visited)}, nil
}

// receives reports whether a frame in state s arriving at id makes id part of
// the domain. Bare physical interfaces behave as untagged endpoints.
func (g *Graph) receives(id NodeID, s State) bool {
	if !g.IsLayer3Relevant(id) {
		return false
	}
	return g.nodes[id].Kind != KindL1Interface || s == EmptyState
}
