package broadcast

// unionFind is a disjoint-set forest with path halving and union by size
type unionFind[T comparable] struct {
	parent map[T]T
	size   map[T]int
}

func newUnionFind[T comparable](elems []T) *unionFind[T] {
	uf := &unionFind[T]{
		parent: make(map[T]T, len(elems)),
		size:   make(map[T]int, len(elems)),
	}
	for _, e := range elems {
		uf.parent[e] = e
		uf.size[e] = 1
	}
	return uf
}

func (uf *unionFind[T]) find(x T) T {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind[T]) union(a, b T) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
