package dag

import (
	"cmp"
	"slices"
)

// unreachable is the ancestor distance of a dummy whose chain is broken.
const unreachable = int(^uint(0) >> 2)

// AncestorDistance returns the number of edges between id and its nearest
// non-dummy ancestor: 0 for a node vertex, 1 + the distance of its parent
// for a dummy. Dummies have a single parent, so the walk is a chain.
func (g *Graph) AncestorDistance(id VertexID) int {
	d := 0
	for v := id; ; d++ {
		vx, ok := g.vertices[v]
		if !ok {
			return unreachable
		}
		if !vx.IsDummy() {
			return d
		}
		out := g.out[v]
		if len(out) == 0 {
			return unreachable
		}
		v = g.edges[out[0]].Target
	}
}

// PrimaryParent returns the distinguished parent of id that drives its
// placement, or [NoVertex] if id has no parents.
//
// The parent with the highest priority wins. Ties go to the parent closest
// to a non-dummy ancestor (see [Graph.AncestorDistance]), then to the
// lexicographically smallest name.
func (g *Graph) PrimaryParent(id VertexID) VertexID {
	best := NoVertex
	for _, p := range g.Parents(id) {
		if best == NoVertex || g.preferParent(p, best) {
			best = p
		}
	}
	return best
}

func (g *Graph) preferParent(a, b VertexID) bool {
	va, vb := g.vertices[a], g.vertices[b]
	if va.Priority != vb.Priority {
		return va.Priority > vb.Priority
	}
	if da, db := g.AncestorDistance(a), g.AncestorDistance(b); da != db {
		return da < db
	}
	return va.Name < vb.Name
}

// PrimaryChildren returns the children whose primary parent is id, sorted
// with [Graph.Compare].
func (g *Graph) PrimaryChildren(id VertexID) []VertexID {
	var out []VertexID
	for _, c := range g.Children(id) {
		if g.PrimaryParent(c) == id {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, g.Compare)
	return out
}

// PrimarySiblings returns the other primary children of the primary parent
// of id, sorted with [Graph.Compare]. A root has no primary siblings.
func (g *Graph) PrimarySiblings(id VertexID) []VertexID {
	p := g.PrimaryParent(id)
	if p == NoVertex {
		return nil
	}
	return slices.DeleteFunc(g.PrimaryChildren(p), func(v VertexID) bool { return v == id })
}

// OrderKey returns the vertex whose attributes order id among its siblings.
// A node vertex is its own key. A dummy has no identity of its own and is
// keyed by the node at the source end of its path, reached by following
// incoming edges down the chain.
func (g *Graph) OrderKey(id VertexID) VertexID {
	v := id
	for g.IsDummy(v) {
		in := g.in[v]
		if len(in) == 0 {
			return v
		}
		v = g.edges[in[0]].Source
	}
	return v
}

// Compare orders vertices for placement among siblings: higher priority
// first, then ascending name, both taken from [Graph.OrderKey], and finally
// ascending vertex ID. It returns a negative number when a sorts before b.
func (g *Graph) Compare(a, b VertexID) int {
	ka, kb := g.vertices[g.OrderKey(a)], g.vertices[g.OrderKey(b)]
	if ka != nil && kb != nil {
		if c := cmp.Compare(kb.Priority, ka.Priority); c != 0 {
			return c
		}
		if c := cmp.Compare(ka.Name, kb.Name); c != 0 {
			return c
		}
	}
	return cmp.Compare(a, b)
}
