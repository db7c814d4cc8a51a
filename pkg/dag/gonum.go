package dag

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Directed returns a read-only gonum view of g. Edges run from child to
// parent, so From yields parents and To yields children. The view reads the
// live graph and must not be used across mutations.
func (g *Graph) Directed() graph.Directed { return view{g} }

// Acyclic reports whether g has no directed cycle.
func (g *Graph) Acyclic() bool {
	_, err := topo.Sort(view{g})
	return err == nil
}

type view struct{ g *Graph }

func (v view) Node(id int64) graph.Node {
	if _, ok := v.g.vertices[VertexID(id)]; !ok {
		return nil
	}
	return simple.Node(id)
}

func (v view) Nodes() graph.Nodes { return v.nodes(v.g.Vertices()) }

func (v view) From(id int64) graph.Nodes { return v.nodes(v.g.Parents(VertexID(id))) }

func (v view) To(id int64) graph.Nodes { return v.nodes(v.g.Children(VertexID(id))) }

func (v view) HasEdgeBetween(xid, yid int64) bool {
	return v.HasEdgeFromTo(xid, yid) || v.HasEdgeFromTo(yid, xid)
}

func (v view) HasEdgeFromTo(uid, vid int64) bool {
	for _, e := range v.g.out[VertexID(uid)] {
		if v.g.edges[e].Target == VertexID(vid) {
			return true
		}
	}
	return false
}

func (v view) Edge(uid, vid int64) graph.Edge {
	if !v.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

func (v view) nodes(ids []VertexID) graph.Nodes {
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = simple.Node(id)
	}
	return iterator.NewOrderedNodes(nodes)
}
