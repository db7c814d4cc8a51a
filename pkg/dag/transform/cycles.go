package transform

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/boxlayout/pkg/dag"
)

// Reaches reports whether to can be reached from from by following edges
// toward parents, i.e. whether to is an ancestor of from. Every vertex
// reaches itself.
func Reaches(g *dag.Graph, from, to dag.VertexID) bool {
	view := g.Directed()
	if view.Node(int64(from)) == nil || view.Node(int64(to)) == nil {
		return false
	}
	return topo.PathExistsIn(view, simple.Node(from), simple.Node(to))
}

// WouldCycle reports whether adding the edge source→target would close a
// directed cycle: either the endpoints coincide or source is already an
// ancestor of target.
//
// Callers that must keep the graph acyclic insert target→source instead
// and mark the edge reversed.
func WouldCycle(g *dag.Graph, source, target dag.VertexID) bool {
	return source == target || Reaches(g, target, source)
}
