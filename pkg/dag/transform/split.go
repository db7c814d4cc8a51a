package transform

import (
	"errors"
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/dag"
)

// ErrNotMergeable is returned by [Merge] when the vertex is not a dummy with
// exactly one incoming and one outgoing edge.
var ErrNotMergeable = errors.New("vertex is not a mergeable dummy")

// Split breaks an edge s→x into s→d→x through a new dummy vertex d and
// returns d. Both new edges keep the connector and reversal flag of the
// original.
//
// The original edge is removed before the replacements are added, so the
// dummy degree limit holds at every step even when s or x is a dummy.
func Split(g *dag.Graph, id dag.EdgeID) (dag.VertexID, error) {
	e, ok := g.Edge(id)
	if !ok {
		return dag.NoVertex, fmt.Errorf("split: %w: %d", dag.ErrUnknownEdge, id)
	}
	if err := g.RemoveEdge(id); err != nil {
		return dag.NoVertex, fmt.Errorf("split: %w", err)
	}
	d := g.AddDummy()
	if _, err := g.AddEdge(e.Source, d, e.Connector, e.Reversed); err != nil {
		return dag.NoVertex, fmt.Errorf("split %s: %w", e.Connector, err)
	}
	if _, err := g.AddEdge(d, e.Target, e.Connector, e.Reversed); err != nil {
		return dag.NoVertex, fmt.Errorf("split %s: %w", e.Connector, err)
	}
	return d, nil
}

// Merge removes the dummy d from a chain a→d→b and joins its neighbours with
// a single edge a→b, which it returns.
func Merge(g *dag.Graph, d dag.VertexID) (dag.EdgeID, error) {
	if !g.IsDummy(d) {
		return -1, fmt.Errorf("merge %s: %w", g.Name(d), ErrNotMergeable)
	}
	in, out := g.InEdges(d), g.OutEdges(d)
	if len(in) != 1 || len(out) != 1 {
		return -1, fmt.Errorf("merge %s: %w: %d in, %d out", g.Name(d), ErrNotMergeable, len(in), len(out))
	}
	lower, upper := in[0], out[0]
	if err := g.RemoveVertex(d); err != nil {
		return -1, fmt.Errorf("merge: %w", err)
	}
	id, err := g.AddEdge(lower.Source, upper.Target, upper.Connector, upper.Reversed)
	if err != nil {
		return -1, fmt.Errorf("merge %s: %w", upper.Connector, err)
	}
	return id, nil
}
