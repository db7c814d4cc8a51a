package dag

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownConnector is returned by [Graph.Path] when no edge carries the
	// connector name.
	ErrUnknownConnector = errors.New("unknown connector")

	// ErrBrokenPath is returned by [Graph.Path] and [Path.Validate] when the
	// edges of a connector do not chain from a node source to a node target
	// through dummies.
	ErrBrokenPath = errors.New("path edges do not chain source to target")
)

// Path is the chain of edges that carries one connector, ordered from the
// source end (the child node) to the target end (the parent node). Every
// intermediate vertex is a dummy.
type Path struct {
	Connector string
	Edges     []Edge
}

// Len returns the number of edges in the path.
func (p Path) Len() int { return len(p.Edges) }

// Source returns the vertex at the lower end of the path.
func (p Path) Source() VertexID { return p.Edges[0].Source }

// Target returns the vertex at the upper end of the path.
func (p Path) Target() VertexID { return p.Edges[len(p.Edges)-1].Target }

// Reversed reports whether the path runs against its connector's direction.
func (p Path) Reversed() bool { return p.Edges[0].Reversed }

// Dummies returns the intermediate vertices from the source end upward.
func (p Path) Dummies() []VertexID {
	out := make([]VertexID, 0, len(p.Edges)-1)
	for _, e := range p.Edges[:len(p.Edges)-1] {
		out = append(out, e.Target)
	}
	return out
}

// Validate checks that consecutive edges chain target to source, carry the
// path's connector, and that only the endpoints are node vertices.
func (p Path) Validate(g *Graph) error {
	if len(p.Edges) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrBrokenPath, p.Connector)
	}
	for i, e := range p.Edges {
		if e.Connector != p.Connector {
			return fmt.Errorf("%w: edge %d belongs to %s", ErrBrokenPath, e.ID, e.Connector)
		}
		if i > 0 && p.Edges[i-1].Target != e.Source {
			return fmt.Errorf("%w: %s breaks after edge %d", ErrBrokenPath, p.Connector, p.Edges[i-1].ID)
		}
		if i > 0 && !g.IsDummy(e.Source) {
			return fmt.Errorf("%w: %s passes through node %s", ErrBrokenPath, p.Connector, g.Name(e.Source))
		}
	}
	if g.IsDummy(p.Source()) || g.IsDummy(p.Target()) {
		return fmt.Errorf("%w: %s ends at a dummy", ErrBrokenPath, p.Connector)
	}
	return nil
}

// Path assembles the path of a connector by starting at its edge whose
// source is a node vertex and following dummy out-edges upward.
func (g *Graph) Path(connector string) (Path, error) {
	ids := g.connectors[connector]
	if len(ids) == 0 {
		return Path{}, fmt.Errorf("%w: %q", ErrUnknownConnector, connector)
	}
	var first *Edge
	for _, id := range ids {
		if e := g.edges[id]; !g.IsDummy(e.Source) {
			if first != nil {
				return Path{}, fmt.Errorf("%w: %s has two source edges", ErrBrokenPath, connector)
			}
			first = e
		}
	}
	if first == nil {
		return Path{}, fmt.Errorf("%w: %s has no source edge", ErrBrokenPath, connector)
	}

	p := Path{Connector: connector, Edges: []Edge{*first}}
	for cur := first; g.IsDummy(cur.Target); {
		out := g.out[cur.Target]
		if len(out) != 1 {
			return Path{}, fmt.Errorf("%w: %s stops at %s", ErrBrokenPath, connector, g.Name(cur.Target))
		}
		cur = g.edges[out[0]]
		if len(p.Edges) == len(ids) {
			return Path{}, fmt.Errorf("%w: %s loops", ErrBrokenPath, connector)
		}
		p.Edges = append(p.Edges, *cur)
	}
	if len(p.Edges) != len(ids) {
		return Path{}, fmt.Errorf("%w: %s has %d stray edges", ErrBrokenPath, connector, len(ids)-len(p.Edges))
	}
	return p, p.Validate(g)
}

// Connectors returns the names of all connectors in ascending order.
func (g *Graph) Connectors() []string {
	out := make([]string, 0, len(g.connectors))
	for c := range g.connectors {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// ConnectorsOf returns the connectors with an edge incident to id, in
// ascending order. For a node vertex these are the connectors it ends.
func (g *Graph) ConnectorsOf(id VertexID) []string {
	var out []string
	for _, e := range slices.Concat(g.out[id], g.in[id]) {
		if c := g.edges[e].Connector; !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// HasConnector reports whether any edge carries the connector name.
func (g *Graph) HasConnector(connector string) bool { return len(g.connectors[connector]) > 0 }
