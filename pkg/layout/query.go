package layout

import (
	"fmt"
	"slices"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/geom"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layers"
)

// Node returns the positioned state of a node or dummy vertex.
func (e *Engine) Node(id string) (graph.Node, bool) {
	v, ok := e.g.Lookup(id)
	if !ok {
		return graph.Node{}, false
	}
	return e.export(v), true
}

// Route returns the last reported route of a connector.
func (e *Engine) Route(connector string) ([]geom.Point, bool) {
	pts, ok := e.routes[connector]
	return slices.Clone(pts), ok
}

// Location returns the layer and in-layer index of a node or dummy vertex.
func (e *Engine) Location(id string) (layers.Location, bool) {
	v, ok := e.g.Lookup(id)
	if !ok {
		return layers.Location{}, false
	}
	return e.ls.Location(v)
}

// NodeCount returns the number of nodes, not counting dummies.
func (e *Engine) NodeCount() int {
	n := 0
	for _, v := range e.g.Vertices() {
		if !e.g.IsDummy(v) {
			n++
		}
	}
	return n
}

// Connectors returns the connector IDs in sorted order.
func (e *Engine) Connectors() []string { return e.g.Connectors() }

func (e *Engine) export(v dag.VertexID) graph.Node {
	vx, _ := e.g.Vertex(v)
	n := graph.Node{
		ID:       vx.Name,
		Kind:     graph.KindNode,
		Width:    vx.Size.Width,
		Height:   vx.Size.Height,
		Priority: vx.Priority,
	}
	if vx.IsDummy() {
		n.Kind = graph.KindDummy
	}
	if _, ok := e.pos[v]; ok {
		n.Center = e.center(v)
	}
	if loc, ok := e.ls.Location(v); ok {
		n.Layer, n.Index = loc.Layer, loc.Index
	}
	if pp := e.g.PrimaryParent(v); pp != dag.NoVertex {
		n.Parent = e.g.Name(pp)
	}
	return n
}

// Snapshot exports the current layout. Nodes appear in layer order.
func (e *Engine) Snapshot() graph.Layout {
	out := graph.Layout{
		HorizontalGap: e.cfg.HorizontalGap,
		VerticalGap:   e.cfg.VerticalGap,
		Layers:        make([][]string, e.ls.Len()),
	}
	first := true
	e.ls.Each(func(v dag.VertexID, loc layers.Location) {
		n := e.export(v)
		out.Nodes = append(out.Nodes, n)
		out.Layers[loc.Layer] = append(out.Layers[loc.Layer], n.ID)
		if first {
			out.Bounds = n.Rect()
			first = false
		} else {
			out.Bounds = out.Bounds.Union(n.Rect())
		}
	})
	for _, c := range e.g.Connectors() {
		p, err := e.g.Path(c)
		if err != nil {
			continue
		}
		src, dst := p.Source(), p.Target()
		if p.Reversed() {
			src, dst = dst, src
		}
		out.Connectors = append(out.Connectors, graph.Connector{
			ID:       c,
			Source:   e.g.Name(src),
			Target:   e.g.Name(dst),
			Reversed: p.Reversed(),
			Route:    slices.Clone(e.routes[c]),
		})
	}
	return out
}

// Overlap is a pair of layer-adjacent vertices closer than the horizontal
// gap, or out of order.
type Overlap struct {
	Left  string  `json:"left"`
	Right string  `json:"right"`
	Gap   float64 `json:"gap"`
}

// Overlaps lists every adjacent pair of placed vertices whose free space is
// below the horizontal gap.
func (e *Engine) Overlaps() []Overlap {
	var out []Overlap
	for _, row := range e.ls.Filter(e.placed) {
		for i := 0; i+1 < len(row); i++ {
			a, b := row[i], row[i+1]
			if gap := e.left(b) - e.right(a); gap < e.cfg.HorizontalGap-geom.Epsilon {
				out = append(out, Overlap{Left: e.g.Name(a), Right: e.g.Name(b), Gap: gap})
			}
		}
	}
	return out
}

// Validate checks every structural invariant: graph integrity and the dummy
// degree limit, the layering, path lengths, layer membership, and that
// every vertex is placed. It does not report overlaps.
func (e *Engine) Validate() error {
	if e.err != nil {
		return e.err
	}
	if err := e.g.Validate(); err != nil {
		return e.invariant(err, "graph")
	}
	if err := e.check(); err != nil {
		return err
	}
	for _, c := range e.g.Connectors() {
		p, err := e.g.Path(c)
		if err == nil {
			err = p.Validate(e.g)
		}
		if err != nil {
			return e.invariant(err, "connector %s", c)
		}
	}
	for _, v := range e.g.Vertices() {
		if !e.placed(v) {
			return errors.New(errors.ErrCodeInvariant, "%s is floating", e.g.Name(v))
		}
	}
	return nil
}

func (o Overlap) String() string {
	return fmt.Sprintf("%s|%s (%g)", o.Left, o.Right, o.Gap)
}

// Crossings counts connector segment crossings between adjacent layers.
func (e *Engine) Crossings() int {
	return dag.CountCrossings(e.g, e.ls.Filter(func(dag.VertexID) bool { return true }))
}
