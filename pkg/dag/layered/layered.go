// Package layered maintains the layer assignment of a [dag.Graph].
//
// A [Graph] wraps the low-level graph and keeps, as an invariant, every
// vertex strictly below all of its parents: layer(child) > layer(parent).
// Inserting an edge may push the child and its descendants down; layers are
// never lowered, so layout churn only ever goes one way.
//
// Node vertices are raised directly. Dummy chains absorb raises: when a
// node moves down, a dummy path hanging below it only forces the node at
// the path's source end far enough down to keep a span of at least one,
// and the path is then re-normalized to its new span with
// [transform.Normalize]. Every dummy k steps above its path's target sits on
// layer(target)+k.
package layered

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/dag/transform"
)

var (
	// ErrLayering is returned by [Graph.Check] when a vertex is not strictly
	// below one of its parents, or a vertex has no layer.
	ErrLayering = errors.New("vertex is not below its parent")

	// ErrPathLength is returned by [Graph.Check] when a connector's path
	// length differs from the layer span of its endpoints.
	ErrPathLength = errors.New("path length differs from layer span")

	// ErrNotNode is returned when an operation that needs node vertices is
	// given a dummy.
	ErrNotNode = errors.New("vertex is a dummy")
)

// Raise records a node vertex whose layer grew.
type Raise struct {
	Vertex dag.VertexID
	From   int
	To     int
}

// Update reports the side effects of a structural change.
type Update struct {
	// Raised lists node vertices pushed down, in the order they moved.
	Raised []Raise
	// Created and Removed list dummy vertices added to or dropped from paths.
	Created []dag.VertexID
	Removed []dag.VertexID
	// Relayered lists surviving dummies whose layer changed.
	Relayered []dag.VertexID
}

func (u *Update) merge(ch transform.Change) {
	u.Created = append(u.Created, ch.Created...)
	u.Removed = append(u.Removed, ch.Removed...)
}

// Graph is a layered view of a [dag.Graph]. The wrapped graph must only be
// mutated through Graph while layers are tracked.
type Graph struct {
	g     *dag.Graph
	layer map[dag.VertexID]int
}

// New wraps g. Vertices already in g start on layer 0 and must be added with
// [Graph.AddVertex] before edges touching them are inserted.
func New(g *dag.Graph) *Graph {
	return &Graph{g: g, layer: make(map[dag.VertexID]int)}
}

// DAG returns the wrapped low-level graph.
func (l *Graph) DAG() *dag.Graph { return l.g }

// AddVertex starts tracking v on the given layer.
func (l *Graph) AddVertex(v dag.VertexID, layer int) error {
	if _, ok := l.g.Vertex(v); !ok {
		return fmt.Errorf("%w: %d", dag.ErrUnknownVertex, v)
	}
	l.layer[v] = max(layer, 0)
	return nil
}

// RemoveVertex stops tracking v and removes it from the wrapped graph with
// all incident edges. Connectors touching v must be disconnected first if
// their dummies are to be cleaned up.
func (l *Graph) RemoveVertex(v dag.VertexID) error {
	if err := l.g.RemoveVertex(v); err != nil {
		return err
	}
	delete(l.layer, v)
	return nil
}

// Layer returns the layer of v.
func (l *Graph) Layer(v dag.VertexID) (int, bool) {
	n, ok := l.layer[v]
	return n, ok
}

// MinimumLayer returns the smallest layer v could occupy given its parents:
// one below the lowest parent, or 0 for a root.
func (l *Graph) MinimumLayer(v dag.VertexID) int {
	m := 0
	for _, p := range l.g.Parents(v) {
		m = max(m, l.layer[p]+1)
	}
	return m
}

// Span returns layer(source) - layer(target) for a connector's endpoints.
func (l *Graph) Span(p dag.Path) int { return l.layer[p.Source()] - l.layer[p.Target()] }

// Connect inserts the connector source→target as a single edge, lowers
// source and its descendants as far as needed, and re-normalizes every path
// whose endpoints moved. Both endpoints must be tracked node vertices and
// the edge must not close a cycle.
func (l *Graph) Connect(connector string, source, target dag.VertexID, reversed bool) (Update, error) {
	for _, v := range []dag.VertexID{source, target} {
		if _, ok := l.layer[v]; !ok {
			return Update{}, fmt.Errorf("connect %s: %w: %d", connector, dag.ErrUnknownVertex, v)
		}
		if l.g.IsDummy(v) {
			return Update{}, fmt.Errorf("connect %s: %w: %s", connector, ErrNotNode, l.g.Name(v))
		}
	}
	if _, err := l.g.AddEdge(source, target, connector, reversed); err != nil {
		return Update{}, fmt.Errorf("connect %s: %w", connector, err)
	}

	var u Update
	if need := l.layer[target] + 1; l.layer[source] < need {
		u.Raised = l.raise(source, need)
	}

	pending := []string{connector}
	for _, r := range u.Raised {
		for _, c := range l.g.ConnectorsOf(r.Vertex) {
			if !slices.Contains(pending, c) {
				pending = append(pending, c)
			}
		}
	}
	for _, c := range pending {
		if err := l.NormalizePath(c, &u); err != nil {
			return u, err
		}
	}
	return u, nil
}

// raise moves v down to layer and pushes descendants after it. A child
// reached through a dummy chain is measured at the node ending the chain;
// the chain itself is re-normalized afterwards.
func (l *Graph) raise(v dag.VertexID, layer int) []Raise {
	type item struct {
		v     dag.VertexID
		layer int
	}
	var raised []Raise
	queue := []item{{v, layer}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		cur := l.layer[it.v]
		if cur >= it.layer {
			continue
		}
		l.layer[it.v] = it.layer
		raised = append(raised, Raise{Vertex: it.v, From: cur, To: it.layer})
		for _, c := range l.g.Children(it.v) {
			r := l.chainSource(c)
			if need := it.layer + 1; l.layer[r] < need {
				queue = append(queue, item{r, need})
			}
		}
	}
	return raised
}

// chainSource follows incoming edges from v down through dummies.
func (l *Graph) chainSource(v dag.VertexID) dag.VertexID {
	for l.g.IsDummy(v) {
		in := l.g.InEdges(v)
		if len(in) == 0 {
			break
		}
		v = in[0].Source
	}
	return v
}

// NormalizePath adjusts the dummies of a connector to its current span and
// assigns each dummy k steps above the target to layer(target)+k. Effects
// are appended to u.
func (l *Graph) NormalizePath(connector string, u *Update) error {
	p, err := l.g.Path(connector)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	ch, err := transform.Normalize(l.g, connector, l.Span(p))
	if err != nil {
		return err
	}
	u.merge(ch)
	for _, d := range ch.Removed {
		delete(l.layer, d)
	}

	if p, err = l.g.Path(connector); err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	dummies := p.Dummies()
	base := l.layer[p.Target()]
	for i, d := range dummies {
		want := base + len(dummies) - i
		cur, tracked := l.layer[d]
		l.layer[d] = want
		if tracked && cur != want && !slices.Contains(u.Created, d) && !slices.Contains(u.Relayered, d) {
			u.Relayered = append(u.Relayered, d)
		}
	}
	return nil
}

// Disconnect removes every edge of a connector and its dummies. Layers of
// the endpoints are left unchanged.
func (l *Graph) Disconnect(connector string) (Update, error) {
	p, err := l.g.Path(connector)
	if err != nil {
		return Update{}, fmt.Errorf("disconnect: %w", err)
	}
	var u Update
	for _, e := range p.Edges {
		if err := l.g.RemoveEdge(e.ID); err != nil {
			return u, fmt.Errorf("disconnect %s: %w", connector, err)
		}
	}
	for _, d := range p.Dummies() {
		if err := l.RemoveVertex(d); err != nil {
			return u, fmt.Errorf("disconnect %s: %w", connector, err)
		}
		u.Removed = append(u.Removed, d)
	}
	return u, nil
}

// Check verifies the layering invariant for every edge and the path length
// invariant for every connector.
func (l *Graph) Check() error {
	for _, v := range l.g.Vertices() {
		if _, ok := l.layer[v]; !ok {
			return fmt.Errorf("%w: %s has no layer", ErrLayering, l.g.Name(v))
		}
	}
	for _, e := range l.g.Edges() {
		if l.layer[e.Source] <= l.layer[e.Target] {
			return fmt.Errorf("%w: %s (layer %d) under %s (layer %d)", ErrLayering,
				l.g.Name(e.Source), l.layer[e.Source], l.g.Name(e.Target), l.layer[e.Target])
		}
	}
	for _, c := range l.g.Connectors() {
		p, err := l.g.Path(c)
		if err != nil {
			return err
		}
		if span := l.Span(p); p.Len() != span {
			return fmt.Errorf("%w: %s has %d edges over %d layers", ErrPathLength, c, p.Len(), span)
		}
	}
	return nil
}
