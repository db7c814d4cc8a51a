package dag

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/matzehuels/boxlayout/pkg/geom"
)

var (
	// ErrInvalidName is returned by [Graph.AddVertex] when the vertex name is
	// empty or starts with the dummy prefix '*'.
	ErrInvalidName = errors.New("vertex name must be non-empty and must not start with '*'")

	// ErrDuplicateName is returned by [Graph.AddVertex] when a vertex with the
	// same name already exists. Names are the external identity of nodes.
	ErrDuplicateName = errors.New("duplicate vertex name")

	// ErrUnknownVertex is returned when a vertex ID does not refer to a live
	// vertex of the graph.
	ErrUnknownVertex = errors.New("unknown vertex")

	// ErrUnknownEdge is returned by [Graph.RemoveEdge] for an edge that was
	// never added or was already removed.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrSelfLoop is returned by [Graph.AddEdge] when source and target are the
	// same vertex.
	ErrSelfLoop = errors.New("edge source and target must differ")

	// ErrDummyDegree is returned by [Graph.AddEdge] when the edge would give a
	// dummy vertex a second incoming or a second outgoing edge, and by
	// [Graph.Validate] if such a vertex is found.
	ErrDummyDegree = errors.New("dummy vertex already has an edge in that direction")

	// ErrGraphHasCycle is returned by [Graph.Validate] when the edges form a
	// directed cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// VertexID addresses a vertex in the graph arena. IDs are never reused
// within one Graph.
type VertexID int

// NoVertex is returned by queries that have no vertex to report, such as
// [Graph.PrimaryParent] of a root.
const NoVertex VertexID = -1

// EdgeID addresses an edge in the graph arena.
type EdgeID int

// Kind distinguishes diagram nodes from dummy vertices.
type Kind int

const (
	// KindNode is a vertex that represents a diagram node.
	KindNode Kind = iota
	// KindDummy is a zero-size vertex carrying an edge through one layer.
	KindDummy
)

func (k Kind) String() string {
	if k == KindDummy {
		return "dummy"
	}
	return "node"
}

// DummyPrefix starts the generated name of every dummy vertex.
const DummyPrefix = "*"

// Vertex is a layout vertex. Dummy vertices have the zero Size and priority 0.
type Vertex struct {
	ID       VertexID
	Name     string
	Kind     Kind
	Size     geom.Size
	Priority int
}

// IsDummy reports whether v is a dummy vertex.
func (v Vertex) IsDummy() bool { return v.Kind == KindDummy }

// Edge is a directed layout edge. Edges point up the layering: Source is
// the child (drawn lower) and Target is the parent. Connector names the
// diagram connector the edge belongs to; Reversed marks edges whose direction
// was flipped to keep the graph acyclic.
type Edge struct {
	ID        EdgeID
	Source    VertexID
	Target    VertexID
	Connector string
	Reversed  bool
}

// Graph is the low-level layout graph: an arena of vertices and edges
// addressed by stable integer IDs.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use; the dummy counter is owned by the instance, so separate graphs never
// share state.
type Graph struct {
	vertices   map[VertexID]*Vertex
	edges      map[EdgeID]*Edge
	out        map[VertexID][]EdgeID // vertex -> edges toward parents
	in         map[VertexID][]EdgeID // vertex -> edges from children
	names      map[string]VertexID
	connectors map[string][]EdgeID
	nextVertex VertexID
	nextEdge   EdgeID
	dummies    int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		vertices:   make(map[VertexID]*Vertex),
		edges:      make(map[EdgeID]*Edge),
		out:        make(map[VertexID][]EdgeID),
		in:         make(map[VertexID][]EdgeID),
		names:      make(map[string]VertexID),
		connectors: make(map[string][]EdgeID),
	}
}

// AddVertex adds a node vertex and returns its ID.
func (g *Graph) AddVertex(name string, size geom.Size, priority int) (VertexID, error) {
	if name == "" || name[:1] == DummyPrefix {
		return NoVertex, ErrInvalidName
	}
	if _, exists := g.names[name]; exists {
		return NoVertex, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return g.add(Vertex{Name: name, Kind: KindNode, Size: size, Priority: priority}), nil
}

// AddDummy adds a dummy vertex named "*N", where N counts the dummies this
// graph has created so far, starting at 1.
func (g *Graph) AddDummy() VertexID {
	g.dummies++
	return g.add(Vertex{Name: DummyPrefix + strconv.Itoa(g.dummies), Kind: KindDummy})
}

func (g *Graph) add(v Vertex) VertexID {
	v.ID = g.nextVertex
	g.nextVertex++
	g.vertices[v.ID] = &v
	g.names[v.Name] = v.ID
	return v.ID
}

// RemoveVertex removes a vertex together with every edge incident to it.
func (g *Graph) RemoveVertex(id VertexID) error {
	v, ok := g.vertices[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	for _, e := range slices.Concat(g.out[id], g.in[id]) {
		if _, live := g.edges[e]; live {
			g.removeEdge(e)
		}
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.names, v.Name)
	delete(g.vertices, id)
	return nil
}

// Resize changes the size of a node vertex.
func (g *Graph) Resize(id VertexID, size geom.Size) error {
	v, ok := g.vertices[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	v.Size = size
	return nil
}

// AddEdge adds the edge source→target tagged with a connector name.
//
// The degree limit of dummy vertices is checked on every insertion: a dummy
// source that already has an outgoing edge, or a dummy target that already
// has an incoming edge, makes AddEdge fail with [ErrDummyDegree] and leaves
// the graph unchanged. AddEdge does not check for cycles.
func (g *Graph) AddEdge(source, target VertexID, connector string, reversed bool) (EdgeID, error) {
	src, ok := g.vertices[source]
	if !ok {
		return -1, fmt.Errorf("source: %w: %d", ErrUnknownVertex, source)
	}
	dst, ok := g.vertices[target]
	if !ok {
		return -1, fmt.Errorf("target: %w: %d", ErrUnknownVertex, target)
	}
	if source == target {
		return -1, ErrSelfLoop
	}
	if src.IsDummy() && len(g.out[source]) > 0 {
		return -1, fmt.Errorf("%w: %s has an outgoing edge", ErrDummyDegree, src.Name)
	}
	if dst.IsDummy() && len(g.in[target]) > 0 {
		return -1, fmt.Errorf("%w: %s has an incoming edge", ErrDummyDegree, dst.Name)
	}

	e := &Edge{ID: g.nextEdge, Source: source, Target: target, Connector: connector, Reversed: reversed}
	g.nextEdge++
	g.edges[e.ID] = e
	g.out[source] = append(g.out[source], e.ID)
	g.in[target] = append(g.in[target], e.ID)
	g.connectors[connector] = append(g.connectors[connector], e.ID)
	return e.ID, nil
}

// RemoveEdge removes an edge.
func (g *Graph) RemoveEdge(id EdgeID) error {
	if _, ok := g.edges[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEdge, id)
	}
	g.removeEdge(id)
	return nil
}

func (g *Graph) removeEdge(id EdgeID) {
	e := g.edges[id]
	drop := func(ids []EdgeID) []EdgeID { return slices.DeleteFunc(ids, func(x EdgeID) bool { return x == id }) }
	g.out[e.Source] = drop(g.out[e.Source])
	g.in[e.Target] = drop(g.in[e.Target])
	if rest := drop(g.connectors[e.Connector]); len(rest) > 0 {
		g.connectors[e.Connector] = rest
	} else {
		delete(g.connectors, e.Connector)
	}
	delete(g.edges, id)
}

// Vertex returns the vertex with the given ID.
func (g *Graph) Vertex(id VertexID) (Vertex, bool) {
	v, ok := g.vertices[id]
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// Lookup returns the ID of the vertex with the given name.
func (g *Graph) Lookup(name string) (VertexID, bool) {
	id, ok := g.names[name]
	return id, ok
}

// Name returns the name of a vertex, or "" if it does not exist.
func (g *Graph) Name(id VertexID) string {
	if v, ok := g.vertices[id]; ok {
		return v.Name
	}
	return ""
}

// IsDummy reports whether id is a live dummy vertex.
func (g *Graph) IsDummy(id VertexID) bool {
	v, ok := g.vertices[id]
	return ok && v.IsDummy()
}

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	e, ok := g.edges[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Vertices returns the IDs of all vertices in ascending order.
func (g *Graph) Vertices() []VertexID {
	ids := make([]VertexID, 0, len(g.vertices))
	for id := range g.vertices {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Edges returns all edges ordered by ID.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b Edge) int { return int(a.ID - b.ID) })
	return out
}

// VertexCount returns the number of live vertices, dummies included.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// OutEdges returns the edges leading from id to its parents, in insertion order.
func (g *Graph) OutEdges(id VertexID) []Edge { return g.collect(g.out[id]) }

// InEdges returns the edges leading from the children of id, in insertion order.
func (g *Graph) InEdges(id VertexID) []Edge { return g.collect(g.in[id]) }

func (g *Graph) collect(ids []EdgeID) []Edge {
	if len(ids) == 0 {
		return nil
	}
	out := make([]Edge, len(ids))
	for i, id := range ids {
		out[i] = *g.edges[id]
	}
	return out
}

// Parents returns the distinct parents of id in edge insertion order.
func (g *Graph) Parents(id VertexID) []VertexID {
	var out []VertexID
	for _, e := range g.out[id] {
		if t := g.edges[e].Target; !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// Children returns the distinct children of id in edge insertion order.
func (g *Graph) Children(id VertexID) []VertexID {
	var out []VertexID
	for _, e := range g.in[id] {
		if s := g.edges[e].Source; !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Siblings returns the vertices other than id that share at least one parent
// with it, in ascending ID order.
func (g *Graph) Siblings(id VertexID) []VertexID {
	var out []VertexID
	for _, p := range g.Parents(id) {
		for _, c := range g.Children(p) {
			if c != id && !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Rank returns 1 + the maximum rank of the parents of id, or 0 for a vertex
// without parents.
func (g *Graph) Rank(id VertexID) int {
	memo := make(map[VertexID]int)
	var rank func(VertexID) int
	rank = func(v VertexID) int {
		if r, ok := memo[v]; ok {
			return r
		}
		r := 0
		for _, p := range g.Parents(v) {
			r = max(r, rank(p)+1)
		}
		memo[v] = r
		return r
	}
	return rank(id)
}

// Descendants returns every vertex reachable from id by following edges
// downward, in breadth-first order. id itself is not included.
func (g *Graph) Descendants(id VertexID) []VertexID {
	seen := map[VertexID]bool{id: true}
	var out []VertexID
	queue := []VertexID{id}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, c := range g.Children(v) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
				queue = append(queue, c)
			}
		}
	}
	return out
}

// Validate checks structural integrity: every edge references live
// vertices, no dummy exceeds the degree limit, and the graph is acyclic.
func (g *Graph) Validate() error {
	for _, e := range g.Edges() {
		if _, ok := g.vertices[e.Source]; !ok {
			return fmt.Errorf("edge %d: %w: %d", e.ID, ErrUnknownVertex, e.Source)
		}
		if _, ok := g.vertices[e.Target]; !ok {
			return fmt.Errorf("edge %d: %w: %d", e.ID, ErrUnknownVertex, e.Target)
		}
	}
	for id, v := range g.vertices {
		if v.IsDummy() && (len(g.out[id]) > 1 || len(g.in[id]) > 1) {
			return fmt.Errorf("%w: %s", ErrDummyDegree, v.Name)
		}
	}
	if !g.Acyclic() {
		return ErrGraphHasCycle
	}
	return nil
}
