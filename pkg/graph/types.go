package graph

import (
	"github.com/matzehuels/boxlayout/pkg/geom"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds.
const (
	KindNode  = "node"
	KindDummy = "dummy"
)

// Output formats understood by the renderers and the server.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// =============================================================================
// Layout - Positioned Diagram
// =============================================================================

// Layout is the serialization format for a positioned diagram: every node and
// dummy vertex with its center and size, every connector with its route, and
// the layer structure that produced them.
//
// The same value is used for JSON files, API responses, session snapshots in
// MongoDB and cache entries.
type Layout struct {
	HorizontalGap float64 `json:"horizontal_gap" bson:"horizontal_gap"`
	VerticalGap   float64 `json:"vertical_gap" bson:"vertical_gap"`

	// Bounding box of all vertices.
	Bounds geom.Rect `json:"bounds" bson:"bounds"`

	Nodes      []Node      `json:"nodes" bson:"nodes"`
	Connectors []Connector `json:"connectors,omitempty" bson:"connectors,omitempty"`

	// Layers lists vertex IDs per layer in left-to-right order.
	Layers [][]string `json:"layers,omitempty" bson:"layers,omitempty"`
}

// =============================================================================
// Node - Positioned Vertex
// =============================================================================

// Node is a positioned vertex. Dummy vertices carry connectors across layers;
// they have zero size and IDs starting with '*'.
type Node struct {
	ID       string     `json:"id" bson:"id"`
	Kind     string     `json:"kind,omitempty" bson:"kind,omitempty"` // "node" (default) or "dummy"
	Center   geom.Point `json:"center" bson:"center"`
	Width    float64    `json:"width" bson:"width"`
	Height   float64    `json:"height" bson:"height"`
	Priority int        `json:"priority,omitempty" bson:"priority,omitempty"`
	Layer    int        `json:"layer" bson:"layer"`
	Index    int        `json:"index" bson:"index"`
	Parent   string     `json:"parent,omitempty" bson:"parent,omitempty"` // primary parent
}

// IsDummy returns true if this is a dummy vertex.
func (n Node) IsDummy() bool { return n.Kind == KindDummy }

// Rect returns the box occupied by the node.
func (n Node) Rect() geom.Rect {
	return geom.Centered(n.Center, geom.Size{Width: n.Width, Height: n.Height})
}

// =============================================================================
// Connector - Routed Edge
// =============================================================================

// Connector is a diagram edge from a child (Source) to a parent (Target).
// Route runs from the source attach point through the centers of the dummy
// vertices to the target attach point.
type Connector struct {
	ID       string       `json:"id" bson:"id"`
	Source   string       `json:"source" bson:"source"`
	Target   string       `json:"target" bson:"target"`
	Reversed bool         `json:"reversed,omitempty" bson:"reversed,omitempty"`
	Route    []geom.Point `json:"route,omitempty" bson:"route,omitempty"`
}

// Node returns the node or dummy with the given ID.
func (l Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Connector returns the connector with the given ID.
func (l Layout) Connector(id string) (Connector, bool) {
	for _, c := range l.Connectors {
		if c.ID == id {
			return c, true
		}
	}
	return Connector{}, false
}

// RealNodes returns the nodes that are not dummies, in layout order.
func (l Layout) RealNodes() []Node {
	var out []Node
	for _, n := range l.Nodes {
		if !n.IsDummy() {
			out = append(out, n)
		}
	}
	return out
}
