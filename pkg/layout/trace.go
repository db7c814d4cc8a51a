package layout

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// traceNode is an action in the causal trace graph.
type traceNode struct {
	id     int64
	action Action
}

func (n traceNode) ID() int64      { return n.id }
func (n traceNode) DOTID() string  { return fmt.Sprintf("a%d", n.id) }
func (n traceNode) Action() Action { return n.action }

func (n traceNode) Attributes() []encoding.Attribute {
	shape := "box"
	if n.action.Cause == NoCause {
		shape = "doublecircle"
	}
	return []encoding.Attribute{
		{Key: "label", Value: n.action.String()},
		{Key: "shape", Value: shape},
	}
}

// TraceGraph returns the causal graph of an edit's actions: one node per
// action, with node ID equal to the action index, and an edge from every
// cause to the actions it triggered.
func TraceGraph(actions []Action) graph.Directed {
	g := simple.NewDirectedGraph()
	for i, a := range actions {
		g.AddNode(traceNode{id: int64(i), action: a})
	}
	for i, a := range actions {
		if a.Cause == NoCause || a.Cause == i || a.Cause >= len(actions) {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(int64(a.Cause)), g.Node(int64(i))))
	}
	return g
}

// MarshalTrace encodes the causal graph of actions in DOT.
func MarshalTrace(name string, actions []Action) ([]byte, error) {
	return dot.Marshal(TraceGraph(actions), name, "", "  ")
}
