package layout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/geom"
)

// ActionKind identifies what a layout action did.
type ActionKind int

const (
	// VertexPositioned: a node or dummy got a new center.
	VertexPositioned ActionKind = iota
	// VertexResized: a node changed size; its center is unchanged.
	VertexResized
	// PathRerouted: a connector's route points changed.
	PathRerouted
	// DummyVertexCreated and DummyVertexRemoved are bookkeeping records a
	// renderer may ignore.
	DummyVertexCreated
	DummyVertexRemoved
)

var actionKindNames = [...]string{
	VertexPositioned:   "vertex_positioned",
	VertexResized:      "vertex_resized",
	PathRerouted:       "path_rerouted",
	DummyVertexCreated: "dummy_created",
	DummyVertexRemoved: "dummy_removed",
}

func (k ActionKind) String() string {
	if int(k) < len(actionKindNames) {
		return actionKindNames[k]
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *ActionKind) UnmarshalText(b []byte) error {
	for i, name := range actionKindNames {
		if name == string(b) {
			*k = ActionKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown action kind %q", b)
}

// NoCause marks an action that starts a causal chain.
const NoCause = -1

// Action is one record of the layout log. Cause is the index, within the
// same edit's action list, of the action that triggered this one, or
// [NoCause].
type Action struct {
	Kind      ActionKind   `json:"kind"`
	Vertex    string       `json:"vertex,omitempty"`
	Connector string       `json:"connector,omitempty"`
	Center    geom.Point   `json:"center"`
	Size      geom.Size    `json:"size"`
	Route     []geom.Point `json:"route,omitempty"`
	Cause     int          `json:"cause"`
}

func (a Action) String() string {
	var b strings.Builder
	b.WriteString(a.Kind.String())
	switch a.Kind {
	case PathRerouted:
		fmt.Fprintf(&b, " %s", a.Connector)
		for _, p := range a.Route {
			fmt.Fprintf(&b, " %s", p)
		}
	case VertexResized:
		fmt.Fprintf(&b, " %s %gx%g", a.Vertex, a.Size.Width, a.Size.Height)
	default:
		fmt.Fprintf(&b, " %s %s", a.Vertex, a.Center)
	}
	return b.String()
}

// actionLog collects the actions of one edit. For each action it also keeps
// the vertex the action moved, so a causal chain can be searched for a
// vertex without name lookups.
type actionLog struct {
	actions []Action
	movers  []dag.VertexID
}

func (l *actionLog) add(a Action, v dag.VertexID) int {
	l.actions = append(l.actions, a)
	l.movers = append(l.movers, v)
	return len(l.actions) - 1
}

// inChain reports whether v was moved by the action at index i or by any
// action in its chain of causes.
func (l *actionLog) inChain(i int, v dag.VertexID) bool {
	for i >= 0 && i < len(l.actions) {
		if l.movers[i] == v {
			return true
		}
		i = l.actions[i].Cause
	}
	return false
}

// Chain returns the indices of the causal chain ending at i, root first.
func Chain(actions []Action, i int) []int {
	var out []int
	for i >= 0 && i < len(actions) && len(out) <= len(actions) {
		out = append(out, i)
		i = actions[i].Cause
	}
	slices.Reverse(out)
	return out
}
