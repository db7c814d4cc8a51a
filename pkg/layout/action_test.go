package layout

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/geom"
)

func TestActionKindText(t *testing.T) {
	for k := VertexPositioned; k <= DummyVertexRemoved; k++ {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}
		var back ActionKind
		if err := back.UnmarshalText(b); err != nil || back != k {
			t.Errorf("UnmarshalText(%s) = %v, %v, want %v", b, back, err, k)
		}
	}
	var k ActionKind
	if err := k.UnmarshalText([]byte("teleported")); err == nil {
		t.Error("UnmarshalText(unknown) error = nil")
	}
	if got := ActionKind(42).String(); got != "ActionKind(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestActionJSON(t *testing.T) {
	a := Action{Kind: PathRerouted, Connector: "e", Route: []geom.Point{{X: 1, Y: 2}}, Cause: 3}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"kind":"path_rerouted"`) {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{Action{Kind: VertexPositioned, Vertex: "A", Center: geom.Pt(1, 2)}, "vertex_positioned A (1, 2)"},
		{Action{Kind: VertexResized, Vertex: "A", Size: geom.Size{Width: 3, Height: 4}}, "vertex_resized A 3x4"},
		{Action{Kind: PathRerouted, Connector: "e", Route: []geom.Point{{X: 0, Y: 1}}}, "path_rerouted e (0, 1)"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestChainAndInChain(t *testing.T) {
	l := &actionLog{}
	a := l.add(Action{Cause: NoCause}, 1)
	b := l.add(Action{Cause: a}, 2)
	l.add(Action{Cause: NoCause}, 3)
	c := l.add(Action{Cause: b}, 4)

	if got := Chain(l.actions, c); !slices.Equal(got, []int{a, b, c}) {
		t.Errorf("Chain() = %v, want [0 1 3]", got)
	}
	tests := []struct {
		v    dag.VertexID
		want bool
	}{
		{1, true}, {2, true}, {4, true}, {3, false},
	}
	for _, tt := range tests {
		if got := l.inChain(c, tt.v); got != tt.want {
			t.Errorf("inChain(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
	if l.inChain(NoCause, 1) {
		t.Error("inChain(NoCause) = true")
	}
}

func TestTraceGraph(t *testing.T) {
	actions := []Action{
		{Kind: VertexPositioned, Vertex: "AB", Cause: NoCause},
		{Kind: VertexPositioned, Vertex: "R", Cause: 0},
		{Kind: VertexPositioned, Vertex: "B", Cause: 0},
		{Kind: PathRerouted, Connector: "e", Cause: NoCause},
	}
	g := TraceGraph(actions)
	if n := g.Nodes().Len(); n != 4 {
		t.Errorf("nodes = %d, want 4", n)
	}
	if !g.HasEdgeFromTo(0, 2) || g.HasEdgeFromTo(2, 0) || g.HasEdgeFromTo(0, 3) {
		t.Error("trace edges do not follow causes")
	}
	if n, ok := g.Node(2).(traceNode); !ok || n.Action().Vertex != "B" {
		t.Errorf("Node(2) = %v", g.Node(2))
	}

	data, err := MarshalTrace("edit", actions)
	if err != nil {
		t.Fatalf("MarshalTrace() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{"digraph edit", "a0", "a0 -> a1", "a0 -> a2"} {
		if !strings.Contains(out, want) {
			t.Errorf("MarshalTrace() missing %q:\n%s", want, out)
		}
	}
}
