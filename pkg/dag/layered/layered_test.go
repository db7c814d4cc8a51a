package layered

import (
	"errors"
	"testing"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/geom"
)

type fixture struct {
	t  *testing.T
	l  *Graph
	id map[string]dag.VertexID
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	f := &fixture{t: t, l: New(dag.New()), id: map[string]dag.VertexID{}}
	for _, n := range names {
		v, err := f.l.DAG().AddVertex(n, geom.Size{Width: 40, Height: 20}, 0)
		if err != nil {
			t.Fatalf("AddVertex(%q) error: %v", n, err)
		}
		if err := f.l.AddVertex(v, 0); err != nil {
			t.Fatalf("layered AddVertex(%q) error: %v", n, err)
		}
		f.id[n] = v
	}
	return f
}

func (f *fixture) connect(source, target string) Update {
	f.t.Helper()
	u, err := f.l.Connect(source+"->"+target, f.id[source], f.id[target], false)
	if err != nil {
		f.t.Fatalf("Connect(%s, %s) error: %v", source, target, err)
	}
	if err := f.l.Check(); err != nil {
		f.t.Fatalf("Check() after Connect(%s, %s) error: %v", source, target, err)
	}
	return u
}

func (f *fixture) layer(name string) int {
	n, _ := f.l.Layer(f.id[name])
	return n
}

func TestConnectRaisesDescendants(t *testing.T) {
	f := newFixture(t, "X", "Y", "Z", "W", "V", "U")
	f.connect("Y", "X")
	f.connect("Z", "Y")
	f.connect("V", "W")
	f.connect("U", "V")

	u := f.connect("Y", "U")

	want := map[string]int{"X": 0, "Y": 3, "Z": 4, "W": 0, "V": 1, "U": 2}
	for name, layer := range want {
		if got := f.layer(name); got != layer {
			t.Errorf("Layer(%s) = %d, want %d", name, got, layer)
		}
	}
	if len(u.Raised) != 2 || u.Raised[0].Vertex != f.id["Y"] || u.Raised[1].Vertex != f.id["Z"] {
		t.Errorf("Raised = %+v, want Y then Z", u.Raised)
	}
	if u.Raised[0].From != 1 || u.Raised[0].To != 3 {
		t.Errorf("Raised[0] = %+v, want 1 -> 3", u.Raised[0])
	}
	// Y->X now spans three layers.
	p, _ := f.l.DAG().Path("Y->X")
	if p.Len() != 3 || len(u.Created) != 2 {
		t.Errorf("Y->X has %d edges, %d dummies created, want 3 and 2", p.Len(), len(u.Created))
	}
}

func TestConnectNeverLowers(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	f.connect("B", "A")
	f.connect("C", "B")
	u := f.connect("C", "A")

	if f.layer("C") != 2 {
		t.Errorf("Layer(C) = %d, want 2", f.layer("C"))
	}
	if len(u.Raised) != 0 {
		t.Errorf("Raised = %+v, want none", u.Raised)
	}
	p, _ := f.l.DAG().Path("C->A")
	if p.Len() != 2 {
		t.Errorf("C->A length = %d, want 2", p.Len())
	}
}

func TestDummyChainAbsorbsRaise(t *testing.T) {
	f := newFixture(t, "R0", "R1", "R2", "A", "C", "Q0", "Q1")
	f.connect("R1", "R0")
	f.connect("R2", "R1")
	f.connect("A", "R2")
	u := f.connect("A", "C")

	g := f.l.DAG()
	p, _ := g.Path("A->C")
	if p.Len() != 3 {
		t.Fatalf("A->C length = %d, want 3", p.Len())
	}
	names := []string{}
	for _, d := range p.Dummies() {
		names = append(names, g.Name(d))
	}
	if len(names) != 2 || names[0] != "*2" || names[1] != "*1" {
		t.Errorf("dummies = %v, want [*2 *1]", names)
	}
	if len(u.Created) != 2 {
		t.Errorf("Created = %d, want 2", len(u.Created))
	}
	if n, _ := f.l.Layer(p.Dummies()[0]); n != 2 {
		t.Errorf("Layer(*2) = %d, want 2", n)
	}

	f.connect("Q1", "Q0")
	u = f.connect("C", "Q1")

	if f.layer("C") != 2 || f.layer("A") != 3 {
		t.Errorf("layers C=%d A=%d, want 2 and 3", f.layer("C"), f.layer("A"))
	}
	if len(u.Raised) != 1 {
		t.Errorf("Raised = %+v, want only C", u.Raised)
	}
	if len(u.Removed) != 2 {
		t.Errorf("Removed = %d, want 2", len(u.Removed))
	}
	p, _ = g.Path("A->C")
	if p.Len() != 1 {
		t.Errorf("A->C length = %d, want 1", p.Len())
	}
}

func TestDisconnect(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	f.connect("B", "A")
	f.connect("C", "B")
	f.connect("C", "A")

	u, err := f.l.Disconnect("C->A")
	if err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if len(u.Removed) != 1 {
		t.Errorf("Removed = %d, want 1", len(u.Removed))
	}
	if f.l.DAG().HasConnector("C->A") {
		t.Error("connector survived Disconnect")
	}
	if f.layer("C") != 2 {
		t.Errorf("Layer(C) = %d, want 2 (layers never drop)", f.layer("C"))
	}
	if err := f.l.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}
	if _, err := f.l.Disconnect("C->A"); !errors.Is(err, dag.ErrUnknownConnector) {
		t.Errorf("second Disconnect() error = %v, want ErrUnknownConnector", err)
	}
}

func TestCheckDetectsViolations(t *testing.T) {
	f := newFixture(t, "A", "B")
	if _, err := f.l.DAG().AddEdge(f.id["B"], f.id["A"], "raw", false); err != nil {
		t.Fatal(err)
	}
	if err := f.l.Check(); !errors.Is(err, ErrLayering) {
		t.Errorf("Check() error = %v, want ErrLayering", err)
	}

	f = newFixture(t, "A", "B", "C")
	f.connect("B", "A")
	f.connect("C", "B")
	if _, err := f.l.DAG().AddEdge(f.id["C"], f.id["A"], "long", false); err != nil {
		t.Fatal(err)
	}
	if err := f.l.Check(); !errors.Is(err, ErrPathLength) {
		t.Errorf("Check() error = %v, want ErrPathLength", err)
	}
}

func TestMinimumLayer(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	f.connect("B", "A")
	f.connect("C", "A")
	f.connect("C", "B")
	if got := f.l.MinimumLayer(f.id["C"]); got != 2 {
		t.Errorf("MinimumLayer(C) = %d, want 2", got)
	}
	if got := f.l.MinimumLayer(f.id["A"]); got != 0 {
		t.Errorf("MinimumLayer(A) = %d, want 0", got)
	}
}
