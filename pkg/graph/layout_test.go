package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/boxlayout/pkg/geom"
)

func sampleLayout() Layout {
	return Layout{
		HorizontalGap: 10,
		VerticalGap:   40,
		Nodes: []Node{
			{ID: "root", Kind: KindNode, Center: geom.Pt(25, 10), Width: 40, Height: 20},
			{ID: "a", Kind: KindNode, Center: geom.Pt(0, 70), Width: 40, Height: 20, Layer: 1, Parent: "root"},
			{ID: "b", Kind: KindNode, Center: geom.Pt(50, 70), Width: 40, Height: 20, Layer: 1, Index: 1, Parent: "root"},
		},
		Connectors: []Connector{
			{ID: "a-root", Source: "a", Target: "root", Route: []geom.Point{{X: 0, Y: 60}, {X: 25, Y: 20}}},
		},
		Layers: [][]string{{"root"}, {"a", "b"}},
	}
}

func TestLayoutLookup(t *testing.T) {
	l := sampleLayout()
	if n, ok := l.Node("b"); !ok || n.Center.X != 50 {
		t.Errorf("Node(b) = %+v, %v", n, ok)
	}
	if _, ok := l.Node("missing"); ok {
		t.Error("Node(missing) ok = true")
	}
	if c, ok := l.Connector("a-root"); !ok || c.Target != "root" {
		t.Errorf("Connector(a-root) = %+v, %v", c, ok)
	}
	if got := len(l.RealNodes()); got != 3 {
		t.Errorf("RealNodes() len = %d, want 3", got)
	}
}

// Lookups work on layouts returned by value, such as engine snapshots.
func TestLayoutLookupOnReturnedValue(t *testing.T) {
	if _, ok := sampleLayout().Node("root"); !ok {
		t.Error("sampleLayout().Node(root) ok = false")
	}
	if _, ok := sampleLayout().Connector("a-root"); !ok {
		t.Error("sampleLayout().Connector(a-root) ok = false")
	}
	if got := len(sampleLayout().RealNodes()); got != 3 {
		t.Errorf("sampleLayout().RealNodes() len = %d, want 3", got)
	}
	if sampleLayout().Nodes[0].IsDummy() {
		t.Error("first node reported as dummy")
	}
}

func TestNodeRect(t *testing.T) {
	n := Node{Center: geom.Pt(10, 10), Width: 20, Height: 10}
	r := n.Rect()
	if r.Left() != 0 || r.Right() != 20 || r.Top() != 5 || r.Bottom() != 15 {
		t.Errorf("Rect() = %+v", r)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Layout)
		wantErr string
	}{
		{"valid", func(*Layout) {}, ""},
		{"empty id", func(l *Layout) { l.Nodes[0].ID = "" }, "empty id"},
		{"duplicate", func(l *Layout) { l.Nodes[1].ID = "root" }, "duplicate"},
		{"unknown endpoint", func(l *Layout) { l.Connectors[0].Source = "zzz" }, "unknown node"},
		{"dummy endpoint", func(l *Layout) {
			l.Nodes = append(l.Nodes, Node{ID: "*1", Kind: KindDummy})
			l.Connectors[0].Source = "*1"
		}, "dummy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := sampleLayout()
			tt.mutate(&l)
			err := Validate(l)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l := sampleLayout()

	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		t.Fatalf("WriteLayout() error = %v", err)
	}
	got, err := ReadLayout(&buf)
	if err != nil {
		t.Fatalf("ReadLayout() error = %v", err)
	}
	if len(got.Nodes) != 3 || got.Nodes[2].Parent != "root" || got.Layers[1][1] != "b" {
		t.Errorf("round trip = %+v", got)
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile() error = %v", err)
	}
	fromFile, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error = %v", err)
	}
	if len(fromFile.Connectors) != 1 || len(fromFile.Connectors[0].Route) != 2 {
		t.Errorf("ReadLayoutFile() connectors = %+v", fromFile.Connectors)
	}
}

func TestUnmarshalLayoutErrors(t *testing.T) {
	if _, err := UnmarshalLayout([]byte("{not json")); err == nil {
		t.Error("UnmarshalLayout(garbage) error = nil")
	}
	if _, err := ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadLayoutFile(missing) error = nil")
	}
}
