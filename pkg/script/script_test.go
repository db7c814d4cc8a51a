package script

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/layout"
)

const sample = `
[layout]
horizontal_gap = 20.0
vertical_gap = 30.0

[[edits]]
op = "add_node"
id = "app"
width = 60.0
height = 20.0

[[edits]]
op = "add_node"
id = "lib"
width = 60.0
height = 20.0
links = [{ connector = "lib-app", parent = "app" }]

[[edits]]
op = "add_node"
id = "util"
width = 40.0
height = 20.0
priority = 2

[[edits]]
op = "add_connector"
id = "util-lib"
source = "util"
target = "lib"

[[edits]]
op = "resize_node"
id = "lib"
width = 80.0
height = 20.0
`

func quiet() layout.Option { return layout.WithLogger(log.New(io.Discard)) }

func TestDecodeTOML(t *testing.T) {
	s, err := Decode([]byte(sample), FormatTOML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.Layout == nil || s.Layout.HorizontalGap != 20 || s.Layout.VerticalGap != 30 {
		t.Errorf("Layout = %+v, want gaps 20/30", s.Layout)
	}
	if len(s.Edits) != 5 {
		t.Fatalf("len(Edits) = %d, want 5", len(s.Edits))
	}
	if got := s.Edits[1].Links; len(got) != 1 || got[0].Parent != "app" {
		t.Errorf("Edits[1].Links = %v, want one link to app", got)
	}
	if s.Edits[2].Priority != 2 {
		t.Errorf("Edits[2].Priority = %d, want 2", s.Edits[2].Priority)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
		code   errors.Code
	}{
		{"unknown op", `[[edits]]` + "\nop = \"explode\"", FormatTOML, errors.ErrCodeInvalidScript},
		{"missing op", `[[edits]]` + "\nid = \"a\"", FormatTOML, errors.ErrCodeInvalidScript},
		{"missing id", `{"edits":[{"op":"remove_node"}]}`, FormatJSON, errors.ErrCodeInvalidScript},
		{"connector ends", `{"edits":[{"op":"add_connector","id":"c","source":"a"}]}`, FormatJSON, errors.ErrCodeInvalidScript},
		{"unknown key", `{"edits":[],"extra":1}`, FormatJSON, errors.ErrCodeInvalidScript},
		{"unknown toml key", "colour = \"red\"", FormatTOML, errors.ErrCodeInvalidScript},
		{"bad gaps", `{"layout":{"horizontal_gap":-1,"vertical_gap":0},"edits":[]}`, FormatJSON, errors.ErrCodeInvalidScript},
		{"bad format", `{}`, "yaml", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	s, err := Decode([]byte(sample), FormatTOML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for _, format := range []string{FormatTOML, FormatJSON} {
		data, err := Encode(s, format)
		if err != nil {
			t.Fatalf("Encode(%s) error = %v", format, err)
		}
		back, err := Decode(data, format)
		if err != nil {
			t.Fatalf("Decode(%s) error = %v\n%s", format, err, data)
		}
		if len(back.Edits) != len(s.Edits) || back.Edits[4].Width != 80 {
			t.Errorf("%s round trip = %+v, want %+v", format, back.Edits, s.Edits)
		}
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	s, _ := Decode([]byte(sample), FormatTOML)

	path := filepath.Join(dir, "diagram.json")
	if err := Save(s, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Edits) != 5 {
		t.Errorf("Load() edits = %d, want 5", len(got.Edits))
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	other := filepath.Join(dir, "diagram.yaml")
	if err := os.WriteFile(other, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(other); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(yaml) error = %v, want INVALID_FORMAT", err)
	}
}

func TestApply(t *testing.T) {
	s, _ := Decode([]byte(sample), FormatTOML)
	e, err := layout.New(s.Config(layout.DefaultConfig()), quiet())
	if err != nil {
		t.Fatal(err)
	}

	var steps []string
	err = Apply(e, s, func(step int, ed Edit, actions []layout.Action) error {
		steps = append(steps, string(ed.Op))
		return nil
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(steps) != 5 {
		t.Errorf("steps = %v, want 5", steps)
	}
	if loc, _ := e.Location("util"); loc.Layer != 2 {
		t.Errorf("Location(util) = %v, want layer 2", loc)
	}
	if n, _ := e.Node("lib"); n.Width != 80 {
		t.Errorf("Node(lib).Width = %v, want 80", n.Width)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestApplyStopsAtFailure(t *testing.T) {
	s := Script{Edits: []Edit{
		{Op: OpAddNode, ID: "a", Width: 10, Height: 10},
		{Op: OpRemoveNode, ID: "ghost"},
		{Op: OpAddNode, ID: "b", Width: 10, Height: 10},
	}}
	e, _ := layout.New(layout.DefaultConfig(), quiet())
	err := Apply(e, s, nil)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("Apply() error = %v, want NOT_FOUND", err)
	}
	if !strings.Contains(err.Error(), "edit 1 (remove_node)") {
		t.Errorf("Apply() error = %q, want step context", err)
	}
	if _, ok := e.Node("b"); ok {
		t.Error("Node(b) exists, want replay stopped")
	}
}

func TestFromLayout(t *testing.T) {
	s, _ := Decode([]byte(sample), FormatTOML)
	s.Edits = append(s.Edits, Edit{Op: OpAddConnector, ID: "app-util", Source: "app", Target: "util"})
	e, err := Replay(s, layout.DefaultConfig(), quiet())
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	snap := e.Snapshot()

	rebuilt := FromLayout(snap)
	if rebuilt.Layout.HorizontalGap != 20 {
		t.Errorf("FromLayout gaps = %+v, want horizontal 20", rebuilt.Layout)
	}
	e2, err := Replay(rebuilt, layout.DefaultConfig(), quiet())
	if err != nil {
		t.Fatalf("Replay(FromLayout) error = %v", err)
	}
	got := e2.Snapshot()
	if len(got.RealNodes()) != len(snap.RealNodes()) {
		t.Errorf("nodes = %d, want %d", len(got.RealNodes()), len(snap.RealNodes()))
	}
	for _, c := range snap.Connectors {
		rc, ok := got.Connector(c.ID)
		if !ok {
			t.Errorf("connector %s missing after replay", c.ID)
			continue
		}
		if rc.Source != c.Source || rc.Target != c.Target || rc.Reversed != c.Reversed {
			t.Errorf("connector %s = %+v, want %+v", c.ID, rc, c)
		}
	}
	for _, n := range snap.RealNodes() {
		rn, _ := got.Node(n.ID)
		if rn.Layer != n.Layer || rn.Width != n.Width {
			t.Errorf("node %s = layer %d width %v, want layer %d width %v", n.ID, rn.Layer, rn.Width, n.Layer, n.Width)
		}
	}
}

func TestEditString(t *testing.T) {
	tests := []struct {
		ed   Edit
		want string
	}{
		{Edit{Op: OpAddNode, ID: "a", Width: 10, Height: 5, Links: []layout.Link{{Connector: "c", Parent: "p"}}}, "add_node a 10x5 c->p"},
		{Edit{Op: OpResizeNode, ID: "a", Width: 3, Height: 4}, "resize_node a 3x4"},
		{Edit{Op: OpAddConnector, ID: "c", Source: "a", Target: "b"}, "add_connector c a->b"},
		{Edit{Op: OpRemoveNode, ID: "a"}, "remove_node a"},
		{Edit{Op: OpCompact}, "compact"},
	}
	for _, tt := range tests {
		if got := tt.ed.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
