package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

const testScript = `
[[edits]]
op = "add_node"
id = "app"
width = 60.0
height = 20.0

[[edits]]
op = "add_node"
id = "lib"
width = 40.0
height = 20.0
links = [{ connector = "lib-app", parent = "app" }]
`

// execute runs the root command in a scratch working directory.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func writeScript(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "diagram.toml")
	if err := os.WriteFile(path, []byte(testScript), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeScript(t, dir)
	out := filepath.Join(dir, "layout.json")
	trace := filepath.Join(dir, "trace.dot")

	if err := execute(t, "replay", path, "-o", out, "--trace", trace, "--horizontal-gap", "20"); err != nil {
		t.Fatalf("replay error: %v", err)
	}

	l, err := graph.ReadLayoutFile(out)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	if got := len(l.RealNodes()); got != 2 {
		t.Errorf("nodes = %d, want 2", got)
	}
	if l.HorizontalGap != 20 {
		t.Errorf("HorizontalGap = %v, want 20", l.HorizontalGap)
	}
	data, err := os.ReadFile(trace)
	if err != nil {
		t.Fatalf("trace not written: %v", err)
	}
	if !bytes.Contains(data, []byte("digraph")) {
		t.Errorf("trace = %q, want DOT digraph", data)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeScript(t, dir)

	if err := execute(t, "render", path, "-f", "json,dot", "--no-cache"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, name := range []string{"diagram.json", "diagram.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeScript(t, dir)

	if err := execute(t, "render", path, "-f", "pdf"); err == nil {
		t.Error("render -f pdf succeeded, want error")
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeScript(t, dir)

	if err := execute(t, "check", path, "--strict"); err != nil {
		t.Errorf("check error: %v", err)
	}
}

func TestCommandsMissingScript(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, cmd := range []string{"replay", "render", "check"} {
		err := execute(t, cmd, "missing.toml")
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("%s missing.toml error = %v, want %s", cmd, err, errors.ErrCodeFileNotFound)
		}
	}
}

func TestExampleScripts(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "scripts", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no example scripts found")
	}
	for _, p := range paths {
		t.Run(filepath.Base(p), func(t *testing.T) {
			abs, err := filepath.Abs(p)
			if err != nil {
				t.Fatal(err)
			}
			t.Chdir(t.TempDir())
			if err := execute(t, "check", abs); err != nil {
				t.Errorf("check %s: %v", p, err)
			}
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
			root.SetArgs([]string{"completion", shell})
			root.SetOut(&buf)
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(buf.String(), "boxlayout") {
				t.Errorf("completion %s output does not mention boxlayout", shell)
			}
		})
	}
	if err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh: want error")
	}
}

func TestCacheDir(t *testing.T) {
	home := t.TempDir()
	tests := []struct {
		name, xdg, want string
	}{
		{"xdg", "/tmp/xdg", filepath.Join("/tmp/xdg", "boxlayout")},
		{"home fallback", "", filepath.Join(home, ".cache", "boxlayout")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", home)
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			got, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeScript(t, dir)
	cacheDir := filepath.Join(dir, "cache")

	if err := execute(t, "cache", "stat", "--cache-dir", cacheDir); err != nil {
		t.Fatalf("cache stat on missing dir: %v", err)
	}
	if err := execute(t, "render", path, "-f", "json", "--cache-dir", cacheDir, "-o", filepath.Join(dir, "out.json")); err != nil {
		t.Fatalf("render: %v", err)
	}
	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if n, _, _ := fc.Stat(); n == 0 {
		t.Fatal("render stored no cache entries")
	}
	if err := execute(t, "cache", "clear", "--cache-dir", cacheDir); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if n, _, _ := fc.Stat(); n != 0 {
		t.Errorf("cache clear left %d entries", n)
	}
}

func TestFmtBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := fmtBytes(tt.n); got != tt.want {
			t.Errorf("fmtBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
