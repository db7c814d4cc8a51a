package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/boxlayout/pkg/graph"
)

// pointsPerInch converts layout units (points) to Graphviz sizes (inches).
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes layer, index and size in node labels.
	// When false, only the node ID is shown.
	Detailed bool
	// ShowDummies draws dummy vertices as small grey dots. When false they
	// are drawn as invisible route points.
	ShowDummies bool
}

// ToDOT converts a positioned layout to Graphviz DOT format. Every node is
// pinned at its computed center; connectors are drawn as straight segments
// through their routes. Render the result with [RenderSVG], which uses the
// neato engine so the pinned positions are kept.
//
// Graphviz puts the origin at the bottom left, so Y coordinates are flipped
// against the layout's bounding box.
func ToDOT(l graph.Layout, opts Options) string {
	flip := l.Bounds.Max.Y + l.Bounds.Min.Y

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=10];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), opts.ShowDummies)
		attrs = append(attrs, fmtPos(n.Center.X, flip-n.Center.Y))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range l.Connectors {
		writeConnector(&buf, c, flip)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeConnector emits a chain of pinned route points joined by edges, with
// the arrowhead on the segment that reaches the connector's target.
func writeConnector(buf *bytes.Buffer, c graph.Connector, flip float64) {
	if len(c.Route) < 2 {
		fmt.Fprintf(buf, "  %q -> %q [id=%q];\n", c.Source, c.Target, c.ID)
		return
	}
	names := make([]string, len(c.Route))
	for i, p := range c.Route {
		names[i] = fmt.Sprintf("%s#%d", c.ID, i)
		fmt.Fprintf(buf, "  %q [shape=point, width=0, height=0, label=\"\", %s];\n", names[i], fmtPos(p.X, flip-p.Y))
	}
	last := len(names) - 2
	for i := 0; i+1 < len(names); i++ {
		arrow := "arrowhead=none"
		if i == last {
			arrow = "arrowhead=normal"
		}
		fmt.Fprintf(buf, "  %q -> %q [%s, class=%q];\n", names[i], names[i+1], arrow, c.ID)
	}
}

func fmtPos(x, y float64) string {
	return fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(x), fmtFloat(y))
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtLabel(n graph.Node, detailed bool) string {
	if n.IsDummy() {
		return ""
	}
	if !detailed {
		return n.ID
	}
	return fmt.Sprintf("%s\nlayer: %d index: %d\n%sx%s", n.ID, n.Layer, n.Index, fmtFloat(n.Width), fmtFloat(n.Height))
}

func fmtAttrs(n graph.Node, label string, showDummies bool) []string {
	if n.IsDummy() {
		if showDummies {
			return []string{"shape=point", "width=0.05", "color=grey"}
		}
		return []string{"shape=point", "width=0", "style=invis"}
	}
	return []string{
		fmt.Sprintf("label=%q", label),
		"width=" + fmtFloat(n.Width/pointsPerInch),
		"height=" + fmtFloat(n.Height/pointsPerInch),
	}
}

// RenderSVG renders a DOT graph to SVG using the Graphviz neato engine.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Render converts a layout straight to SVG.
func Render(l graph.Layout, opts Options) ([]byte, error) {
	return RenderSVG(ToDOT(l, opts))
}
