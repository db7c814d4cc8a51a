// Package nodelink renders positioned layouts as node-link diagrams.
//
// # Overview
//
// The layout engine decides every coordinate itself; Graphviz is used only
// as a drawing backend. [ToDOT] pins each node at its computed center and
// draws each connector as straight segments through its route, and
// [RenderSVG] runs the neato engine, which keeps pinned positions.
//
// # Usage
//
//	dot := nodelink.ToDOT(engine.Snapshot(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Options
//
//   - Detailed: node labels include layer, index and size
//   - ShowDummies: dummy vertices are drawn as grey dots
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
