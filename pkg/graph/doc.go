// Package graph provides serialization types for positioned diagrams.
//
// This package defines the canonical wire format for boxlayout's output,
// used for JSON files, API responses, session snapshots, caching and
// rendering.
//
// # Architecture
//
// The package sits at the serialization boundary between the engine and
// external formats:
//
//   - [Layout]: serialization type (this package)
//   - pkg/layout.Engine: the incremental engine that produces it via Snapshot
//   - pkg/render/nodelink: turns a Layout into DOT and SVG
//
// # Core Types
//
//   - [Layout]: gaps, bounds, nodes, connectors and layer structure
//   - [Node]: a node or dummy vertex with its center and size
//   - [Connector]: a diagram edge with its route points
//
// # Serialization
//
//	{
//	  "horizontal_gap": 10,
//	  "vertical_gap": 40,
//	  "nodes": [{"id": "root", "center": {"x": 0, "y": 10}, "width": 40, "height": 20, "layer": 0, "index": 0}],
//	  "connectors": [{"id": "e1", "source": "child", "target": "root", "route": [...]}]
//	}
//
// Common operations:
//
//	l, _ := graph.ReadLayoutFile("diagram.json")  // File → Layout
//	graph.WriteLayoutFile(l, "out.json")          // Layout → File
//	data, _ := graph.MarshalLayout(l)             // Layout → []byte
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
