// Package pkg provides the core libraries of boxlayout, an incremental
// layered layout engine for box-and-connector diagrams.
//
// # Overview
//
// boxlayout keeps a diagram laid out while it is being edited. Nodes sit on
// horizontal layers, parents above their children; connectors spanning more
// than one layer are routed through dummy vertices. Each edit (adding,
// removing or resizing a node, adding or removing a connector) moves only
// what it has to and reports every move as an action. The pkg directory is
// organized into four areas:
//
//  1. Engine - [dag], [layers], [layout], [geom]
//  2. Serialization - [graph], [script]
//  3. Rendering and orchestration - [render/nodelink], [pipeline]
//  4. Infrastructure - [cache], [session], [errors], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	Edit script (.toml / .json) or HTTP edits
//	         ↓
//	    [script] package (decode, validate, apply)
//	         ↓
//	    [layout] package (layering, relative + absolute placement, routing)
//	         ↓
//	    [graph] package (snapshot)
//	         ↓
//	    [render/nodelink] package (DOT, SVG via Graphviz)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/boxlayout/pkg/geom"
//	    "github.com/matzehuels/boxlayout/pkg/layout"
//	    "github.com/matzehuels/boxlayout/pkg/render/nodelink"
//	)
//
//	e, _ := layout.New(layout.DefaultConfig())
//	e.AddNode("app", geom.Size{Width: 60, Height: 20}, 0)
//	actions, _ := e.AddNode("db", geom.Size{Width: 40, Height: 20}, 0,
//	    layout.Link{Connector: "db-app", Parent: "app"})
//	for _, a := range actions {
//	    fmt.Println(a)
//	}
//	svg, _ := nodelink.Render(e.Snapshot(), nodelink.Options{})
//
// # Main Packages
//
// ## Engine
//
// [dag] - Arena of layout vertices and edges with stable integer IDs.
// Connectors are chains of edges through dummy vertices. [dag/layered]
// assigns layers and keeps every edge one layer long; [dag/transform]
// splits, merges and normalizes chains and detects cycles.
//
// [layers] - Ordered vertex lists per layer and their vertical offsets.
//
// [layout] - The engine. Relative placement decides each vertex's index in
// its layer; absolute placement resolves overlaps by pushing neighbours and
// recentering parents, then compacts and reroutes. Every edit returns its
// action log with causes.
//
// ## Serialization
//
// [graph] - The snapshot format shared by files, the API, the cache and the
// session store.
//
// [script] - Edit scripts in TOML or JSON: decode, apply, and rebuild from a
// snapshot.
//
// ## Infrastructure
//
// [pipeline] - Replay, snapshot and render with caching; used by the CLI and
// the server.
//
// [cache] - Snapshot and render cache with file, Redis and null backends.
//
// [session] - Live engines keyed by session ID, persisted to files or
// MongoDB.
//
// [errors] - Coded errors shared by the engine, CLI and HTTP API.
//
// [observability] - Hooks for edits, replays, cache access and HTTP requests.
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/dag
// [dag/layered]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/dag/layered
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/dag/transform
// [layers]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/layers
// [layout]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/layout
// [geom]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/geom
// [graph]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/graph
// [script]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/script
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/session
// [errors]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/boxlayout/pkg/observability
package pkg
