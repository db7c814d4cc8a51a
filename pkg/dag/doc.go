// Package dag provides the low-level layout graph of the boxlayout engine:
// an arena of layout vertices and edges addressed by stable integer IDs.
//
// # Overview
//
// The incremental layered layout places diagram nodes on horizontal layers.
// Connectors that span more than one layer are broken into a chain of edges
// through zero-size dummy vertices, so every layout edge steps exactly one
// layer. This package owns that vertex/edge arena and answers the
// structural queries the layered layout needs; it knows nothing about
// layers or coordinates.
//
// # Direction
//
// Edges point up the layering. An [Edge] runs from its Source (the child,
// drawn lower, with the higher layer index) to its Target (the parent).
// [Graph.Parents] follows outgoing edges, [Graph.Children] incoming ones.
//
// # Vertex Kinds
//
//   - [KindNode]: a diagram node with a name, size and priority
//   - [KindDummy]: a placeholder named "*N" carrying one connector through
//     one layer
//
// A dummy vertex has at most one incoming and one outgoing edge. The limit
// is enforced by [Graph.AddEdge] on every insertion and re-checked by
// [Graph.Validate].
//
// # Primary Parents
//
// Placement follows a forest: each vertex with parents has one
// [Graph.PrimaryParent], picked by highest priority, then the smallest
// [Graph.AncestorDistance], then the smallest name. Primary children and
// siblings are derived from it. Non-primary edges are routed but never
// influence placement.
//
// Siblings are ordered with [Graph.Compare]. A dummy has no identity of its
// own and borrows the ordering attributes of the node at the source end of
// its path ([Graph.OrderKey]).
//
// # Paths
//
// A [Path] is the chain of edges carrying one connector, from the source
// node up through its dummies to the target node. [Graph.Path] assembles
// and validates it.
//
// # Interop
//
// [Graph.Directed] exposes a read-only gonum view, which the transform
// package uses for reachability and this package uses for cycle detection.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. The dummy counter lives
// in the instance, so independent graphs can be used from different
// goroutines without coordination.
//
// [transform]: github.com/matzehuels/boxlayout/pkg/dag/transform
package dag
