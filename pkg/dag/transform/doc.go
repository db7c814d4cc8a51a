// Package transform provides the structural edits the layered layout makes
// to a [dag.Graph]: breaking and joining long edges through dummy vertices,
// and detecting edges that would close a cycle.
//
// # Overview
//
// A connector whose endpoints are k layers apart is carried by a path of k
// edges through k-1 dummy vertices. When either endpoint changes layer the
// path must be adjusted so that its length equals the new span again.
//
// # Split and Merge
//
// [Split] replaces an edge s→x with s→d→x through a fresh dummy d. [Merge]
// is its inverse: a dummy with one incoming and one outgoing edge is
// removed and its neighbours are joined directly.
//
//	Split:  A → C         becomes  A → *1 → C
//	Merge:  A → *1 → C    becomes  A → C
//
// Both keep the connector name and reversal flag on the edges they create,
// and both respect the dummy degree limit enforced by [dag.Graph.AddEdge].
//
// # Normalization
//
// [Normalize] repeats Split and Merge on one connector's path until the path
// length equals a requested span. Dummies are removed from the target end
// and added at the source end; the [Change] it returns lists both so the
// caller can update layer membership.
//
// # Cycles
//
// [Reaches] answers ancestor queries through the gonum view of the graph
// ([dag.Graph.Directed]). [WouldCycle] uses it to decide whether a new
// connector has to be inserted reversed.
package transform
