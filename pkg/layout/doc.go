// Package layout is the incremental layered layout engine.
//
// An [Engine] keeps a diagram of boxes (nodes) and connectors laid out in
// horizontal layers while the diagram changes one element at a time. It
// never recomputes the layout from scratch: each edit only touches the
// region of the diagram it affects, and existing vertices move as little
// as possible.
//
// # Pipeline
//
// Every edit runs through the same stages:
//
//  1. Structure. The edit is applied to the layered graph
//     ([layered.Graph]); children are pushed down so that every vertex sits
//     below all of its parents, and connectors spanning several layers are
//     split by dummy vertices into one-layer steps.
//  2. Relative layout. Every vertex whose ancestry changed is given a layer
//     and an index in that layer. A vertex goes next to its primary
//     siblings in sibling order, or next to the families of the parents
//     beside its primary parent, so families never interleave.
//  3. Absolute layout. Vertices that entered or moved are positioned in
//     layer order: under their primary parent, or one gap beside their
//     siblings. Overlaps are resolved by pushing whole primary subtrees
//     away, parents are recentered over their children, and siblings are
//     compacted to the minimum gap.
//  4. Routing. Every connector route is recomputed; only changed routes are
//     reported.
//
// # Actions
//
// Each edit returns the [Action] records it produced. An action's Cause is
// the index of the action that triggered it, so the actions of one edit
// form a forest of causal chains (see [Chain] and [TraceGraph]). A push that
// would move a vertex already moved earlier in the same chain is skipped
// and logged as a warning; this is the one place where the engine accepts a
// possibly overlapping result instead of looping.
//
// # Errors
//
// Edits fail with a coded error from pkg/errors: NOT_FOUND and
// ALREADY_EXISTS for unknown or duplicate IDs, INVALID_INPUT for malformed
// arguments, all detected before anything changes. INVARIANT_VIOLATION
// reports a broken internal invariant; the engine is then unusable and
// every later call returns the same error.
//
// # Example
//
//	e, _ := layout.New(layout.DefaultConfig())
//	e.AddNode("root", geom.Size{Width: 40, Height: 20}, 0)
//	actions, _ := e.AddNode("child", geom.Size{Width: 40, Height: 20}, 0,
//	    layout.Link{Connector: "child-root", Parent: "root"})
//	for _, a := range actions {
//	    fmt.Println(a)
//	}
package layout
