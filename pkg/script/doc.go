// Package script reads, writes and replays edit scripts.
//
// An edit script is an ordered list of engine edits, stored as TOML or
// JSON. Scripts drive the CLI (replay, render, step), seed server sessions,
// and are how session snapshots are persisted and restored.
//
//	[layout]
//	horizontal_gap = 10.0
//	vertical_gap = 40.0
//
//	[[edits]]
//	op = "add_node"
//	id = "app"
//	width = 60.0
//	height = 20.0
//
//	[[edits]]
//	op = "add_node"
//	id = "lib"
//	width = 60.0
//	height = 20.0
//	links = [{ connector = "lib-app", parent = "app" }]
//
// [Load] picks the decoder from the file extension, [Apply] runs the edits
// against an engine, and [FromLayout] turns a snapshot back into a script.
package script
