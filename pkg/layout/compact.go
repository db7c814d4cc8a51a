package layout

import (
	"math"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/geom"
)

// compact pulls primary siblings together until no adjacent pair sharing a
// primary parent is further apart than the horizontal gap. The right
// sibling's subtree moves left by the excess, limited by the room every
// subtree member has on its left. Passes repeat until nothing moves.
func (e *Engine) compact() {
	limit := 4*e.g.VertexCount() + 8
	for pass := 1; ; pass++ {
		if pass > limit {
			e.logger.Warn("compaction did not settle", "passes", limit)
			return
		}
		moved := e.compactPass()
		e.logger.Debug("compaction pass", "pass", pass, "moved", moved)
		if moved == 0 {
			return
		}
	}
}

func (e *Engine) compactPass() int {
	moved := 0
	gap := e.cfg.HorizontalGap
	for _, row := range e.ls.Filter(e.placed) {
		for i := 0; i+1 < len(row); i++ {
			a, b := row[i], row[i+1]
			pp := e.g.PrimaryParent(a)
			if pp == dag.NoVertex || pp != e.g.PrimaryParent(b) {
				continue
			}
			excess := e.left(b) - e.right(a) - gap
			if excess <= geom.Epsilon {
				continue
			}
			shift := math.Min(excess, e.slack(b))
			if shift <= geom.Epsilon {
				continue
			}
			e.translate(b, -shift, NoCause)
			e.drain()
			moved++
		}
	}
	return moved
}

// slack returns how far the primary subtree of root can move left before
// one of its members comes closer than the gap to a placed vertex outside
// the subtree.
func (e *Engine) slack(root dag.VertexID) float64 {
	members := e.subtree(root)
	in := make(map[dag.VertexID]bool, len(members))
	for _, u := range members {
		in[u] = true
	}
	room := math.Inf(1)
	for _, u := range members {
		if !e.placed(u) {
			continue
		}
		other := func(o dag.VertexID) bool { return e.placed(o) && !in[o] }
		if o, ok := e.neighbour(u, -1, other); ok {
			room = math.Min(room, e.left(u)-e.right(o)-e.cfg.HorizontalGap)
		}
	}
	return room
}

// separate is the last positioning pass of an edit. Layers are walked top
// down and left to right; when a vertex sits closer than the gap to its left
// neighbour, its primary subtree moves right by the deficit. Subtree members
// live in deeper layers, so a finished layer stays free of overlaps. It
// repairs what the push cycle guard left behind and returns the number of
// subtrees it moved.
func (e *Engine) separate() int {
	moved := 0
	gap := e.cfg.HorizontalGap
	for _, row := range e.ls.Filter(e.placed) {
		for i := 0; i+1 < len(row); i++ {
			l, r := row[i], row[i+1]
			d := e.right(l) + gap - e.left(r)
			if d <= geom.Epsilon {
				continue
			}
			e.logger.Debug("separating", "left", e.g.Name(l), "right", e.g.Name(r), "deficit", d)
			cause := NoCause
			for _, u := range e.subtree(r) {
				if !e.placed(u) {
					continue
				}
				a := e.moveTo(u, e.pos[u].x+d, cause)
				if u == r {
					cause = a
				}
			}
			moved++
		}
	}
	return moved
}
