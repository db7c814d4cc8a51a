package layout

import (
	"math"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/geom"
	"github.com/matzehuels/boxlayout/pkg/observability"
)

// placement is the horizontal state of a vertex. A vertex that is not
// placed is floating: overlap checks ignore it until it is positioned.
// known reports whether x holds an earlier position.
type placement struct {
	name   string
	dummy  bool
	x      float64
	placed bool
	known  bool
}

type requestKind int

const (
	resolveRequest requestKind = iota
	pushRequest
	recenterRequest
)

// request is one unit of deferred positioning work. cause is the index of
// the action that made the request necessary.
type request struct {
	kind   requestKind
	vertex dag.VertexID
	mover  dag.VertexID
	cause  int
}

func (e *Engine) width(v dag.VertexID) float64 {
	vx, _ := e.g.Vertex(v)
	return vx.Size.Width
}

func (e *Engine) height(v dag.VertexID) float64 {
	vx, _ := e.g.Vertex(v)
	return vx.Size.Height
}

func (e *Engine) placed(v dag.VertexID) bool {
	p, ok := e.pos[v]
	return ok && p.placed
}

func (e *Engine) left(v dag.VertexID) float64  { return e.pos[v].x - e.width(v)/2 }
func (e *Engine) right(v dag.VertexID) float64 { return e.pos[v].x + e.width(v)/2 }

func (e *Engine) center(v dag.VertexID) geom.Point {
	y := 0.0
	if l := e.ls.LayerOf(v); l != nil {
		y = l.CenterY()
	}
	return geom.Pt(e.pos[v].x, y)
}

func (e *Engine) rect(v dag.VertexID) geom.Rect {
	vx, _ := e.g.Vertex(v)
	return geom.Centered(e.center(v), vx.Size)
}

func (e *Engine) enqueue(r request) { e.queue = append(e.queue, r) }

// moveTo sets the center of v and logs it.
func (e *Engine) moveTo(v dag.VertexID, x float64, cause int) int {
	p := e.pos[v]
	p.x, p.placed, p.known = x, true, true
	c := e.center(v)
	e.emitted[v] = c
	return e.log.add(Action{Kind: VertexPositioned, Vertex: p.name, Center: c, Cause: cause}, v)
}

// subtree returns root followed by its primary descendants, breadth first.
func (e *Engine) subtree(root dag.VertexID) []dag.VertexID {
	out := []dag.VertexID{root}
	for i := 0; i < len(out); i++ {
		out = append(out, e.g.PrimaryChildren(out[i])...)
	}
	return out
}

// neighbour scans the layer of v from v in direction dir (-1 or +1) and
// returns the first vertex accepted by keep.
func (e *Engine) neighbour(v dag.VertexID, dir int, keep func(dag.VertexID) bool) (dag.VertexID, bool) {
	loc, ok := e.ls.Location(v)
	if !ok {
		return dag.NoVertex, false
	}
	row := e.ls.Layer(loc.Layer)
	for i := loc.Index + dir; i >= 0 && i < row.Len(); i += dir {
		if u := row.At(i); keep(u) {
			return u, true
		}
	}
	return dag.NoVertex, false
}

// targetX computes the center a floating vertex is placed at. A vertex with
// a placed primary parent and no placed primary siblings in its layer sits
// under the parent. Otherwise it sits one gap after the previous placed
// sibling, or one gap before the next; roots and vertices whose family is
// not placed use any placed layer neighbour, and fall back to 0.
func (e *Engine) targetX(v dag.VertexID) float64 {
	half := e.width(v) / 2
	gap := e.cfg.HorizontalGap
	besides := func(keep func(dag.VertexID) bool) (float64, bool) {
		if prev, ok := e.neighbour(v, -1, keep); ok {
			return e.right(prev) + gap + half, true
		}
		if next, ok := e.neighbour(v, +1, keep); ok {
			return e.left(next) - gap - half, true
		}
		return 0, false
	}

	if pp := e.g.PrimaryParent(v); pp != dag.NoVertex {
		sibling := func(u dag.VertexID) bool { return e.placed(u) && e.g.PrimaryParent(u) == pp }
		if x, ok := besides(sibling); ok {
			return x
		}
		if e.placed(pp) {
			return e.pos[pp].x
		}
	}
	x, _ := besides(e.placed)
	return x
}

// position places the floating vertex v as the root of a causal chain. Its
// placed primary descendants move along by the same offset.
func (e *Engine) position(v dag.VertexID) {
	p := e.pos[v]
	x := e.targetX(v)
	if p.known {
		dx := x - p.x
		p.placed = true
		if math.Abs(dx) > geom.Epsilon {
			e.translate(v, dx, NoCause)
			return
		}
		if !e.center(v).Equal(e.emitted[v]) {
			e.moveTo(v, x, NoCause)
		}
		e.enqueue(request{kind: resolveRequest, vertex: v, cause: NoCause})
		e.enqueue(request{kind: recenterRequest, vertex: e.g.PrimaryParent(v), cause: NoCause})
		return
	}
	a := e.moveTo(v, x, NoCause)
	e.enqueue(request{kind: resolveRequest, vertex: v, cause: a})
	e.enqueue(request{kind: recenterRequest, vertex: e.g.PrimaryParent(v), cause: a})
}

// translate shifts every placed vertex of the primary subtree of root by
// dx; each member action shares the given cause. Every member moves before
// any queued resolve runs, so no overlap check sees a member at its stale
// position. This ordering stands in for marking the subtree floating first.
// Floating members are left alone.
func (e *Engine) translate(root dag.VertexID, dx float64, cause int) {
	if math.Abs(dx) <= geom.Epsilon {
		return
	}
	rootAction := NoCause
	for _, u := range e.subtree(root) {
		if !e.placed(u) {
			continue
		}
		a := e.moveTo(u, e.pos[u].x+dx, cause)
		if u == root {
			rootAction = a
		}
		e.enqueue(request{kind: resolveRequest, vertex: u, cause: a})
	}
	if rootAction != NoCause {
		e.enqueue(request{kind: recenterRequest, vertex: e.g.PrimaryParent(root), cause: rootAction})
	}
}

// drain processes queued requests until none are left.
func (e *Engine) drain() {
	for len(e.queue) > 0 {
		r := e.queue[0]
		e.queue = e.queue[1:]
		switch r.kind {
		case resolveRequest:
			e.resolve(r.vertex, r.cause)
		case pushRequest:
			e.push(r.vertex, r.mover, r.cause)
		case recenterRequest:
			e.recenter(r.vertex, r.cause)
		}
	}
}

// resolve requests a push of the nearest placed neighbour on each side of m.
func (e *Engine) resolve(m dag.VertexID, cause int) {
	if !e.placed(m) {
		return
	}
	for _, dir := range []int{-1, +1} {
		if o, ok := e.neighbour(m, dir, e.placed); ok {
			e.enqueue(request{kind: pushRequest, vertex: o, mover: m, cause: cause})
		}
	}
}

// deficit returns how far o must move away from m to restore the gap, and
// the direction it must move in.
func (e *Engine) deficit(o, m dag.VertexID) (float64, float64) {
	lo, _ := e.ls.Location(o)
	lm, _ := e.ls.Location(m)
	gap := e.cfg.HorizontalGap
	if lo.Index > lm.Index {
		return e.right(m) + gap - e.left(o), 1
	}
	return e.right(o) + gap - e.left(m), -1
}

// push moves the primary subtree of o away from m if they are too close. A
// push of a vertex that already moved in the causal chain of m's move would
// loop; it is skipped and reported, and separate restores the gap once the
// queue is drained.
func (e *Engine) push(o, m dag.VertexID, cause int) {
	if !e.placed(o) || !e.placed(m) {
		return
	}
	d, dir := e.deficit(o, m)
	if d <= geom.Epsilon {
		return
	}
	if e.log.inChain(cause, o) {
		e.logger.Warn("push cycle, skipping", "vertex", e.g.Name(o), "mover", e.g.Name(m), "deficit", d)
		observability.Layout().OnPushCycle(e.g.Name(o), e.g.Name(m))
		return
	}
	e.translate(o, dir*d, cause)
}

// recenter moves p alone to the mean center of its placed primary children.
func (e *Engine) recenter(p dag.VertexID, cause int) {
	if p == dag.NoVertex || !e.placed(p) {
		return
	}
	sum, n := 0.0, 0
	for _, c := range e.g.PrimaryChildren(p) {
		if e.placed(c) {
			sum += e.pos[c].x
			n++
		}
	}
	if n == 0 {
		return
	}
	mean := sum / float64(n)
	if math.Abs(mean-e.pos[p].x) <= geom.Epsilon {
		return
	}
	a := e.moveTo(p, mean, cause)
	e.enqueue(request{kind: resolveRequest, vertex: p, cause: a})
	e.enqueue(request{kind: recenterRequest, vertex: e.g.PrimaryParent(p), cause: a})
}
