package layout

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/dag/layered"
	"github.com/matzehuels/boxlayout/pkg/layers"
)

// change is the net effect of one edit on a vertex's relative location.
// A nil old location means the vertex entered the layers during the edit; a
// nil new location means it left them.
type change struct {
	vertex dag.VertexID
	old    *layers.Location
	new    *layers.Location
	moved  bool
}

func (c *change) added() bool   { return c.old == nil && c.new != nil }
func (c *change) removed() bool { return c.old != nil && c.new == nil }

// changeSet merges location changes over an edit: the first old location
// and the last new location win, so a vertex added and removed again in the
// same edit vanishes.
type changeSet struct {
	order []dag.VertexID
	by    map[dag.VertexID]*change
}

func newChangeSet() *changeSet {
	return &changeSet{by: make(map[dag.VertexID]*change)}
}

func (cs *changeSet) record(v dag.VertexID, old, new *layers.Location, moved bool) {
	if c, ok := cs.by[v]; ok {
		c.new = new
		c.moved = c.moved || moved
		return
	}
	cs.by[v] = &change{vertex: v, old: old, new: new, moved: moved}
	cs.order = append(cs.order, v)
}

// entries returns the surviving changes in recording order.
func (cs *changeSet) entries() []*change {
	var out []*change
	for _, v := range cs.order {
		c := cs.by[v]
		if c.old == nil && c.new == nil {
			continue
		}
		if c.old != nil && c.new != nil && !c.moved {
			continue
		}
		out = append(out, c)
	}
	return out
}

// relative decides the layer and in-layer index of vertices. It never looks
// at coordinates.
type relative struct {
	g  *dag.Graph
	lg *layered.Graph
	ls *layers.Layers

	// primary remembers the primary parent each vertex was last placed under.
	primary map[dag.VertexID]dag.VertexID
}

// target computes where v belongs. v must not be in the layers.
//
// A root is appended to its layer. A vertex with placed primary siblings
// goes before the first sibling that sorts after it, or after the last one.
// Otherwise it goes before the first child of the next parent (in the
// primary parent's layer) that already has children in v's layer, so
// families never interleave.
func (r *relative) target(v dag.VertexID) layers.Location {
	layer, _ := r.lg.Layer(v)
	layer = max(layer, r.lg.MinimumLayer(v))

	row := r.ls.Layer(layer)
	if row == nil {
		return layers.Location{Layer: layer}
	}
	end := layers.Location{Layer: layer, Index: row.Len()}
	pp := r.g.PrimaryParent(v)
	if pp == dag.NoVertex {
		return end
	}

	last := -1
	for i := 0; i < row.Len(); i++ {
		u := row.At(i)
		if r.g.PrimaryParent(u) != pp {
			continue
		}
		if r.g.Compare(v, u) < 0 {
			return layers.Location{Layer: layer, Index: i}
		}
		last = i
	}
	if last >= 0 {
		return layers.Location{Layer: layer, Index: last + 1}
	}

	at, ok := r.ls.Location(pp)
	if !ok {
		return end
	}
	parents := r.ls.Layer(at.Layer)
	for j := at.Index + 1; j < parents.Len(); j++ {
		q := parents.At(j)
		for i := 0; i < row.Len(); i++ {
			if r.g.PrimaryParent(row.At(i)) == q {
				return layers.Location{Layer: layer, Index: i}
			}
		}
	}
	return end
}

// place takes v out of the layers if present and inserts it at its target.
// v counts as moved when its location or its primary parent changed.
func (r *relative) place(v dag.VertexID, cs *changeSet) error {
	var old *layers.Location
	if loc, ok := r.ls.Location(v); ok {
		old = &loc
		if _, err := r.ls.Remove(v); err != nil {
			return err
		}
	}
	to := r.target(v)
	if err := r.ls.Add(v, to); err != nil {
		return fmt.Errorf("place %s: %w", r.g.Name(v), err)
	}

	pp := r.g.PrimaryParent(v)
	prev, had := r.primary[v]
	r.primary[v] = pp
	moved := old != nil && (*old != to || (had && prev != pp))
	cs.record(v, old, &to, moved)
	return nil
}

// drop takes v out of the layers. It is a no-op for unplaced vertices.
func (r *relative) drop(v dag.VertexID, cs *changeSet) {
	loc, err := r.ls.Remove(v)
	delete(r.primary, v)
	if err != nil {
		cs.record(v, nil, nil, false)
		return
	}
	cs.record(v, &loc, nil, false)
}

// region returns the vertices whose location must be re-evaluated after the
// ancestry of seeds changed: the seeds, all their descendants and the
// dummies of every path leaving one of them, sorted for placement.
func (r *relative) region(seeds ...dag.VertexID) []dag.VertexID {
	seen := make(map[dag.VertexID]bool)
	var out []dag.VertexID
	add := func(v dag.VertexID) {
		if _, ok := r.g.Vertex(v); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, s := range seeds {
		add(s)
		for _, d := range r.g.Descendants(s) {
			add(d)
		}
	}
	for _, v := range slices.Clone(out) {
		if r.g.IsDummy(v) {
			continue
		}
		for _, c := range r.g.ConnectorsOf(v) {
			p, err := r.g.Path(c)
			if err != nil || p.Source() != v {
				continue
			}
			for _, d := range p.Dummies() {
				add(d)
			}
		}
	}
	r.sort(out)
	return out
}

// sort orders vertices for placement: by target layer, vertices already in
// the layers first and in their current order, then by sibling order.
func (r *relative) sort(vs []dag.VertexID) {
	type key struct {
		layer  int
		placed bool
		index  int
	}
	keys := make(map[dag.VertexID]key, len(vs))
	for _, v := range vs {
		layer, _ := r.lg.Layer(v)
		k := key{layer: layer}
		if loc, ok := r.ls.Location(v); ok {
			k.placed, k.index = true, loc.Index
		}
		keys[v] = k
	}
	slices.SortStableFunc(vs, func(a, b dag.VertexID) int {
		ka, kb := keys[a], keys[b]
		if c := cmp.Compare(ka.layer, kb.layer); c != 0 {
			return c
		}
		if ka.placed != kb.placed {
			if ka.placed {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(ka.index, kb.index); c != 0 {
			return c
		}
		return r.g.Compare(a, b)
	})
}

// placeAll re-evaluates every vertex of the region in order.
func (r *relative) placeAll(region []dag.VertexID, cs *changeSet) error {
	for _, v := range region {
		if err := r.place(v, cs); err != nil {
			return err
		}
	}
	return nil
}
