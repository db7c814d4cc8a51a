package layout

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/dag/layered"
	"github.com/matzehuels/boxlayout/pkg/dag/transform"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/geom"
	"github.com/matzehuels/boxlayout/pkg/layers"
	"github.com/matzehuels/boxlayout/pkg/observability"
)

// Edit kinds reported to observability hooks and logs.
const (
	EditAddNode         = "add_node"
	EditRemoveNode      = "remove_node"
	EditResizeNode      = "resize_node"
	EditAddConnector    = "add_connector"
	EditRemoveConnector = "remove_connector"
	EditReroute         = "reroute"
	EditCompact         = "compact"
)

// Link is a parent connector declared together with a new node. Parent
// becomes the connector's target, the new node its source.
type Link struct {
	Connector string `json:"connector" toml:"connector"`
	Parent    string `json:"parent" toml:"parent"`
}

// Engine maintains a layered layout of a diagram under single-element
// edits. Every edit runs to completion and returns the actions it produced,
// in order.
//
// An Engine is not safe for concurrent use; callers serialize edits per
// diagram.
type Engine struct {
	cfg    Config
	logger *log.Logger

	g   *dag.Graph
	lg  *layered.Graph
	ls  *layers.Layers
	rel relative

	pos     map[dag.VertexID]*placement
	emitted map[dag.VertexID]geom.Point
	routes  map[string][]geom.Point

	log   *actionLog
	queue []request

	// err is set once an invariant breaks; the engine then refuses edits.
	err error
}

// New returns an empty engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := dag.New()
	e := &Engine{
		cfg:     cfg,
		logger:  log.Default(),
		g:       g,
		lg:      layered.New(g),
		ls:      layers.New(),
		pos:     make(map[dag.VertexID]*placement),
		emitted: make(map[dag.VertexID]geom.Point),
		routes:  make(map[string][]geom.Point),
	}
	e.rel = relative{g: e.g, lg: e.lg, ls: e.ls, primary: make(map[dag.VertexID]dag.VertexID)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the gaps the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// edit runs fn as one logged top-level edit.
func (e *Engine) edit(kind, subject string, fn func() error) ([]Action, error) {
	if e.err != nil {
		return nil, e.err
	}
	start := time.Now()
	hooks := observability.Layout()
	hooks.OnEditStart(kind, subject)

	e.log = &actionLog{}
	e.queue = e.queue[:0]
	err := fn()
	actions := e.log.actions
	e.log = nil

	if errors.Is(err, errors.ErrCodeInvariant) {
		e.err = err
		e.logger.Error("layout invariant broken", "edit", kind, "subject", subject, "err", err)
	}
	hooks.OnEditComplete(kind, subject, len(actions), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("edit", "kind", kind, "subject", subject, "actions", len(actions))
	return actions, nil
}

func (e *Engine) invariant(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeInvariant, err, format, args...)
}

// node resolves a caller-supplied node ID.
func (e *Engine) node(id string) (dag.VertexID, error) {
	if err := errors.ValidateID("node", id); err != nil {
		return dag.NoVertex, err
	}
	v, ok := e.g.Lookup(id)
	if !ok || e.g.IsDummy(v) {
		return dag.NoVertex, errors.New(errors.ErrCodeNotFound, "node %q", id)
	}
	return v, nil
}

func (e *Engine) validSize(size geom.Size) error {
	if err := errors.ValidateDimension("width", size.Width); err != nil {
		return err
	}
	return errors.ValidateDimension("height", size.Height)
}

// AddNode adds a node together with connectors to its parents. The node is
// placed once, at the location its full parent set implies.
func (e *Engine) AddNode(id string, size geom.Size, priority int, links ...Link) ([]Action, error) {
	return e.edit(EditAddNode, id, func() error {
		if err := errors.ValidateID("node", id); err != nil {
			return err
		}
		if err := e.validSize(size); err != nil {
			return err
		}
		if _, ok := e.g.Lookup(id); ok {
			return errors.New(errors.ErrCodeAlreadyExists, "node %q", id)
		}
		parents := make([]dag.VertexID, len(links))
		for i, l := range links {
			if err := errors.ValidateID("connector", l.Connector); err != nil {
				return err
			}
			if e.g.HasConnector(l.Connector) || slices.ContainsFunc(links[:i], func(o Link) bool { return o.Connector == l.Connector }) {
				return errors.New(errors.ErrCodeAlreadyExists, "connector %q", l.Connector)
			}
			if l.Parent == id {
				return errors.New(errors.ErrCodeInvalidInput, "connector %q connects %q to itself", l.Connector, id)
			}
			p, err := e.node(l.Parent)
			if err != nil {
				return err
			}
			parents[i] = p
		}

		v, err := e.g.AddVertex(id, size, priority)
		if err != nil {
			return e.invariant(err, "add node %s", id)
		}
		if err := e.lg.AddVertex(v, 0); err != nil {
			return e.invariant(err, "add node %s", id)
		}
		cs := newChangeSet()
		seeds := []dag.VertexID{v}
		for i, l := range links {
			u, err := e.lg.Connect(l.Connector, v, parents[i], false)
			if err != nil {
				return e.invariant(err, "add node %s", id)
			}
			seeds = append(seeds, e.absorb(u, cs)...)
		}
		return e.relayout(cs, seeds)
	})
}

// RemoveNode removes a node and every connector touching it.
func (e *Engine) RemoveNode(id string) ([]Action, error) {
	return e.edit(EditRemoveNode, id, func() error {
		v, err := e.node(id)
		if err != nil {
			return err
		}
		cs := newChangeSet()
		var seeds []dag.VertexID
		for _, c := range e.g.ConnectorsOf(v) {
			s, err := e.disconnect(c, cs)
			if err != nil {
				return err
			}
			if s != v {
				seeds = append(seeds, s)
			}
		}
		e.rel.drop(v, cs)
		if err := e.lg.RemoveVertex(v); err != nil {
			return e.invariant(err, "remove node %s", id)
		}
		return e.relayout(cs, seeds)
	})
}

// ResizeNode changes the size of a node. Its center stays; neighbours that
// now overlap are pushed away.
func (e *Engine) ResizeNode(id string, size geom.Size) ([]Action, error) {
	return e.edit(EditResizeNode, id, func() error {
		v, err := e.node(id)
		if err != nil {
			return err
		}
		if err := e.validSize(size); err != nil {
			return err
		}
		if err := e.g.Resize(v, size); err != nil {
			return e.invariant(err, "resize %s", id)
		}
		return e.settle(newChangeSet(), func() {
			a := e.log.add(Action{Kind: VertexResized, Vertex: id, Center: e.center(v), Size: size, Cause: NoCause}, v)
			e.enqueue(request{kind: resolveRequest, vertex: v, cause: a})
			e.enqueue(request{kind: recenterRequest, vertex: e.g.PrimaryParent(v), cause: a})
			e.drain()
		})
	})
}

// AddConnector connects source (the child) to target (the parent). A
// connector that would close a cycle is stored reversed; its route is still
// reported from source to target.
func (e *Engine) AddConnector(id, source, target string) ([]Action, error) {
	return e.edit(EditAddConnector, id, func() error {
		if err := errors.ValidateID("connector", id); err != nil {
			return err
		}
		if e.g.HasConnector(id) {
			return errors.New(errors.ErrCodeAlreadyExists, "connector %q", id)
		}
		s, err := e.node(source)
		if err != nil {
			return err
		}
		t, err := e.node(target)
		if err != nil {
			return err
		}
		if s == t {
			return errors.New(errors.ErrCodeInvalidInput, "connector %q connects %q to itself", id, source)
		}

		reversed := transform.WouldCycle(e.g, s, t)
		if reversed {
			s, t = t, s
			e.logger.Debug("reversing connector", "connector", id, "source", source, "target", target)
		}
		u, err := e.lg.Connect(id, s, t, reversed)
		if err != nil {
			return e.invariant(err, "add connector %s", id)
		}
		cs := newChangeSet()
		seeds := append([]dag.VertexID{s}, e.absorb(u, cs)...)
		return e.relayout(cs, seeds)
	})
}

// RemoveConnector removes a connector and its dummies. Layers never rise
// again, so the former source keeps its layer.
func (e *Engine) RemoveConnector(id string) ([]Action, error) {
	return e.edit(EditRemoveConnector, id, func() error {
		if err := errors.ValidateID("connector", id); err != nil {
			return err
		}
		if !e.g.HasConnector(id) {
			return errors.New(errors.ErrCodeNotFound, "connector %q", id)
		}
		cs := newChangeSet()
		s, err := e.disconnect(id, cs)
		if err != nil {
			return err
		}
		return e.relayout(cs, []dag.VertexID{s})
	})
}

// Reroute recomputes all routes and reports the ones that changed.
func (e *Engine) Reroute() ([]Action, error) {
	return e.edit(EditReroute, "", e.reroute)
}

// Compact pulls primary siblings together and reroutes.
func (e *Engine) Compact() ([]Action, error) {
	return e.edit(EditCompact, "", func() error {
		e.compact()
		e.separate()
		e.sweep()
		return e.reroute()
	})
}

// disconnect removes the path of connector c and returns its physical
// source.
func (e *Engine) disconnect(c string, cs *changeSet) (dag.VertexID, error) {
	p, err := e.g.Path(c)
	if err != nil {
		return dag.NoVertex, e.invariant(err, "disconnect %s", c)
	}
	for _, d := range p.Dummies() {
		e.rel.drop(d, cs)
	}
	if _, err := e.lg.Disconnect(c); err != nil {
		return dag.NoVertex, e.invariant(err, "disconnect %s", c)
	}
	delete(e.routes, c)
	return p.Source(), nil
}

// absorb drops the dummies removed by a structural update and returns the
// vertices whose location it may have changed.
func (e *Engine) absorb(u layered.Update, cs *changeSet) []dag.VertexID {
	for _, d := range u.Removed {
		e.rel.drop(d, cs)
	}
	var seeds []dag.VertexID
	for _, r := range u.Raised {
		seeds = append(seeds, r.Vertex)
	}
	seeds = append(seeds, u.Created...)
	return append(seeds, u.Relayered...)
}

// relayout re-places the region of seeds, checks the structure and
// settles coordinates.
func (e *Engine) relayout(cs *changeSet, seeds []dag.VertexID) error {
	if err := e.rel.placeAll(e.rel.region(seeds...), cs); err != nil {
		return e.invariant(err, "relative layout")
	}
	if err := e.check(); err != nil {
		return err
	}
	return e.settle(cs, nil)
}

// check verifies the structural invariants that every edit must keep.
func (e *Engine) check() error {
	if err := e.lg.Check(); err != nil {
		return e.invariant(err, "layering")
	}
	for _, v := range e.g.Vertices() {
		layer, _ := e.lg.Layer(v)
		loc, ok := e.ls.Location(v)
		if !ok || loc.Layer != layer {
			return e.invariant(fmt.Errorf("%s is in layer %v, want %d", e.g.Name(v), loc, layer), "layers")
		}
	}
	return nil
}

// settle turns the relative changes of an edit into coordinates: floating
// vertices are positioned in layer order, overlaps resolved, siblings
// compacted, vertical moves reported and routes recomputed. prelude runs
// after the vertical layout is known and before vertices are positioned.
func (e *Engine) settle(cs *changeSet, prelude func()) error {
	e.ls.UpdateVerticalPositions(e.height, e.cfg.VerticalGap)

	var floating []*change
	for _, c := range cs.entries() {
		switch {
		case c.removed():
			if p, ok := e.pos[c.vertex]; ok && p.dummy {
				e.log.add(Action{Kind: DummyVertexRemoved, Vertex: p.name, Cause: NoCause}, c.vertex)
			}
			delete(e.pos, c.vertex)
			delete(e.emitted, c.vertex)
		case c.added():
			vx, _ := e.g.Vertex(c.vertex)
			e.pos[c.vertex] = &placement{name: vx.Name, dummy: vx.IsDummy()}
			if vx.IsDummy() {
				e.log.add(Action{Kind: DummyVertexCreated, Vertex: vx.Name, Cause: NoCause}, c.vertex)
			}
			floating = append(floating, c)
		default:
			e.pos[c.vertex].placed = false
			floating = append(floating, c)
		}
	}

	if prelude != nil {
		prelude()
	}

	slices.SortFunc(floating, func(a, b *change) int {
		la, _ := e.ls.Location(a.vertex)
		lb, _ := e.ls.Location(b.vertex)
		if la.Layer != lb.Layer {
			return la.Layer - lb.Layer
		}
		return la.Index - lb.Index
	})
	for _, c := range floating {
		if !e.placed(c.vertex) {
			e.position(c.vertex)
			e.drain()
		}
	}

	e.compact()
	e.separate()
	e.sweep()
	return e.reroute()
}

// sweep reports every vertex whose center differs from the last one
// emitted, such as vertices whose layer moved vertically.
func (e *Engine) sweep() {
	e.ls.Each(func(v dag.VertexID, _ layers.Location) {
		p, ok := e.pos[v]
		if !ok || !p.placed {
			return
		}
		c := e.center(v)
		if last, ok := e.emitted[v]; ok && last.Equal(c) {
			return
		}
		e.emitted[v] = c
		e.log.add(Action{Kind: VertexPositioned, Vertex: p.name, Center: c, Cause: NoCause}, v)
	})
}
