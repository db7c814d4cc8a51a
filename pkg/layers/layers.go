// Package layers holds the ordered layers of a layout: which vertices sit on
// each layer, in which order, and how tall each layer is.
//
// A vertex's [Location] (layer, index in layer) is its topology, independent
// of any coordinate. Layers grow on demand when a vertex targets an index
// beyond the current count. Vertical offsets are recomputed top-down with
// [Layers.UpdateVerticalPositions]; layer 0 starts at Y = 0.
package layers

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/boxlayout/pkg/dag"
)

var (
	// ErrAlreadyPlaced is returned by [Layers.Add] for a vertex that already
	// has a location.
	ErrAlreadyPlaced = errors.New("vertex already has a location")

	// ErrNotPlaced is returned for a vertex without a location.
	ErrNotPlaced = errors.New("vertex has no location")

	// ErrInvalidLocation is returned by [Layers.Add] for a negative layer or an
	// index outside [0, len(layer)].
	ErrInvalidLocation = errors.New("invalid location")
)

// Location is a vertex's relative position: its layer and its index within
// that layer.
type Location struct {
	Layer int `json:"layer" bson:"layer"`
	Index int `json:"index" bson:"index"`
}

func (l Location) String() string { return fmt.Sprintf("%d:%d", l.Layer, l.Index) }

// Layer is one horizontal band of the layout.
type Layer struct {
	index    int
	vertices []dag.VertexID
	top      float64
	height   float64
}

func (l *Layer) Index() int       { return l.index }
func (l *Layer) Len() int         { return len(l.vertices) }
func (l *Layer) Top() float64     { return l.top }
func (l *Layer) Height() float64  { return l.height }
func (l *Layer) Bottom() float64  { return l.top + l.height }
func (l *Layer) CenterY() float64 { return l.top + l.height/2 }

// Vertices returns a copy of the layer's vertices in order.
func (l *Layer) Vertices() []dag.VertexID { return slices.Clone(l.vertices) }

// At returns the vertex at index i.
func (l *Layer) At(i int) dag.VertexID { return l.vertices[i] }

// Layers is an ordered collection of layers with a vertex → layer side
// table. The zero value is not usable - use New.
type Layers struct {
	layers []*Layer
	where  map[dag.VertexID]int
}

// New creates an empty collection.
func New() *Layers {
	return &Layers{where: make(map[dag.VertexID]int)}
}

// Len returns the number of layers, including empty ones.
func (ls *Layers) Len() int { return len(ls.layers) }

// Layer returns layer i, or nil if it does not exist.
func (ls *Layers) Layer(i int) *Layer {
	if i < 0 || i >= len(ls.layers) {
		return nil
	}
	return ls.layers[i]
}

// LayerOf returns the layer holding v, or nil.
func (ls *Layers) LayerOf(v dag.VertexID) *Layer {
	i, ok := ls.where[v]
	if !ok {
		return nil
	}
	return ls.layers[i]
}

// Contains reports whether v has a location.
func (ls *Layers) Contains(v dag.VertexID) bool {
	_, ok := ls.where[v]
	return ok
}

// Add inserts v at loc, shifting later vertices of that layer right.
// Missing layers up to loc.Layer are created empty.
func (ls *Layers) Add(v dag.VertexID, loc Location) error {
	if ls.Contains(v) {
		return fmt.Errorf("%w: %d", ErrAlreadyPlaced, v)
	}
	if loc.Layer < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidLocation, loc)
	}
	for len(ls.layers) <= loc.Layer {
		ls.layers = append(ls.layers, &Layer{index: len(ls.layers)})
	}
	l := ls.layers[loc.Layer]
	if loc.Index < 0 || loc.Index > len(l.vertices) {
		return fmt.Errorf("%w: %s in layer of %d", ErrInvalidLocation, loc, len(l.vertices))
	}
	l.vertices = slices.Insert(l.vertices, loc.Index, v)
	ls.where[v] = loc.Layer
	return nil
}

// Remove takes v out of its layer and returns where it was. Empty layers are
// kept.
func (ls *Layers) Remove(v dag.VertexID) (Location, error) {
	loc, ok := ls.Location(v)
	if !ok {
		return Location{}, fmt.Errorf("%w: %d", ErrNotPlaced, v)
	}
	l := ls.layers[loc.Layer]
	l.vertices = slices.Delete(l.vertices, loc.Index, loc.Index+1)
	delete(ls.where, v)
	return loc, nil
}

// Location returns the layer and index of v.
func (ls *Layers) Location(v dag.VertexID) (Location, bool) {
	i, ok := ls.where[v]
	if !ok {
		return Location{}, false
	}
	return Location{Layer: i, Index: slices.Index(ls.layers[i].vertices, v)}, true
}

// Previous returns the vertex immediately before v in its layer.
func (ls *Layers) Previous(v dag.VertexID) (dag.VertexID, bool) {
	loc, ok := ls.Location(v)
	if !ok || loc.Index == 0 {
		return dag.NoVertex, false
	}
	return ls.layers[loc.Layer].vertices[loc.Index-1], true
}

// Next returns the vertex immediately after v in its layer.
func (ls *Layers) Next(v dag.VertexID) (dag.VertexID, bool) {
	loc, ok := ls.Location(v)
	if !ok || loc.Index+1 >= len(ls.layers[loc.Layer].vertices) {
		return dag.NoVertex, false
	}
	return ls.layers[loc.Layer].vertices[loc.Index+1], true
}

// UpdateVerticalPositions recomputes the extent of every layer: a layer is
// as tall as its tallest member, layer 0 starts at 0 and every later layer
// starts gap below the bottom of the previous one.
func (ls *Layers) UpdateVerticalPositions(height func(dag.VertexID) float64, gap float64) {
	top := 0.0
	for i, l := range ls.layers {
		if i > 0 {
			top = ls.layers[i-1].Bottom() + gap
		}
		l.top = top
		l.height = 0
		for _, v := range l.vertices {
			l.height = max(l.height, height(v))
		}
	}
}

// Filter returns, per layer, the vertices for which keep reports true, in
// layer order. It is typically used to exclude floating vertices.
func (ls *Layers) Filter(keep func(dag.VertexID) bool) [][]dag.VertexID {
	out := make([][]dag.VertexID, len(ls.layers))
	for i, l := range ls.layers {
		for _, v := range l.vertices {
			if keep(v) {
				out[i] = append(out[i], v)
			}
		}
	}
	return out
}

// Each calls fn for every vertex in layer order, top layer first.
func (ls *Layers) Each(fn func(v dag.VertexID, loc Location)) {
	for i, l := range ls.layers {
		for j, v := range l.vertices {
			fn(v, Location{Layer: i, Index: j})
		}
	}
}
