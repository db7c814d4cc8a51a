// Package geom provides the immutable 2-D primitives used by the layout
// engine: points, sizes and axis-aligned rectangles.
//
// All values are plain structs passed by value; every operation returns a new
// value. Coordinates follow screen conventions: X grows to the right and Y
// grows downward, so layer 0 sits at the top of a diagram.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the tolerance used when comparing coordinates.
const Epsilon = 1e-9

// Point is a location in diagram space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) vec() r2.Vec       { return r2.Vec{X: p.X, Y: p.Y} }
func fromVec(v r2.Vec) Point      { return Point{X: v.X, Y: v.Y} }
func (p Point) String() string    { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }
func (p Point) Add(q Point) Point { return fromVec(r2.Add(p.vec(), q.vec())) }
func (p Point) Sub(q Point) Point { return fromVec(r2.Sub(p.vec(), q.vec())) }

// Scale multiplies both coordinates by f.
func (p Point) Scale(f float64) Point { return fromVec(r2.Scale(f, p.vec())) }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 { return r2.Norm(r2.Sub(p.vec(), q.vec())) }

// Equal reports whether p and q coincide within [Epsilon].
func (p Point) Equal(q Point) bool {
	return math.Abs(p.X-q.X) <= Epsilon && math.Abs(p.Y-q.Y) <= Epsilon
}

// Size is a width/height pair. Dummy vertices have the zero Size.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Valid reports whether both dimensions are finite and non-negative.
func (s Size) Valid() bool {
	return s.Width >= 0 && s.Height >= 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0) &&
		!math.IsNaN(s.Width) && !math.IsNaN(s.Height)
}

// Rect is an axis-aligned rectangle described by its minimum and maximum
// corners. A Rect with Min == Max is a degenerate point rectangle.
type Rect struct {
	Min Point `json:"min" bson:"min"`
	Max Point `json:"max" bson:"max"`
}

// Centered returns the rectangle of the given size centered at c.
func Centered(c Point, s Size) Rect {
	half := Point{X: s.Width / 2, Y: s.Height / 2}
	return Rect{Min: c.Sub(half), Max: c.Add(half)}
}

func (r Rect) Left() float64   { return r.Min.X }
func (r Rect) Right() float64  { return r.Max.X }
func (r Rect) Top() float64    { return r.Min.Y }
func (r Rect) Bottom() float64 { return r.Max.Y }
func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r Rect) Size() Size      { return Size{Width: r.Width(), Height: r.Height()} }

// Center returns the midpoint of r.
func (r Rect) Center() Point { return r.Min.Add(r.Max).Scale(0.5) }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Contains reports whether p lies inside r or on its boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X-Epsilon && p.X <= r.Max.X+Epsilon &&
		p.Y >= r.Min.Y-Epsilon && p.Y <= r.Max.Y+Epsilon
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, s.Min.X), Y: math.Min(r.Min.Y, s.Min.Y)},
		Max: Point{X: math.Max(r.Max.X, s.Max.X), Y: math.Max(r.Max.Y, s.Max.Y)},
	}
}

// Intersect returns the overlap of r and s. The second result is false when
// the rectangles are disjoint; touching edges count as an intersection.
func (r Rect) Intersect(s Rect) (Rect, bool) {
	out := Rect{
		Min: Point{X: math.Max(r.Min.X, s.Min.X), Y: math.Max(r.Min.Y, s.Min.Y)},
		Max: Point{X: math.Min(r.Max.X, s.Max.X), Y: math.Min(r.Max.Y, s.Max.Y)},
	}
	if out.Min.X > out.Max.X+Epsilon || out.Min.Y > out.Max.Y+Epsilon {
		return Rect{}, false
	}
	return out, true
}

// AttachPoint returns where a line from the center of r toward p leaves r.
// If p lies inside r the line never leaves it and p itself is returned; a
// degenerate rectangle always yields its center.
func (r Rect) AttachPoint(p Point) Point {
	c := r.Center()
	d := r2.Sub(p.vec(), c.vec())
	if r2.Norm(d) <= Epsilon {
		return c
	}
	hw, hh := r.Width()/2, r.Height()/2
	scale := math.Inf(1)
	if math.Abs(d.X) > Epsilon {
		scale = math.Min(scale, hw/math.Abs(d.X))
	}
	if math.Abs(d.Y) > Epsilon {
		scale = math.Min(scale, hh/math.Abs(d.Y))
	}
	if scale >= 1 {
		return p
	}
	return fromVec(r2.Add(c.vec(), r2.Scale(scale, d)))
}
