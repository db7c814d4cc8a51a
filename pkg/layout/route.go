package layout

import (
	"slices"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/geom"
)

// route computes the points of a connector in connector direction: where
// the line leaves the source box, the dummy centers, and where it enters
// the target box.
func (e *Engine) route(p dag.Path) []geom.Point {
	pts := make([]geom.Point, 0, p.Len()+1)
	mid := make([]geom.Point, 0, p.Len()-1)
	for _, d := range p.Dummies() {
		mid = append(mid, e.center(d))
	}

	toward := e.center(p.Target())
	if len(mid) > 0 {
		toward = mid[0]
	}
	pts = append(pts, e.rect(p.Source()).AttachPoint(toward))
	pts = append(pts, mid...)

	from := e.center(p.Source())
	if len(mid) > 0 {
		from = mid[len(mid)-1]
	}
	pts = append(pts, e.rect(p.Target()).AttachPoint(from))

	if p.Reversed() {
		slices.Reverse(pts)
	}
	return pts
}

// reroute recomputes every connector route and logs the ones that differ
// from what was last emitted.
func (e *Engine) reroute() error {
	for _, c := range e.g.Connectors() {
		p, err := e.g.Path(c)
		if err != nil {
			return e.invariant(err, "route %s", c)
		}
		pts := e.route(p)
		if routesEqual(pts, e.routes[c]) {
			continue
		}
		e.routes[c] = pts
		e.log.add(Action{Kind: PathRerouted, Connector: c, Route: slices.Clone(pts), Cause: NoCause}, dag.NoVertex)
	}
	return nil
}

func routesEqual(a, b []geom.Point) bool {
	return slices.EqualFunc(a, b, geom.Point.Equal)
}
