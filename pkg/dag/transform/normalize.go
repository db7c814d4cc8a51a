package transform

import (
	"errors"
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/dag"
)

// ErrInvalidSpan is returned by [Normalize] for a span below one layer.
var ErrInvalidSpan = errors.New("path span must be at least 1")

// Change lists the dummy vertices a normalization created and removed.
type Change struct {
	Created []dag.VertexID
	Removed []dag.VertexID
}

// Empty reports whether the normalization left the path untouched.
func (c Change) Empty() bool { return len(c.Created) == 0 && len(c.Removed) == 0 }

// Normalize splits or merges the path of a connector until it has exactly
// span edges, i.e. span-1 dummies.
//
// Excess dummies are merged away starting from the target end. Missing
// dummies are inserted by splitting the edge at the source end, so dummies
// that survive keep their distance from the target. Normalize does not
// assign layers; that is the caller's concern.
//
// Example: for A→*1→*2→C, Normalize(g, c, 1) merges *2 and then *1,
// leaving the single edge A→C.
func Normalize(g *dag.Graph, connector string, span int) (Change, error) {
	var ch Change
	if span < 1 {
		return ch, fmt.Errorf("normalize %s: %w: %d", connector, ErrInvalidSpan, span)
	}
	for {
		p, err := g.Path(connector)
		if err != nil {
			return ch, fmt.Errorf("normalize: %w", err)
		}
		switch {
		case p.Len() > span:
			dummies := p.Dummies()
			d := dummies[len(dummies)-1]
			if _, err := Merge(g, d); err != nil {
				return ch, err
			}
			ch.Removed = append(ch.Removed, d)
		case p.Len() < span:
			d, err := Split(g, p.Edges[0].ID)
			if err != nil {
				return ch, err
			}
			ch.Created = append(ch.Created, d)
		default:
			return ch, nil
		}
	}
}
