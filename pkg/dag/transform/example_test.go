package transform_test

import (
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/dag/transform"
	"github.com/matzehuels/boxlayout/pkg/geom"
)

func ExampleNormalize() {
	// A connector A→C whose endpoints are three layers apart.
	g := dag.New()
	box := geom.Size{Width: 40, Height: 20}
	a, _ := g.AddVertex("A", box, 0)
	c, _ := g.AddVertex("C", box, 0)
	_, _ = g.AddEdge(a, c, "a->c", false)

	ch, _ := transform.Normalize(g, "a->c", 3)
	p, _ := g.Path("a->c")
	fmt.Println("Created:", len(ch.Created))
	for _, d := range p.Dummies() {
		fmt.Println("Dummy:", g.Name(d))
	}

	// The span shrinks back to one layer: both dummies are merged away.
	ch, _ = transform.Normalize(g, "a->c", 1)
	p, _ = g.Path("a->c")
	fmt.Println("Removed:", len(ch.Removed))
	fmt.Println("Edges:", p.Len())
	// Output:
	// Created: 2
	// Dummy: *2
	// Dummy: *1
	// Removed: 2
	// Edges: 1
}
