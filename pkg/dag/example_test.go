package dag_test

import (
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/dag"
	"github.com/matzehuels/boxlayout/pkg/geom"
)

func ExampleGraph_basic() {
	// A child with two parents: edges point from child to parent.
	g := dag.New()
	box := geom.Size{Width: 40, Height: 20}
	app, _ := g.AddVertex("app", box, 0)
	auth, _ := g.AddVertex("auth", box, 0)
	cache, _ := g.AddVertex("cache", box, 0)
	_, _ = g.AddEdge(auth, app, "auth->app", false)
	_, _ = g.AddEdge(cache, app, "cache->app", false)

	fmt.Println("Vertices:", g.VertexCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rank of auth:", g.Rank(auth))
	fmt.Println("Children of app:", len(g.Children(app)))
	// Output:
	// Vertices: 3
	// Edges: 2
	// Rank of auth: 1
	// Children of app: 2
}

func ExampleGraph_PrimaryParent() {
	g := dag.New()
	box := geom.Size{Width: 40, Height: 20}
	p1, _ := g.AddVertex("P1", box, 1)
	p2, _ := g.AddVertex("P2", box, 1)
	c, _ := g.AddVertex("C", box, 0)
	_, _ = g.AddEdge(c, p2, "c2", false)
	_, _ = g.AddEdge(c, p1, "c1", false)

	// Equal priority and distance: the smaller name wins.
	fmt.Println(g.Name(g.PrimaryParent(c)))
	// Output:
	// P1
}

func ExampleGraph_AddDummy() {
	g := dag.New()
	d1 := g.AddDummy()
	d2 := g.AddDummy()
	_, _ = g.AddEdge(d1, d2, "c", false)

	// A dummy accepts only one outgoing edge.
	_, err := g.AddEdge(d1, d2, "c", false)
	fmt.Println(g.Name(d1), g.Name(d2))
	fmt.Println(err != nil)
	// Output:
	// *1 *2
	// true
}
