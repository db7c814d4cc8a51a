package layout_test

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/geom"
	"github.com/matzehuels/boxlayout/pkg/layout"
)

func Example() {
	e, _ := layout.New(layout.DefaultConfig(), layout.WithLogger(log.New(io.Discard)))
	box := geom.Size{Width: 40, Height: 20}

	e.AddNode("root", box, 0)
	e.AddNode("a", box, 0, layout.Link{Connector: "a-root", Parent: "root"})
	actions, _ := e.AddNode("b", box, 0, layout.Link{Connector: "b-root", Parent: "root"})

	for _, a := range actions {
		switch a.Kind {
		case layout.PathRerouted:
			fmt.Println(a.Kind, a.Connector, len(a.Route), "points")
		default:
			fmt.Println(a.Kind, a.Vertex, a.Center, "cause", a.Cause)
		}
	}
	// Output:
	// vertex_positioned b (50, 70) cause -1
	// vertex_positioned root (25, 10) cause 0
	// path_rerouted a-root 2 points
	// path_rerouted b-root 2 points
}

func ExampleEngine_Snapshot() {
	e, _ := layout.New(layout.Config{HorizontalGap: 20, VerticalGap: 30}, layout.WithLogger(log.New(io.Discard)))
	box := geom.Size{Width: 60, Height: 20}

	e.AddNode("app", box, 0)
	e.AddNode("lib", box, 0, layout.Link{Connector: "lib-app", Parent: "app"})
	e.AddNode("util", box, 0,
		layout.Link{Connector: "util-app", Parent: "app"},
		layout.Link{Connector: "util-lib", Parent: "lib"})

	snap := e.Snapshot()
	for i, layer := range snap.Layers {
		fmt.Println(i, layer)
	}
	n, _ := e.Node("util")
	fmt.Println("util under", n.Parent)
	// Output:
	// 0 [app]
	// 1 [lib *1]
	// 2 [util]
	// util under lib
}
