package dag

import (
	"slices"
)

// CountCrossings returns the total number of edge crossings for the given
// layer orderings. It sums the crossings between each pair of consecutive
// layers; layers[i] holds the vertices of layer i in left-to-right order.
//
// The engine never minimizes crossings. The count is a quality metric for
// reports and regression checks.
func CountCrossings(g *Graph, layers [][]VertexID) int {
	crossings := 0
	for i := 0; i+1 < len(layers); i++ {
		crossings += CountLayerCrossings(g, layers[i], layers[i+1])
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two adjacent layers using a
// Fenwick tree (binary indexed tree) for O(E log V) performance where E is the
// number of edges between the layers and V is the number of vertices in the
// lower layer.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of lower positions
// when edges are sorted by upper position.
//
// Returns 0 if either layer is empty, as no crossings can exist without edges.
func CountLayerCrossings(g *Graph, upper, lower []VertexID) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := make(map[VertexID]int, len(lower))
	for i, v := range lower {
		lowerPos[v] = i
	}

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, u := range upper {
		for _, c := range g.Children(u) {
			if pos, ok := lowerPos[c]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	// Sort edges by upper position, then by lower position
	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	// Count inversions using Fenwick tree
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// Query: count edges seen so far with lower position <= e.lower
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		// Crossings = edges seen so far ending further right
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
