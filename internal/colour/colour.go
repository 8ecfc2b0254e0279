// Package colour implements the region-graph four-colouring validator used
// by downstream consumers of completed grids. It is not used by the
// generator's hot path.
package colour

import (
	"sort"

	"github.com/rybkr/tectonic/internal/grid"
)

const palette = 4

// Graph is the king-move adjacency graph over region ids: (r, r') is an
// edge iff some cell of r is Chebyshev-adjacent to some cell of r'. This is
// the 8-neighbour definition, which differs from (and is not guaranteed to
// satisfy) the classical 4-colour theorem's 4-neighbour planar adjacency.
type Graph struct {
	regions []int
	edges   map[int]map[int]struct{}
}

// Build constructs the adjacency graph of a completed grid.
func Build(g *grid.Grid) *Graph {
	b := g.Base
	edges := make(map[int]map[int]struct{})
	seen := make(map[int]struct{})

	addEdge := func(a, b int) {
		if a == b {
			return
		}
		if edges[a] == nil {
			edges[a] = make(map[int]struct{})
		}
		if edges[b] == nil {
			edges[b] = make(map[int]struct{})
		}
		edges[a][b] = struct{}{}
		edges[b][a] = struct{}{}
	}

	for idx, c := range g.Cells {
		if !c.Filled() {
			continue
		}
		seen[c.Region] = struct{}{}
		row, col := b.RowCol(idx)
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				nr, nc := row+dr, col+dc
				if !b.InBounds(nr, nc) {
					continue
				}
				nb := g.Cells[b.Index(nr, nc)]
				if nb.Filled() {
					addEdge(c.Region, nb.Region)
				}
			}
		}
	}

	regions := make([]int, 0, len(seen))
	for r := range seen {
		regions = append(regions, r)
	}
	sort.Ints(regions)

	return &Graph{regions: regions, edges: edges}
}

// FourColourable reports whether a total colouring with 4 colours exists,
// found by backtracking over regions in ascending id order with a palette
// of 4 colours, greedy-assign-and-backtrack-on-conflict.
func (gr *Graph) FourColourable() bool {
	colours := make(map[int]int, len(gr.regions))
	return gr.assign(0, colours)
}

func (gr *Graph) assign(i int, colours map[int]int) bool {
	if i == len(gr.regions) {
		return true
	}
	r := gr.regions[i]
	for c := 1; c <= palette; c++ {
		if gr.conflicts(r, c, colours) {
			continue
		}
		colours[r] = c
		if gr.assign(i+1, colours) {
			return true
		}
		delete(colours, r)
	}
	return false
}

func (gr *Graph) conflicts(r, c int, colours map[int]int) bool {
	for nb := range gr.edges[r] {
		if colours[nb] == c {
			return true
		}
	}
	return false
}

// FourColourable builds the adjacency graph of g and checks it for a total
// 4-colouring in one call.
func FourColourable(g *grid.Grid) bool {
	return Build(g).FourColourable()
}
