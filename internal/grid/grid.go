// Package grid implements the Tectonic grid model: cells, partial and
// completed grids, and region-label normalisation.
package grid

import (
	"fmt"

	"github.com/rybkr/tectonic/internal/base"
)

// Sentinel markers for a cell that has not yet been filled.
const (
	UnassignedValue  = 0
	UnassignedRegion = -1
)

// Cell is a single grid position: a value in {0}∪[1,M] and a region id in
// {-1}∪[0,N).
type Cell struct {
	Value  int
	Region int
}

// Filled reports whether the cell carries both a value and a region.
func (c Cell) Filled() bool {
	return c.Value >= 1 && c.Region >= 0
}

// Grid is a Base plus its ordered sequence of cells.
//
// Grid is a value created once and grown by the step producer one cell at a
// time; callers that need to retain a grid across mutation must Clone it
// first (see internal/producer for the scratch-mutate-revert pattern that
// avoids doing so on the hot path).
type Grid struct {
	Base  base.Base
	Cells []Cell
}

// New returns an empty grid (every cell unassigned) for the given base.
func New(b base.Base) *Grid {
	cells := make([]Cell, b.N())
	for i := range cells {
		cells[i] = Cell{Value: UnassignedValue, Region: UnassignedRegion}
	}
	return &Grid{Base: b, Cells: cells}
}

// Clone returns an independent deep copy.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.Cells))
	copy(cells, g.Cells)
	return &Grid{Base: g.Base, Cells: cells}
}

// Stage returns the number of filled cells counting from the start of
// row-major order, i.e. the index of the first unassigned cell. Grids
// produced by the step producer are always prefixes: cells [0,stage) are
// filled and cells [stage,N) are unassigned.
func (g *Grid) Stage() int {
	for i, c := range g.Cells {
		if !c.Filled() {
			return i
		}
	}
	return len(g.Cells)
}

// Equal reports whether two grids have the same base and cell contents.
func (g *Grid) Equal(other *Grid) bool {
	if g.Base != other.Base || len(g.Cells) != len(other.Cells) {
		return false
	}
	for i := range g.Cells {
		if g.Cells[i] != other.Cells[i] {
			return false
		}
	}
	return true
}

// String renders the grid as a grid of "value@region" cells, useful in logs
// and test failure output.
func (g *Grid) String() string {
	s := ""
	for row := 0; row < int(g.Base.H); row++ {
		for col := 0; col < int(g.Base.W); col++ {
			c := g.Cells[g.Base.Index(row, col)]
			if !c.Filled() {
				s += " .   "
				continue
			}
			s += fmt.Sprintf("%2d@%-2d", c.Value, c.Region)
		}
		s += "\n"
	}
	return s
}
