// Package region computes the per-region summaries (values, neighbours,
// free border count) that the step producer and completeness checks rely
// on. Summaries are always recomputed from the grid rather than maintained
// incrementally, since a region's free border can change from any cell on
// its perimeter, not just the one most recently filled.
package region

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/rybkr/tectonic/internal/grid"
)

// Info is the derived summary for one region id.
type Info struct {
	// Values has bit v set iff value v is present in the region. Bit 0 is
	// never set (values are 1-indexed).
	Values *bitset.BitSet
	// Neighbours has bit r set iff region r is 4-adjacent to this region.
	Neighbours *bitset.BitSet
	// FreeBorder counts unassigned 4-neighbour cells still adjacent to the
	// region.
	FreeBorder int
}

// Summary maps region id to its Info. Only present (non-negative) region
// ids appear as keys.
type Summary map[int]*Info

func (s Summary) get(r int, valBits uint) *Info {
	info, ok := s[r]
	if !ok {
		// BitSet grows automatically as higher bits are Set, so the initial
		// length only needs to be a reasonable starting capacity.
		info = &Info{Values: bitset.New(valBits), Neighbours: bitset.New(8)}
		s[r] = info
	}
	return info
}

// Analyze makes a single forward (east, south) pass over g and returns the
// per-region summary.
func Analyze(g *grid.Grid) Summary {
	b := g.Base
	n := b.N()
	s := make(Summary)
	valBits := uint(b.M) + 1

	for idx := 0; idx < n; idx++ {
		cell := g.Cells[idx]
		if !cell.Filled() {
			continue
		}
		row, col := b.RowCol(idx)
		info := s.get(cell.Region, valBits)
		info.Values.Set(uint(cell.Value))

		// Forward neighbours only: east and south. Adjacency is symmetric so
		// this is sufficient to populate both cells' summaries over the full
		// scan.
		if col+1 < int(b.W) {
			eIdx := b.Index(row, col+1)
			considerForward(s, info, cell.Region, g.Cells[eIdx], valBits)
		}
		if row+1 < int(b.H) {
			sIdx := b.Index(row+1, col)
			considerForward(s, info, cell.Region, g.Cells[sIdx], valBits)
		}
	}
	return s
}

func considerForward(s Summary, info *Info, region int, nb grid.Cell, valBits uint) {
	if !nb.Filled() {
		info.FreeBorder++
		return
	}
	if nb.Region == region {
		return
	}
	other := s.get(nb.Region, valBits)
	info.Neighbours.Set(uint(nb.Region))
	other.Neighbours.Set(uint(region))
}

// Max returns the highest-numbered present region id, or -1 if none.
func (s Summary) Max() int {
	max := -1
	for r := range s {
		if r > max {
			max = r
		}
	}
	return max
}

// Complete reports whether values forms the contiguous set {1..|values|}.
func Complete(values *bitset.BitSet) bool {
	n := values.Count()
	if n == 0 {
		return true
	}
	for v := uint(1); v <= n; v++ {
		if !values.Test(v) {
			return false
		}
	}
	// Nothing beyond n may be set.
	return values.Count() == n
}

// Incomplete is the negation of Complete, applied to a region's Info.
func Incomplete(info *Info) bool {
	return !Complete(info.Values)
}

// Anomalous reports whether a region's free border has closed (no more
// cells can ever be added to it) while its values do not yet form
// {1..|values|} — such a region can never become legal.
func Anomalous(info *Info) bool {
	return info.FreeBorder == 0 && Incomplete(info)
}

// AnyAnomalous reports whether any region in the summary is anomalous.
func (s Summary) AnyAnomalous() bool {
	for _, info := range s {
		if Anomalous(info) {
			return true
		}
	}
	return false
}
