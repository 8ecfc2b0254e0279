// Package producer implements the step producer: given a partial grid at
// stage k, it enumerates every partial grid at stage k+1 legally derivable
// by filling cell index k.
package producer

import (
	"errors"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/rybkr/tectonic/internal/codec"
	"github.com/rybkr/tectonic/internal/grid"
	"github.com/rybkr/tectonic/internal/region"
)

// ErrStageOutOfRange is returned when Successors is asked to fill a cell
// index outside the grid.
var ErrStageOutOfRange = errors.New("tectonic: stage out of range")

// Successors returns, in a fixed deterministic order (extend, then fresh,
// then merge), the codes of every legal grid obtainable by filling cell k
// of g.
//
// g must have exactly k cells filled (cells [0,k) filled, [k,N) unassigned);
// this is the invariant the staged searcher maintains between depths.
func Successors(g *grid.Grid, k int) ([]*codec.Code, error) {
	b := g.Base
	n := b.N()
	if k < 0 || k >= n {
		return nil, ErrStageOutOfRange
	}

	row, col := b.RowCol(k)
	summary := region.Analyze(g)

	adjRegions := adjacentRegions(g, k, row, col)
	vPossible := possibleValues(g, row, col)

	var out []*codec.Code
	scratch := g.Clone()

	emit := func(value, regionID int) {
		scratch.Cells[k] = grid.Cell{Value: value, Region: regionID}
		out = append(out, codec.Encode(scratch))
		scratch.Cells[k] = grid.Cell{Value: grid.UnassignedValue, Region: grid.UnassignedRegion}
	}

	// Alternative 1: extend an adjacent region.
	for _, r1 := range adjRegions {
		if extendGuardBlocks(summary, adjRegions, r1) {
			continue
		}
		info1 := summary[r1]
		for _, v := range vPossible {
			if info1.Values.Test(uint(v)) {
				continue
			}
			emit(v, r1)
		}
	}

	// Alternative 2: create a fresh region.
	if !freshGuardBlocks(summary, adjRegions) {
		rStar := summary.Max() + 1
		for _, v := range vPossible {
			emit(v, rStar)
		}
	}

	// Alternative 3: merge two adjacent regions.
	for i, r1 := range adjRegions {
		info1 := summary[r1]
		for _, r2 := range adjRegions[i+1:] {
			info2 := summary[r2]
			if info1.Neighbours.Test(uint(r2)) {
				continue // already 4-adjacent elsewhere in the grid
			}
			if info1.Values.IntersectionCardinality(info2.Values) != 0 {
				continue
			}
			var merged []int
			for _, v := range vPossible {
				if info1.Values.Test(uint(v)) || info2.Values.Test(uint(v)) {
					continue
				}
				merged = append(merged, v)
			}
			if len(merged) == 0 {
				continue
			}
			for _, v := range merged {
				mg := mergeRegions(g, r1, r2, k, v)
				out = append(out, codec.Encode(mg))
			}
		}
	}

	return out, nil
}

// adjacentRegions returns the sorted unique set of region ids among the
// west and north 4-neighbours of (row, col).
func adjacentRegions(g *grid.Grid, k, row, col int) []int {
	seen := make(map[int]struct{}, 2)
	if col > 0 {
		if c := g.Cells[k-1]; c.Filled() {
			seen[c.Region] = struct{}{}
		}
	}
	if row > 0 {
		if c := g.Cells[k-int(g.Base.W)]; c.Filled() {
			seen[c.Region] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// possibleValues computes V_possible = {1..M} minus the values of
// king-move-adjacent filled cells (west, north-west, north, north-east).
func possibleValues(g *grid.Grid, row, col int) []int {
	k := g.Base.Index(row, col)
	used := bitset.New(uint(g.Base.M) + 1)
	w := int(g.Base.W)

	mark := func(idx int) {
		if idx < 0 || idx >= len(g.Cells) {
			return
		}
		if c := g.Cells[idx]; c.Filled() {
			used.Set(uint(c.Value))
		}
	}
	if col > 0 {
		mark(k - 1) // west
	}
	if row > 0 {
		if col > 0 {
			mark(k - w - 1) // north-west
		}
		mark(k - w) // north
		if col < w-1 {
			mark(k - w + 1) // north-east
		}
	}

	out := make([]int, 0, int(g.Base.M))
	for v := 1; v <= int(g.Base.M); v++ {
		if !used.Test(uint(v)) {
			out = append(out, v)
		}
	}
	return out
}

// extendGuardBlocks reports whether extending r1 would close off some other
// adjacent, incomplete region whose only remaining free border is the cell
// being filled.
func extendGuardBlocks(summary region.Summary, adjRegions []int, r1 int) bool {
	if len(adjRegions) < 2 {
		return false
	}
	for _, r2 := range adjRegions {
		if r2 == r1 {
			continue
		}
		info2 := summary[r2]
		if info2.FreeBorder == 1 && region.Incomplete(info2) {
			return true
		}
	}
	return false
}

// freshGuardBlocks reports whether creating a fresh region would orphan an
// adjacent, incomplete region.
func freshGuardBlocks(summary region.Summary, adjRegions []int) bool {
	for _, r := range adjRegions {
		info := summary[r]
		if info.FreeBorder == 1 && region.Incomplete(info) {
			return true
		}
	}
	return false
}

// mergeRegions returns a working copy of g in which every cell formerly
// assigned r2 is relabelled r1, cell k is set to (v, r1), and region ids are
// renormalised so the codec's canonical-labelling requirement holds.
func mergeRegions(g *grid.Grid, r1, r2, k, v int) *grid.Grid {
	out := g.Clone()
	for i, c := range out.Cells {
		if c.Region == r2 {
			out.Cells[i].Region = r1
		}
	}
	out.Cells[k] = grid.Cell{Value: v, Region: r1}
	return grid.Normalise(out)
}
