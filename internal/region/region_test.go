package region_test

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/grid"
	"github.com/rybkr/tectonic/internal/region"
)

func bitsetFromValues(vals ...uint) *bitset.BitSet {
	bs := bitset.New(8)
	for _, v := range vals {
		bs.Set(v)
	}
	return bs
}

func mustBase(t *testing.T, h, w, m int) base.Base {
	t.Helper()
	b, err := base.New(h, w, m)
	require.NoError(t, err)
	return b
}

// A 2x2 grid filled by a single region with values {1,2} on the top row and
// {3,4} on the bottom: the forward scan must find four values, no free
// border and no neighbouring region.
func TestAnalyzeSingleRegionForwardScan(t *testing.T) {
	b := mustBase(t, 2, 2, 4)
	g := grid.New(b)
	g.Cells[0] = grid.Cell{Value: 1, Region: 0}
	g.Cells[1] = grid.Cell{Value: 2, Region: 0}
	g.Cells[2] = grid.Cell{Value: 3, Region: 0}
	g.Cells[3] = grid.Cell{Value: 4, Region: 0}

	summary := region.Analyze(g)
	require.Contains(t, summary, 0)
	info := summary[0]
	assert.Equal(t, uint(4), info.Values.Count())
	assert.Equal(t, 0, info.FreeBorder)
	assert.Equal(t, 0, info.Neighbours.Count())
	assert.Equal(t, 0, summary.Max())
}

func TestAnalyzeTwoRegionsNeighbours(t *testing.T) {
	b := mustBase(t, 1, 2, 3)
	g := grid.New(b)
	g.Cells[0] = grid.Cell{Value: 1, Region: 0}
	g.Cells[1] = grid.Cell{Value: 1, Region: 1}

	summary := region.Analyze(g)
	require.Contains(t, summary, 0)
	require.Contains(t, summary, 1)
	assert.True(t, summary[0].Neighbours.Test(1))
	assert.True(t, summary[1].Neighbours.Test(0))
	assert.Equal(t, 1, summary.Max())
}

func TestAnalyzeFreeBorderCountsUnassignedForwardNeighbours(t *testing.T) {
	b := mustBase(t, 1, 3, 3)
	g := grid.New(b)
	g.Cells[0] = grid.Cell{Value: 1, Region: 0}
	// cells 1, 2 remain unassigned.

	summary := region.Analyze(g)
	assert.Equal(t, 1, summary[0].FreeBorder)
}

func TestCompleteAndAnomalous(t *testing.T) {
	b := mustBase(t, 1, 2, 3)
	g := grid.New(b)
	g.Cells[0] = grid.Cell{Value: 2, Region: 0} // {2} alone is incomplete: not {1}

	summary := region.Analyze(g)
	info := summary[0]
	assert.True(t, region.Incomplete(info))
	// free_border is 1 here (cell 1 unassigned, forward neighbour of cell 0)
	// so this region is not yet anomalous.
	assert.Equal(t, 1, info.FreeBorder)
	assert.False(t, region.Anomalous(info))
	assert.False(t, summary.AnyAnomalous())

	info.FreeBorder = 0
	assert.True(t, region.Anomalous(info))
}

func TestCompleteRejectsGapsAndOverflow(t *testing.T) {
	complete := func(vals ...uint) bool {
		bs := bitsetFromValues(vals...)
		return region.Complete(bs)
	}
	assert.True(t, complete())
	assert.True(t, complete(1))
	assert.True(t, complete(1, 2))
	assert.False(t, complete(2))       // missing 1
	assert.False(t, complete(1, 3))    // gap at 2
	assert.False(t, complete(1, 2, 4)) // 4 set alongside a {1,2} of size 2
}
