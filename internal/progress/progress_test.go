package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rybkr/tectonic/internal/progress"
)

func TestStemFormatsTerminalAndStaged(t *testing.T) {
	terminal := progress.Progress{H: 5, W: 12, M: 3, Stage: -1}
	assert.Equal(t, "h05l12m03", terminal.Stem())
	assert.True(t, terminal.Terminal())
	assert.Equal(t, 60, terminal.StageValue())

	staged := progress.Progress{H: 5, W: 12, M: 3, Stage: 7}
	assert.Equal(t, "h05l12m03-p07", staged.Stem())
	assert.False(t, staged.Terminal())
	assert.Equal(t, 7, staged.StageValue())
}

func TestParseRoundTripsStem(t *testing.T) {
	p, ok := progress.Parse("prefix-h05l12m03-p07.tect")
	require.True(t, ok)
	assert.Equal(t, progress.Progress{H: 5, W: 12, M: 3, Stage: 7}, p)

	p2, ok := progress.Parse("h05l12m03.tect")
	require.True(t, ok)
	assert.Equal(t, progress.Progress{H: 5, W: 12, M: 3, Stage: -1}, p2)

	_, ok = progress.Parse("not-a-progress-file.txt")
	assert.False(t, ok)
}

func TestEligibleSameWidthSameOrLargerHeight(t *testing.T) {
	// Stage 21 = (5-1)*5+1 is the latest stage a 5-high progress may have
	// and still seed a taller base of the same width.
	p := progress.Progress{H: 5, W: 5, M: 5, Stage: 21}
	assert.True(t, progress.Eligible(p, 5, 5, 5))
	assert.True(t, progress.Eligible(p, 7, 5, 5))
}

func TestEligibleRejectsSmallerMaximum(t *testing.T) {
	p := progress.Progress{H: 5, W: 5, M: 3, Stage: -1}
	assert.False(t, progress.Eligible(p, 5, 5, 5))
}

func TestEligibleEarlyStageAcrossWidths(t *testing.T) {
	// A progress file with a very early stage is eligible for any base whose
	// width exceeds it, regardless of width mismatch.
	p := progress.Progress{H: 9, W: 9, M: 9, Stage: 1}
	assert.True(t, progress.Eligible(p, 5, 5, 9))
}

func TestBestRanksHigherStageThenLowerM(t *testing.T) {
	candidates := []progress.Candidate{
		{Progress: progress.Progress{H: 5, W: 5, M: 6, Stage: 10}, Path: "a"},
		{Progress: progress.Progress{H: 5, W: 5, M: 5, Stage: 10}, Path: "b"},
		{Progress: progress.Progress{H: 5, W: 5, M: 5, Stage: 5}, Path: "c"},
	}
	best, ok := progress.Best(candidates, 5, 5, 5)
	require.True(t, ok)
	assert.Equal(t, "b", best.Path, "higher stage wins, then lower M")
}

func TestBestPrefersGrowingOverShrinkingOnCellCountTie(t *testing.T) {
	// Target base is 5x5 (N=25), both candidates eligible via the
	// early-stage rule (stage 2 < min(p.W, 5)) so H/W needn't match.
	// "shrink" needs 5 cells removed (N=30); "grow" needs only 1 cell added
	// (N=24). A signed comparison must rank "grow" above "shrink", where an
	// absolute-value comparison (larger preferred) would rank "shrink" first
	// since its delta of 5 exceeds grow's 1, matching the original's "add as
	// many cells as possible, remove as few as possible" rule.
	candidates := []progress.Candidate{
		{Progress: progress.Progress{H: 6, W: 5, M: 5, Stage: 2}, Path: "shrink"},
		{Progress: progress.Progress{H: 3, W: 8, M: 5, Stage: 2}, Path: "grow"},
	}
	best, ok := progress.Best(candidates, 5, 5, 5)
	require.True(t, ok)
	assert.Equal(t, "grow", best.Path)
}

func TestBestReturnsFalseWhenNoneEligible(t *testing.T) {
	candidates := []progress.Candidate{
		{Progress: progress.Progress{H: 5, W: 5, M: 2, Stage: 10}, Path: "a"},
	}
	_, ok := progress.Best(candidates, 5, 5, 5)
	assert.False(t, ok)
}
