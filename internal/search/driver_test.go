package search_test

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/codec"
	"github.com/rybkr/tectonic/internal/progress"
	"github.com/rybkr/tectonic/internal/search"
	"github.com/rybkr/tectonic/internal/stream"
)

func mustBase(t *testing.T, h, w, m int) base.Base {
	t.Helper()
	b, err := base.New(h, w, m)
	require.NoError(t, err)
	return b
}

func silentLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// Base (1,1,3) enumerates exactly 3 terminal codes.
func TestDriverBase1x1EnumeratesThree(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := mustBase(t, 1, 1, 3)

	w, err := stream.NewWriter(fs, "/out.tect", b)
	require.NoError(t, err)

	d := search.NewDriver(b, fs, w, silentLogger())
	d.Seed()
	completed, err := d.Run(0)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, 3, d.TerminalCount())
	require.NoError(t, w.Close())

	codes, _, err := stream.ReadAll(fs, "/out.tect")
	require.NoError(t, err)
	assert.Len(t, codes, 3)
}

// Base (1,2,3) has exactly 2 valid terminal grids, by exhaustive
// enumeration: a single size-2 region with values {1,2} in either cell
// order; every other candidate (the complementary one-region orderings and
// every fresh-region split) closes a region whose values aren't {1..n}.
func TestDriverBase1x2EnumeratesTwo(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := mustBase(t, 1, 2, 3)

	w, err := stream.NewWriter(fs, "/out.tect", b)
	require.NoError(t, err)

	d := search.NewDriver(b, fs, w, silentLogger())
	d.Seed()
	completed, err := d.Run(0)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, 2, d.TerminalCount())
	require.NoError(t, w.Close())

	codes, _, err := stream.ReadAll(fs, "/out.tect")
	require.NoError(t, err)
	require.Len(t, codes, 2)

	for _, c := range codes {
		g, err := codec.Decode(c)
		require.NoError(t, err)
		values := map[int]bool{g.Cells[0].Value: true, g.Cells[1].Value: true}
		assert.Equal(t, map[int]bool{1: true, 2: true}, values)
		assert.Equal(t, g.Cells[0].Region, g.Cells[1].Region)
	}
}

// Interrupting after the first terminal code and resuming must reproduce
// the same total output, in the same order, as an uninterrupted run.
func TestDriverCheckpointResumeMatchesUninterruptedRun(t *testing.T) {
	b := mustBase(t, 2, 2, 3)

	fsUninterrupted := afero.NewMemMapFs()
	wFull, err := stream.NewWriter(fsUninterrupted, "/full.tect", b)
	require.NoError(t, err)
	dFull := search.NewDriver(b, fsUninterrupted, wFull, silentLogger())
	dFull.Seed()
	completed, err := dFull.Run(0)
	require.NoError(t, err)
	require.True(t, completed)
	require.NoError(t, wFull.Close())
	fullCodes, _, err := stream.ReadAll(fsUninterrupted, "/full.tect")
	require.NoError(t, err)
	require.NotEmpty(t, fullCodes)

	// Interrupted run: request cancellation up front so the driver stops
	// immediately after its first validated terminal code.
	fsInterrupted := afero.NewMemMapFs()
	w1, err := stream.NewWriter(fsInterrupted, "/part1.tect", b)
	require.NoError(t, err)
	d1 := search.NewDriver(b, fsInterrupted, w1, silentLogger())
	d1.Seed()
	d1.CheckpointPath = "/run.prg"
	d1.Cancel.Set()
	completed, err = d1.Run(0)
	require.NoError(t, err)
	assert.False(t, completed)
	require.NoError(t, w1.Close())
	part1Codes, _, err := stream.ReadAll(fsInterrupted, "/part1.tect")
	require.NoError(t, err)
	assert.Equal(t, 1, d1.TerminalCount())

	indices, err := progress.ReadCheckpoint(fsInterrupted, "/run.prg")
	require.NoError(t, err)

	w2, err := stream.NewWriter(fsInterrupted, "/part2.tect", b)
	require.NoError(t, err)
	d2 := search.NewDriver(b, fsInterrupted, w2, silentLogger())
	startDepth, err := d2.Resume(indices)
	require.NoError(t, err)
	completed, err = d2.Run(startDepth)
	require.NoError(t, err)
	assert.True(t, completed)
	require.NoError(t, w2.Close())
	part2Codes, _, err := stream.ReadAll(fsInterrupted, "/part2.tect")
	require.NoError(t, err)

	var resumedCodes []string
	for _, c := range part1Codes {
		resumedCodes = append(resumedCodes, c.String())
	}
	for _, c := range part2Codes {
		resumedCodes = append(resumedCodes, c.String())
	}

	var wantCodes []string
	for _, c := range fullCodes {
		wantCodes = append(wantCodes, c.String())
	}
	assert.Equal(t, wantCodes, resumedCodes)
}
