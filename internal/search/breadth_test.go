package search_test

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rybkr/tectonic/internal/search"
	"github.com/rybkr/tectonic/internal/stream"
)

// The breadth-first variant must enumerate the same terminal codes as the
// depth-first Driver, just via fully-materialised intermediate frontiers.
func TestRunBreadthFirstMatchesDepthFirstDriver(t *testing.T) {
	b := mustBase(t, 1, 2, 3)

	fsDepth := afero.NewMemMapFs()
	wDepth, err := stream.NewWriter(fsDepth, "/depth.tect", b)
	require.NoError(t, err)
	dDepth := search.NewDriver(b, fsDepth, wDepth, silentLogger())
	dDepth.Seed()
	completed, err := dDepth.Run(0)
	require.NoError(t, err)
	require.True(t, completed)
	require.NoError(t, wDepth.Close())
	depthCodes, _, err := stream.ReadAll(fsDepth, "/depth.tect")
	require.NoError(t, err)

	fsBreadth := afero.NewMemMapFs()
	require.NoError(t, fsBreadth.MkdirAll("/stages", 0o755))
	wBreadth, err := stream.NewWriter(fsBreadth, "/breadth.tect", b)
	require.NoError(t, err)
	count, err := search.RunBreadthFirst(b, fsBreadth, "/stages", wBreadth)
	require.NoError(t, err)
	require.NoError(t, wBreadth.Close())
	breadthCodes, _, err := stream.ReadAll(fsBreadth, "/breadth.tect")
	require.NoError(t, err)

	assert.Equal(t, len(depthCodes), count)

	var depthStrs, breadthStrs []string
	for _, c := range depthCodes {
		depthStrs = append(depthStrs, c.String())
	}
	for _, c := range breadthCodes {
		breadthStrs = append(breadthStrs, c.String())
	}
	assert.ElementsMatch(t, depthStrs, breadthStrs)

	// Each intermediate stage file was written before the frontier advanced.
	for k := 0; k < b.N(); k++ {
		stagePath := fmt.Sprintf("/stages/stage-%02d.tect", k)
		ok, err := afero.Exists(fsBreadth, stagePath)
		require.NoError(t, err)
		assert.True(t, ok, "expected stage file %s", stagePath)
	}
}
