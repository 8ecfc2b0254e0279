package progress_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/codec"
	"github.com/rybkr/tectonic/internal/grid"
	"github.com/rybkr/tectonic/internal/progress"
	"github.com/rybkr/tectonic/internal/stream"
)

func TestMigrateFiltersOversizedValuesAndResizes(t *testing.T) {
	fsys := afero.NewMemMapFs()
	srcBase, err := base.New(1, 2, 5)
	require.NoError(t, err)

	keep := grid.New(srcBase)
	keep.Cells[0] = grid.Cell{Value: 1, Region: 0}
	keep.Cells[1] = grid.Cell{Value: 2, Region: 1}

	drop := grid.New(srcBase)
	drop.Cells[0] = grid.Cell{Value: 5, Region: 0} // exceeds dst M=3 below
	drop.Cells[1] = grid.Cell{Value: 1, Region: 1}

	path := "/src.tect"
	w, err := stream.NewWriter(fsys, path, srcBase)
	require.NoError(t, err)
	require.NoError(t, w.Append(codec.Encode(keep)))
	require.NoError(t, w.Append(codec.Encode(drop)))
	require.NoError(t, w.Close())

	out, err := progress.Migrate(fsys, path, 1, 2, 3)
	require.NoError(t, err)
	require.Len(t, out, 1)

	got, err := codec.Decode(out[0])
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cells[0].Value)
	assert.Equal(t, 2, got.Cells[1].Value)
	assert.Equal(t, uint8(3), got.Base.M)
}

func TestMigrateResizesToLargerBase(t *testing.T) {
	fsys := afero.NewMemMapFs()
	srcBase, err := base.New(1, 2, 5)
	require.NoError(t, err)

	g := grid.New(srcBase)
	g.Cells[0] = grid.Cell{Value: 1, Region: 0}

	path := "/src.tect"
	w, err := stream.NewWriter(fsys, path, srcBase)
	require.NoError(t, err)
	require.NoError(t, w.Append(codec.Encode(g)))
	require.NoError(t, w.Close())

	out, err := progress.Migrate(fsys, path, 1, 4, 5)
	require.NoError(t, err)
	require.Len(t, out, 1)

	got, err := codec.Decode(out[0])
	require.NoError(t, err)
	assert.Equal(t, uint8(4), got.Base.W)
	assert.Equal(t, 1, got.Cells[0].Value)
	assert.False(t, got.Cells[2].Filled())
}
