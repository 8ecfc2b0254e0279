package search

import (
	"fmt"
	"math/big"

	"github.com/spf13/afero"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/codec"
	"github.com/rybkr/tectonic/internal/grid"
	"github.com/rybkr/tectonic/internal/producer"
	"github.com/rybkr/tectonic/internal/region"
	"github.com/rybkr/tectonic/internal/stream"
)

// RunBreadthFirst is the breadth-first alternative to Driver: it processes
// the whole stage-k frontier into a single file before producing stage k+1
// from it. It materialises every frontier in memory, so it is intended only
// for small bases where the full intermediate frontiers are cheap; unlike
// the depth-first Driver it offers no cooperative cancellation or
// checkpointing.
//
// stageDir receives one container file per intermediate stage (named
// fmt.Sprintf("stage-%02d.tect", k)); terminalWriter receives every
// validated terminal code.
func RunBreadthFirst(b base.Base, fs afero.Fs, stageDir string, terminalWriter *stream.Writer) (int, error) {
	n := b.N()
	frontier := []*big.Int{codec.Encode(grid.New(b))}

	for k := 0; k < n; k++ {
		path := fmt.Sprintf("%s/stage-%02d.tect", stageDir, k)
		w, err := stream.NewWriter(fs, path, b)
		if err != nil {
			return 0, err
		}
		for _, code := range frontier {
			if err := w.Append(code); err != nil {
				w.Close()
				return 0, err
			}
		}
		if err := w.Close(); err != nil {
			return 0, err
		}

		var next []*big.Int
		for _, code := range frontier {
			g, err := codec.Decode(code)
			if err != nil {
				return 0, err
			}
			successors, err := producer.Successors(g, k)
			if err != nil {
				return 0, err
			}
			next = append(next, successors...)
		}
		frontier = next
	}

	count := 0
	for _, code := range frontier {
		g, err := codec.Decode(code)
		if err != nil {
			return 0, err
		}
		summary := region.Analyze(g)
		if summary.AnyAnomalous() {
			continue
		}
		if err := terminalWriter.Append(code); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}
