package stream

import (
	"fmt"
	"math/big"

	"github.com/spf13/afero"

	"github.com/rybkr/tectonic/internal/base"
)

// Compact rewrites the container at path so that it contains a single
// segment aggregating counts per byte-width, reducing per-segment header
// overhead for files that accumulated many small flushes.
func Compact(fs afero.Fs, path string) error {
	codes, b, err := ReadAll(fs, path)
	if err != nil {
		return fmt.Errorf("tectonic: compact: %w", err)
	}

	tmp := path + ".compact.tmp"
	if err := writeAggregated(fs, tmp, b, codes); err != nil {
		return err
	}
	return fs.Rename(tmp, path)
}

// writeAggregated writes codes as one or more segments whose pairs are
// grouped by byte-width regardless of original adjacency — valid because
// this path is only used when round-trip order does not need to be
// preserved (the compactor is an offline maintenance tool, not part of the
// generator's write path).
func writeAggregated(fs afero.Fs, path string, b base.Base, codes []*big.Int) error {
	w, err := NewWriter(fs, path, b)
	if err != nil {
		return err
	}

	byWidth := make(map[byte][]*big.Int)
	var widths []byte
	for _, c := range codes {
		wd := byteWidth(c)
		if _, ok := byWidth[wd]; !ok {
			widths = append(widths, wd)
		}
		byWidth[wd] = append(byWidth[wd], c)
	}

	runs := make([]widthRun, len(widths))
	for i, wd := range widths {
		runs[i] = widthRun{width: wd, codes: byWidth[wd]}
	}
	for len(runs) > 0 {
		batch := runs
		if len(batch) > maxPairs {
			batch = runs[:maxPairs]
		}
		if err := writeSegment(w.f, batch); err != nil {
			w.f.Close()
			return err
		}
		w.total += segmentCodeCount(batch)
		runs = runs[len(batch):]
	}
	return w.Close()
}

func segmentCodeCount(runs []widthRun) uint32 {
	var n uint32
	for _, r := range runs {
		n += uint32(len(r.codes))
	}
	return n
}
