package progress

import (
	"math/big"
	"sort"

	"github.com/spf13/afero"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/codec"
	"github.com/rybkr/tectonic/internal/grid"
	"github.com/rybkr/tectonic/internal/stream"
)

// Eligible reports whether a saved progress p can serve as a starting point
// for generating base (h, w, m).
func Eligible(p Progress, h, w, m int) bool {
	if p.M < m {
		return false
	}
	stage := p.StageValue()
	if p.W == w && (p.H == h || stage <= (min(p.H, h)-1)*w+1) {
		return true
	}
	if stage < min(p.W, w) {
		return true
	}
	return false
}

// Candidate pairs a discovered Progress with the file it was parsed from.
type Candidate struct {
	Progress Progress
	Path     string
}

// Best selects the best eligible candidate for base (h, w, m): higher stage
// first, then lower M, then preference for ΔN == 0, then larger ΔN over
// smaller.
//
// Returns ok=false if no candidate is eligible.
func Best(candidates []Candidate, h, w, m int) (Candidate, bool) {
	var eligible []Candidate
	for _, c := range candidates {
		if Eligible(c.Progress, h, w, m) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return Candidate{}, false
	}

	targetN := h * w
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i].Progress, eligible[j].Progress
		if a.StageValue() != b.StageValue() {
			return a.StageValue() > b.StageValue() // higher stage first
		}
		if a.M != b.M {
			return a.M < b.M // lower M first
		}
		dA := deltaN(a, targetN)
		dB := deltaN(b, targetN)
		if (dA == 0) != (dB == 0) {
			return dA == 0 // ΔN == 0 preferred
		}
		return dA > dB // otherwise larger ΔN (grow) preferred
	})
	return eligible[0], true
}

// deltaN returns the signed cell-count delta targetN - p's own N: positive
// when the candidate must grow to reach the target, negative when it must
// shrink. Comparing these signed values directly (larger preferred) ranks
// any growing candidate above any shrinking one, and among candidates on
// the same side prefers growing more or shrinking less — the intent noted
// in the original: add as many cells as possible, remove as few as
// possible.
func deltaN(p Progress, targetN int) int {
	n := p.H * p.W
	return targetN - n
}

// Migrate decodes every code in the container at srcPath (whose header names
// the source base), filters out grids whose first min(source N, target N)
// cells contain any value greater than the desired maximum m, and
// re-encodes each surviving grid resized to (h, w, m).
func Migrate(fs afero.Fs, srcPath string, h, w, m int) ([]*big.Int, error) {
	codes, srcBase, err := stream.ReadAll(fs, srcPath)
	if err != nil {
		return nil, err
	}

	dstBase, err := base.New(h, w, m)
	if err != nil {
		return nil, err
	}

	stage := min(srcBase.N(), dstBase.N())
	out := make([]*big.Int, 0, len(codes))
	for _, code := range codes {
		g, err := codec.Decode(code)
		if err != nil {
			return nil, err
		}

		tooLarge := false
		for i := 0; i < stage && i < len(g.Cells); i++ {
			if g.Cells[i].Value > int(dstBase.M) {
				tooLarge = true
				break
			}
		}
		if tooLarge {
			continue
		}

		resized := grid.New(dstBase)
		n := min(len(g.Cells), len(resized.Cells))
		copy(resized.Cells[:n], g.Cells[:n])
		out = append(out, codec.Encode(resized))
	}
	return out, nil
}
