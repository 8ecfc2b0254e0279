// Package progress implements the Progress value: the filename encoding of
// (H, W, M, stage), directory-scan eligibility and ranking rules for
// resuming a generation run, and the per-stage migration that adapts a
// saved frontier to a new (possibly larger) base.
package progress

import (
	"fmt"
	"regexp"
	"strconv"
)

// Progress identifies a point in a staged generation run.
type Progress struct {
	H, W, M int
	// Stage is -1 when the filename has no "-pNN" suffix, meaning the
	// terminal (completed) stage N = H*W.
	Stage int
}

// Terminal reports whether p has no explicit stage suffix (i.e. names the
// final, fully-enumerated stage).
func (p Progress) Terminal() bool {
	return p.Stage < 0
}

// StageValue returns the effective stage: p.Stage if set, else H*W.
func (p Progress) StageValue() int {
	if p.Stage < 0 {
		return p.H * p.W
	}
	return p.Stage
}

func pad2(n int) string {
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("%02d", n)
}

// Stem renders the canonical filename stem "h{HH}l{WW}m{MM}[-p{PP}]".
func (p Progress) Stem() string {
	s := fmt.Sprintf("h%sl%sm%s", pad2(p.H), pad2(p.W), pad2(p.M))
	if p.Stage >= 0 {
		s += "-p" + pad2(p.Stage)
	}
	return s
}

var stemPattern = regexp.MustCompile(`h(\d+)l(\d+)m(\d+)(?:-p(\d+))?`)

// Parse extracts a Progress from any string containing a matching stem
// (e.g. a full filename with a prefix and/or extension).
func Parse(s string) (Progress, bool) {
	m := stemPattern.FindStringSubmatch(s)
	if m == nil {
		return Progress{}, false
	}
	h, _ := strconv.Atoi(m[1])
	w, _ := strconv.Atoi(m[2])
	mm, _ := strconv.Atoi(m[3])
	stage := -1
	if m[4] != "" {
		stage, _ = strconv.Atoi(m[4])
	}
	return Progress{H: h, W: w, M: mm, Stage: stage}, true
}
