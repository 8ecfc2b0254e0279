// Package search implements the staged searcher: a depth-first driver that
// grows grids one cell at a time via the step producer, validates completed
// grids, and persists results to a segmented container.
package search

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/codec"
	"github.com/rybkr/tectonic/internal/grid"
	"github.com/rybkr/tectonic/internal/producer"
	"github.com/rybkr/tectonic/internal/progress"
	"github.com/rybkr/tectonic/internal/region"
	"github.com/rybkr/tectonic/internal/stream"
)

// ErrResumeMismatch is returned when a checkpoint's recorded index at some
// depth exceeds that depth's regenerated iterator length: the caller should
// discard the checkpoint and start fresh.
var ErrResumeMismatch = errors.New("tectonic: checkpoint index exceeds iterator length")

// level is one depth's lazy frontier: the codes producible at this depth
// along the current depth-first path, and a cursor into them.
type level struct {
	codes []*big.Int
	idx   int
}

func (l *level) exhausted() bool { return l.idx >= len(l.codes) }

// Cancel is the cooperative cancellation flag: single writer (a signal
// handler), single reader (the driver), so no lock is needed beyond the
// channel close itself.
type Cancel struct {
	flag chan struct{}
}

// NewCancel returns an unset cancellation flag.
func NewCancel() *Cancel { return &Cancel{flag: make(chan struct{})} }

// Set marks the flag. Idempotent: repeated calls are safe.
func (c *Cancel) Set() {
	select {
	case <-c.flag:
	default:
		close(c.flag)
	}
}

// Requested reports whether Set has been called.
func (c *Cancel) Requested() bool {
	select {
	case <-c.flag:
		return true
	default:
		return false
	}
}

// Driver runs the depth-first enumeration.
type Driver struct {
	Base   base.Base
	FS     afero.Fs
	Log    zerolog.Logger
	Cancel *Cancel

	// TerminalWriter receives every validated (non-anomalous) completed
	// grid's code.
	TerminalWriter *stream.Writer
	// StageWriters optionally receives intermediate codes at depth k before
	// descent, for debugging.
	StageWriters map[int]*stream.Writer
	// CheckpointPath is where a checkpoint is written on cancellation.
	CheckpointPath string

	// MaxDepth, if nonzero, bounds the search to stage MaxDepth: the driver
	// appends each stage-MaxDepth code to StageWriters[MaxDepth] and
	// backtracks instead of descending further or running terminal
	// validation. This backs the CLI's "-s" intermediate-stage cutoff.
	MaxDepth int

	levels        []level
	terminalCount int
}

// NewDriver constructs an unseeded Driver for b; call Seed, SeedFrontier or
// Resume before Run.
func NewDriver(b base.Base, fs afero.Fs, terminalWriter *stream.Writer, log zerolog.Logger) *Driver {
	return &Driver{
		Base:           b,
		FS:             fs,
		Log:            log,
		Cancel:         NewCancel(),
		TerminalWriter: terminalWriter,
		StageWriters:   make(map[int]*stream.Writer),
		levels:         make([]level, b.N()+1),
	}
}

// Seed sets levels[0] to the singleton frontier {encode(empty grid)}.
func (d *Driver) Seed() {
	d.levels[0] = level{codes: []*big.Int{codec.Encode(grid.New(d.Base))}, idx: 0}
}

// SeedFrontier installs codes as the frontier at depth and returns depth as
// the depth Run should start from. It is used to resume from a migrated
// frontier (a prior run's codes, resized to a new base) rather than from
// the empty grid: the driver never needs to backtrack below depth, since
// that portion of the search space belongs to the old base.
func (d *Driver) SeedFrontier(depth int, codes []*big.Int) int {
	d.levels[depth] = level{codes: codes, idx: 0}
	return depth
}

// Resume restores driver state from a checkpoint written by a prior
// interrupted run. indices[k] is the number of codes already consumed at
// depth k. Depths are regenerated deterministically by replaying the
// producer from the seed, so only the index path — not the codes
// themselves — needs to be persisted.
func (d *Driver) Resume(indices []int) (startDepth int, err error) {
	if len(indices) == 0 {
		return 0, fmt.Errorf("%w: empty checkpoint", ErrResumeMismatch)
	}
	d.Seed()
	if indices[0] > len(d.levels[0].codes) {
		return 0, fmt.Errorf("%w: depth 0 index %d exceeds seed size %d", ErrResumeMismatch, indices[0], len(d.levels[0].codes))
	}
	d.levels[0].idx = indices[0]

	for k := 0; k < len(indices)-1; k++ {
		idx := indices[k]
		if idx == 0 || idx > len(d.levels[k].codes) {
			return 0, fmt.Errorf("%w: depth %d index %d exceeds frontier size %d", ErrResumeMismatch, k, idx, len(d.levels[k].codes))
		}
		d.levels[k].idx = idx
		code := d.levels[k].codes[idx-1]
		g, err := codec.Decode(code)
		if err != nil {
			return 0, err
		}
		successors, err := producer.Successors(g, k)
		if err != nil {
			return 0, err
		}
		d.levels[k+1] = level{codes: successors, idx: 0}
	}

	last := len(indices) - 1
	if indices[last] > len(d.levels[last].codes) {
		return 0, fmt.Errorf("%w: depth %d index %d exceeds frontier size %d", ErrResumeMismatch, last, indices[last], len(d.levels[last].codes))
	}
	d.levels[last].idx = indices[last]
	return last, nil
}

// Run drives the depth-first search to completion, or until Cancel is
// requested, in which case it writes a checkpoint after finishing the
// in-flight terminal code and returns with ok=false.
func (d *Driver) Run(startDepth int) (completed bool, err error) {
	k := startDepth
	n := d.Base.N()

	for k >= 0 {
		if d.levels[k].exhausted() {
			k--
			continue
		}

		code := d.levels[k].codes[d.levels[k].idx]
		d.levels[k].idx++

		if d.MaxDepth > 0 && k == d.MaxDepth {
			if w, ok := d.StageWriters[k]; ok {
				if err := w.Append(code); err != nil {
					return false, err
				}
			}
			continue
		}

		if k < n {
			if w, ok := d.StageWriters[k]; ok {
				if err := w.Append(code); err != nil {
					return false, err
				}
			}
			g, err := codec.Decode(code)
			if err != nil {
				return false, err
			}
			successors, err := producer.Successors(g, k)
			if err != nil {
				return false, err
			}
			d.levels[k+1] = level{codes: successors, idx: 0}
			k++
			continue
		}

		// k == n: terminal stage, validate and persist.
		g, err := codec.Decode(code)
		if err != nil {
			return false, err
		}
		summary := region.Analyze(g)
		if !summary.AnyAnomalous() {
			if err := d.TerminalWriter.Append(code); err != nil {
				return false, err
			}
			d.terminalCount++

			if d.Cancel.Requested() {
				if err := d.checkpoint(k); err != nil {
					return false, err
				}
				d.Log.Info().Int("terminal_count", d.terminalCount).Msg("checkpointed on cancellation")
				return false, nil
			}
		}
	}

	d.Log.Info().Int("terminal_count", d.terminalCount).Msg("enumeration complete")
	return true, nil
}

func (d *Driver) checkpoint(depth int) error {
	indices := make([]int, depth+1)
	for i := 0; i <= depth; i++ {
		indices[i] = d.levels[i].idx
	}
	return progress.WriteCheckpoint(d.FS, d.CheckpointPath, indices)
}

// TerminalCount returns the number of validated terminal codes written so
// far.
func (d *Driver) TerminalCount() int { return d.terminalCount }
