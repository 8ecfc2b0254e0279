// Package stream implements the segmented binary container ("format 001")
// and the plain-text container ("format 000"), plus a compactor that
// rewrites a file as a single aggregated segment.
//
// All file access goes through an afero.Fs so the container and the
// progress directory scanner can be exercised against an in-memory
// filesystem in tests without touching disk.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/spf13/afero"

	"github.com/rybkr/tectonic/internal/base"
)

const (
	magic        = "TECTONIC"
	formatBinary = 0x01
	terminator   = 0x80
	maxPairs     = 127 // P must have its top bit clear (segment vs. terminator)

	// flushThreshold bounds how many codes Writer buffers before flushing a
	// segment to disk; it is not part of the on-disk format.
	flushThreshold = 4096
)

// Writer appends codes to a format-001 container, batching them into
// segments grouped by contiguous runs of equal byte-width. Grouping by
// contiguous run, rather than a global regroup, guarantees codes are read
// back in the exact order they were written.
type Writer struct {
	fs    afero.Fs
	f     afero.File
	base  base.Base
	total uint32

	pending []*big.Int
	closed  bool
}

// NewWriter creates (truncating) a new container file and writes its
// 16-byte header; the total-count field is patched in on Close.
func NewWriter(fs afero.Fs, path string, b base.Base) (*Writer, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("tectonic: create container: %w", err)
	}
	w := &Writer{fs: fs, f: f, base: b}
	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	var hdr [16]byte
	copy(hdr[0:8], magic)
	hdr[8] = formatBinary
	hdr[9] = w.base.H
	hdr[10] = w.base.W
	hdr[11] = w.base.M
	// hdr[12:16] (total count) is patched on Close.
	_, err := w.f.Write(hdr[:])
	return err
}

// Append queues code for writing, flushing automatically once the pending
// batch grows large enough.
func (w *Writer) Append(code *big.Int) error {
	w.pending = append(w.pending, new(big.Int).Set(code))
	w.total++
	if len(w.pending) >= flushThreshold {
		return w.Flush()
	}
	return nil
}

// Flush writes any pending codes as one or more segments and clears the
// pending batch.
func (w *Writer) Flush() error {
	if len(w.pending) == 0 {
		return nil
	}
	runs := groupByWidth(w.pending)
	for len(runs) > 0 {
		batch := runs
		if len(batch) > maxPairs {
			batch = runs[:maxPairs]
		}
		if err := writeSegment(w.f, batch); err != nil {
			return err
		}
		runs = runs[len(batch):]
	}
	w.pending = w.pending[:0]
	return nil
}

// Close flushes any pending codes, writes the end-of-stream marker, patches
// the total-count header field, and closes the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	if _, err := w.f.Write([]byte{terminator}); err != nil {
		w.f.Close()
		return err
	}
	if _, err := w.f.Seek(12, io.SeekStart); err != nil {
		w.f.Close()
		return err
	}
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], w.total)
	if _, err := w.f.Write(count[:]); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

type widthRun struct {
	width byte
	codes []*big.Int
}

// groupByWidth splits codes into maximal runs of consecutive codes sharing
// the same byte-width.
func groupByWidth(codes []*big.Int) []widthRun {
	var runs []widthRun
	for _, c := range codes {
		w := byteWidth(c)
		if len(runs) > 0 && runs[len(runs)-1].width == w {
			runs[len(runs)-1].codes = append(runs[len(runs)-1].codes, c)
			continue
		}
		runs = append(runs, widthRun{width: w, codes: []*big.Int{c}})
	}
	return runs
}

// byteWidth returns k = ceil(max(1, bit_length(v)) / 8), the number of bytes
// needed to hold v with FillBytes.
func byteWidth(v *big.Int) byte {
	bits := v.BitLen()
	if bits < 1 {
		bits = 1
	}
	return byte((bits + 7) / 8)
}

func writeSegment(f afero.File, runs []widthRun) error {
	if len(runs) > maxPairs {
		return fmt.Errorf("%w: %d pairs exceeds maximum %d", ErrContainerCorruption, len(runs), maxPairs)
	}
	if _, err := f.Write([]byte{byte(len(runs))}); err != nil {
		return err
	}
	for _, r := range runs {
		var countBuf [4]byte
		binary.BigEndian.PutUint32(countBuf[:], uint32(len(r.codes)))
		if _, err := f.Write([]byte{r.width}); err != nil {
			return err
		}
		if _, err := f.Write(countBuf[:]); err != nil {
			return err
		}
	}
	for _, r := range runs {
		buf := make([]byte, r.width)
		for _, c := range r.codes {
			c.FillBytes(buf)
			if _, err := f.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}
