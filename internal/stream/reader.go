package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/rybkr/tectonic/internal/base"
)

// Reader lazily decodes a format-001 container, restoring codes in the
// order the writer produced them.
type Reader struct {
	f     afero.File
	Base  base.Base
	Total uint32

	pairsLeft int  // pairs remaining in the current segment header
	width     byte // byte-width of the pair currently being consumed
	countLeft uint32
	done      bool
}

// NewReader opens path and parses its header.
func NewReader(fs afero.Fs, path string) (*Reader, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tectonic: open container: %w", err)
	}

	var hdr [16]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: short header: %v", ErrContainerCorruption, err)
	}
	if string(hdr[0:8]) != magic {
		f.Close()
		return nil, fmt.Errorf("%w: bad magic", ErrContainerCorruption)
	}
	if hdr[8] != formatBinary {
		f.Close()
		return nil, fmt.Errorf("%w: unknown version %d", ErrContainerCorruption, hdr[8])
	}

	b, err := base.New(int(hdr[9]), int(hdr[10]), int(hdr[11]))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrContainerCorruption, err)
	}
	total := binary.BigEndian.Uint32(hdr[12:16])

	return &Reader{f: f, Base: b, Total: total}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Next returns the next code in the container, or ok=false once the
// end-of-stream marker is reached (or, for legacy files, once the
// underlying file is exhausted — a missing terminator is logged as a
// warning rather than treated as fatal).
func (r *Reader) Next() (code *big.Int, ok bool, err error) {
	if r.done {
		return nil, false, nil
	}

	for r.countLeft == 0 {
		if r.pairsLeft == 0 {
			var tag [1]byte
			if _, err := io.ReadFull(r.f, tag[:]); err != nil {
				if err == io.EOF {
					log.Warn().Msg("tectonic: container ended without end-of-stream marker")
					r.done = true
					return nil, false, nil
				}
				return nil, false, fmt.Errorf("%w: %v", ErrContainerCorruption, err)
			}
			if tag[0] == terminator {
				r.done = true
				return nil, false, nil
			}
			if tag[0] >= terminator {
				return nil, false, fmt.Errorf("%w: pair count %d has top bit set", ErrContainerCorruption, tag[0])
			}
			r.pairsLeft = int(tag[0])
			if r.pairsLeft == 0 {
				// A zero-pair segment is legal but carries no codes; loop to
				// read the next tag.
				continue
			}
		}

		var pairHdr [5]byte
		if _, err := io.ReadFull(r.f, pairHdr[:]); err != nil {
			return nil, false, fmt.Errorf("%w: truncated pair header: %v", ErrContainerCorruption, err)
		}
		r.width = pairHdr[0]
		r.countLeft = binary.BigEndian.Uint32(pairHdr[1:5])
		r.pairsLeft--
	}

	buf := make([]byte, r.width)
	if _, err := io.ReadFull(r.f, buf); err != nil {
		return nil, false, fmt.Errorf("%w: truncated code body: %v", ErrContainerCorruption, err)
	}
	r.countLeft--
	return new(big.Int).SetBytes(buf), true, nil
}

// ReadAll drains the container into a slice, in write order.
func ReadAll(fs afero.Fs, path string) ([]*big.Int, base.Base, error) {
	r, err := NewReader(fs, path)
	if err != nil {
		return nil, base.Base{}, err
	}
	defer r.Close()

	var out []*big.Int
	for {
		code, ok, err := r.Next()
		if err != nil {
			return nil, r.Base, err
		}
		if !ok {
			break
		}
		out = append(out, code)
	}
	return out, r.Base, nil
}
