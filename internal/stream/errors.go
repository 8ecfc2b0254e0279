package stream

import "errors"

// Sentinel errors surfaced by the container reader/writer.
var (
	// ErrContainerCorruption covers magic mismatch, unknown version, a
	// segment pair-count ≥128 where a header was expected, or premature EOF
	// inside a segment body.
	ErrContainerCorruption = errors.New("tectonic: container corruption")
	// ErrMissingTerminator is downgraded to a logged warning by readers for
	// legacy files that omit the 0x80 end-of-stream marker.
	ErrMissingTerminator = errors.New("tectonic: missing end-of-stream marker")
)
