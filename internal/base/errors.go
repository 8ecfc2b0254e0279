package base

import "errors"

// ErrInvalidBase is returned when H, W, or M fall outside their valid range.
var ErrInvalidBase = errors.New("tectonic: invalid base")
