// Package codec implements the bijection between a (possibly partial) Grid
// and a non-negative arbitrary-precision integer.
package codec

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/grid"
)

// Sentinel errors surfaced while decoding.
var (
	ErrMalformedCode      = errors.New("tectonic: malformed code")
	ErrInvariantViolation = errors.New("tectonic: codec invariant violated")
)

var (
	big256 = big.NewInt(256)
)

// Code is the arbitrary-precision integer produced by Encode and consumed
// by Decode. It is an alias for math/big.Int so callers needing big.Int
// methods never have to convert.
type Code = big.Int

// Encode packs g into a single non-negative integer.
//
// The code describes the normalised form of g (region ids in
// first-occurrence order); Encode calls grid.Normalise internally, so g need
// not be normalised beforehand, but the *returned* code is only meaningful relative to
// g's canonical labelling — two un-normalised grids with the same structural
// labelling encode identically.
//
// Digits are produced in decode order (H, W, M, nb_regions, then cells 0..N-1
// each as value then region) but written into the integer from the *last*
// digit backward, so that Decode can read them off in natural order via
// repeated divmod.
func Encode(g *grid.Grid) *big.Int {
	n := grid.Normalise(g)
	b := n.Base
	nbRegions := grid.NbRegions(n)

	valueRadix := big.NewInt(int64(b.M) + 1)
	regionRadix := big.NewInt(int64(nbRegions) + 1)

	code := new(big.Int)
	// Write cells in reverse index order so the natural (forward) decode
	// order matches row-major cell order.
	for i := len(n.Cells) - 1; i >= 0; i-- {
		c := n.Cells[i]

		regionDigit := int64(0)
		if c.Region != grid.UnassignedRegion {
			regionDigit = int64(c.Region) + 1
		}
		code.Mul(code, regionRadix)
		code.Add(code, big.NewInt(regionDigit))

		code.Mul(code, valueRadix)
		code.Add(code, big.NewInt(int64(c.Value)))
	}

	// Header digits, outermost (H) last so Decode reads H first.
	code.Mul(code, big256)
	code.Add(code, big.NewInt(int64(nbRegions)))

	code.Mul(code, big256)
	code.Add(code, big.NewInt(int64(b.M)))

	code.Mul(code, big256)
	code.Add(code, big.NewInt(int64(b.W)))

	code.Mul(code, big256)
	code.Add(code, big.NewInt(int64(b.H)))

	return code
}

// Decode unpacks code into a Grid, reading the Base from the code's own
// header digits and validating every digit against its radix.
//
// Decode short-circuits once the remaining value is 0 (all remaining cells
// unassigned), which keeps sparse partial grids cheap to decode.
func Decode(code *big.Int) (*grid.Grid, error) {
	if code.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative code", ErrMalformedCode)
	}
	v := new(big.Int).Set(code)

	h, err := divmodByte(v)
	if err != nil {
		return nil, err
	}
	w, err := divmodByte(v)
	if err != nil {
		return nil, err
	}
	m, err := divmodByte(v)
	if err != nil {
		return nil, err
	}
	nbRegionsDigit, err := divmodByte(v)
	if err != nil {
		return nil, err
	}

	b, err := base.New(h, w, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedCode, err)
	}
	nbRegions := nbRegionsDigit

	valueRadix := big.NewInt(int64(b.M) + 1)
	regionRadix := big.NewInt(int64(nbRegions) + 1)

	g := grid.New(b)
	n := b.N()
	for i := 0; i < n; i++ {
		if v.Sign() == 0 {
			break // remaining cells stay unassigned.
		}
		value, err := divmod(v, valueRadix)
		if err != nil {
			return nil, err
		}
		if value < 0 || value > int(b.M) {
			return nil, fmt.Errorf("%w: cell %d value digit %d out of radix %d", ErrMalformedCode, i, value, b.M+1)
		}

		region, err := divmod(v, regionRadix)
		if err != nil {
			return nil, err
		}
		if region < 0 || region > nbRegions {
			return nil, fmt.Errorf("%w: cell %d region digit %d out of radix %d", ErrMalformedCode, i, region, nbRegions+1)
		}

		g.Cells[i].Value = value
		if region == 0 {
			g.Cells[i].Region = grid.UnassignedRegion
		} else {
			g.Cells[i].Region = region - 1
		}
	}

	if v.Sign() != 0 {
		return nil, fmt.Errorf("%w: trailing non-zero residue after final cell", ErrMalformedCode)
	}

	return g, nil
}

// divmodByte reads one radix-256 digit off v (destructively) and validates
// it fits in a byte.
func divmodByte(v *big.Int) (int, error) {
	d, err := divmod(v, big256)
	if err != nil {
		return 0, err
	}
	if d < 0 || d > 255 {
		return 0, fmt.Errorf("%w: header byte %d out of range", ErrMalformedCode, d)
	}
	return d, nil
}

// divmod divides v by radix in place, returning the remainder (the digit)
// and leaving the quotient in v.
func divmod(v, radix *big.Int) (int, error) {
	if radix.Sign() <= 0 {
		return 0, fmt.Errorf("%w: non-positive radix", ErrMalformedCode)
	}
	q, r := new(big.Int), new(big.Int)
	q.DivMod(v, radix, r)
	v.Set(q)
	return int(r.Int64()), nil
}
