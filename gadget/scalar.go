// Package gadget is the arithmetic gadget library: pure functions from
// typed scalars to typed scalars that simultaneously compute an ordinary
// value and emit the R1CS constraints that force any satisfying
// assignment to equal that value. Every gadget is written against the
// cs.API capability set so it runs unmodified under the Debug, Counting,
// and Proving constraint-system backends.
package gadget

import (
	"fmt"
	"math/big"

	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/isa"
)

// Scalar is a typed constraint-system value: a Wire paired with the
// ScalarType it is range-constrained to, per the data model's typed
// scalar pair (value, type).
type Scalar struct {
	Wire cs.Wire
	Type isa.ScalarType
}

// Const builds a Scalar wire for a known constant, range-checking it
// against its declared type (constants participate in the same
// invariant as witness-supplied values).
func Const(api cs.API, v int64, t isa.ScalarType) (Scalar, error) {
	w := api.NewConstant(big.NewInt(v))
	return rangeChecked(api, w, t)
}

// ConstBig builds a Scalar wire for a known constant supplied as an
// arbitrary-precision integer, for constants and witness literals that
// exceed int64 (integer types up to 248 bits, per the data model).
// Negative values are handled by big.Int's own sign; NewConstant reduces
// modulo the field the same way Const's int64 path does.
func ConstBig(api cs.API, v *big.Int, t isa.ScalarType) (Scalar, error) {
	w := api.NewConstant(v)
	return rangeChecked(api, w, t)
}

// rangeChecked wraps a raw wire into a Scalar after enforcing that it
// fits the declared type, per §4.1's "range-check to declared bitlength"
// contract on every arithmetic gadget's output.
func rangeChecked(api cs.API, w cs.Wire, t isa.ScalarType) (Scalar, error) {
	if err := RangeCheck(api, w, t); err != nil {
		return Scalar{}, err
	}
	return Scalar{Wire: w, Type: t}, nil
}

// RangeCheck enforces that w fits the declared type's bit length: no
// constraint for Field, {0,1} for Boolean, and for Integer a shifted
// AssertIsLessOrEqual so both signed and unsigned bit patterns are
// checked with the same primitive (shift negative values up by 2^(n-1)
// before the unsigned range check).
func RangeCheck(api cs.API, w cs.Wire, t isa.ScalarType) error {
	switch t.Kind {
	case isa.KindField:
		return nil
	case isa.KindBoolean:
		api.AssertIsBoolean(w)
		return nil
	case isa.KindInteger:
		if err := t.Validate(); err != nil {
			return err
		}
		bound := new(big.Int).Lsh(big.NewInt(1), uint(t.BitWidth))
		bound.Sub(bound, big.NewInt(1))
		target := w
		if t.Signed {
			half := new(big.Int).Lsh(big.NewInt(1), uint(t.BitWidth-1))
			target = api.Add(w, api.NewConstant(half))
		}
		api.AssertIsLessOrEqual(target, bound)
		return nil
	default:
		return fmt.Errorf("gadget: unknown scalar kind %d", t.Kind)
	}
}

func sameType(a, b Scalar) error {
	if !a.Type.Equal(b.Type) {
		return fmt.Errorf("gadget: type mismatch: %s vs %s", a.Type, b.Type)
	}
	return nil
}
