// Package field provides the universal numeric representation used across
// the bytecode VM: an element of BN254's scalar field, shared by the debug
// interpreter (a plain big.Int-backed value) and the Groth16 proving
// backend (a gnark circuit wire).
package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Element is a concrete field value: a witness-time numeric representation
// shared by the Debug and Counting constraint-system backends. The Proving
// backend never constructs an Element directly; it carries gnark
// frontend.Variable wires instead and only touches Element at the
// witness/public-input boundary.
type Element struct {
	v fr.Element
}

// Zero returns the additive identity.
func Zero() Element { return Element{} }

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.v.SetOne()
	return e
}

// FromInt64 builds an Element from a signed 64-bit integer, wrapping
// negative values into the field the way the curve's modular arithmetic
// does (i.e. -1 becomes p-1).
func FromInt64(x int64) Element {
	var e Element
	e.v.SetInt64(x)
	return e
}

// FromUint64 builds an Element from an unsigned 64-bit integer.
func FromUint64(x uint64) Element {
	var e Element
	e.v.SetUint64(x)
	return e
}

// FromBigInt builds an Element by reducing v modulo the scalar field.
func FromBigInt(v *big.Int) Element {
	var e Element
	e.v.SetBigInt(v)
	return e
}

// MustFromDecimal parses a base-10 string, as used by the witness JSON
// codec for field-typed leaves.
func MustFromDecimal(s string) (Element, error) {
	var e Element
	if _, err := e.v.SetString(s); err != nil {
		return Element{}, fmt.Errorf("field: invalid decimal literal %q", s)
	}
	return e, nil
}

// Modulus returns the scalar field's prime modulus p.
func Modulus() *big.Int { return fr.Modulus() }

// Big returns the canonical non-negative big.Int representative in [0, p).
func (e Element) Big() *big.Int {
	b := new(big.Int)
	e.v.BigInt(b)
	return b
}

// String renders the canonical decimal representative, matching the
// witness JSON codec's expectation that field elements are base-10
// strings.
func (e Element) String() string { return e.Big().String() }

func (a Element) Add(b Element) Element {
	var r Element
	r.v.Add(&a.v, &b.v)
	return r
}

func (a Element) Sub(b Element) Element {
	var r Element
	r.v.Sub(&a.v, &b.v)
	return r
}

func (a Element) Mul(b Element) Element {
	var r Element
	r.v.Mul(&a.v, &b.v)
	return r
}

func (a Element) Neg() Element {
	var r Element
	r.v.Neg(&a.v)
	return r
}

// Inverse returns the multiplicative inverse of a, or the zero element if
// a is zero (matching gnark's frontend.API.Inverse convention for the
// witness-time fallback; in-circuit Inverse instead emits a constraint
// that is unsatisfiable for a zero input unless gated).
func (a Element) Inverse() Element {
	var r Element
	r.v.Inverse(&a.v)
	return r
}

func (a Element) IsZero() bool { return a.v.IsZero() }

func (a Element) Equal(b Element) bool { return a.v.Equal(&b.v) }

// Cmp compares the canonical big.Int representatives. Only meaningful for
// values that are known (by their ScalarType) to represent a bounded
// signed/unsigned integer rather than an opaque field element.
func (a Element) Cmp(b Element) int { return a.Big().Cmp(b.Big()) }

// Bit returns the i-th bit (0 = LSB) of the canonical representative.
func (a Element) Bit(i int) uint { return uint(a.Big().Bit(i)) }
