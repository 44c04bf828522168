package gadget

import (
	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/isa"
)

// BitDecompose allocates n boolean wires for a, enforcing the canonical
// routine of §4.1: each bit is boolean-constrained and Σ 2^i·b_i = a.
// Comparisons and bitwise ops share this primitive.
func BitDecompose(api cs.API, a Scalar, n int) []Scalar {
	ns := api.Namespace("bits")
	raw := ns.ToBinary(a.Wire, n)
	out := make([]Scalar, n)
	for i, w := range raw {
		out[i] = Scalar{Wire: w, Type: isa.Boolean()}
	}
	return out
}

func recompose(api cs.API, bits []Scalar) cs.Wire {
	raw := make([]cs.Wire, len(bits))
	for i, b := range bits {
		raw[i] = b.Wire
	}
	return api.FromBinary(raw)
}

func requireSameInteger(a, b Scalar) (int, error) {
	if a.Type.Kind != isa.KindInteger || b.Type.Kind != isa.KindInteger {
		return 0, typeErr("bitwise ops require integer operands, got %s and %s", a.Type, b.Type)
	}
	if err := sameType(a, b); err != nil {
		return 0, err
	}
	return a.Type.BitWidth, nil
}

// BitwiseAnd/Or/Xor: bit-decompose both operands, per-bit boolean gate,
// recompose.
func BitwiseAnd(api cs.API, a, b Scalar) (Scalar, error) {
	n, err := requireSameInteger(a, b)
	if err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("bitwise_and")
	ab := BitDecompose(ns, a, n)
	bb := BitDecompose(ns, b, n)
	out := make([]Scalar, n)
	for i := 0; i < n; i++ {
		out[i] = Scalar{Wire: ns.And(ab[i].Wire, bb[i].Wire), Type: isa.Boolean()}
	}
	return Scalar{Wire: recompose(ns, out), Type: a.Type}, nil
}

func BitwiseOr(api cs.API, a, b Scalar) (Scalar, error) {
	n, err := requireSameInteger(a, b)
	if err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("bitwise_or")
	ab := BitDecompose(ns, a, n)
	bb := BitDecompose(ns, b, n)
	out := make([]Scalar, n)
	for i := 0; i < n; i++ {
		out[i] = Scalar{Wire: ns.Or(ab[i].Wire, bb[i].Wire), Type: isa.Boolean()}
	}
	return Scalar{Wire: recompose(ns, out), Type: a.Type}, nil
}

// FromBitsUnsigned recomposes n boolean wires (LSB first) into an
// unsigned n-bit integer, the inverse of BitDecompose.
func FromBitsUnsigned(api cs.API, bits []Scalar) (Scalar, error) {
	ns := api.Namespace("from_bits_unsigned")
	for _, b := range bits {
		if err := requireBoolean(b); err != nil {
			return Scalar{}, err
		}
	}
	return rangeChecked(ns, recompose(ns, bits), isa.U(len(bits)))
}

// FromBitsSigned recomposes n boolean wires (LSB first, MSB is the sign
// bit) into a signed n-bit integer: the unsigned recomposition is first
// computed, then 2^n is subtracted whenever the sign bit is set, landing
// on the same p-|v| field representative Const(-v) would produce.
func FromBitsSigned(api cs.API, bits []Scalar) (Scalar, error) {
	ns := api.Namespace("from_bits_signed")
	for _, b := range bits {
		if err := requireBoolean(b); err != nil {
			return Scalar{}, err
		}
	}
	n := len(bits)
	magnitude := recompose(ns, bits)
	full := ns.Mul(bits[n-1].Wire, ns.NewConstant(bigIntPow2(n)))
	signed := ns.Sub(magnitude, full)
	return rangeChecked(ns, signed, isa.I(n))
}

func BitwiseXor(api cs.API, a, b Scalar) (Scalar, error) {
	n, err := requireSameInteger(a, b)
	if err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("bitwise_xor")
	ab := BitDecompose(ns, a, n)
	bb := BitDecompose(ns, b, n)
	out := make([]Scalar, n)
	for i := 0; i < n; i++ {
		out[i] = Scalar{Wire: ns.Xor(ab[i].Wire, bb[i].Wire), Type: isa.Boolean()}
	}
	return Scalar{Wire: recompose(ns, out), Type: a.Type}, nil
}
