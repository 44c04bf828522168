package gadget

import (
	"math/big"

	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/isa"
)

// shiftToUnsigned maps a scalar's value into [0, 2^n) preserving order,
// the same shift RangeCheck uses for signed range-checking: unsigned and
// Field values are unchanged, signed values are shifted by 2^(n-1).
func shiftToUnsigned(api cs.API, a Scalar) cs.Wire {
	if a.Type.Kind == isa.KindInteger && a.Type.Signed {
		half := bigIntPow2(a.Type.BitWidth - 1)
		return api.Add(a.Wire, api.NewConstant(half))
	}
	return a.Wire
}

// Eq: via IsZero(a-b).
func Eq(api cs.API, a, b Scalar) (Scalar, error) {
	if err := sameType(a, b); err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("eq")
	diff := ns.Sub(a.Wire, b.Wire)
	return Scalar{Wire: ns.IsZero(diff), Type: isa.Boolean()}, nil
}

// Ne: 1 - Eq.
func Ne(api cs.API, a, b Scalar) (Scalar, error) {
	eq, err := Eq(api, a, b)
	if err != nil {
		return Scalar{}, err
	}
	return Not(api, eq)
}

// Lt, via bit-decomposition of the shifted difference: let n be the
// common bit length, c = (b_u - a_u) + (2^n - 1) where a_u,b_u are the
// order-preserving unsigned views of a,b. The difference lies in
// [-(2^n-1), 2^n-1], so c lies in [0, 2^(n+1)-2] and its carry bit n is
// set exactly when b_u - a_u >= 1, i.e. a < b.
func Lt(api cs.API, a, b Scalar) (Scalar, error) {
	if err := sameType(a, b); err != nil {
		return Scalar{}, err
	}
	n := a.Type.BitLength()
	ns := api.Namespace("lt")
	au, bu := shiftToUnsigned(ns, a), shiftToUnsigned(ns, b)
	offset := new(big.Int).Sub(bigIntPow2(n), bigOne)
	c := ns.Add(ns.Sub(bu, au), ns.NewConstant(offset))
	bits := ns.ToBinary(c, n+1)
	return Scalar{Wire: bits[n], Type: isa.Boolean()}, nil
}

// Ge: 1 - Lt.
func Ge(api cs.API, a, b Scalar) (Scalar, error) {
	lt, err := Lt(api, a, b)
	if err != nil {
		return Scalar{}, err
	}
	return Not(api, lt)
}

// Gt: Lt(b, a).
func Gt(api cs.API, a, b Scalar) (Scalar, error) { return Lt(api, b, a) }

// Le: 1 - Gt, i.e. Ge(b, a).
func Le(api cs.API, a, b Scalar) (Scalar, error) { return Ge(api, b, a) }
