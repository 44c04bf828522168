package gadget

import (
	"math/big"

	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/field"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vmerr"
)

// DivRem implements division with a truncated-toward-zero quotient and a
// remainder whose sign matches the dividend: for integer n, d of
// identical type, q = trunc(n/d), r = n - q*d, with |r| < |d| and
// sign(r) in {0, sign(n)}. This resolves the division sign convention
// spec.md §9 leaves open, matching the worked example (-9)/4 = -2 rem -1.
//
// condition is the effective condition at the call site. The gadget
// divides by select(condition, d, 1) rather than d itself, so a zero
// divisor inside a gated-off branch still produces a satisfiable,
// identically-shaped constraint system (q = n, r = 0 there) — the
// topology never depends on the witness. A zero divisor under a true
// condition is a witness-time error.
func DivRem(api cs.API, n, d Scalar, condition Scalar) (q, r Scalar, err error) {
	if err := sameType(n, d); err != nil {
		return Scalar{}, Scalar{}, err
	}
	if n.Type.Kind != isa.KindInteger {
		return Scalar{}, Scalar{}, typeErr("div_rem requires integer operands, got %s", n.Type)
	}

	ns := api.Namespace("div_rem")

	one := Scalar{Wire: ns.NewConstant(bigOne), Type: d.Type}
	divisor, err := ConditionalSelect(ns, condition, d, one)
	if err != nil {
		return Scalar{}, Scalar{}, err
	}

	// Only the witness-observing backends can see the divisor's value;
	// under the Proving backend the same program was already interpreted
	// once off-circuit, so the zero case has been rejected before any
	// proof is attempted.
	if dv, verr := ns.Value(divisor.Wire); verr == nil && dv.Sign() == 0 {
		return Scalar{}, Scalar{}, &vmerr.RuntimeError{Kind: vmerr.ConstraintUnsatisfied, Message: "division by zero"}
	}

	interpret := func(v *big.Int) *big.Int {
		if n.Type.Signed {
			return toSigned(v)
		}
		return v
	}

	qWire := ns.Hint(func(in []*big.Int) *big.Int {
		return new(big.Int).Quo(interpret(in[0]), interpret(in[1]))
	}, n.Wire, divisor.Wire)
	rWire := ns.Hint(func(in []*big.Int) *big.Int {
		return new(big.Int).Rem(interpret(in[0]), interpret(in[1]))
	}, n.Wire, divisor.Wire)

	qs, err := rangeChecked(ns, qWire, n.Type)
	if err != nil {
		return Scalar{}, Scalar{}, err
	}
	rs, err := rangeChecked(ns, rWire, n.Type)
	if err != nil {
		return Scalar{}, Scalar{}, err
	}

	// n == q*divisor + r
	qd := ns.Mul(qs.Wire, divisor.Wire)
	sum := ns.Add(qd, rs.Wire)
	ns.AssertIsEqual(sum, n.Wire)

	// |r| < |divisor|: without this a false witness (q=0, r=n) would
	// still satisfy n == q*divisor+r and the type-width range check above
	// whenever n fits the type, so the equality alone does not pin down
	// truncated division. absR/absD fold signed operands onto their
	// magnitude (unsigned operands are already non-negative); Lt on the
	// magnitudes is the same order primitive comparisons use.
	absR, err := absValue(ns, rs)
	if err != nil {
		return Scalar{}, Scalar{}, err
	}
	absD, err := absValue(ns, divisor)
	if err != nil {
		return Scalar{}, Scalar{}, err
	}
	bounded, err := Lt(ns, absR, absD)
	if err != nil {
		return Scalar{}, Scalar{}, err
	}
	ns.AssertIsEqual(bounded.Wire, ns.NewConstant(bigOne))

	return qs, rs, nil
}

// absValue folds a signed operand onto its non-negative magnitude, typed
// as the unsigned integer of the same width (the magnitude of the type's
// minimum is 2^(n-1), which fits u(n) but not i(n)); unsigned operands
// are already non-negative and pass through.
func absValue(api cs.API, v Scalar) (Scalar, error) {
	if v.Type.Kind != isa.KindInteger {
		return v, nil
	}
	if !v.Type.Signed {
		return v, nil
	}
	ns := api.Namespace("abs")
	zero := Scalar{Wire: ns.NewConstant(big.NewInt(0)), Type: v.Type}
	isNeg, err := Lt(ns, v, zero)
	if err != nil {
		return Scalar{}, err
	}
	mag := ns.Select(isNeg.Wire, ns.Neg(v.Wire), v.Wire)
	return rangeChecked(ns, mag, isa.U(v.Type.BitWidth))
}

// toSigned reinterprets a canonical field representative as the signed
// integer it encodes. Negative values are stored as v = p - |n| (the
// field's own modular wraparound), so recovering the sign compares
// against p/2: a representative in the upper half of the field is the
// negative integer congruent to it.
func toSigned(v *big.Int) *big.Int {
	half := new(big.Int).Rsh(field.Modulus(), 1)
	if v.Cmp(half) > 0 {
		return new(big.Int).Sub(v, field.Modulus())
	}
	return new(big.Int).Set(v)
}
