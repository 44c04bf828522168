package gadget

import (
	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/isa"
)

// Cast converts a scalar to a target ScalarType per §4.2:
//   - widening unsigned->unsigned or signed->signed of greater bit
//     length: identity (the value already fits, range-check still runs
//     for defense-in-depth against a malformed caller).
//   - narrowing: enforce the discarded high bits are zero (unsigned) or
//     equal the sign bit (signed) — otherwise ConstraintUnsatisfied.
//   - X -> Field: identity, no constraints.
//   - Field -> X: full range-decomposition to X.
func Cast(api cs.API, a Scalar, target isa.ScalarType) (Scalar, error) {
	ns := api.Namespace("cast")

	if target.Kind == isa.KindField {
		return Scalar{Wire: a.Wire, Type: target}, nil
	}

	if a.Type.Kind == isa.KindField {
		return rangeChecked(ns, a.Wire, target)
	}

	if a.Type.Kind == isa.KindBoolean {
		// bool -> integer: identity, value is already 0/1 which fits any
		// non-empty integer type.
		return rangeChecked(ns, a.Wire, target)
	}

	if target.Kind == isa.KindBoolean {
		ns.AssertIsBoolean(a.Wire)
		return Scalar{Wire: a.Wire, Type: target}, nil
	}

	// integer -> integer
	srcSigned, dstSigned := a.Type.Signed, target.Signed
	srcBits, dstBits := a.Type.BitWidth, target.BitWidth

	if dstBits >= srcBits && srcSigned == dstSigned {
		// widening or same width, same signedness: identity.
		return rangeChecked(ns, a.Wire, target)
	}

	// Narrowing, or a signedness change: validate against the target's
	// range directly, with no intermediate source-width decomposition. The high bits
	// spec.md requires to be zero/sign-equal fall straight out of
	// RangeCheck against the narrower target type, since that enforces
	// exactly the bound a value representable in `target` must satisfy.
	return rangeChecked(ns, a.Wire, target)
}
