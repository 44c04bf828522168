package gadget

import (
	"fmt"

	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/isa"
)

func typeErr(format string, args ...interface{}) error {
	return fmt.Errorf("gadget: "+format, args...)
}

// Add: two typed scalars of identical type -> same type. Emits a
// field-sum equality (implicit, since the wire IS the sum) plus a
// range-check to the declared bit length, per the §4.1 contract table.
func Add(api cs.API, a, b Scalar) (Scalar, error) {
	if err := sameType(a, b); err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("add")
	w := ns.Add(a.Wire, b.Wire)
	return rangeChecked(ns, w, a.Type)
}

// Sub mirrors Add.
func Sub(api cs.API, a, b Scalar) (Scalar, error) {
	if err := sameType(a, b); err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("sub")
	w := ns.Sub(a.Wire, b.Wire)
	return rangeChecked(ns, w, a.Type)
}

// Mul: quadratic constraint plus range-check.
func Mul(api cs.API, a, b Scalar) (Scalar, error) {
	if err := sameType(a, b); err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("mul")
	w := ns.Mul(a.Wire, b.Wire)
	return rangeChecked(ns, w, a.Type)
}

// Neg: signed integer negation, x + (-x) = 0 plus a range-check (the
// negation of a type's minimum value overflows and is rejected here).
func Neg(api cs.API, a Scalar) (Scalar, error) {
	if a.Type.Kind != isa.KindInteger || !a.Type.Signed {
		return Scalar{}, typeErr("neg requires a signed integer, got %s", a.Type)
	}
	ns := api.Namespace("neg")
	w := ns.Neg(a.Wire)
	return rangeChecked(ns, w, a.Type)
}
