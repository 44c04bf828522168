package gadget

import (
	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/vmerr"
)

// ConditionalSelect: out = c·a + (1-c)·b. a and b must share a type; the
// result carries that type. This is how predicated writes (§4.3) and the
// ConditionalSelect opcode are both implemented.
func ConditionalSelect(api cs.API, c, a, b Scalar) (Scalar, error) {
	if err := requireBoolean(c); err != nil {
		return Scalar{}, err
	}
	if err := sameType(a, b); err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("select")
	return Scalar{Wire: ns.Select(c.Wire, a.Wire, b.Wire), Type: a.Type}, nil
}

// Assert forces b = 1; on an unsatisfied assignment, the VM run aborts
// with ConstraintUnsatisfied carrying msg verbatim.
func Assert(api cs.API, b Scalar, msg string) error {
	if err := requireBoolean(b); err != nil {
		return err
	}
	ns := api.Namespace("assert")
	one := ns.NewConstant(bigOne)
	ns.AssertIsEqual(b.Wire, one)
	if v, err := ns.Value(b.Wire); err == nil && v.Sign() == 0 {
		return &vmerr.RuntimeError{Kind: vmerr.ConstraintUnsatisfied, Message: msg}
	}
	return nil
}
