package gadget

import (
	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/isa"
)

func requireBoolean(s Scalar) error {
	if s.Type.Kind != isa.KindBoolean {
		return typeErr("expected bool, got %s", s.Type)
	}
	return nil
}

// Not: out = 1 - x.
func Not(api cs.API, a Scalar) (Scalar, error) {
	if err := requireBoolean(a); err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("not")
	one := ns.NewConstant(bigOne)
	w := ns.Sub(one, a.Wire)
	return Scalar{Wire: w, Type: isa.Boolean()}, nil
}

// And: a·b.
func And(api cs.API, a, b Scalar) (Scalar, error) {
	if err := requireBoolean(a); err != nil {
		return Scalar{}, err
	}
	if err := requireBoolean(b); err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("and")
	return Scalar{Wire: ns.Mul(a.Wire, b.Wire), Type: isa.Boolean()}, nil
}

// Or: a+b-a·b.
func Or(api cs.API, a, b Scalar) (Scalar, error) {
	if err := requireBoolean(a); err != nil {
		return Scalar{}, err
	}
	if err := requireBoolean(b); err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("or")
	w := ns.Sub(ns.Add(a.Wire, b.Wire), ns.Mul(a.Wire, b.Wire))
	return Scalar{Wire: w, Type: isa.Boolean()}, nil
}

// Xor: a+b-2·a·b.
func Xor(api cs.API, a, b Scalar) (Scalar, error) {
	if err := requireBoolean(a); err != nil {
		return Scalar{}, err
	}
	if err := requireBoolean(b); err != nil {
		return Scalar{}, err
	}
	ns := api.Namespace("xor")
	w := ns.Xor(a.Wire, b.Wire)
	return Scalar{Wire: w, Type: isa.Boolean()}, nil
}

var bigOne = bigIntOne()
