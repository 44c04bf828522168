package vm

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/zinc-lang/zinc/cs"
)

// ProvingBackend adapts a real gnark frontend.API to cs.API, so the same
// gadget and vm dispatch code that runs under Debug/Counting during
// development also runs, unchanged, inside an actual Groth16 circuit
// Define(). Namespacing is gnark's own (frontend.API has no namespace
// concept), so Namespace is a pass-through: constraint names only matter
// for Debug/Counting diagnostics.
type ProvingBackend struct {
	api frontend.API
}

// NewProvingBackend wraps a gnark circuit-definition API.
func NewProvingBackend(api frontend.API) *ProvingBackend {
	return &ProvingBackend{api: api}
}

func (p *ProvingBackend) Namespace(name string) cs.API { return p }

func (p *ProvingBackend) Add(a, b cs.Wire) cs.Wire { return p.api.Add(a, b) }
func (p *ProvingBackend) Sub(a, b cs.Wire) cs.Wire { return p.api.Sub(a, b) }
func (p *ProvingBackend) Mul(a, b cs.Wire) cs.Wire { return p.api.Mul(a, b) }
func (p *ProvingBackend) Neg(a cs.Wire) cs.Wire    { return p.api.Neg(a) }
func (p *ProvingBackend) Inverse(a cs.Wire) cs.Wire { return p.api.Inverse(a) }
func (p *ProvingBackend) IsZero(a cs.Wire) cs.Wire  { return p.api.IsZero(a) }

func (p *ProvingBackend) Select(cond, a, b cs.Wire) cs.Wire {
	return p.api.Select(cond, a, b)
}

func (p *ProvingBackend) AssertIsEqual(a, b cs.Wire) { p.api.AssertIsEqual(a, b) }
func (p *ProvingBackend) AssertIsBoolean(a cs.Wire)  { p.api.AssertIsBoolean(a) }
func (p *ProvingBackend) AssertIsLessOrEqual(a cs.Wire, bound *big.Int) {
	p.api.AssertIsLessOrEqual(a, frontend.Variable(bound))
}

func (p *ProvingBackend) ToBinary(a cs.Wire, n int) []cs.Wire {
	bits := p.api.ToBinary(a, n)
	out := make([]cs.Wire, n)
	for i, b := range bits {
		out[i] = b
	}
	return out
}

func (p *ProvingBackend) FromBinary(bits []cs.Wire) cs.Wire {
	vars := make([]frontend.Variable, len(bits))
	for i, b := range bits {
		vars[i] = b
	}
	return p.api.FromBinary(vars...)
}

func (p *ProvingBackend) Xor(a, b cs.Wire) cs.Wire { return p.api.Xor(a, b) }
func (p *ProvingBackend) Or(a, b cs.Wire) cs.Wire  { return p.api.Or(a, b) }
func (p *ProvingBackend) And(a, b cs.Wire) cs.Wire { return p.api.And(a, b) }

func (p *ProvingBackend) ConstantValue(a cs.Wire) (*big.Int, bool) {
	return p.api.ConstantValue(a)
}

func (p *ProvingBackend) Println(args ...cs.Wire) {
	vars := make([]frontend.Variable, len(args))
	for i, a := range args {
		vars[i] = a
	}
	p.api.Println(vars...)
}

func (p *ProvingBackend) NewConstant(v *big.Int) cs.Wire {
	return frontend.Variable(v)
}

// Value always errors: a circuit's wires are symbolic during Define(),
// the witness solver runs after, so no backend built on frontend.API can
// ever observe a concrete value. Code paths that call Value (dynamic
// *ByIndex addressing, zksync::transfer) are documented as Debug/
// Counting-only until a multiplexer-based generalization exists.
func (p *ProvingBackend) Value(a cs.Wire) (*big.Int, error) {
	return nil, fmt.Errorf("vm: Value is unavailable under the proving backend (wire is symbolic until solve time)")
}

func (p *ProvingBackend) Hint(f func(inputs []*big.Int) *big.Int, inputs ...cs.Wire) cs.Wire {
	vars := make([]frontend.Variable, len(inputs))
	for i, in := range inputs {
		vars[i] = in
	}
	out, err := p.api.NewHint(func(_ *big.Int, ins []*big.Int, outs []*big.Int) error {
		outs[0].Set(f(ins))
		return nil
	}, 1, vars...)
	if err != nil {
		panic(fmt.Sprintf("vm: hint allocation failed: %v", err))
	}
	return out[0]
}
