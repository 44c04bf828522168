package cs

import (
	"math/big"

	"github.com/zinc-lang/zinc/field"
)

// CountingBackend dispatches identically to DebugBackend but discards
// constraint details, only incrementing a shared counter — the "Counting
// CS" run mode of spec.md §4.3, used to measure constraint counts (e.g.
// the loop-unrolling invariant) without paying for full diagnostics.
type CountingBackend struct {
	namer      *Namer
	namespace  string
	nConstr    *int
	varCounter *int
}

func NewCountingBackend() *CountingBackend {
	n, v := 0, 0
	return &CountingBackend{namer: newNamer(""), nConstr: &n, varCounter: &v}
}

func (c *CountingBackend) NumConstraints() int { return *c.nConstr }

func (c *CountingBackend) Namespace(name string) API {
	return &CountingBackend{
		namer:      c.namer,
		namespace:  c.namer.child(joinNamespace(c.namespace, name)),
		nConstr:    c.nConstr,
		varCounter: c.varCounter,
	}
}

func (c *CountingBackend) label() string {
	*c.varCounter++
	return ""
}

func (c *CountingBackend) Add(a, b Wire) Wire {
	return wrap(asWire(a).val.Add(asWire(b).val), c.label())
}
func (c *CountingBackend) Sub(a, b Wire) Wire {
	return wrap(asWire(a).val.Sub(asWire(b).val), c.label())
}
func (c *CountingBackend) Mul(a, b Wire) Wire {
	*c.nConstr++ // multiplication is the one non-linear (quadratic) gate in R1CS
	return wrap(asWire(a).val.Mul(asWire(b).val), c.label())
}
func (c *CountingBackend) Neg(a Wire) Wire { return wrap(asWire(a).val.Neg(), c.label()) }
func (c *CountingBackend) Inverse(a Wire) Wire {
	*c.nConstr++
	return wrap(asWire(a).val.Inverse(), c.label())
}
func (c *CountingBackend) IsZero(a Wire) Wire {
	*c.nConstr++
	if asWire(a).val.IsZero() {
		return wrap(field.One(), c.label())
	}
	return wrap(field.Zero(), c.label())
}
func (c *CountingBackend) Select(cond, a, b Wire) Wire {
	*c.nConstr++
	if asWire(cond).val.IsZero() {
		return wrap(asWire(b).val, c.label())
	}
	return wrap(asWire(a).val, c.label())
}
func (c *CountingBackend) AssertIsEqual(a, b Wire) { *c.nConstr++ }
func (c *CountingBackend) AssertIsBoolean(a Wire)  { *c.nConstr++ }
func (c *CountingBackend) AssertIsLessOrEqual(a Wire, bound *big.Int) {
	bits := bound.BitLen() + 1
	*c.nConstr += bits + 1
}
func (c *CountingBackend) ToBinary(a Wire, n int) []Wire {
	av := asWire(a)
	bits := make([]Wire, n)
	for i := 0; i < n; i++ {
		*c.nConstr++ // per-bit booleanity
		bits[i] = wrap(field.FromUint64(uint64(av.val.Bit(i))), c.label())
	}
	*c.nConstr++ // recomposition
	return bits
}
func (c *CountingBackend) FromBinary(bits []Wire) Wire {
	sum := field.Zero()
	pow := field.One()
	two := field.FromUint64(2)
	for _, b := range bits {
		sum = sum.Add(pow.Mul(asWire(b).val))
		pow = pow.Mul(two)
	}
	return wrap(sum, c.label())
}
func (c *CountingBackend) Xor(a, b Wire) Wire {
	*c.nConstr++
	av, bv := asWire(a).val, asWire(b).val
	return wrap(av.Add(bv).Sub(field.FromUint64(2).Mul(av.Mul(bv))), c.label())
}
func (c *CountingBackend) Or(a, b Wire) Wire {
	*c.nConstr++
	av, bv := asWire(a).val, asWire(b).val
	return wrap(av.Add(bv).Sub(av.Mul(bv)), c.label())
}
func (c *CountingBackend) And(a, b Wire) Wire {
	*c.nConstr++
	return wrap(asWire(a).val.Mul(asWire(b).val), c.label())
}
func (c *CountingBackend) ConstantValue(a Wire) (*big.Int, bool) { return asWire(a).val.Big(), true }
func (c *CountingBackend) Println(args ...Wire)                  {}
func (c *CountingBackend) NewConstant(v *big.Int) Wire           { return wrap(field.FromBigInt(v), c.label()) }
func (c *CountingBackend) Value(a Wire) (*big.Int, error)        { return asWire(a).val.Big(), nil }

func (c *CountingBackend) Hint(f func(inputs []*big.Int) *big.Int, inputs ...Wire) Wire {
	args := make([]*big.Int, len(inputs))
	for i, in := range inputs {
		args[i] = asWire(in).val.Big()
	}
	return wrap(field.FromBigInt(f(args)), c.label())
}
