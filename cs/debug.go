package cs

import (
	"fmt"
	"math/big"

	"github.com/zinc-lang/zinc/field"
)

// wire is the concrete Wire representation shared by Debug and Counting:
// a witness value plus a human-readable label used in diagnostics and
// Println output.
type wire struct {
	val   field.Element
	label string
}

func wrap(v field.Element, label string) Wire { return &wire{val: v, label: label} }

func asWire(w Wire) *wire {
	dw, ok := w.(*wire)
	if !ok {
		panic(fmt.Sprintf("cs: foreign wire value %#v used across backends", w))
	}
	return dw
}

// DebugBackend stores every constraint it emits and can report which
// constraint is unsatisfied, matching the "Debug CS" run mode of
// spec.md §4.3 and grounded on the teacher's zkcompile/constraint.go
// in-memory Constraint list.
type DebugBackend struct {
	namer       *Namer
	namespace   string
	constraints *[]Constraint // shared with every namespaced child, like nConstr in CountingBackend
	varCounter  *int
	out         func(string)
}

// NewDebugBackend creates a root Debug backend. out receives Println
// output (nil discards it).
func NewDebugBackend(out func(string)) *DebugBackend {
	counter := 0
	var constraints []Constraint
	return &DebugBackend{namer: newNamer(""), constraints: &constraints, varCounter: &counter, out: out}
}

func (d *DebugBackend) Namespace(name string) API {
	return &DebugBackend{
		namer:       d.namer, // shared root namer: collisions are global per invocation, matching "unique siblings at each nesting level"
		namespace:   d.namer.child(joinNamespace(d.namespace, name)),
		constraints: d.constraints,
		varCounter:  d.varCounter,
		out:         d.out,
	}
}

func joinNamespace(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func (d *DebugBackend) label(prefix string) string {
	*d.varCounter++
	return fmt.Sprintf("%s/%s#%d", d.namespace, prefix, *d.varCounter)
}

func (d *DebugBackend) record(c Constraint) {
	*d.constraints = append(*d.constraints, c)
}

// UnsatisfiedConstraints returns every recorded constraint whose
// Satisfied flag is false, for diagnostic reporting. Since constraints
// is shared by pointer across every Namespace child, this sees
// everything recorded anywhere in the invocation, not just calls made
// directly on the root backend.
func (d *DebugBackend) UnsatisfiedConstraints() []Constraint {
	var out []Constraint
	for _, c := range *d.constraints {
		if !c.Satisfied {
			out = append(out, c)
		}
	}
	return out
}

func (d *DebugBackend) Add(a, b Wire) Wire {
	av, bv := asWire(a), asWire(b)
	return wrap(av.val.Add(bv.val), d.label("add"))
}

func (d *DebugBackend) Sub(a, b Wire) Wire {
	av, bv := asWire(a), asWire(b)
	return wrap(av.val.Sub(bv.val), d.label("sub"))
}

func (d *DebugBackend) Mul(a, b Wire) Wire {
	av, bv := asWire(a), asWire(b)
	return wrap(av.val.Mul(bv.val), d.label("mul"))
}

func (d *DebugBackend) Neg(a Wire) Wire {
	return wrap(asWire(a).val.Neg(), d.label("neg"))
}

func (d *DebugBackend) Inverse(a Wire) Wire {
	return wrap(asWire(a).val.Inverse(), d.label("inv"))
}

func (d *DebugBackend) IsZero(a Wire) Wire {
	v := asWire(a).val
	if v.IsZero() {
		return wrap(field.One(), d.label("iszero"))
	}
	return wrap(field.Zero(), d.label("iszero"))
}

func (d *DebugBackend) Select(cond, a, b Wire) Wire {
	if asWire(cond).val.IsZero() {
		return wrap(asWire(b).val, d.label("select"))
	}
	return wrap(asWire(a).val, d.label("select"))
}

func (d *DebugBackend) AssertIsEqual(a, b Wire) {
	av, bv := asWire(a), asWire(b)
	d.record(Constraint{
		Kind: KindEqual, Namespace: d.namespace,
		Left: av.label, Right: bv.label,
		Satisfied: av.val.Equal(bv.val),
	})
}

func (d *DebugBackend) AssertIsBoolean(a Wire) {
	av := asWire(a)
	ok := av.val.IsZero() || av.val.Equal(field.One())
	d.record(Constraint{Kind: KindBoolean, Namespace: d.namespace, Left: av.label, Satisfied: ok})
}

func (d *DebugBackend) AssertIsLessOrEqual(a Wire, bound *big.Int) {
	av := asWire(a)
	ok := av.val.Big().Cmp(bound) <= 0
	d.record(Constraint{
		Kind: KindLessOrEqual, Namespace: d.namespace,
		Left: av.label, Right: bound.String(), Satisfied: ok,
	})
}

func (d *DebugBackend) ToBinary(a Wire, n int) []Wire {
	av := asWire(a)
	bits := make([]Wire, n)
	for i := 0; i < n; i++ {
		b := av.val.Bit(i)
		bits[i] = wrap(field.FromUint64(uint64(b)), d.label("bit"))
		d.record(Constraint{Kind: KindBoolean, Namespace: d.namespace, Left: bits[i].(*wire).label, Satisfied: true})
	}
	// recomposition check: Σ 2^i·b_i == a
	sum := field.Zero()
	pow := field.One()
	two := field.FromUint64(2)
	for i := 0; i < n; i++ {
		sum = sum.Add(pow.Mul(asWire(bits[i]).val))
		pow = pow.Mul(two)
	}
	d.record(Constraint{
		Kind: KindEqual, Namespace: d.namespace,
		Left: d.label("recompose"), Right: av.label, Satisfied: sum.Equal(av.val),
	})
	return bits
}

func (d *DebugBackend) FromBinary(bits []Wire) Wire {
	sum := field.Zero()
	pow := field.One()
	two := field.FromUint64(2)
	for _, b := range bits {
		sum = sum.Add(pow.Mul(asWire(b).val))
		pow = pow.Mul(two)
	}
	return wrap(sum, d.label("from_binary"))
}

func (d *DebugBackend) Xor(a, b Wire) Wire {
	av, bv := asWire(a).val, asWire(b).val
	return wrap(av.Add(bv).Sub(field.FromUint64(2).Mul(av.Mul(bv))), d.label("xor"))
}

func (d *DebugBackend) Or(a, b Wire) Wire {
	av, bv := asWire(a).val, asWire(b).val
	return wrap(av.Add(bv).Sub(av.Mul(bv)), d.label("or"))
}

func (d *DebugBackend) And(a, b Wire) Wire {
	av, bv := asWire(a).val, asWire(b).val
	return wrap(av.Mul(bv), d.label("and"))
}

func (d *DebugBackend) ConstantValue(a Wire) (*big.Int, bool) {
	return asWire(a).val.Big(), true
}

func (d *DebugBackend) Println(args ...Wire) {
	if d.out == nil {
		return
	}
	parts := make([]interface{}, 0, len(args))
	for _, a := range args {
		parts = append(parts, asWire(a).val.String())
	}
	d.out(fmt.Sprintln(parts...))
}

func (d *DebugBackend) NewConstant(v *big.Int) Wire {
	return wrap(field.FromBigInt(v), d.label("const"))
}

func (d *DebugBackend) Value(a Wire) (*big.Int, error) {
	return asWire(a).val.Big(), nil
}

func (d *DebugBackend) Hint(f func(inputs []*big.Int) *big.Int, inputs ...Wire) Wire {
	args := make([]*big.Int, len(inputs))
	for i, in := range inputs {
		args[i] = asWire(in).val.Big()
	}
	return wrap(field.FromBigInt(f(args)), d.label("hint"))
}
