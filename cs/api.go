// Package cs defines the constraint-system capability set every gadget is
// written against: alloc, enforce, namespace — the same three operations
// spec.md assigns to the VM's "cs" handle — plus the small set of
// primitive wire operations gadgets compose. Three independent
// implementations satisfy API: Debug, Counting (both in this package,
// pure Go, no proving-system dependency) and Proving (package vm, backed
// by gnark's frontend.API). All three must produce identical constraint
// topology for the same bytecode and witness.
package cs

import "math/big"

// Wire is an opaque constraint-system value: a *field.Element in the
// Debug/Counting backends, or a gnark frontend.Variable in the Proving
// backend. Gadgets never inspect a Wire directly; they only pass it
// through API methods, exactly as circuits written against gnark's own
// frontend.API treat frontend.Variable.
type Wire = interface{}

// API is the capability set a gadget needs. It mirrors gnark's
// frontend.API (see frontend.API in the gnark module) closely enough that
// the Proving backend is a thin pass-through adapter over a real
// frontend.API, while Debug and Counting reimplement the same semantics
// over plain field arithmetic.
type API interface {
	// Namespace returns a child API whose wire/constraint names are
	// prefixed by name; namespaces must be unique siblings at each
	// nesting level (see Namer).
	Namespace(name string) API

	Add(a, b Wire) Wire
	Sub(a, b Wire) Wire
	Mul(a, b Wire) Wire
	Neg(a Wire) Wire
	Inverse(a Wire) Wire
	IsZero(a Wire) Wire

	// Select returns a if cond == 1, b if cond == 0. cond must already be
	// constrained boolean by the caller (AssertBoolean or construction).
	Select(cond, a, b Wire) Wire

	AssertIsEqual(a, b Wire)
	AssertIsBoolean(a Wire)
	// AssertIsLessOrEqual fails unless the canonical integer value of a is
	// <= bound.
	AssertIsLessOrEqual(a Wire, bound *big.Int)

	// ToBinary decomposes a into n little-endian boolean wires, enforcing
	// Σ 2^i·b_i = a and b_i·(1-b_i) = 0 for each bit — the canonical
	// bit-decomposition primitive shared by comparisons and bitwise ops.
	ToBinary(a Wire, n int) []Wire
	FromBinary(bits []Wire) Wire

	Xor(a, b Wire) Wire
	Or(a, b Wire) Wire
	And(a, b Wire) Wire

	// ConstantValue reports whether a is a compile-time constant and, if
	// so, its value.
	ConstantValue(a Wire) (*big.Int, bool)

	// Println is a debug-only side channel; Counting and Proving
	// implementations treat it as a no-op, matching spec.md's rule that
	// dbg! is silent outside debug/run.
	Println(args ...Wire)

	// NewConstant materialises a known value as a Wire.
	NewConstant(v *big.Int) Wire

	// Value returns the concrete witness value of a, or an error if this
	// backend cannot observe witness values (never true for Debug/
	// Counting; Proving returns an error since circuit wires are opaque
	// symbolic values until the solver runs).
	Value(a Wire) (*big.Int, error)

	// Hint allocates a new wire whose witness value is computed by f from
	// the witness values of inputs, without adding any constraint on it —
	// the caller must constrain the result itself. This is how div_rem
	// introduces its quotient/remainder witnesses; Proving delegates to
	// gnark's frontend.API.NewHint.
	Hint(f func(inputs []*big.Int) *big.Int, inputs ...Wire) Wire
}
