package cs

import (
	"math/big"
	"testing"
)

func TestDebugBackendRecordsUnsatisfiedConstraint(t *testing.T) {
	api := NewDebugBackend(nil)
	api.AssertIsEqual(api.NewConstant(big.NewInt(1)), api.NewConstant(big.NewInt(2)))
	api.AssertIsEqual(api.NewConstant(big.NewInt(3)), api.NewConstant(big.NewInt(3)))

	bad := api.UnsatisfiedConstraints()
	if len(bad) != 1 {
		t.Fatalf("unsatisfied count = %d, want 1", len(bad))
	}
	if bad[0].Kind != KindEqual {
		t.Errorf("kind = %v, want %v", bad[0].Kind, KindEqual)
	}
}

func TestDebugBackendSeesChildNamespaceConstraints(t *testing.T) {
	api := NewDebugBackend(nil)
	child := api.Namespace("inner")
	child.AssertIsBoolean(child.NewConstant(big.NewInt(7)))

	bad := api.UnsatisfiedConstraints()
	if len(bad) != 1 {
		t.Fatalf("unsatisfied count = %d, want 1", len(bad))
	}
	if bad[0].Namespace != "inner" {
		t.Errorf("namespace = %q, want %q", bad[0].Namespace, "inner")
	}
}

func TestRepeatedNamespacesStayUnique(t *testing.T) {
	api := NewDebugBackend(nil)
	first := api.Namespace("add").(*DebugBackend)
	second := api.Namespace("add").(*DebugBackend)
	if first.namespace == second.namespace {
		t.Fatalf("sibling namespaces not disambiguated: both %q", first.namespace)
	}
	if first.namespace != "add" {
		t.Errorf("first use = %q, want %q", first.namespace, "add")
	}
}

func TestToBinaryRoundTripsThroughFromBinary(t *testing.T) {
	api := NewDebugBackend(nil)
	x := api.NewConstant(big.NewInt(0b1011_0110))
	bits := api.ToBinary(x, 8)
	back := api.FromBinary(bits)

	v, err := api.Value(back)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v.Int64() != 0b1011_0110 {
		t.Errorf("recomposed = %d, want %d", v.Int64(), 0b1011_0110)
	}
	if len(api.UnsatisfiedConstraints()) != 0 {
		t.Errorf("round trip left unsatisfied constraints: %v", api.UnsatisfiedConstraints())
	}
}

func TestCountingBackendCounts(t *testing.T) {
	api := NewCountingBackend()
	one := api.NewConstant(big.NewInt(1))
	two := api.NewConstant(big.NewInt(2))

	if n := api.NumConstraints(); n != 0 {
		t.Fatalf("fresh backend count = %d, want 0", n)
	}
	api.Mul(one, two)
	if n := api.NumConstraints(); n != 1 {
		t.Errorf("after Mul count = %d, want 1", n)
	}
	api.ToBinary(two, 8)
	// 8 per-bit booleanity constraints plus one recomposition.
	if n := api.NumConstraints(); n != 10 {
		t.Errorf("after ToBinary count = %d, want 10", n)
	}
	api.Add(one, two)
	if n := api.NumConstraints(); n != 10 {
		t.Errorf("Add is linear and must not add a constraint, count = %d", n)
	}
}

func TestCountingHintComputesWitnessWithoutConstraints(t *testing.T) {
	api := NewCountingBackend()
	q := api.Hint(func(in []*big.Int) *big.Int {
		return new(big.Int).Quo(in[0], in[1])
	}, api.NewConstant(big.NewInt(9)), api.NewConstant(big.NewInt(4)))

	v, err := api.Value(q)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v.Int64() != 2 {
		t.Errorf("hint value = %d, want 2", v.Int64())
	}
	if n := api.NumConstraints(); n != 0 {
		t.Errorf("Hint must not emit constraints, count = %d", n)
	}
}
