package gadget

import (
	"math/big"
	"testing"

	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/field"
	"github.com/zinc-lang/zinc/isa"
)

func mustConst(t *testing.T, api cs.API, v int64, ty isa.ScalarType) Scalar {
	t.Helper()
	s, err := Const(api, v, ty)
	if err != nil {
		t.Fatalf("Const(%d, %s): %v", v, ty, err)
	}
	return s
}

// valueOf reads back a scalar's witness value as a plain int64,
// reinterpreting field representatives in the upper half of the modulus
// as the negative numbers they encode (the same convention DivRem's
// hints use).
func valueOf(t *testing.T, api cs.API, s Scalar) int64 {
	t.Helper()
	v, err := api.Value(s.Wire)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	half := new(big.Int).Rsh(field.Modulus(), 1)
	if v.Cmp(half) > 0 {
		v = new(big.Int).Sub(v, field.Modulus())
	}
	return v.Int64()
}

func TestAddSubMulU8(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	a := mustConst(t, api, 3, isa.U(8))
	b := mustConst(t, api, 4, isa.U(8))

	sum, err := Add(api, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := valueOf(t, api, sum); got != 7 {
		t.Fatalf("3+4 = %d, want 7", got)
	}

	prod, err := Mul(api, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := valueOf(t, api, prod); got != 12 {
		t.Fatalf("3*4 = %d, want 12", got)
	}
}

func TestDivRemTruncated(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	i8 := isa.I(8)
	trueCond, _ := Const(api, 1, isa.Boolean())

	cases := []struct{ n, d, q, r int64 }{
		{9, 4, 2, 1},
		{9, -4, -2, 1},
		{-9, 4, -2, -1},
		{-9, -4, 2, -1},
	}
	for _, c := range cases {
		n := mustConst(t, api, c.n, i8)
		d := mustConst(t, api, c.d, i8)
		q, r, err := DivRem(api, n, d, trueCond)
		if err != nil {
			t.Fatalf("DivRem(%d,%d): %v", c.n, c.d, err)
		}
		if got := valueOf(t, api, q); got != c.q {
			t.Errorf("%d/%d = %d, want %d", c.n, c.d, got, c.q)
		}
		if got := valueOf(t, api, r); got != c.r {
			t.Errorf("%d%%%d = %d, want %d", c.n, c.d, got, c.r)
		}
	}
}

func TestDivRemByZero(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	u8 := isa.U(8)
	n := mustConst(t, api, 9, u8)
	zero := mustConst(t, api, 0, u8)
	trueCond := mustConst(t, api, 1, isa.Boolean())
	falseCond := mustConst(t, api, 0, isa.Boolean())

	if _, _, err := DivRem(api, n, zero, trueCond); err == nil {
		t.Fatal("9/0 under a true condition: want error, got nil")
	}

	// Gated off, the divisor is replaced by 1 and the gadget stays
	// satisfiable: q = n, r = 0.
	q, r, err := DivRem(api, n, zero, falseCond)
	if err != nil {
		t.Fatalf("gated-off 9/0: %v", err)
	}
	if got := valueOf(t, api, q); got != 9 {
		t.Errorf("gated-off quotient = %d, want 9", got)
	}
	if got := valueOf(t, api, r); got != 0 {
		t.Errorf("gated-off remainder = %d, want 0", got)
	}
	if bad := api.UnsatisfiedConstraints(); len(bad) != 0 {
		t.Errorf("gated-off division left unsatisfied constraints: %v", bad)
	}
}

func TestAbsOfTypeMinimumFitsUnsigned(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	min := mustConst(t, api, -128, isa.I(8))
	mag, err := absValue(api, min)
	if err != nil {
		t.Fatal(err)
	}
	if got := valueOf(t, api, mag); got != 128 {
		t.Errorf("|−128| = %d, want 128", got)
	}
	if !mag.Type.Equal(isa.U(8)) {
		t.Errorf("magnitude type = %s, want u8", mag.Type)
	}
	if bad := api.UnsatisfiedConstraints(); len(bad) != 0 {
		t.Errorf("abs(min) left unsatisfied constraints: %v", bad)
	}
}

func TestComparisons(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	u8 := isa.U(8)
	a := mustConst(t, api, 3, u8)
	b := mustConst(t, api, 5, u8)

	lt, err := Lt(api, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := valueOf(t, api, lt); got != 1 {
		t.Fatalf("3<5 = %d, want 1", got)
	}

	gt, err := Gt(api, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := valueOf(t, api, gt); got != 0 {
		t.Fatalf("3>5 = %d, want 0", got)
	}

	eq, err := Eq(api, a, a)
	if err != nil {
		t.Fatal(err)
	}
	if got := valueOf(t, api, eq); got != 1 {
		t.Fatalf("3==3 = %d, want 1", got)
	}
}

func TestConditionalSelect(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	u8 := isa.U(8)
	a := mustConst(t, api, 5, u8)
	b := mustConst(t, api, 7, u8)
	trueC := mustConst(t, api, 1, isa.Boolean())
	falseC := mustConst(t, api, 0, isa.Boolean())

	got, err := ConditionalSelect(api, trueC, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if v := valueOf(t, api, got); v != 5 {
		t.Fatalf("select(true,5,7) = %d, want 5", v)
	}

	got2, err := ConditionalSelect(api, falseC, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if v := valueOf(t, api, got2); v != 7 {
		t.Fatalf("select(false,5,7) = %d, want 7", v)
	}
}

func TestCastNarrowingOverflowFails(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	wide, err := Const(api, 300, isa.U(16))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Cast(api, wide, isa.U(8)); err != nil {
		t.Fatal(err) // Cast itself never errors directly
	}
	if len(api.UnsatisfiedConstraints()) == 0 {
		t.Fatalf("expected an unsatisfied range-check constraint for 300 as u8")
	}
}

func TestCastRoundTrip(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	v, err := Const(api, 42, isa.U(8))
	if err != nil {
		t.Fatal(err)
	}
	asField, err := Cast(api, v, isa.Field())
	if err != nil {
		t.Fatal(err)
	}
	back, err := Cast(api, asField, isa.U(8))
	if err != nil {
		t.Fatal(err)
	}
	if got := valueOf(t, api, back); got != 42 {
		t.Fatalf("round-trip cast = %d, want 42", got)
	}
}
