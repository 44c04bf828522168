package witness

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/isa"
)

func TestFlattenScalarLeaves(t *testing.T) {
	api := cs.NewDebugBackend(nil)

	sig := isa.Tuple(isa.Leaf(isa.U(8)), isa.Leaf(isa.U(8)))
	scalars, err := Flatten(api, sig, []byte(`[3, 4]`))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(scalars) != 2 {
		t.Fatalf("want 2 scalars, got %d", len(scalars))
	}
	v0, err := api.Value(scalars[0].Wire)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v0.Cmp(big.NewInt(3)) != 0 {
		t.Errorf("scalars[0] = %s, want 3", v0)
	}
}

func TestFlattenBooleanAndHex(t *testing.T) {
	api := cs.NewDebugBackend(nil)

	sig := isa.Struct([]string{"c", "x"}, []isa.TypeTree{isa.Leaf(isa.Boolean()), isa.Leaf(isa.U(16))})
	scalars, err := Flatten(api, sig, []byte(`{"c": true, "x": "0x10"}`))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	c, _ := api.Value(scalars[0].Wire)
	if c.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("c = %s, want 1", c)
	}
	x, _ := api.Value(scalars[1].Wire)
	if x.Cmp(big.NewInt(16)) != 0 {
		t.Errorf("x = %s, want 16", x)
	}
}

func TestFlattenArray(t *testing.T) {
	api := cs.NewDebugBackend(nil)

	sig := isa.Array(isa.Leaf(isa.U(8)), 3)
	scalars, err := Flatten(api, sig, []byte(`[1, 2, 3]`))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(scalars) != 3 {
		t.Fatalf("want 3 scalars, got %d", len(scalars))
	}
}

func TestFlattenArrayLengthMismatch(t *testing.T) {
	api := cs.NewDebugBackend(nil)

	sig := isa.Array(isa.Leaf(isa.U(8)), 3)
	if _, err := Flatten(api, sig, []byte(`[1, 2]`)); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestRoundTripUnflatten(t *testing.T) {
	api := cs.NewDebugBackend(nil)

	sig := isa.Tuple(isa.Leaf(isa.I(8)), isa.Leaf(isa.I(8)))
	scalars, err := Flatten(api, sig, []byte(`[-2, -1]`))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	v, err := Unflatten(sig, scalars, api.Value)
	if err != nil {
		t.Fatalf("Unflatten: %v", err)
	}
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 2 {
		t.Fatalf("unexpected shape: %#v", v)
	}
	// Negative signed leaves render as their signed decimal form, not the
	// p-|v| field representative they are stored as.
	if got := arr[0].(json.Number).String(); got != "-2" {
		t.Errorf("arr[0] = %v, want -2", got)
	}
	if got := arr[1].(json.Number).String(); got != "-1" {
		t.Errorf("arr[1] = %v, want -1", got)
	}
}

func TestFlattenEnum(t *testing.T) {
	api := cs.NewDebugBackend(nil)

	enumSig := isa.Enum("Direction", []string{"North", "South"})
	scalars, err := Flatten(api, enumSig, []byte(`"South"`))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	n, _ := api.Value(scalars[0].Wire)
	if n.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("discriminant = %s, want 1", n)
	}

	v, err := Unflatten(enumSig, scalars, api.Value)
	if err != nil {
		t.Fatalf("Unflatten: %v", err)
	}
	if v != "South" {
		t.Errorf("Unflatten = %v, want South", v)
	}
}
