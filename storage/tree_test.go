package storage

import (
	"testing"

	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
)

func TestStoreThenLoadRoundTrips(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	tree := NewTree(api, 4, 1)

	val, err := gadget.Const(api, 17, isa.Field())
	if err != nil {
		t.Fatal(err)
	}
	trueCond, _ := gadget.Const(api, 1, isa.Boolean())

	if err := tree.Store(api, isa.Location{}, 3, []gadget.Scalar{val}, trueCond); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := tree.Load(api, isa.Location{}, 3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, _ := api.Value(got[0].Wire); v.Int64() != 17 {
		t.Fatalf("loaded %v, want 17", v)
	}

	if len(api.UnsatisfiedConstraints()) != 0 {
		t.Fatalf("unexpected unsatisfied constraints: %v", api.UnsatisfiedConstraints())
	}
}

func TestStoreUnderFalseConditionLeavesRootUnchanged(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	tree := NewTree(api, 4, 1)
	rootBefore, _ := api.Value(tree.Root())

	val, _ := gadget.Const(api, 99, isa.Field())
	falseCond, _ := gadget.Const(api, 0, isa.Boolean())

	if err := tree.Store(api, isa.Location{}, 5, []gadget.Scalar{val}, falseCond); err != nil {
		t.Fatalf("Store: %v", err)
	}
	rootAfter, _ := api.Value(tree.Root())
	if rootBefore.Cmp(rootAfter) != 0 {
		t.Fatalf("root changed under a false condition: %v -> %v", rootBefore, rootAfter)
	}
}

func TestLoadStoreCommutationLeavesRootUnchanged(t *testing.T) {
	api := cs.NewDebugBackend(nil)
	tree := NewTree(api, 3, 2)
	rootBefore, _ := api.Value(tree.Root())

	trueCond, _ := gadget.Const(api, 1, isa.Boolean())
	fields, err := tree.Load(api, isa.Location{}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := tree.Store(api, isa.Location{}, 2, fields, trueCond); err != nil {
		t.Fatal(err)
	}
	rootAfter, _ := api.Value(tree.Root())
	if rootBefore.Cmp(rootAfter) != 0 {
		t.Fatalf("load(i); store(i, load(i)) changed the root: %v -> %v", rootBefore, rootAfter)
	}
}
