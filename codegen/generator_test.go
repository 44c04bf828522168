package codegen

import (
	"strings"
	"testing"

	"github.com/zinc-lang/zinc/isa"
)

func countOp(code []isa.Instruction, op isa.Opcode) int {
	n := 0
	for _, instr := range code {
		if instr.Op == op {
			n++
		}
	}
	return n
}

func generate(t *testing.T, c *Circuit) *isa.Program {
	t.Helper()
	prog, err := Generate(c)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return prog
}

func TestForLoopUnrollsBody(t *testing.T) {
	prog := generate(t, &Circuit{
		Outputs: []isa.ScalarType{isa.U(32)},
		Body: []Stmt{
			Let("s", Const(0, isa.U(32))),
			For("i", 3, []Stmt{
				Assign("s", Binary(OpAdd, Var("s"), Var("i"))),
			}),
			Output(Var("s")),
		},
	})

	if n := countOp(prog.Code, isa.OpLoopBegin); n != 1 {
		t.Errorf("LoopBegin count = %d, want 1", n)
	}
	if n := countOp(prog.Code, isa.OpLoopEnd); n != 1 {
		t.Errorf("LoopEnd count = %d, want 1", n)
	}
	// The body's single Add appears once per iteration.
	if n := countOp(prog.Code, isa.OpAdd); n != 3 {
		t.Errorf("Add count = %d, want 3 (one per unrolled iteration)", n)
	}
	for _, instr := range prog.Code {
		if instr.Op == isa.OpLoopBegin && instr.N != 3 {
			t.Errorf("LoopBegin operand = %d, want 3", instr.N)
		}
	}
}

func TestIfElseBracketsBothArms(t *testing.T) {
	prog := generate(t, &Circuit{
		Inputs:  []Param{{Name: "c", Type: isa.Leaf(isa.Boolean())}},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []Stmt{
			Let("out", Const(0, isa.U(8))),
			If(Var("c"),
				[]Stmt{Assign("out", Const(1, isa.U(8)))},
				[]Stmt{Assign("out", Const(2, isa.U(8)))},
			),
			Output(Var("out")),
		},
	})

	var ops []isa.Opcode
	for _, instr := range prog.Code {
		switch instr.Op {
		case isa.OpIf, isa.OpElse, isa.OpEndIf:
			ops = append(ops, instr.Op)
		}
	}
	want := []isa.Opcode{isa.OpIf, isa.OpElse, isa.OpEndIf}
	if len(ops) != len(want) {
		t.Fatalf("control ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("control ops = %v, want %v", ops, want)
		}
	}
}

func TestMatchLowersToIfElseChain(t *testing.T) {
	prog := generate(t, &Circuit{
		Inputs:  []Param{{Name: "x", Type: isa.Leaf(isa.U(8))}},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []Stmt{
			Let("out", Const(0, isa.U(8))),
			Match(Var("x"), []MatchCase{
				{Value: Const(1, isa.U(8)), Body: []Stmt{Assign("out", Const(10, isa.U(8)))}},
				{Value: Const(2, isa.U(8)), Body: []Stmt{Assign("out", Const(20, isa.U(8)))}},
				{Value: nil, Body: []Stmt{Assign("out", Const(99, isa.U(8)))}},
			}),
			Output(Var("out")),
		},
	})

	// Two valued arms: one Eq+If each; the wildcard arm compiles bare
	// inside the second Else.
	if n := countOp(prog.Code, isa.OpEq); n != 2 {
		t.Errorf("Eq count = %d, want 2", n)
	}
	if n := countOp(prog.Code, isa.OpIf); n != 2 {
		t.Errorf("If count = %d, want 2", n)
	}
	if n := countOp(prog.Code, isa.OpElse); n != 2 {
		t.Errorf("Else count = %d, want 2", n)
	}
	if n := countOp(prog.Code, isa.OpEndIf); n != 2 {
		t.Errorf("EndIf count = %d, want 2", n)
	}
}

func TestMatchWithoutWildcardEndsChain(t *testing.T) {
	prog := generate(t, &Circuit{
		Inputs:  []Param{{Name: "x", Type: isa.Leaf(isa.U(8))}},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []Stmt{
			Let("out", Const(0, isa.U(8))),
			Match(Var("x"), []MatchCase{
				{Value: Const(1, isa.U(8)), Body: []Stmt{Assign("out", Const(10, isa.U(8)))}},
			}),
			Output(Var("out")),
		},
	})
	if n, m := countOp(prog.Code, isa.OpIf), countOp(prog.Code, isa.OpEndIf); n != 1 || m != 1 {
		t.Errorf("If/EndIf counts = %d/%d, want 1/1", n, m)
	}
	if n := countOp(prog.Code, isa.OpElse); n != 0 {
		t.Errorf("Else count = %d, want 0 for a single-arm match", n)
	}
}

func TestFunctionBodiesAppendAfterMain(t *testing.T) {
	prog := generate(t, &Circuit{
		Inputs:  []Param{{Name: "a", Type: isa.Leaf(isa.U(8))}},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []Stmt{
			Output(Call("double", Var("a"))),
		},
		Functions: []Function{
			{
				Name:    "double",
				Params:  []Param{{Name: "x", Type: isa.Leaf(isa.U(8))}},
				Results: []isa.ScalarType{isa.U(8)},
				Body: []Stmt{
					Return(Binary(OpAdd, Var("x"), Var("x"))),
				},
			},
		},
	})

	var callAt, markerAt = -1, -1
	for i, instr := range prog.Code {
		if instr.Op == isa.OpCall && instr.Label == "double" {
			callAt = i
		}
		if instr.Op == isa.OpFunctionMarker && instr.Str == "double" {
			markerAt = i
		}
	}
	if callAt < 0 {
		t.Fatal("no Call @double emitted")
	}
	if markerAt < 0 {
		t.Fatal("no FunctionMarker for double emitted")
	}
	if markerAt < callAt {
		t.Errorf("function body at %d precedes its call site at %d; bodies must append after main", markerAt, callAt)
	}
	// double's explicit Return, its backstop Return, and main's halting
	// Return.
	if n := countOp(prog.Code, isa.OpReturn); n != 3 {
		t.Errorf("Return count = %d, want 3", n)
	}
}

func TestDynamicIndexComputesFieldAddress(t *testing.T) {
	prog := generate(t, &Circuit{
		Inputs: []Param{
			{Name: "xs", Type: isa.Array(isa.Leaf(isa.U(8)), 4)},
			{Name: "i", Type: isa.Leaf(isa.U(8))},
		},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []Stmt{
			Output(IndexOf(Var("xs"), Var("i"))),
		},
	})
	if n := countOp(prog.Code, isa.OpLoadByIndex); n != 1 {
		t.Fatalf("LoadByIndex count = %d, want 1", n)
	}
	// The index is cast to Field before the base offset is added.
	sawFieldCast := false
	for _, instr := range prog.Code {
		if instr.Op == isa.OpCast && instr.Type.Equal(isa.Field()) {
			sawFieldCast = true
		}
	}
	if !sawFieldCast {
		t.Error("dynamic index emitted no cast-to-Field")
	}
}

func TestUndeclaredNameFailsGeneration(t *testing.T) {
	_, err := Generate(&Circuit{
		Outputs: []isa.ScalarType{isa.U(8)},
		Body:    []Stmt{Output(Var("missing"))},
	})
	if err == nil {
		t.Fatal("expected error for undeclared name, got nil")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error %q does not name the undeclared variable", err)
	}
}

func TestContractMethodsShareStorageLayout(t *testing.T) {
	prog, err := GenerateContract(&Contract{
		StorageNames:  []string{"a", "b"},
		StorageFields: []isa.TypeTree{isa.Leaf(isa.U(64)), isa.Leaf(isa.U(64))},
		Methods: []Method{
			{
				Function: codegenMethod("get_b", []Stmt{Output(Var("b"))}),
			},
			{
				Function: codegenMethod("get_a", []Stmt{Output(Var("a"))}),
			},
		},
	})
	if err != nil {
		t.Fatalf("GenerateContract: %v", err)
	}
	if len(prog.Methods) != 2 {
		t.Fatalf("method count = %d, want 2", len(prog.Methods))
	}
	// b occupies the cell after a in every method's frame.
	for _, instr := range prog.Code {
		if instr.Op == isa.OpLoad && instr.Addr > 1 {
			t.Errorf("storage field load at address %d, want within [0,2)", instr.Addr)
		}
	}
}

func codegenMethod(name string, body []Stmt) Function {
	return Function{Name: name, Results: []isa.ScalarType{isa.U(64)}, Body: body}
}
