package vm

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"

	"github.com/zinc-lang/zinc/codegen"
	"github.com/zinc-lang/zinc/isa"
)

// decodeResult parses raw the way a real client would: with UseNumber,
// so the json.Number values package witness produces for integer leaves
// survive as comparable strings instead of being rounded through
// float64 by the default decoder.
func decodeResult(t *testing.T, raw json.RawMessage) InvocationResult {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var res InvocationResult
	if err := dec.Decode(&res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return res
}

func additionCircuit(t *testing.T) *isa.Program {
	t.Helper()
	prog, err := codegen.Generate(&codegen.Circuit{
		Inputs: []codegen.Param{
			{Name: "a", Type: isa.Leaf(isa.U(8))},
			{Name: "b", Type: isa.Leaf(isa.U(8))},
		},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []codegen.Stmt{
			codegen.Output(codegen.Binary(codegen.OpAdd, codegen.Var("a"), codegen.Var("b"))),
		},
	})
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}
	return prog
}

func TestRunAddition(t *testing.T) {
	prog := additionCircuit(t)
	out, err := Run(prog, "", []byte(`{"a": 3, "b": 4}`), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := decodeResult(t, out)
	tuple, ok := res.Output.([]interface{})
	if !ok || len(tuple) != 1 {
		t.Fatalf("unexpected output shape: %#v", res.Output)
	}
	if tuple[0].(json.Number).String() != "7" {
		t.Errorf("output = %v, want 7", tuple[0])
	}
}

func TestDebugEmitsTrace(t *testing.T) {
	prog, err := codegen.Generate(&codegen.Circuit{
		Inputs: []codegen.Param{{Name: "a", Type: isa.Leaf(isa.U(8))}},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []codegen.Stmt{
			codegen.Dbg("a = %d", codegen.Var("a")),
			codegen.Output(codegen.Var("a")),
		},
	})
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}

	var lines []string
	_, err = Debug(prog, "", []byte(`{"a": 9}`), nil, func(s string) { lines = append(lines, s) })
	if err != nil {
		t.Fatalf("Debug: %v", err)
	}
	if len(lines) != 1 || !strings.Contains(lines[0], "9") {
		t.Errorf("dbg trace = %v, want one line mentioning 9", lines)
	}
}

func TestSetupProveVerifyRoundTrip(t *testing.T) {
	prog := additionCircuit(t)

	keys, err := Setup(prog, "")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	pr, err := Prove(prog, "", keys, []byte(`{"a": 10, "b": 32}`), nil)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	if err := Verify(keys, pr); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	res := decodeResult(t, pr.Result)
	tuple := res.Output.([]interface{})
	if tuple[0].(json.Number).String() != "42" {
		t.Errorf("output = %v, want 42", tuple[0])
	}
}

func TestSetupIsCached(t *testing.T) {
	prog := additionCircuit(t)
	k1, err := Setup(prog, "")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	k2, err := Setup(prog, "")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if k1 != k2 {
		t.Errorf("Setup did not return the cached Keys on the second call")
	}
}

func TestDivisionTruncatesTowardZero(t *testing.T) {
	prog, err := codegen.Generate(&codegen.Circuit{
		Inputs: []codegen.Param{
			{Name: "a", Type: isa.Leaf(isa.I(16))},
			{Name: "b", Type: isa.Leaf(isa.I(16))},
		},
		Outputs: []isa.ScalarType{isa.I(16), isa.I(16)},
		Body: []codegen.Stmt{
			codegen.Output(
				codegen.Binary(codegen.OpDiv, codegen.Var("a"), codegen.Var("b")),
				codegen.Binary(codegen.OpRem, codegen.Var("a"), codegen.Var("b")),
			),
		},
	})
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}

	out, err := Run(prog, "", []byte(`{"a": -7, "b": 2}`), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := decodeResult(t, out)
	tuple := res.Output.([]interface{})
	if tuple[0].(json.Number).String() != "-3" || tuple[1].(json.Number).String() != "-1" {
		t.Errorf("div/rem = %v, want [-3, -1] (truncate toward zero)", tuple)
	}
}

func TestAssertFailureAbortsInvocation(t *testing.T) {
	prog, err := codegen.Generate(&codegen.Circuit{
		Inputs:  []codegen.Param{{Name: "a", Type: isa.Leaf(isa.U(8))}},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []codegen.Stmt{
			codegen.Assert(codegen.Binary(codegen.OpGt, codegen.Var("a"), codegen.Const(100, isa.U(8))), "a must exceed 100"),
			codegen.Output(codegen.Var("a")),
		},
	})
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}

	if _, err := Run(prog, "", []byte(`{"a": 5}`), nil); err == nil {
		t.Fatal("expected assert failure, got nil error")
	}
}

func counterContract(t *testing.T) *isa.Program {
	t.Helper()
	prog, err := codegen.GenerateContract(&codegen.Contract{
		StorageNames:  []string{"count"},
		StorageFields: []isa.TypeTree{isa.Leaf(isa.U(64))},
		Methods: []codegen.Method{
			{
				Function: codegen.Function{
					Name:    "increment",
					Params:  []codegen.Param{{Name: "by", Type: isa.Leaf(isa.U(64))}},
					Results: []isa.ScalarType{isa.U(64)},
					Body: []codegen.Stmt{
						codegen.Assign("count", codegen.Binary(codegen.OpAdd, codegen.Var("count"), codegen.Var("by"))),
						codegen.Output(codegen.Var("count")),
					},
				},
				Mutable: true,
			},
		},
	})
	if err != nil {
		t.Fatalf("codegen.GenerateContract: %v", err)
	}
	return prog
}

func TestContractStorageRoundTrip(t *testing.T) {
	prog := counterContract(t)

	out, err := Run(prog, "increment", []byte(`{"by": 5}`), []byte(`{"count": 10}`))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := decodeResult(t, out)
	tuple := res.Output.([]interface{})
	if tuple[0].(json.Number).String() != "15" {
		t.Errorf("output = %v, want 15", tuple[0])
	}
	storage, ok := res.Storage.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected storage shape: %#v", res.Storage)
	}
	if storage["count"].(json.Number).String() != "15" {
		t.Errorf("storage.count = %v, want 15", storage["count"])
	}
}

// sumLoopCircuit builds `let mut s = 0u32; for i in 0..n { s = s + i }; s`.
func sumLoopCircuit(t *testing.T, n int) *isa.Program {
	t.Helper()
	prog, err := codegen.Generate(&codegen.Circuit{
		Outputs: []isa.ScalarType{isa.U(32)},
		Body: []codegen.Stmt{
			codegen.Let("s", codegen.Const(0, isa.U(32))),
			codegen.For("i", n, []codegen.Stmt{
				codegen.Assign("s", codegen.Binary(codegen.OpAdd, codegen.Var("s"), codegen.Var("i"))),
			}),
			codegen.Output(codegen.Var("s")),
		},
	})
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}
	return prog
}

func TestLoopUnrollingSumsRange(t *testing.T) {
	out, err := Run(sumLoopCircuit(t, 10), "", []byte(`{}`), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := decodeResult(t, out)
	tuple := res.Output.([]interface{})
	if tuple[0].(json.Number).String() != "45" {
		t.Errorf("sum = %v, want 45", tuple[0])
	}
}

// The constraint count of an unrolled loop is linear in the iteration
// count: count(N) - count(0) must equal N times the per-iteration cost,
// for any N, independent of the witness.
func TestLoopConstraintCountIsLinearInIterations(t *testing.T) {
	c0, err := CountConstraints(sumLoopCircuit(t, 0), "")
	if err != nil {
		t.Fatalf("CountConstraints(0): %v", err)
	}
	c1, err := CountConstraints(sumLoopCircuit(t, 1), "")
	if err != nil {
		t.Fatalf("CountConstraints(1): %v", err)
	}
	c10, err := CountConstraints(sumLoopCircuit(t, 10), "")
	if err != nil {
		t.Fatalf("CountConstraints(10): %v", err)
	}
	perIteration := c1 - c0
	if perIteration <= 0 {
		t.Fatalf("per-iteration constraint cost = %d, want > 0", perIteration)
	}
	if c10-c0 != 10*perIteration {
		t.Errorf("count(10)-count(0) = %d, want 10 * %d", c10-c0, perIteration)
	}
}

func predicatedBranchCircuit(t *testing.T) *isa.Program {
	t.Helper()
	prog, err := codegen.Generate(&codegen.Circuit{
		Inputs: []codegen.Param{
			{Name: "c", Type: isa.Leaf(isa.Boolean())},
			{Name: "x", Type: isa.Leaf(isa.U(8))},
		},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []codegen.Stmt{
			codegen.Let("out", codegen.Const(0, isa.U(8))),
			codegen.If(codegen.Var("c"),
				[]codegen.Stmt{codegen.Assign("out", codegen.Binary(codegen.OpAdd, codegen.Var("x"), codegen.Const(1, isa.U(8))))},
				[]codegen.Stmt{codegen.Assign("out", codegen.Binary(codegen.OpAdd, codegen.Var("x"), codegen.Const(2, isa.U(8))))},
			),
			codegen.Output(codegen.Var("out")),
		},
	})
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}
	return prog
}

func TestPredicatedBranchSelectsWrite(t *testing.T) {
	prog := predicatedBranchCircuit(t)
	cases := []struct {
		input string
		want  string
	}{
		{`{"c": true, "x": 5}`, "6"},
		{`{"c": false, "x": 5}`, "7"},
	}
	for _, tc := range cases {
		out, err := Run(prog, "", []byte(tc.input), nil)
		if err != nil {
			t.Fatalf("Run(%s): %v", tc.input, err)
		}
		res := decodeResult(t, out)
		tuple := res.Output.([]interface{})
		if got := tuple[0].(json.Number).String(); got != tc.want {
			t.Errorf("Run(%s) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

// Both branches of a predicated if satisfy the one circuit Setup
// compiled: proving the true arm and the false arm against the same
// keys must both verify.
func TestPredicatedBranchesSatisfySameCircuit(t *testing.T) {
	prog := predicatedBranchCircuit(t)
	keys, err := Setup(prog, "")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	for _, input := range []string{`{"c": true, "x": 5}`, `{"c": false, "x": 5}`} {
		pr, err := Prove(prog, "", keys, []byte(input), nil)
		if err != nil {
			t.Fatalf("Prove(%s): %v", input, err)
		}
		if err := Verify(keys, pr); err != nil {
			t.Errorf("Verify(%s): %v", input, err)
		}
	}
}

func TestMatchStatementRuns(t *testing.T) {
	prog, err := codegen.Generate(&codegen.Circuit{
		Inputs:  []codegen.Param{{Name: "x", Type: isa.Leaf(isa.U(8))}},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []codegen.Stmt{
			codegen.Let("out", codegen.Const(0, isa.U(8))),
			codegen.Match(codegen.Var("x"), []codegen.MatchCase{
				{Value: codegen.Const(1, isa.U(8)), Body: []codegen.Stmt{codegen.Assign("out", codegen.Const(10, isa.U(8)))}},
				{Value: codegen.Const(2, isa.U(8)), Body: []codegen.Stmt{codegen.Assign("out", codegen.Const(20, isa.U(8)))}},
				{Value: nil, Body: []codegen.Stmt{codegen.Assign("out", codegen.Const(99, isa.U(8)))}},
			}),
			codegen.Output(codegen.Var("out")),
		},
	})
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}

	cases := []struct {
		input string
		want  string
	}{
		{`{"x": 1}`, "10"},
		{`{"x": 2}`, "20"},
		{`{"x": 7}`, "99"},
	}
	for _, tc := range cases {
		out, err := Run(prog, "", []byte(tc.input), nil)
		if err != nil {
			t.Fatalf("Run(%s): %v", tc.input, err)
		}
		res := decodeResult(t, out)
		tuple := res.Output.([]interface{})
		if got := tuple[0].(json.Number).String(); got != tc.want {
			t.Errorf("Run(%s) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

// A function call allocates its frame past every caller local; the
// caller's own cells survive the call untouched.
func TestFunctionCallPreservesCallerFrame(t *testing.T) {
	prog, err := codegen.Generate(&codegen.Circuit{
		Inputs:  []codegen.Param{{Name: "a", Type: isa.Leaf(isa.U(8))}},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []codegen.Stmt{
			codegen.Let("k", codegen.Binary(codegen.OpAdd, codegen.Var("a"), codegen.Const(10, isa.U(8)))),
			codegen.Let("d", codegen.Call("double", codegen.Var("a"))),
			codegen.Output(codegen.Binary(codegen.OpAdd, codegen.Var("d"), codegen.Var("k"))),
		},
		Functions: []codegen.Function{
			{
				Name:    "double",
				Params:  []codegen.Param{{Name: "x", Type: isa.Leaf(isa.U(8))}},
				Results: []isa.ScalarType{isa.U(8)},
				Body: []codegen.Stmt{
					codegen.Return(codegen.Binary(codegen.OpAdd, codegen.Var("x"), codegen.Var("x"))),
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}

	out, err := Run(prog, "", []byte(`{"a": 3}`), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := decodeResult(t, out)
	tuple := res.Output.([]interface{})
	if tuple[0].(json.Number).String() != "19" {
		t.Errorf("double(3) + (3+10) = %v, want 19", tuple[0])
	}
}

// Corrupting the proof's serialized bytes must never verify: either the
// deserializer rejects the tampered point outright, or Verify fails.
func TestTamperedProofFailsVerification(t *testing.T) {
	prog := additionCircuit(t)
	keys, err := Setup(prog, "")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	pr, err := Prove(prog, "", keys, []byte(`{"a": 3, "b": 4}`), nil)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	var buf bytes.Buffer
	if _, err := pr.Proof.WriteTo(&buf); err != nil {
		t.Fatalf("serialize proof: %v", err)
	}
	raw := buf.Bytes()
	raw[len(raw)/2] ^= 0x01

	tampered := groth16.NewProof(ecc.BN254)
	if _, err := tampered.ReadFrom(bytes.NewReader(raw)); err != nil {
		return // rejected at decode time
	}
	if err := Verify(keys, &ProofResult{Proof: tampered, PublicWitness: pr.PublicWitness}); err == nil {
		t.Fatal("tampered proof verified")
	}
}

func TestContractConstraintCount(t *testing.T) {
	prog := counterContract(t)
	n, err := CountConstraints(prog, "increment")
	if err != nil {
		t.Fatalf("CountConstraints: %v", err)
	}
	if n <= 0 {
		t.Errorf("constraint count = %d, want > 0", n)
	}
}
