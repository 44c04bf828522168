package isa

import (
	"strings"
	"testing"
)

func TestAssemblyRendersOperands(t *testing.T) {
	cases := []struct {
		instr Instruction
		want  string
	}{
		{Instruction{Op: OpPush, Value: FieldFromInt64(7), Type: U(8)}, "push 7 u8"},
		{Instruction{Op: OpLoad, Addr: 3}, "load 3"},
		{Instruction{Op: OpCast, Type: Field()}, "cast field"},
		{Instruction{Op: OpLoopBegin, N: 10}, "loop_begin 10"},
		{Instruction{Op: OpCall, Label: "sum", N: 2}, "call @sum 2"},
		{Instruction{Op: OpReturn, N: 1}, "return 1"},
		{Instruction{Op: OpAssert, Str: "bad"}, `assert "bad"`},
		{Instruction{Op: OpAdd}, "add"},
	}
	for _, tc := range cases {
		if got := Assembly(tc.instr); got != tc.want {
			t.Errorf("Assembly(%v) = %q, want %q", tc.instr.Op, got, tc.want)
		}
	}
}

func TestDisassembleIndentsControlFlow(t *testing.T) {
	code := []Instruction{
		{Op: OpPush, Value: FieldFromInt64(1), Type: Boolean()},
		{Op: OpIf},
		{Op: OpPush, Value: FieldFromInt64(2), Type: U(8)},
		{Op: OpElse},
		{Op: OpPush, Value: FieldFromInt64(3), Type: U(8)},
		{Op: OpEndIf},
	}
	text := Disassemble(code)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != len(code) {
		t.Fatalf("line count = %d, want %d", len(lines), len(code))
	}
	// The bodies of both arms are indented one level; the brackets are not.
	if !strings.HasPrefix(lines[2], "  push") || !strings.HasPrefix(lines[4], "  push") {
		t.Errorf("arm bodies not indented:\n%s", text)
	}
	if strings.HasPrefix(lines[1], " ") || strings.HasPrefix(lines[5], " ") {
		t.Errorf("if/end_if brackets should not be indented:\n%s", text)
	}
}
