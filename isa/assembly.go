package isa

import (
	"fmt"
	"strings"
)

// Assembly renders a human-readable assembly-language form of a single
// instruction, e.g. "push 7 u8", "call @sum 2", "load_idx".
func Assembly(instr Instruction) string {
	switch instr.Op {
	case OpPush:
		return fmt.Sprintf("push %d %s", instr.Value.Int64(), instr.Type)
	case OpPop, OpCopy, OpSlice, OpLoadSequence, OpStoreSequence:
		return fmt.Sprintf("%s %d", instr.Op, instr.N)
	case OpLoad, OpStore:
		return fmt.Sprintf("%s %d", instr.Op, instr.Addr)
	case OpCast:
		return fmt.Sprintf("cast %s", instr.Type)
	case OpLoopBegin:
		return fmt.Sprintf("loop_begin %d", instr.N)
	case OpCall:
		return fmt.Sprintf("call @%s %d", instr.Label, instr.N)
	case OpReturn:
		return fmt.Sprintf("return %d", instr.N)
	case OpFileMarker:
		return fmt.Sprintf("file %q", instr.Str)
	case OpFunctionMarker:
		return fmt.Sprintf("function %q", instr.Str)
	case OpLineMarker:
		return fmt.Sprintf("line %d", instr.Int)
	case OpColumnMarker:
		return fmt.Sprintf("column %d", instr.Int)
	case OpCallLibrary:
		return fmt.Sprintf("call_library %s %d %d", instr.Lib, instr.N, instr.ArgCount)
	case OpAssert:
		return fmt.Sprintf("assert %q", instr.Str)
	case OpDbg:
		return fmt.Sprintf("dbg %q %d", instr.Str, instr.ArgCount)
	default:
		return instr.Op.String()
	}
}

// Disassemble renders an entire instruction stream as indented assembly
// text, nesting If/Else/EndIf and LoopBegin/LoopEnd bodies for
// readability; the VM itself never relies on indentation, only on the
// paired control-flow opcodes.
func Disassemble(instrs []Instruction) string {
	var sb strings.Builder
	depth := 0
	for _, instr := range instrs {
		switch instr.Op {
		case OpElse, OpEndIf, OpLoopEnd:
			if depth > 0 {
				depth--
			}
		}
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(Assembly(instr))
		sb.WriteByte('\n')
		switch instr.Op {
		case OpIf, OpElse, OpLoopBegin:
			depth++
		}
	}
	return sb.String()
}
