// Package vm executes Zinc bytecode against a constraint-system backend,
// simultaneously producing an ordinary witness and the R1CS constraints
// that force any satisfying assignment to match it. Package gadget
// supplies the typed arithmetic; package isa supplies the instruction
// set; this package supplies the evaluation stack, data memory, call
// frames, condition stack, and the instruction dispatcher that ties them
// together (§4.3).
package vm

import (
	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/storage"
	"github.com/zinc-lang/zinc/vmerr"
)

// Machine is one program invocation's mutable state. It is never reused
// across invocations: Setup/Prove/Debug/Run/CountConstraints each
// construct a fresh Machine over a fresh constraint-system backend, matching the
// data model's "each VM invocation constructs a fresh constraint
// system" lifecycle rule.
type Machine struct {
	API cs.API

	program *isa.Program
	labels  map[string]int

	stack     evaluationStack
	memory    dataMemory
	calls     callStack
	condition conditionStack
	frameBase int

	Storage *storage.Tree // nil for Circuit programs

	// Transfers accumulates zksync::transfer records appended by the
	// corresponding library call, in append order (§5 ordering
	// guarantee).
	Transfers []storage.Transfer

	location isa.Location

	// inputs is the ordered input vector Input reads from in turn
	// (inputAt is the next unread entry); outputs collects the public
	// output wires Output appends.
	inputs  []gadget.Scalar
	inputAt int
	outputs []gadget.Scalar

	// DbgEnabled controls whether Dbg instructions format and emit
	// their message (true only in the `debug` run mode; always a
	// no-op under Counting/Proving per §4.5).
	DbgEnabled bool
	DbgOut     func(string)

	// MaxSteps bounds how many instructions Run will dispatch before
	// aborting with vmerr.StepLimitExceeded; zero means unlimited. Set
	// from config.Config.MaxSteps by the vm-level entry points, it
	// guards the witness-time interpreter against a runaway or
	// maliciously over-unrolled program — a Groth16 circuit's own step
	// count is already fixed by compilation, so this only ever fires
	// before a proof is attempted.
	MaxSteps int
}

// New builds a Machine ready to execute prog's code from instruction 0
// against backend api. inputs is the ordered witness vector Input reads
// from; st is the contract storage gadget (nil for a bare circuit).
func New(api cs.API, prog *isa.Program, inputs []gadget.Scalar, st *storage.Tree) *Machine {
	m := &Machine{
		API:     api,
		program: prog,
		labels:  functionLabels(prog.Code),
		Storage: st,
		inputs:  inputs,
	}
	return m
}

// functionLabels maps a function name to the instruction index its body
// starts at: the instruction immediately following the FunctionMarker
// that opens it. Call(label) resolves through this table.
func functionLabels(code []isa.Instruction) map[string]int {
	labels := make(map[string]int)
	for i, instr := range code {
		if instr.Op == isa.OpFunctionMarker {
			labels[instr.Str] = i + 1
		}
	}
	return labels
}

// Run executes the program's code starting at entry (an instruction
// index, typically 0 for a circuit's main or a resolved method entry
// for a contract) until it falls off the end of the instruction vector
// or a top-level Return unwinds past an empty call stack. It returns the
// values appended by Output, in order.
func (m *Machine) Run(entry int) ([]gadget.Scalar, error) {
	pc := entry
	steps := 0
	for pc < len(m.program.Code) {
		if m.MaxSteps > 0 && steps >= m.MaxSteps {
			return nil, m.errf(vmerr.StepLimitExceeded, "exceeded %d instruction steps", m.MaxSteps)
		}
		instr := m.program.Code[pc]
		next, err := m.step(pc, instr)
		if err != nil {
			return nil, err
		}
		pc = next
		steps++
	}
	return m.outputs, nil
}

// step dispatches one instruction and returns the next program counter.
func (m *Machine) step(pc int, instr isa.Instruction) (int, error) {
	switch instr.Op {
	case isa.OpNoOperation:
		return pc + 1, nil

	case isa.OpPush:
		return pc + 1, m.execPush(instr)
	case isa.OpPop:
		return pc + 1, m.execPop(instr)
	case isa.OpCopy:
		return pc + 1, m.execCopy(instr)
	case isa.OpSlice:
		return pc + 1, m.execSlice(instr)
	case isa.OpSwap:
		return pc + 1, m.execSwap()

	case isa.OpLoad:
		return pc + 1, m.execLoad(instr)
	case isa.OpStore:
		return pc + 1, m.execStore(instr)
	case isa.OpLoadSequence:
		return pc + 1, m.execLoadSequence(instr)
	case isa.OpStoreSequence:
		return pc + 1, m.execStoreSequence(instr)
	case isa.OpLoadByIndex:
		return pc + 1, m.execLoadByIndex()
	case isa.OpStoreByIndex:
		return pc + 1, m.execStoreByIndex()

	case isa.OpAdd, isa.OpSub, isa.OpMul:
		return pc + 1, m.execBinaryArith(instr.Op)
	case isa.OpDiv, isa.OpRem:
		return pc + 1, m.execDivRem(instr.Op)
	case isa.OpNeg:
		return pc + 1, m.execNeg()

	case isa.OpNot:
		return pc + 1, m.execUnaryBool(gadget.Not)
	case isa.OpAnd:
		return pc + 1, m.execBinaryBool(gadget.And)
	case isa.OpOr:
		return pc + 1, m.execBinaryBool(gadget.Or)
	case isa.OpXor:
		return pc + 1, m.execBinaryBool(gadget.Xor)

	case isa.OpBitAnd:
		return pc + 1, m.execBinaryIntBit(gadget.BitwiseAnd)
	case isa.OpBitOr:
		return pc + 1, m.execBinaryIntBit(gadget.BitwiseOr)
	case isa.OpBitXor:
		return pc + 1, m.execBinaryIntBit(gadget.BitwiseXor)

	case isa.OpLt:
		return pc + 1, m.execCompare(gadget.Lt)
	case isa.OpLe:
		return pc + 1, m.execCompare(gadget.Le)
	case isa.OpEq:
		return pc + 1, m.execCompare(gadget.Eq)
	case isa.OpNe:
		return pc + 1, m.execCompare(gadget.Ne)
	case isa.OpGe:
		return pc + 1, m.execCompare(gadget.Ge)
	case isa.OpGt:
		return pc + 1, m.execCompare(gadget.Gt)

	case isa.OpCast:
		return pc + 1, m.execCast(instr)
	case isa.OpConditionalSelect:
		return pc + 1, m.execConditionalSelect()

	case isa.OpIf:
		return pc + 1, m.execIf()
	case isa.OpElse:
		return pc + 1, m.execElse()
	case isa.OpEndIf:
		return pc + 1, m.execEndIf()

	case isa.OpLoopBegin, isa.OpLoopEnd:
		// Unrolling happens entirely at codegen time (§4.5): the body is
		// already replicated N times in the instruction stream, so the
		// VM treats these as no-op bracket markers.
		return pc + 1, nil

	case isa.OpCall:
		return m.execCall(pc, instr)
	case isa.OpReturn:
		return m.execReturn(pc, instr)

	case isa.OpFileMarker:
		m.location.File = instr.Str
		return pc + 1, nil
	case isa.OpFunctionMarker:
		m.location.Function = instr.Str
		return pc + 1, nil
	case isa.OpLineMarker:
		m.location.Line = instr.Int
		return pc + 1, nil
	case isa.OpColumnMarker:
		m.location.Column = instr.Int
		return pc + 1, nil

	case isa.OpCallLibrary:
		return pc + 1, m.execCallLibrary(instr)

	case isa.OpInput:
		return pc + 1, m.execInput(instr)
	case isa.OpOutput:
		return pc + 1, m.execOutput()

	case isa.OpAssert:
		return pc + 1, m.execAssert(instr)
	case isa.OpDbg:
		return pc + 1, m.execDbg(instr)

	default:
		return pc, vmerr.New(vmerr.UnknownInstruction, m.location, "opcode %s", instr.Op)
	}
}

func (m *Machine) errf(kind vmerr.Kind, format string, args ...interface{}) error {
	return vmerr.New(kind, m.location, format, args...)
}
