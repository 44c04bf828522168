package vm

import (
	"fmt"

	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
)

// execAssert pops one boolean and enforces `not(cond) or b`, under
// instr.Str as the failure message: cond is the enclosing branch's
// effective condition, so a guarded-off assert is vacuously satisfied
// and never fires (§4.5's "assert/require within a predicated block are
// automatically gated").
func (m *Machine) execAssert(instr isa.Instruction) error {
	b, err := m.stack.pop(m.location)
	if err != nil {
		return err
	}
	cond, err := m.condition.effective(m.API)
	if err != nil {
		return err
	}
	notCond, err := gadget.Not(m.API, cond)
	if err != nil {
		return err
	}
	gated, err := gadget.Or(m.API, notCond, b)
	if err != nil {
		return err
	}
	return gadget.Assert(m.API, gated, instr.Str)
}

// execDbg pops instr.ArgCount values and, only when run in debug mode,
// formats instr.Str with their concrete values and emits it through
// DbgOut. Under every other run mode this is a pure no-op: dbg! has no
// runtime effect outside the debug invocation. The generator compiles
// each argument expression but does not check the format string's verbs
// against the arguments' count or types.
func (m *Machine) execDbg(instr isa.Instruction) error {
	args, err := m.stack.popN(instr.ArgCount, m.location)
	if err != nil {
		return err
	}
	if !m.DbgEnabled || m.DbgOut == nil {
		return nil
	}
	vals := make([]interface{}, len(args))
	for i, a := range args {
		v, err := m.API.Value(a.Wire)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	m.DbgOut(fmt.Sprintf(instr.Str, vals...))
	return nil
}
