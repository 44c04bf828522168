package vm

import (
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
)

func (m *Machine) execPush(instr isa.Instruction) error {
	v, err := gadget.Const(m.API, instr.Value.Int64(), instr.Type)
	if err != nil {
		return err
	}
	m.stack.push(v)
	return nil
}

func (m *Machine) execPop(instr isa.Instruction) error {
	_, err := m.stack.popN(instr.N, m.location)
	return err
}

func (m *Machine) execCopy(instr isa.Instruction) error {
	v, err := m.stack.peek(instr.N, m.location)
	if err != nil {
		return err
	}
	m.stack.push(v)
	return nil
}

// execSlice pops a length, start offset, and base address (in that
// order, base deepest) and pushes a single new Field address equal to
// base+start; the result is itself a valid *ByIndex address for the
// sliced sub-array. The length operand is consumed only for bounds
// bookkeeping at the generator level — the VM itself does not need it
// once the new base is computed.
func (m *Machine) execSlice(instr isa.Instruction) error {
	operands, err := m.stack.popN(3, m.location)
	if err != nil {
		return err
	}
	base, start := operands[0], operands[1]
	ns := m.API.Namespace("slice")
	sum, err := gadget.Add(ns, base, start)
	if err != nil {
		return err
	}
	m.stack.push(sum)
	return nil
}

func (m *Machine) execSwap() error {
	operands, err := m.stack.popN(2, m.location)
	if err != nil {
		return err
	}
	m.stack.push(operands[1])
	m.stack.push(operands[0])
	return nil
}
