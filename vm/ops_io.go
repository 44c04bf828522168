package vm

import (
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vmerr"
)

// execInput pushes the next witness value from the invocation's input
// vector. Inputs have no address operand: the generator emits one Input
// per input parameter, in declaration order, so reading them is purely
// sequential.
func (m *Machine) execInput(instr isa.Instruction) error {
	if m.inputAt >= len(m.inputs) {
		return vmerr.New(vmerr.IndexOutOfBounds, m.location, "input %d requested, only %d provided", m.inputAt, len(m.inputs))
	}
	v := m.inputs[m.inputAt]
	m.inputAt++
	m.stack.push(v)
	return nil
}

// execOutput pops one value and appends it to the invocation's public
// output vector, in call order.
func (m *Machine) execOutput() error {
	v, err := m.stack.pop(m.location)
	if err != nil {
		return err
	}
	m.outputs = append(m.outputs, v)
	return nil
}
