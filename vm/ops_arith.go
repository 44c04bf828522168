package vm

import (
	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
)

func (m *Machine) execBinaryArith(op isa.Opcode) error {
	operands, err := m.stack.popN(2, m.location)
	if err != nil {
		return err
	}
	a, b := operands[0], operands[1]
	var out gadget.Scalar
	switch op {
	case isa.OpAdd:
		out, err = gadget.Add(m.API, a, b)
	case isa.OpSub:
		out, err = gadget.Sub(m.API, a, b)
	case isa.OpMul:
		out, err = gadget.Mul(m.API, a, b)
	}
	if err != nil {
		return err
	}
	m.stack.push(out)
	return nil
}

func (m *Machine) execNeg() error {
	a, err := m.stack.pop(m.location)
	if err != nil {
		return err
	}
	out, err := gadget.Neg(m.API, a)
	if err != nil {
		return err
	}
	m.stack.push(out)
	return nil
}

func (m *Machine) execDivRem(op isa.Opcode) error {
	operands, err := m.stack.popN(2, m.location)
	if err != nil {
		return err
	}
	n, d := operands[0], operands[1]
	cond, err := m.condition.effective(m.API)
	if err != nil {
		return err
	}
	q, r, err := gadget.DivRem(m.API, n, d, cond)
	if err != nil {
		return err
	}
	if op == isa.OpDiv {
		m.stack.push(q)
	} else {
		m.stack.push(r)
	}
	return nil
}

func (m *Machine) execUnaryBool(f func(cs.API, gadget.Scalar) (gadget.Scalar, error)) error {
	a, err := m.stack.pop(m.location)
	if err != nil {
		return err
	}
	out, err := f(m.API, a)
	if err != nil {
		return err
	}
	m.stack.push(out)
	return nil
}

// execBinary2 pops two operands, applies a two-operand gadget, and
// pushes its result — the shared shape of boolean ops, bitwise ops, and
// comparisons.
func (m *Machine) execBinary2(f func(cs.API, gadget.Scalar, gadget.Scalar) (gadget.Scalar, error)) error {
	operands, err := m.stack.popN(2, m.location)
	if err != nil {
		return err
	}
	out, err := f(m.API, operands[0], operands[1])
	if err != nil {
		return err
	}
	m.stack.push(out)
	return nil
}

func (m *Machine) execBinaryBool(f func(cs.API, gadget.Scalar, gadget.Scalar) (gadget.Scalar, error)) error {
	return m.execBinary2(f)
}

func (m *Machine) execBinaryIntBit(f func(cs.API, gadget.Scalar, gadget.Scalar) (gadget.Scalar, error)) error {
	return m.execBinary2(f)
}

func (m *Machine) execCompare(f func(cs.API, gadget.Scalar, gadget.Scalar) (gadget.Scalar, error)) error {
	return m.execBinary2(f)
}

func (m *Machine) execCast(instr isa.Instruction) error {
	a, err := m.stack.pop(m.location)
	if err != nil {
		return err
	}
	out, err := gadget.Cast(m.API, a, instr.Type)
	if err != nil {
		return err
	}
	m.stack.push(out)
	return nil
}

func (m *Machine) execConditionalSelect() error {
	operands, err := m.stack.popN(3, m.location)
	if err != nil {
		return err
	}
	c, a, b := operands[0], operands[1], operands[2]
	out, err := gadget.ConditionalSelect(m.API, c, a, b)
	if err != nil {
		return err
	}
	m.stack.push(out)
	return nil
}
