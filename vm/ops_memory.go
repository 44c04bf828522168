package vm

import (
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vmerr"
)

func (m *Machine) execLoad(instr isa.Instruction) error {
	v, err := m.memory.load(m.frameBase+instr.Addr, m.location)
	if err != nil {
		return err
	}
	m.stack.push(v)
	return nil
}

// gatedStore writes v to addr selected against whatever addr already
// holds by the current effective condition: outside any If/Else this is
// an unconditional overwrite (the cheap path also covers a fresh address
// that has no old value to select against, e.g. a Let's initial store),
// and inside one it is `new = select(cond, computed, old)`, per §5's
// predication rule — both arms of an `if`/`else` always execute, only
// the write that survives is chosen by cond.
func (m *Machine) gatedStore(addr int, v gadget.Scalar) error {
	if !m.condition.active() {
		return m.memory.store(addr, v, m.location)
	}
	old, err := m.memory.load(addr, m.location)
	if err != nil {
		return err
	}
	cond, err := m.condition.effective(m.API)
	if err != nil {
		return err
	}
	gated, err := gadget.ConditionalSelect(m.API, cond, v, old)
	if err != nil {
		return err
	}
	return m.memory.store(addr, gated, m.location)
}

func (m *Machine) execStore(instr isa.Instruction) error {
	v, err := m.stack.pop(m.location)
	if err != nil {
		return err
	}
	return m.gatedStore(m.frameBase+instr.Addr, v)
}

func (m *Machine) execLoadSequence(instr isa.Instruction) error {
	vs, err := m.memory.loadSequence(m.frameBase, instr.N, m.location)
	if err != nil {
		return err
	}
	for _, v := range vs {
		m.stack.push(v)
	}
	return nil
}

func (m *Machine) execStoreSequence(instr isa.Instruction) error {
	vs, err := m.stack.popN(instr.N, m.location)
	if err != nil {
		return err
	}
	for i, v := range vs {
		if err := m.gatedStore(m.frameBase+i, v); err != nil {
			return err
		}
	}
	return nil
}

// resolveAddr reads a Field-typed address cell and resolves it to a
// concrete integer: both the Debug and Counting backends always expose
// a concrete value (field.Element never hides its witness), so dynamic
// indexing works for every run mode this VM actually exercises. A
// genuinely witness-only, non-constant index under the Proving backend
// would need an equality-multiplexer scan instead; that generalization
// is left for when a program actually needs it.
func (m *Machine) resolveAddr() (int, error) {
	addr, err := m.stack.pop(m.location)
	if err != nil {
		return 0, err
	}
	v, err := m.API.Value(addr.Wire)
	if err != nil {
		return 0, vmerr.Wrap(vmerr.IndexOutOfBounds, m.location, err, "could not resolve dynamic address")
	}
	return int(v.Int64()), nil
}

func (m *Machine) execLoadByIndex() error {
	addr, err := m.resolveAddr()
	if err != nil {
		return err
	}
	v, err := m.memory.load(m.frameBase+addr, m.location)
	if err != nil {
		return err
	}
	m.stack.push(v)
	return nil
}

// execStoreByIndex expects the value pushed before the address, so the
// address (the most recently computed place expression) is on top.
func (m *Machine) execStoreByIndex() error {
	addr, err := m.resolveAddr()
	if err != nil {
		return err
	}
	v, err := m.stack.pop(m.location)
	if err != nil {
		return err
	}
	return m.gatedStore(m.frameBase+addr, v)
}
