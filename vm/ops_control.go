package vm

import (
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vmerr"
)

func (m *Machine) execIf() error {
	c, err := m.stack.pop(m.location)
	if err != nil {
		return err
	}
	m.condition.push(c)
	return nil
}

func (m *Machine) execElse() error {
	return m.condition.invertTop(m.API)
}

func (m *Machine) execEndIf() error {
	m.condition.pop()
	return nil
}

// execCall resolves instr.Label to the instruction index of the
// callee's body, moves the top instr.N stack cells into a fresh memory
// frame the callee's Load/Store addresses are relative to, and jumps.
func (m *Machine) execCall(pc int, instr isa.Instruction) (int, error) {
	entry, ok := m.labels[instr.Label]
	if !ok {
		return pc, vmerr.New(vmerr.FrameCorruption, m.location, "call to undefined label %q", instr.Label)
	}
	args, err := m.stack.popN(instr.N, m.location)
	if err != nil {
		return pc, err
	}
	// The callee's frame starts past every cell any frame has written so
	// far, so its Load/Store addresses can never alias the caller's
	// locals. Frames are not reclaimed on return; programs are bounded.
	newBase := m.memory.size()
	if err := m.memory.storeSequence(newBase, args, m.location); err != nil {
		return pc, err
	}

	m.calls.push(callFrame{returnIndex: pc + 1, frameBase: m.frameBase, stackDepth: m.stack.depth()})
	m.frameBase = newBase
	return entry, nil
}

// execReturn lifts instr.N result cells off the top of the stack,
// unwinds the call frame, and resumes at the caller's next instruction.
func (m *Machine) execReturn(pc int, instr isa.Instruction) (int, error) {
	results, err := m.stack.popN(instr.N, m.location)
	if err != nil {
		return pc, err
	}
	frame, ok := m.calls.pop()
	if !ok {
		// A Return with no matching Call unwinds the top-level
		// invocation: halt by stepping past the end of the program.
		for _, r := range results {
			m.stack.push(r)
		}
		return len(m.program.Code), nil
	}
	if m.stack.depth() < frame.stackDepth {
		return pc, vmerr.New(vmerr.FrameCorruption, m.location, "callee consumed %d caller stack cells", frame.stackDepth-m.stack.depth())
	}
	m.stack.truncate(frame.stackDepth)
	m.frameBase = frame.frameBase
	for _, r := range results {
		m.stack.push(r)
	}
	return frame.returnIndex, nil
}
