package vm

import (
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vmerr"
)

// RunMethod executes one contract method invocation: it loads the
// storage tuple into the memory cells the generator reserved for it
// (addresses [0, StorageSize)), feeds args through the same Input
// mechanism a bare circuit's parameters use, runs the method body, and —
// only when the method is declared mutable — commits whatever ended up
// in the storage cells back to the tree. This is the dispatch prologue
// and epilogue spec.md §4.5 describes for contract methods: Input args,
// Load storage tuple, run the body, Store mutated fields, Output return
// values (the Output half happens from inside the method body itself,
// emitted by codegen like any other circuit output).
func (m *Machine) RunMethod(method isa.Method, args []gadget.Scalar) ([]gadget.Scalar, error) {
	entry, ok := m.labels[method.Entry]
	if !ok {
		return nil, vmerr.New(vmerr.FrameCorruption, m.location, "contract method %q has no entry label %q", method.Name, method.Entry)
	}

	size := m.program.StorageSize()
	if m.Storage != nil && size > 0 {
		fields, err := m.Storage.Load(m.API, m.location, 0)
		if err != nil {
			return nil, err
		}
		for i, f := range fields {
			if err := m.memory.store(i, f, m.location); err != nil {
				return nil, err
			}
		}
	}

	m.inputs = args
	m.inputAt = 0

	outputs, err := m.Run(entry)
	if err != nil {
		return nil, err
	}

	if method.Mutable && m.Storage != nil && size > 0 {
		fields := make([]gadget.Scalar, size)
		for i := range fields {
			f, err := m.memory.load(i, m.location)
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		cond, err := m.condition.effective(m.API)
		if err != nil {
			return nil, err
		}
		if err := m.Storage.Store(m.API, m.location, 0, fields, cond); err != nil {
			return nil, err
		}
	}

	return outputs, nil
}
