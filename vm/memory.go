package vm

import (
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vmerr"
)

// dataMemory is the flat, address-indexed store Load/Store/LoadSequence/
// StoreSequence address. It grows on demand: the generator computes
// every address statically (or as a field-valued offset derived from
// constants), so an out-of-range address always indicates either a
// compiler bug or, for the *ByIndex family, a witness-supplied index the
// generator could not bound at compile time.
type dataMemory struct {
	cells []gadget.Scalar
}

// size is the high-water mark across every frame: one past the highest
// address any store has touched.
func (m *dataMemory) size() int { return len(m.cells) }

func (m *dataMemory) ensure(addr int) {
	if addr < len(m.cells) {
		return
	}
	grown := make([]gadget.Scalar, addr+1)
	copy(grown, m.cells)
	m.cells = grown
}

func (m *dataMemory) load(addr int, loc isa.Location) (gadget.Scalar, error) {
	if addr < 0 || addr >= len(m.cells) {
		return gadget.Scalar{}, vmerr.New(vmerr.IndexOutOfBounds, loc, "load at address %d (size %d)", addr, len(m.cells))
	}
	return m.cells[addr], nil
}

func (m *dataMemory) store(addr int, v gadget.Scalar, loc isa.Location) error {
	if addr < 0 {
		return vmerr.New(vmerr.IndexOutOfBounds, loc, "store at negative address %d", addr)
	}
	m.ensure(addr)
	m.cells[addr] = v
	return nil
}

func (m *dataMemory) loadSequence(addr, n int, loc isa.Location) ([]gadget.Scalar, error) {
	out := make([]gadget.Scalar, n)
	for i := 0; i < n; i++ {
		v, err := m.load(addr+i, loc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *dataMemory) storeSequence(addr int, vs []gadget.Scalar, loc isa.Location) error {
	for i, v := range vs {
		if err := m.store(addr+i, v, loc); err != nil {
			return err
		}
	}
	return nil
}
