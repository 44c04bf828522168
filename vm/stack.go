package vm

import (
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vmerr"
)

// evaluationStack is the LIFO of cells the data model calls the
// evaluation stack: operands and results of pure instructions. A cell
// doubling as a memory address is just a Field-typed Scalar, since Field
// already carries no range constraint (the "unchecked field element"
// the data model describes).
type evaluationStack struct {
	cells []gadget.Scalar
}

func (s *evaluationStack) push(c gadget.Scalar) { s.cells = append(s.cells, c) }

func (s *evaluationStack) pop(loc isa.Location) (gadget.Scalar, error) {
	if len(s.cells) == 0 {
		return gadget.Scalar{}, vmerr.New(vmerr.StackUnderflow, loc, "pop from empty evaluation stack")
	}
	c := s.cells[len(s.cells)-1]
	s.cells = s.cells[:len(s.cells)-1]
	return c, nil
}

func (s *evaluationStack) popN(n int, loc isa.Location) ([]gadget.Scalar, error) {
	if len(s.cells) < n {
		return nil, vmerr.New(vmerr.StackUnderflow, loc, "need %d operands, have %d", n, len(s.cells))
	}
	out := make([]gadget.Scalar, n)
	copy(out, s.cells[len(s.cells)-n:])
	s.cells = s.cells[:len(s.cells)-n]
	return out, nil
}

// peek returns the cell `offset` entries from the top without popping
// (offset 0 is the top), for Copy.
func (s *evaluationStack) peek(offset int, loc isa.Location) (gadget.Scalar, error) {
	idx := len(s.cells) - 1 - offset
	if idx < 0 || idx >= len(s.cells) {
		return gadget.Scalar{}, vmerr.New(vmerr.StackUnderflow, loc, "copy offset %d out of range (depth %d)", offset, len(s.cells))
	}
	return s.cells[idx], nil
}

func (s *evaluationStack) depth() int { return len(s.cells) }

// truncate drops the stack back to the given depth, used when a call
// frame unwinds.
func (s *evaluationStack) truncate(depth int) { s.cells = s.cells[:depth] }
