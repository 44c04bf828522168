package codegen

import (
	"fmt"

	"github.com/zinc-lang/zinc/isa"
)

// Context is the generator's running state while it walks one function,
// method, or circuit body: a symbol table mapping a local name to its
// memory address and declared type, a high-water mark for the next free
// address, and the accumulated instruction stream. It plays the same
// role the teacher's petrigen.Context plays for a Petri-net walk
// (tracking per-place/transition indices while templates render),
// rewritten to track per-variable memory offsets while instructions are
// appended directly instead of rendered through text/template.
type Context struct {
	locals map[string]int
	types  map[string]isa.TypeTree
	next   int // next free memory address in this frame

	code []isa.Instruction

	errs []error
}

func newContext() *Context {
	return &Context{locals: make(map[string]int), types: make(map[string]isa.TypeTree)}
}

func (c *Context) fail(format string, args ...interface{}) {
	c.errs = append(c.errs, fmt.Errorf("codegen: "+format, args...))
}

func (c *Context) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs[0]
}

// declare reserves len(t.Size()) contiguous memory cells for name at the
// context's current high-water mark and returns the base address.
func (c *Context) declare(name string, t isa.TypeTree) int {
	addr := c.next
	c.locals[name] = addr
	c.types[name] = t
	c.next += t.Size()
	return addr
}

// declareAt reserves name at a caller-chosen fixed address (used for
// storage fields, which must land at the same offsets the contract
// prologue pre-populates before the method body runs).
func (c *Context) declareAt(name string, t isa.TypeTree, addr int) {
	c.locals[name] = addr
	c.types[name] = t
	if addr+t.Size() > c.next {
		c.next = addr + t.Size()
	}
}

func (c *Context) lookup(name string) (int, isa.TypeTree, bool) {
	a, ok := c.locals[name]
	if !ok {
		return 0, isa.TypeTree{}, false
	}
	return a, c.types[name], true
}

func (c *Context) emit(instr isa.Instruction) {
	c.code = append(c.code, instr)
}

// fieldOffset resolves a struct member name to its (relative offset,
// type) pair within t. The offset is the sum of the sizes of every
// member declared before it, matching the field-major memory layout
// Size() assumes throughout package isa.
func fieldOffset(t isa.TypeTree, field string) (int, isa.TypeTree, bool) {
	if t.Kind != isa.TTStruct {
		return 0, isa.TypeTree{}, false
	}
	off := 0
	for i, name := range t.Names {
		if name == field {
			return off, t.Members[i], true
		}
		off += t.Members[i].Size()
	}
	return 0, isa.TypeTree{}, false
}

// elemType resolves the element type of an array TypeTree.
func elemType(t isa.TypeTree) (isa.TypeTree, bool) {
	if t.Kind != isa.TTArray {
		return isa.TypeTree{}, false
	}
	return *t.Elem, true
}
