package vm

import (
	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
)

// conditionStack implements predication (§5 of the data model): the
// effective condition gating every write is the conjunction of every
// entry currently pushed. `if c {a} else {b}` pushes c before the `a`
// arm, flips the top entry in place at Else, and pops at EndIf — both
// arms always execute, only their writes are selected by the effective
// condition.
type conditionStack struct {
	entries []gadget.Scalar
}

func (c *conditionStack) push(cond gadget.Scalar) { c.entries = append(c.entries, cond) }

func (c *conditionStack) invertTop(api cs.API) error {
	if len(c.entries) == 0 {
		return nil
	}
	top := c.entries[len(c.entries)-1]
	inv, err := gadget.Not(api, top)
	if err != nil {
		return err
	}
	c.entries[len(c.entries)-1] = inv
	return nil
}

func (c *conditionStack) pop() {
	if len(c.entries) == 0 {
		return
	}
	c.entries = c.entries[:len(c.entries)-1]
}

// active reports whether any If/Else is currently open, i.e. whether
// effective can return something other than the constant `true`.
func (c *conditionStack) active() bool {
	return len(c.entries) > 0
}

// effective returns the conjunction of every active entry, or the
// constant `true` when no condition is active.
func (c *conditionStack) effective(api cs.API) (gadget.Scalar, error) {
	if len(c.entries) == 0 {
		return gadget.Const(api, 1, isa.Boolean())
	}
	acc := c.entries[0]
	for _, e := range c.entries[1:] {
		next, err := gadget.And(api, acc, e)
		if err != nil {
			return gadget.Scalar{}, err
		}
		acc = next
	}
	return acc, nil
}
