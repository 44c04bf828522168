package cs

import "fmt"

// ConstraintKind identifies the shape of a recorded constraint, grounded
// on the same small vocabulary the in-circuit gadgets actually emit.
type ConstraintKind int

const (
	KindEqual ConstraintKind = iota
	KindBoolean
	KindLessOrEqual
)

func (k ConstraintKind) String() string {
	switch k {
	case KindEqual:
		return "=="
	case KindBoolean:
		return "bool"
	case KindLessOrEqual:
		return "<="
	default:
		return "?"
	}
}

// Constraint is one recorded R1CS-shaped relation, kept by the Debug
// backend for diagnostics and discarded (only counted) by the Counting
// backend.
type Constraint struct {
	Kind      ConstraintKind
	Namespace string
	Left      string // debug label of the left wire
	Right     string // debug label of the right wire, "" for Boolean
	Satisfied bool
}

func (c Constraint) String() string {
	switch c.Kind {
	case KindBoolean:
		return fmt.Sprintf("[%s] bool(%s)", c.Namespace, c.Left)
	default:
		return fmt.Sprintf("[%s] %s %s %s", c.Namespace, c.Left, c.Kind, c.Right)
	}
}

// Namer keeps namespaces unique siblings at each nesting level by
// suffixing repeat uses of the same name with a sequence counter: the
// first "add" stays "add", the next becomes "add#1", and so on. Gadgets
// therefore reuse their natural names freely while every wire label in a
// diagnostic still identifies exactly one gadget invocation.
type Namer struct {
	prefix string
	seen   map[string]int
}

func newNamer(prefix string) *Namer {
	return &Namer{prefix: prefix, seen: make(map[string]int)}
}

func (n *Namer) child(name string) string {
	seq := n.seen[name]
	n.seen[name]++
	if seq > 0 {
		name = fmt.Sprintf("%s#%d", name, seq)
	}
	if n.prefix == "" {
		return name
	}
	return n.prefix + "/" + name
}
