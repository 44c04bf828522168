package isa

import "fmt"

// TypeTreeKind distinguishes the leaf and compound kinds a program's
// input/output/storage signature can be built from.
type TypeTreeKind uint8

const (
	TTLeaf TypeTreeKind = iota
	TTArray
	TTTuple
	TTStruct
	TTEnum
)

// TypeTree is the canonical encoding of a signature's type: either a
// ScalarType leaf, or one of Array(elem, len) / Tuple([...]) /
// Struct([(name, type)...]) / Enum(name, [variants]).
type TypeTree struct {
	Kind TypeTreeKind

	Leaf ScalarType // TTLeaf

	Elem    *TypeTree // TTArray
	Len     int       // TTArray
	Members []TypeTree
	Names   []string // parallel to Members for TTStruct

	EnumName     string
	EnumVariants []string
}

func Leaf(t ScalarType) TypeTree { return TypeTree{Kind: TTLeaf, Leaf: t} }

func Array(elem TypeTree, length int) TypeTree {
	return TypeTree{Kind: TTArray, Elem: &elem, Len: length}
}

func Tuple(members ...TypeTree) TypeTree {
	return TypeTree{Kind: TTTuple, Members: members}
}

func Struct(names []string, members []TypeTree) TypeTree {
	return TypeTree{Kind: TTStruct, Names: names, Members: members}
}

func Enum(name string, variants []string) TypeTree {
	return TypeTree{Kind: TTEnum, EnumName: name, EnumVariants: variants}
}

// Size returns the number of contiguous field-major memory cells a value
// of this type occupies. Enum values are laid out as a single Field
// discriminant cell.
func (t TypeTree) Size() int {
	switch t.Kind {
	case TTLeaf:
		return 1
	case TTArray:
		return t.Elem.Size() * t.Len
	case TTTuple:
		n := 0
		for _, m := range t.Members {
			n += m.Size()
		}
		return n
	case TTStruct:
		n := 0
		for _, m := range t.Members {
			n += m.Size()
		}
		return n
	case TTEnum:
		return 1
	default:
		return 0
	}
}

// LeafTypes flattens t into the ordered list of scalar types its
// field-major memory layout occupies, one entry per cell — the same
// order Size's cell count and the generator's Load/Store addressing
// agree on. An Enum contributes a single Field-typed cell (its
// discriminant). Used by the witness codec to know, cell by cell, how to
// parse or render a JSON value against this signature.
func (t TypeTree) LeafTypes() []ScalarType {
	var out []ScalarType
	t.appendLeafTypes(&out)
	return out
}

func (t TypeTree) appendLeafTypes(out *[]ScalarType) {
	switch t.Kind {
	case TTLeaf:
		*out = append(*out, t.Leaf)
	case TTArray:
		for i := 0; i < t.Len; i++ {
			t.Elem.appendLeafTypes(out)
		}
	case TTTuple, TTStruct:
		for _, m := range t.Members {
			m.appendLeafTypes(out)
		}
	case TTEnum:
		*out = append(*out, Field())
	}
}

func (t TypeTree) String() string {
	switch t.Kind {
	case TTLeaf:
		return t.Leaf.String()
	case TTArray:
		return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Len)
	case TTTuple:
		s := "("
		for i, m := range t.Members {
			if i > 0 {
				s += ", "
			}
			s += m.String()
		}
		return s + ")"
	case TTStruct:
		s := "struct {"
		for i, m := range t.Members {
			if i > 0 {
				s += ", "
			}
			s += t.Names[i] + ": " + m.String()
		}
		return s + "}"
	case TTEnum:
		return "enum " + t.EnumName
	default:
		return "?"
	}
}
