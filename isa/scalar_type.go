package isa

import "fmt"

// ScalarType is one of Field, Boolean, or a signed/unsigned Integer of a
// declared bit length in [1, 248], per the data model in the scalar type
// table.
type ScalarType struct {
	Kind     ScalarKind
	Signed   bool // only meaningful when Kind == KindInteger
	BitWidth int  // only meaningful when Kind == KindInteger
}

type ScalarKind uint8

const (
	KindField ScalarKind = iota
	KindBoolean
	KindInteger
)

// Canonical constructors.

func Field() ScalarType   { return ScalarType{Kind: KindField} }
func Boolean() ScalarType { return ScalarType{Kind: KindBoolean} }

func Integer(signed bool, bitWidth int) ScalarType {
	return ScalarType{Kind: KindInteger, Signed: signed, BitWidth: bitWidth}
}

func U(bits int) ScalarType { return Integer(false, bits) }
func I(bits int) ScalarType { return Integer(true, bits) }

// BitLength returns the number of bits a value of this type is
// range-constrained to. Field is unconstrained and reports the full field
// capacity (254 bits for BN254) for gadgets that need an upper bound.
func (t ScalarType) BitLength() int {
	switch t.Kind {
	case KindBoolean:
		return 1
	case KindInteger:
		return t.BitWidth
	default:
		return 254
	}
}

func (t ScalarType) Equal(o ScalarType) bool {
	return t.Kind == o.Kind && t.Signed == o.Signed && t.BitWidth == o.BitWidth
}

// String renders the canonical form used by the assembly printer and the
// witness JSON codec's type tree ("field", "bool", "u8".."u248",
// "i8".."i248").
func (t ScalarType) String() string {
	switch t.Kind {
	case KindField:
		return "field"
	case KindBoolean:
		return "bool"
	case KindInteger:
		if t.Signed {
			return fmt.Sprintf("i%d", t.BitWidth)
		}
		return fmt.Sprintf("u%d", t.BitWidth)
	default:
		return "?"
	}
}

// Validate enforces the [1, 248] bit-length invariant on integer types.
func (t ScalarType) Validate() error {
	if t.Kind != KindInteger {
		return nil
	}
	if t.BitWidth < 1 || t.BitWidth > 248 {
		return fmt.Errorf("isa: integer bit length %d out of range [1, 248]", t.BitWidth)
	}
	return nil
}
