package isa

import (
	"fmt"

	"github.com/google/uuid"
)

// ProgramKind distinguishes a bare circuit from a contract with storage
// and a method table.
type ProgramKind uint8

const (
	KindCircuit ProgramKind = iota
	KindContract
)

// Method describes one contract entry point.
type Method struct {
	Name    string
	Entry   string // bytecode label the method body starts at
	Input   TypeTree
	Output  TypeTree
	Mutable bool
}

// Program is the immutable artefact produced once by the bytecode
// generator and executed, possibly many times, by the VM.
type Program struct {
	// ID stably identifies one compiled artefact in memory: the key the
	// Proving CS key cache registers a circuit's setup keys under. It is
	// generated fresh by the bytecode generator and is not part of the
	// canonical wire encoding (Encode/DecodeProgram): DecodeProgram leaves
	// it as uuid.Nil, so a decoded program needs an ID assigned before it
	// is cached (zkrpc assigns one at registration; UnmarshalCache restores
	// the ID stored in its envelope).
	ID uuid.UUID

	Kind ProgramKind

	Input  TypeTree
	Output TypeTree

	// Contract only.
	StorageFields []TypeTree
	StorageNames  []string
	Methods       []Method

	Code []Instruction
}

// StorageSize returns the total number of memory cells the storage tuple
// occupies, used by the contract method prologue to size the Load/Store
// of the whole storage tuple.
func (p *Program) StorageSize() int {
	n := 0
	for _, f := range p.StorageFields {
		n += f.Size()
	}
	return n
}

func (p *Program) Method(name string) (Method, error) {
	for _, m := range p.Methods {
		if m.Name == name {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("isa: program has no method %q", name)
}

// Encode produces the canonical binary artefact: a header followed by the
// VLQ-encoded instruction stream.
func (p *Program) Encode() []byte {
	var buf []byte
	buf = append(buf, byte(p.Kind))
	buf = encodeTypeTree(buf, p.Input)
	buf = encodeTypeTree(buf, p.Output)
	if p.Kind == KindContract {
		buf = EncodeVLQ(buf, uint64(len(p.StorageFields)))
		for i, f := range p.StorageFields {
			buf = EncodeVLQ(buf, uint64(len(p.StorageNames[i])))
			buf = append(buf, p.StorageNames[i]...)
			buf = encodeTypeTree(buf, f)
		}
		buf = EncodeVLQ(buf, uint64(len(p.Methods)))
		for _, m := range p.Methods {
			buf = encodeString(buf, m.Name)
			buf = encodeString(buf, m.Entry)
			buf = encodeTypeTree(buf, m.Input)
			buf = encodeTypeTree(buf, m.Output)
			mutable := byte(0)
			if m.Mutable {
				mutable = 1
			}
			buf = append(buf, mutable)
		}
	}
	buf = EncodeVLQ(buf, uint64(len(p.Code)))
	for _, instr := range p.Code {
		buf = Encode(buf, instr)
	}
	return buf
}

// DecodeProgram is the inverse of Program.Encode.
func DecodeProgram(data []byte) (*Program, error) {
	if len(data) < 1 {
		return nil, ErrUnexpectedEOF
	}
	p := &Program{Kind: ProgramKind(data[0])}
	off := 1

	readType := func() (TypeTree, error) {
		t, n, err := decodeTypeTree(data[off:])
		off += n
		return t, err
	}
	readVLQ := func() (uint64, error) {
		v, n, err := DecodeVLQ(data[off:])
		off += n
		return v, err
	}
	readStr := func() (string, error) {
		n, err := readVLQ()
		if err != nil {
			return "", err
		}
		if uint64(len(data)-off) < n {
			return "", ErrUnexpectedEOF
		}
		s := string(data[off : off+int(n)])
		off += int(n)
		return s, nil
	}

	var err error
	if p.Input, err = readType(); err != nil {
		return nil, err
	}
	if p.Output, err = readType(); err != nil {
		return nil, err
	}
	if p.Kind == KindContract {
		nFields, err := readVLQ()
		if err != nil {
			return nil, err
		}
		for i := uint64(0); i < nFields; i++ {
			name, err := readStr()
			if err != nil {
				return nil, err
			}
			t, err := readType()
			if err != nil {
				return nil, err
			}
			p.StorageNames = append(p.StorageNames, name)
			p.StorageFields = append(p.StorageFields, t)
		}
		nMethods, err := readVLQ()
		if err != nil {
			return nil, err
		}
		for i := uint64(0); i < nMethods; i++ {
			var m Method
			if m.Name, err = readStr(); err != nil {
				return nil, err
			}
			if m.Entry, err = readStr(); err != nil {
				return nil, err
			}
			if m.Input, err = readType(); err != nil {
				return nil, err
			}
			if m.Output, err = readType(); err != nil {
				return nil, err
			}
			if len(data) < off+1 {
				return nil, ErrUnexpectedEOF
			}
			m.Mutable = data[off] == 1
			off++
			p.Methods = append(p.Methods, m)
		}
	}
	nInstr, err := readVLQ()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < nInstr; i++ {
		instr, n, err := Decode(data[off:])
		if err != nil {
			return nil, err
		}
		off += n
		p.Code = append(p.Code, instr)
	}
	return p, nil
}

func encodeString(buf []byte, s string) []byte {
	buf = EncodeVLQ(buf, uint64(len(s)))
	return append(buf, s...)
}

func encodeTypeTree(buf []byte, t TypeTree) []byte {
	buf = append(buf, byte(t.Kind))
	switch t.Kind {
	case TTLeaf:
		buf = encodeScalarType(buf, t.Leaf)
	case TTArray:
		buf = encodeTypeTree(buf, *t.Elem)
		buf = EncodeVLQ(buf, uint64(t.Len))
	case TTTuple:
		buf = EncodeVLQ(buf, uint64(len(t.Members)))
		for _, m := range t.Members {
			buf = encodeTypeTree(buf, m)
		}
	case TTStruct:
		buf = EncodeVLQ(buf, uint64(len(t.Members)))
		for i, m := range t.Members {
			buf = encodeString(buf, t.Names[i])
			buf = encodeTypeTree(buf, m)
		}
	case TTEnum:
		buf = encodeString(buf, t.EnumName)
		buf = EncodeVLQ(buf, uint64(len(t.EnumVariants)))
		for _, v := range t.EnumVariants {
			buf = encodeString(buf, v)
		}
	}
	return buf
}

func decodeTypeTree(data []byte) (TypeTree, int, error) {
	if len(data) < 1 {
		return TypeTree{}, 0, ErrUnexpectedEOF
	}
	kind := TypeTreeKind(data[0])
	off := 1
	switch kind {
	case TTLeaf:
		t, n, err := decodeScalarType(data[off:])
		off += n
		return Leaf(t), off, err
	case TTArray:
		elem, n, err := decodeTypeTree(data[off:])
		if err != nil {
			return TypeTree{}, 0, err
		}
		off += n
		ln, n, err := DecodeVLQ(data[off:])
		if err != nil {
			return TypeTree{}, 0, err
		}
		off += n
		return Array(elem, int(ln)), off, nil
	case TTTuple:
		count, n, err := DecodeVLQ(data[off:])
		if err != nil {
			return TypeTree{}, 0, err
		}
		off += n
		members := make([]TypeTree, 0, count)
		for i := uint64(0); i < count; i++ {
			m, n, err := decodeTypeTree(data[off:])
			if err != nil {
				return TypeTree{}, 0, err
			}
			off += n
			members = append(members, m)
		}
		return Tuple(members...), off, nil
	case TTStruct:
		count, n, err := DecodeVLQ(data[off:])
		if err != nil {
			return TypeTree{}, 0, err
		}
		off += n
		names := make([]string, 0, count)
		members := make([]TypeTree, 0, count)
		for i := uint64(0); i < count; i++ {
			nameLen, n, err := DecodeVLQ(data[off:])
			if err != nil {
				return TypeTree{}, 0, err
			}
			off += n
			name := string(data[off : off+int(nameLen)])
			off += int(nameLen)
			m, n, err := decodeTypeTree(data[off:])
			if err != nil {
				return TypeTree{}, 0, err
			}
			off += n
			names = append(names, name)
			members = append(members, m)
		}
		return Struct(names, members), off, nil
	case TTEnum:
		nameLen, n, err := DecodeVLQ(data[off:])
		if err != nil {
			return TypeTree{}, 0, err
		}
		off += n
		name := string(data[off : off+int(nameLen)])
		off += int(nameLen)
		count, n, err := DecodeVLQ(data[off:])
		if err != nil {
			return TypeTree{}, 0, err
		}
		off += n
		variants := make([]string, 0, count)
		for i := uint64(0); i < count; i++ {
			vLen, n, err := DecodeVLQ(data[off:])
			if err != nil {
				return TypeTree{}, 0, err
			}
			off += n
			variants = append(variants, string(data[off:off+int(vLen)]))
			off += int(vLen)
		}
		return Enum(name, variants), off, nil
	default:
		return TypeTree{}, 0, fmt.Errorf("isa: unknown type tree kind %d", kind)
	}
}
