package isa

import "fmt"

// Encode writes the canonical binary form of a single instruction: one
// opcode byte followed by VLQ-encoded operands whose shape depends on the
// opcode.
func Encode(buf []byte, instr Instruction) []byte {
	buf = append(buf, byte(instr.Op))
	switch instr.Op {
	case OpPush:
		buf = EncodeSignedVLQ(buf, instr.Value.Int64())
		buf = encodeScalarType(buf, instr.Type)
	case OpPop, OpCopy, OpSlice, OpLoadSequence, OpStoreSequence:
		buf = EncodeVLQ(buf, uint64(instr.N))
	case OpLoad, OpStore:
		buf = EncodeVLQ(buf, uint64(instr.Addr))
	case OpCast:
		buf = encodeScalarType(buf, instr.Type)
	case OpLoopBegin:
		buf = EncodeVLQ(buf, uint64(instr.N))
	case OpCall:
		buf = EncodeVLQ(buf, uint64(len(instr.Label)))
		buf = append(buf, instr.Label...)
		buf = EncodeVLQ(buf, uint64(instr.N))
	case OpReturn:
		buf = EncodeVLQ(buf, uint64(instr.N))
	case OpFileMarker:
		buf = EncodeVLQ(buf, uint64(len(instr.Str)))
		buf = append(buf, instr.Str...)
	case OpFunctionMarker:
		buf = EncodeVLQ(buf, uint64(len(instr.Str)))
		buf = append(buf, instr.Str...)
	case OpLineMarker, OpColumnMarker:
		buf = EncodeVLQ(buf, uint64(instr.Int))
	case OpCallLibrary:
		buf = append(buf, byte(instr.Lib))
		buf = EncodeVLQ(buf, uint64(instr.N))
		buf = EncodeVLQ(buf, uint64(instr.ArgCount)) // output_size
	case OpAssert:
		buf = EncodeVLQ(buf, uint64(len(instr.Str)))
		buf = append(buf, instr.Str...)
	case OpDbg:
		buf = EncodeVLQ(buf, uint64(len(instr.Str)))
		buf = append(buf, instr.Str...)
		buf = EncodeVLQ(buf, uint64(instr.ArgCount))
	case OpLoadByIndex, OpStoreByIndex:
		// address is computed on the stack; no operand.
	default:
		// NoOperation, Swap, arithmetic/boolean/comparison/ConditionalSelect,
		// If/Else/EndIf, LoopEnd, Input, Output: no operands.
	}
	return buf
}

func encodeScalarType(buf []byte, t ScalarType) []byte {
	buf = append(buf, byte(t.Kind))
	if t.Kind == KindInteger {
		sign := byte(0)
		if t.Signed {
			sign = 1
		}
		buf = append(buf, sign)
		buf = EncodeVLQ(buf, uint64(t.BitWidth))
	}
	return buf
}

func decodeScalarType(data []byte) (ScalarType, int, error) {
	if len(data) < 1 {
		return ScalarType{}, 0, ErrUnexpectedEOF
	}
	kind := ScalarKind(data[0])
	off := 1
	switch kind {
	case KindField:
		return Field(), off, nil
	case KindBoolean:
		return Boolean(), off, nil
	case KindInteger:
		if len(data) < off+1 {
			return ScalarType{}, 0, ErrUnexpectedEOF
		}
		signed := data[off] == 1
		off++
		bw, n, err := DecodeVLQ(data[off:])
		if err != nil {
			return ScalarType{}, 0, err
		}
		off += n
		return Integer(signed, int(bw)), off, nil
	default:
		return ScalarType{}, 0, fmt.Errorf("isa: unknown scalar kind %d", kind)
	}
}

// Decode reads a single instruction from the front of data, returning the
// instruction and the number of bytes consumed.
func Decode(data []byte) (Instruction, int, error) {
	if len(data) < 1 {
		return Instruction{}, 0, ErrUnexpectedEOF
	}
	op := Opcode(data[0])
	if op >= opcodeCount {
		return Instruction{}, 0, fmt.Errorf("isa: unknown opcode %d", data[0])
	}
	off := 1
	instr := Instruction{Op: op}

	readVLQ := func() (uint64, error) {
		v, n, err := DecodeVLQ(data[off:])
		if err != nil {
			return 0, err
		}
		off += n
		return v, nil
	}
	readSVLQ := func() (int64, error) {
		v, n, err := DecodeSignedVLQ(data[off:])
		if err != nil {
			return 0, err
		}
		off += n
		return v, nil
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

	switch op {
	case OpPush:
		v, err := readSVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.Value = FieldFromInt64(v)
		t, n, err := decodeScalarType(data[off:])
		if err != nil {
			return Instruction{}, 0, err
		}
		off += n
		instr.Type = t
	case OpPop, OpCopy, OpSlice, OpLoadSequence, OpStoreSequence:
		v, err := readVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.N = int(v)
	case OpLoad, OpStore:
		v, err := readVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.Addr = int(v)
	case OpCast:
		t, n, err := decodeScalarType(data[off:])
		if err != nil {
			return Instruction{}, 0, err
		}
		off += n
		instr.Type = t
	case OpLoopBegin:
		v, err := readVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.N = int(v)
	case OpCall:
		s, err := readStr()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.Label = s
		v, err := readVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.N = int(v)
	case OpReturn:
		v, err := readVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.N = int(v)
	case OpFileMarker, OpFunctionMarker:
		s, err := readStr()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.Str = s
	case OpLineMarker, OpColumnMarker:
		v, err := readVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.Int = int(v)
	case OpCallLibrary:
		if len(data) < off+1 {
			return Instruction{}, 0, ErrUnexpectedEOF
		}
		instr.Lib = LibraryID(data[off])
		off++
		v, err := readVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.N = int(v)
		v2, err := readVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.ArgCount = int(v2)
	case OpAssert:
		s, err := readStr()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.Str = s
	case OpDbg:
		s, err := readStr()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.Str = s
		v, err := readVLQ()
		if err != nil {
			return Instruction{}, 0, err
		}
		instr.ArgCount = int(v)
	}
	return instr, off, nil
}

// DecodeAll decodes the whole instruction stream, as used by the VM when
// loading a program body and by the codec round-trip test.
func DecodeAll(data []byte) ([]Instruction, error) {
	var out []Instruction
	for len(data) > 0 {
		instr, n, err := Decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, instr)
		data = data[n:]
	}
	return out, nil
}

// EncodeAll is the inverse of DecodeAll.
func EncodeAll(instrs []Instruction) []byte {
	var buf []byte
	for _, instr := range instrs {
		buf = Encode(buf, instr)
	}
	return buf
}
