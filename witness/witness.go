// Package witness codecs the human-readable JSON value tree of spec.md
// §6 ("Witness / public-input JSON") to and from the ordered list of
// typed scalars the VM's Input instructions read and Output instructions
// append to. It is the boundary between an external caller (a CLI, a
// contract RPC handler) and the flat witness vector isa.TypeTree signs.
//
// Integers may appear in decimal or "0x…" hex, per spec.md §6; both
// forms are parsed with github.com/holiman/uint256 rather than
// math/big.Int's own parser so that u128/u248-class values close to the
// field's bit capacity round-trip exactly, matching how
// tokenmodel/guard/eval.go in the example pack parses oversized
// blockchain integers.
package witness

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/field"
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
)

// Flatten decodes a JSON value tree matching sig into the ordered,
// range-checked list of typed scalars the generator's Input instructions
// expect: one scalar per leaf of sig's field-major layout (isa.TypeTree
// .LeafTypes' order).
func Flatten(api cs.API, sig isa.TypeTree, data []byte) ([]gadget.Scalar, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("witness: invalid JSON: %w", err)
	}
	var out []gadget.Scalar
	if err := flattenValue(api, sig, raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenValue(api cs.API, t isa.TypeTree, v interface{}, out *[]gadget.Scalar) error {
	switch t.Kind {
	case isa.TTLeaf:
		s, err := leafScalar(api, t.Leaf, v)
		if err != nil {
			return err
		}
		*out = append(*out, s)
		return nil

	case isa.TTArray:
		arr, ok := v.([]interface{})
		if !ok {
			return fmt.Errorf("witness: expected JSON array of length %d for %s, got %T", t.Len, t, v)
		}
		if len(arr) != t.Len {
			return fmt.Errorf("witness: array length mismatch for %s: want %d, got %d", t, t.Len, len(arr))
		}
		for _, elem := range arr {
			if err := flattenValue(api, *t.Elem, elem, out); err != nil {
				return err
			}
		}
		return nil

	case isa.TTTuple:
		arr, ok := v.([]interface{})
		if !ok || len(arr) != len(t.Members) {
			return fmt.Errorf("witness: expected JSON array of %d elements for %s", len(t.Members), t)
		}
		for i, m := range t.Members {
			if err := flattenValue(api, m, arr[i], out); err != nil {
				return err
			}
		}
		return nil

	case isa.TTStruct:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return fmt.Errorf("witness: expected JSON object for %s", t)
		}
		for i, m := range t.Members {
			fv, ok := obj[t.Names[i]]
			if !ok {
				return fmt.Errorf("witness: struct %s missing field %q", t, t.Names[i])
			}
			if err := flattenValue(api, m, fv, out); err != nil {
				return err
			}
		}
		return nil

	case isa.TTEnum:
		name, ok := v.(string)
		if !ok {
			return fmt.Errorf("witness: expected enum variant name for %s, got %T", t, v)
		}
		idx := -1
		for i, variant := range t.EnumVariants {
			if variant == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("witness: enum %s has no variant %q", t.EnumName, name)
		}
		s, err := gadget.Const(api, int64(idx), isa.Field())
		if err != nil {
			return err
		}
		*out = append(*out, s)
		return nil

	default:
		return fmt.Errorf("witness: unknown type tree kind %d", t.Kind)
	}
}

func leafScalar(api cs.API, t isa.ScalarType, v interface{}) (gadget.Scalar, error) {
	if t.Kind == isa.KindBoolean {
		b, ok := v.(bool)
		if !ok {
			return gadget.Scalar{}, fmt.Errorf("witness: expected bool for %s, got %T", t, v)
		}
		var n int64
		if b {
			n = 1
		}
		return gadget.Const(api, n, t)
	}

	i, err := parseInteger(v)
	if err != nil {
		return gadget.Scalar{}, fmt.Errorf("witness: %s: %w", t, err)
	}
	return gadget.ConstBig(api, i, t)
}

// parseInteger accepts a JSON number, a decimal string, or a "0x…" hex
// string and returns the signed big.Int it denotes.
func parseInteger(v interface{}) (*big.Int, error) {
	switch val := v.(type) {
	case json.Number:
		return parseIntegerString(val.String())
	case float64:
		return parseIntegerString(strings.TrimSuffix(fmt.Sprintf("%.0f", val), ".0"))
	case string:
		return parseIntegerString(val)
	default:
		return nil, fmt.Errorf("expected integer, got %T", v)
	}
}

func parseIntegerString(s string) (*big.Int, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var u uint256.Int
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		err = u.SetFromHex(s)
	} else {
		err = u.SetFromDecimal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid integer literal %q: %w", s, err)
	}

	big := u.ToBig()
	if neg {
		big.Neg(big)
	}
	return big, nil
}

// Unflatten renders sig's leaves back into a JSON-marshalable Go value
// (map[string]interface{}, []interface{}, bool, or json.Number), reading
// each leaf's concrete value through valueOf. valueOf is api.Value for
// the Debug/Counting backends; the Proving backend cannot satisfy it
// (wires are symbolic until the solver runs), so vm.Prove renders its
// output by calling Unflatten over its off-circuit Debug run instead.
func Unflatten(sig isa.TypeTree, scalars []gadget.Scalar, valueOf func(cs.Wire) (*big.Int, error)) (interface{}, error) {
	idx := 0
	v, err := unflattenValue(sig, scalars, &idx, valueOf)
	if err != nil {
		return nil, err
	}
	if idx != len(scalars) {
		return nil, fmt.Errorf("witness: %d scalars left unconsumed after rendering %s", len(scalars)-idx, sig)
	}
	return v, nil
}

// signedRepr maps a canonical field representative back to the signed
// integer it encodes: negatives are stored as p - |v|, so anything above
// p/2 is the negative integer congruent to it.
func signedRepr(n *big.Int) *big.Int {
	half := new(big.Int).Rsh(field.Modulus(), 1)
	if n.Cmp(half) > 0 {
		return new(big.Int).Sub(n, field.Modulus())
	}
	return n
}

func unflattenValue(t isa.TypeTree, scalars []gadget.Scalar, idx *int, valueOf func(cs.Wire) (*big.Int, error)) (interface{}, error) {
	switch t.Kind {
	case isa.TTLeaf:
		if *idx >= len(scalars) {
			return nil, fmt.Errorf("witness: ran out of scalars rendering %s", t)
		}
		s := scalars[*idx]
		*idx++
		n, err := valueOf(s.Wire)
		if err != nil {
			return nil, err
		}
		if t.Leaf.Kind == isa.KindBoolean {
			return n.Sign() != 0, nil
		}
		if t.Leaf.Kind == isa.KindInteger && t.Leaf.Signed {
			n = signedRepr(n)
		}
		return json.Number(n.String()), nil

	case isa.TTArray:
		out := make([]interface{}, t.Len)
		for i := range out {
			v, err := unflattenValue(*t.Elem, scalars, idx, valueOf)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case isa.TTTuple:
		out := make([]interface{}, len(t.Members))
		for i, m := range t.Members {
			v, err := unflattenValue(m, scalars, idx, valueOf)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case isa.TTStruct:
		out := make(map[string]interface{}, len(t.Members))
		for i, m := range t.Members {
			v, err := unflattenValue(m, scalars, idx, valueOf)
			if err != nil {
				return nil, err
			}
			out[t.Names[i]] = v
		}
		return out, nil

	case isa.TTEnum:
		if *idx >= len(scalars) {
			return nil, fmt.Errorf("witness: ran out of scalars rendering enum %s", t.EnumName)
		}
		s := scalars[*idx]
		*idx++
		n, err := valueOf(s.Wire)
		if err != nil {
			return nil, err
		}
		i := n.Int64()
		if i < 0 || int(i) >= len(t.EnumVariants) {
			return nil, fmt.Errorf("witness: enum %s discriminant %d out of range", t.EnumName, i)
		}
		return t.EnumVariants[i], nil

	default:
		return nil, fmt.Errorf("witness: unknown type tree kind %d", t.Kind)
	}
}
