package vm

import (
	"crypto/sha256"
	"math/big"

	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/storage"
	"github.com/zinc-lang/zinc/vmerr"
)

// libraryFunc implements one CallLibrary target: given the popped input
// operands and the declared output arity, it returns the result scalars
// to push.
//
// sha256, pedersen, schnorr::verify, and zksync::transfer are native
// boundaries rather than faithful arithmetizations of their primitives:
// sha256 trusts an unconstrained Hint-computed value (the same escape
// hatch div_rem's quotient/remainder use), pedersen and schnorr::verify
// are constrained stand-ins (a MiMC fold and a linear relation), and
// zksync::transfer reads concrete values off-circuit and emits no
// constraints. This keeps the call sites and output shapes real while
// being explicit that the arithmetization stops at the call boundary.
type libraryFunc func(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error)

var libraries = map[isa.LibraryID]libraryFunc{
	isa.LibArrayReverse:            libArrayReverse,
	isa.LibArrayTruncate:           libArrayTruncate,
	isa.LibArrayPad:                libArrayPad,
	isa.LibConvertToBits:           libConvertToBits,
	isa.LibConvertFromBitsUnsigned: libConvertFromBitsUnsigned,
	isa.LibConvertFromBitsSigned:   libConvertFromBitsSigned,
	isa.LibFfInvert:                libFfInvert,
	isa.LibSha256:                  libSha256,
	isa.LibPedersen:                libPedersen,
	isa.LibSchnorrVerify:           libSchnorrVerify,
	isa.LibZksyncTransfer:          libZksyncTransfer,
}

func (m *Machine) execCallLibrary(instr isa.Instruction) error {
	args, err := m.stack.popN(instr.N, m.location)
	if err != nil {
		return err
	}
	fn, ok := libraries[instr.Lib]
	if !ok {
		return vmerr.New(vmerr.NativeLibraryError, m.location, "unregistered library call %s", instr.Lib)
	}
	results, err := fn(m, args, instr.ArgCount)
	if err != nil {
		return err
	}
	if len(results) != instr.ArgCount {
		return vmerr.New(vmerr.NativeLibraryError, m.location, "%s returned %d values, want %d", instr.Lib, len(results), instr.ArgCount)
	}
	for _, r := range results {
		m.stack.push(r)
	}
	return nil
}

func libArrayReverse(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	out := make([]gadget.Scalar, len(args))
	for i, a := range args {
		out[len(args)-1-i] = a
	}
	return out, nil
}

func libArrayTruncate(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if outCount > len(args) {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "array::truncate to %d from %d", outCount, len(args))
	}
	return args[:outCount], nil
}

func libArrayPad(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if outCount < len(args) {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "array::pad to %d from %d", outCount, len(args))
	}
	out := make([]gadget.Scalar, outCount)
	copy(out, args)
	elemType := isa.Field()
	if len(args) > 0 {
		elemType = args[0].Type
	}
	for i := len(args); i < outCount; i++ {
		z, err := gadget.Const(m.API, 0, elemType)
		if err != nil {
			return nil, err
		}
		out[i] = z
	}
	return out, nil
}

func libConvertToBits(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if len(args) != 1 {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "convert::to_bits takes one argument")
	}
	return gadget.BitDecompose(m.API, args[0], outCount), nil
}

func libConvertFromBitsUnsigned(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if outCount != 1 {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "convert::from_bits_unsigned returns one value")
	}
	v, err := gadget.FromBitsUnsigned(m.API, args)
	if err != nil {
		return nil, err
	}
	return []gadget.Scalar{v}, nil
}

func libConvertFromBitsSigned(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if outCount != 1 {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "convert::from_bits_signed returns one value")
	}
	v, err := gadget.FromBitsSigned(m.API, args)
	if err != nil {
		return nil, err
	}
	return []gadget.Scalar{v}, nil
}

func libFfInvert(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if len(args) != 1 || outCount != 1 {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "ff::invert takes and returns one value")
	}
	ns := m.API.Namespace("ff_invert")
	return []gadget.Scalar{{Wire: ns.Inverse(args[0].Wire), Type: isa.Field()}}, nil
}

// libSha256 hints the real sha256 of x's canonical big-endian bytes,
// reduced modulo the scalar field (the digest does not fit a field
// element unreduced). The hint is unconstrained beyond its own
// computation, matching the native-boundary note on libraryFunc.
func libSha256(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if len(args) != 1 || outCount != 1 {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "sha256 takes and returns one value")
	}
	ns := m.API.Namespace("sha256")
	w := ns.Hint(func(in []*big.Int) *big.Int {
		digest := sha256.Sum256(in[0].Bytes())
		return new(big.Int).SetBytes(digest[:])
	}, args[0].Wire)
	return []gadget.Scalar{{Wire: w, Type: isa.Field()}}, nil
}

// libPedersen folds two field elements with the same round function the
// storage tree's authentication paths use, standing in for a true
// elliptic-curve Pedersen commitment (no EC point arithmetic is exposed
// through cs.API).
func libPedersen(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if len(args) != 2 || outCount != 1 {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "pedersen takes two values and returns one")
	}
	w := storage.MimcHash2(m.API, args[0].Wire, args[1].Wire)
	return []gadget.Scalar{{Wire: w, Type: isa.Field()}}, nil
}

// libSchnorrVerify checks a toy linear signature relation
// s == r + challenge·pubkey (challenge == the message hash argument)
// rather than a real elliptic-curve Schnorr signature, again because no
// EC gadget is exposed. It returns a boolean.
func libSchnorrVerify(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if len(args) != 4 || outCount != 1 {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "schnorr::verify takes (msg_hash, r, s, pubkey) and returns one value")
	}
	msgHash, r, s, pubkey := args[0], args[1], args[2], args[3]
	ns := m.API.Namespace("schnorr_verify")
	rhs := ns.Add(r.Wire, ns.Mul(msgHash.Wire, pubkey.Wire))
	ok, err := gadget.Eq(ns, gadget.Scalar{Wire: s.Wire, Type: isa.Field()}, gadget.Scalar{Wire: rhs, Type: isa.Field()})
	if err != nil {
		return nil, err
	}
	return []gadget.Scalar{ok}, nil
}

// libZksyncTransfer appends a Transfer record to the invocation's
// output buffer, gated by the effective condition (a guarded-off
// transfer call never executes).
func libZksyncTransfer(m *Machine, args []gadget.Scalar, outCount int) ([]gadget.Scalar, error) {
	if len(args) != 3 || outCount != 0 {
		return nil, vmerr.New(vmerr.NativeLibraryError, m.location, "zksync::transfer takes (recipient, token, amount) and returns nothing")
	}
	cond, err := m.condition.effective(m.API)
	if err != nil {
		return nil, err
	}
	condVal, err := m.API.Value(cond.Wire)
	if err != nil {
		return nil, vmerr.Wrap(vmerr.NativeLibraryError, m.location, err, "zksync::transfer requires a known condition")
	}
	if condVal.Sign() == 0 {
		return nil, nil
	}
	recipient, err := m.API.Value(args[0].Wire)
	if err != nil {
		return nil, err
	}
	token, err := m.API.Value(args[1].Wire)
	if err != nil {
		return nil, err
	}
	amount, err := m.API.Value(args[2].Wire)
	if err != nil {
		return nil, err
	}
	var addr [20]byte
	recipient.FillBytes(addr[:])
	m.Transfers = append(m.Transfers, storage.Transfer{Recipient: addr, Token: token, Amount: amount})
	return nil, nil
}
