package vm

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	gnarkwitness "github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"golang.org/x/sync/singleflight"

	"github.com/zinc-lang/zinc/config"
	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/storage"
	"github.com/zinc-lang/zinc/vmerr"
	"github.com/zinc-lang/zinc/witness"
)

// This file is the concrete shape of spec.md §6's four abstract
// operations (debug, run, setup, prove) plus the verify half of the
// Groth16 black box, tying together isa.Program, package witness's JSON
// codec, package storage's Merkle gadget, and gnark's Groth16 backend —
// the one place all four layers of §2's SYSTEM OVERVIEW meet.

// InvocationResult is the JSON shape debug/run return: the method's (or
// circuit's) public output, plus — for a contract — the post-invocation
// storage tuple.
type InvocationResult struct {
	Output  interface{} `json:"output"`
	Storage interface{} `json:"storage,omitempty"`
}

// execResult is the witness-time outcome of interpreting one invocation
// against a Debug-class backend — shared by Debug/Run (which render it
// straight to JSON) and Prove (which additionally needs the concrete
// values to fill a Groth16 assignment's public wires).
type execResult struct {
	api         *cs.DebugBackend
	outputs     []gadget.Scalar
	storagePre  []gadget.Scalar
	storagePost []gadget.Scalar
}

func storageTreeSignature(prog *isa.Program) isa.TypeTree {
	return isa.Struct(prog.StorageNames, prog.StorageFields)
}

// execute interprets one invocation of prog against a fresh Debug
// backend: the same dispatch path proving mode runs, just over plain
// field.Element witnesses rather than symbolic gnark wires (§4.3's
// determinism invariant: identical constraint topology across backends).
func execute(prog *isa.Program, method string, inputJSON, storageJSON []byte, dbgOut func(string)) (*execResult, error) {
	api := cs.NewDebugBackend(dbgOut)

	inSig, _, err := signaturesFor(prog, method)
	if err != nil {
		return nil, err
	}
	inputs, err := witness.Flatten(api, inSig, inputJSON)
	if err != nil {
		return nil, fmt.Errorf("vm: decode input witness: %w", err)
	}

	var st *storage.Tree
	var storagePre []gadget.Scalar
	if prog.Kind == isa.KindContract {
		st = storage.NewTree(api, config.Load().StorageDepth, prog.StorageSize())
		storagePre, err = witness.Flatten(api, storageTreeSignature(prog), storageJSON)
		if err != nil {
			return nil, fmt.Errorf("vm: decode storage pre-image: %w", err)
		}
		if err := st.Seed(api, 0, storagePre); err != nil {
			return nil, err
		}
	}

	m := New(api, prog, inputs, st)
	m.DbgEnabled = dbgOut != nil
	m.DbgOut = dbgOut
	m.MaxSteps = config.Load().MaxSteps

	var outputs []gadget.Scalar
	if prog.Kind == isa.KindContract {
		meth, err := prog.Method(method)
		if err != nil {
			return nil, err
		}
		outputs, err = m.RunMethod(meth, inputs)
		if err != nil {
			return nil, err
		}
	} else {
		outputs, err = m.Run(0)
		if err != nil {
			return nil, err
		}
	}

	if violations := api.UnsatisfiedConstraints(); len(violations) > 0 {
		v := violations[0]
		kind := vmerr.ConstraintUnsatisfied
		if v.Kind == cs.KindLessOrEqual {
			// RangeCheck is the only caller of AssertIsLessOrEqual, so an
			// unsatisfied one is always a value (arithmetic result or a
			// narrowing `as` cast) that does not fit its declared type.
			kind = vmerr.OverflowOrUnderflow
		}
		return nil, vmerr.New(kind, m.location, "%s", v)
	}

	var storagePost []gadget.Scalar
	if st != nil {
		storagePost, err = st.Load(api, m.location, 0)
		if err != nil {
			return nil, err
		}
	}

	return &execResult{api: api, outputs: outputs, storagePre: storagePre, storagePost: storagePost}, nil
}

func renderResult(prog *isa.Program, method string, res *execResult) (json.RawMessage, error) {
	_, outSig, err := signaturesFor(prog, method)
	if err != nil {
		return nil, err
	}
	out, err := witness.Unflatten(outSig, res.outputs, res.api.Value)
	if err != nil {
		return nil, fmt.Errorf("vm: render output: %w", err)
	}

	result := InvocationResult{Output: out}
	if prog.Kind == isa.KindContract {
		st, err := witness.Unflatten(storageTreeSignature(prog), res.storagePost, res.api.Value)
		if err != nil {
			return nil, fmt.Errorf("vm: render storage: %w", err)
		}
		result.Storage = st
	}
	return json.Marshal(result)
}

// Debug runs prog (circuit main, or method for a contract) against the
// Debug constraint-system backend. dbgOut, if non-nil, receives Dbg
// instruction output as it runs (spec.md §4.5: the VM formats dbg!
// arguments from the witness during debug/run only). storageJSON is
// ignored for a bare circuit.
func Debug(prog *isa.Program, method string, inputJSON, storageJSON []byte, dbgOut func(string)) (json.RawMessage, error) {
	res, err := execute(prog, method, inputJSON, storageJSON, dbgOut)
	if err != nil {
		return nil, err
	}
	return renderResult(prog, method, res)
}

// Run is Debug with Dbg tracing disabled — spec.md's separate `run`
// entry point is witness-time-identical to `debug`, just silent.
func Run(prog *isa.Program, method string, inputJSON, storageJSON []byte) (json.RawMessage, error) {
	return Debug(prog, method, inputJSON, storageJSON, nil)
}

// CountConstraints runs prog against the Counting backend with
// placeholder (all-ones) witness values, for the "witness-less
// synthesis" run mode of spec.md §4.3 (constraint-count estimation with
// no real witness in hand). By invariant 4 the count does not depend on
// the chosen witness, so any well-typed placeholder assignment —
// conditions included — yields the true count as long as it does not
// trip a data-dependent runtime error (e.g. a guarded div-by-zero);
// deliberately pathological programs are outside what this estimator
// promises.
func CountConstraints(prog *isa.Program, method string) (int, error) {
	api := cs.NewCountingBackend()

	inSig, _, err := signaturesFor(prog, method)
	if err != nil {
		return 0, err
	}
	inputs, err := placeholderScalars(api, inSig.LeafTypes())
	if err != nil {
		return 0, err
	}

	var st *storage.Tree
	if prog.Kind == isa.KindContract {
		st = storage.NewTree(api, config.Load().StorageDepth, prog.StorageSize())
		pre, err := placeholderScalars(api, storageTreeSignature(prog).LeafTypes())
		if err != nil {
			return 0, err
		}
		if err := st.Seed(api, 0, pre); err != nil {
			return 0, err
		}
	}

	m := New(api, prog, inputs, st)
	if prog.Kind == isa.KindContract {
		meth, err := prog.Method(method)
		if err != nil {
			return 0, err
		}
		if _, err := m.RunMethod(meth, inputs); err != nil {
			return 0, err
		}
	} else if _, err := m.Run(0); err != nil {
		return 0, err
	}

	return api.NumConstraints(), nil
}

func placeholderScalars(api cs.API, types []isa.ScalarType) ([]gadget.Scalar, error) {
	out := make([]gadget.Scalar, len(types))
	for i, t := range types {
		s, err := gadget.Const(api, 1, t)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Keys bundles the artefacts Groth16 trusted setup produces for one
// compiled program (or contract method): the R1CS plus proving/verifying
// key pair, grounded on prover/prover.go's CompiledCircuit.
type Keys struct {
	CS           constraint.ConstraintSystem
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
}

var (
	keyCacheMu sync.RWMutex
	keyCache   = map[string]*Keys{}
	setupGroup singleflight.Group
)

func cacheKey(prog *isa.Program, method string) string {
	return prog.ID.String() + "/" + method
}

// Setup compiles prog (or one of its contract methods) into an R1CS and
// runs Groth16's trusted setup. Results are cached by the program's
// stable ID (isa.Program.ID) plus method name, and concurrent Setup
// calls racing on the same key collapse into a single compile+setup via
// golang.org/x/sync/singleflight — grounded on prover/prover.go's
// LoadOrCompile, generalized from a caller-chosen name to the program's
// own identity, matching §5's "one invocation does not share mutable
// state with any other" alongside a shared, safely-concurrent key cache.
func Setup(prog *isa.Program, method string) (*Keys, error) {
	key := cacheKey(prog, method)

	keyCacheMu.RLock()
	if k, ok := keyCache[key]; ok {
		keyCacheMu.RUnlock()
		return k, nil
	}
	keyCacheMu.RUnlock()

	v, err, _ := setupGroup.Do(key, func() (interface{}, error) {
		circuit, err := NewCircuit(prog, method)
		if err != nil {
			return nil, err
		}
		ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
		if err != nil {
			return nil, fmt.Errorf("vm: compile: %w", err)
		}
		pk, vk, err := groth16.Setup(ccs)
		if err != nil {
			return nil, fmt.Errorf("vm: groth16 setup: %w", err)
		}
		k := &Keys{CS: ccs, ProvingKey: pk, VerifyingKey: vk}
		keyCacheMu.Lock()
		keyCache[key] = k
		keyCacheMu.Unlock()
		return k, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Keys), nil
}

// ProofResult is what Prove returns: the proof itself, the public
// witness it was proved against (what Verify needs), and the same
// human-readable output/storage JSON Run would have produced — spec.md
// §8 invariant 2 ("output determinism") is exactly the claim that this
// JSON matches Run's bit-for-bit.
type ProofResult struct {
	Proof         groth16.Proof
	PublicWitness gnarkwitness.Witness
	Result        json.RawMessage
}

// Prove interprets the invocation once (off-circuit, via Debug) to learn
// the concrete output/post-storage values, assigns them alongside the
// supplied inputs into a full gnark witness, and runs groth16.Prove
// against keys (as produced by Setup for the same program/method).
func Prove(prog *isa.Program, method string, keys *Keys, inputJSON, storageJSON []byte) (*ProofResult, error) {
	res, err := execute(prog, method, inputJSON, storageJSON, nil)
	if err != nil {
		return nil, err
	}
	resultJSON, err := renderResult(prog, method, res)
	if err != nil {
		return nil, err
	}

	circuit, err := NewCircuit(prog, method)
	if err != nil {
		return nil, err
	}

	inSig, _, err := signaturesFor(prog, method)
	if err != nil {
		return nil, err
	}
	// Re-flatten the raw input JSON (rather than reusing res's Debug-
	// backend scalars) because those scalars are tied to a different
	// cs.API instance; only the concrete big.Int values are portable.
	api := cs.NewDebugBackend(nil)
	inputs, err := witness.Flatten(api, inSig, inputJSON)
	if err != nil {
		return nil, err
	}
	if err := assignValues(api, circuit.Inputs, inputs); err != nil {
		return nil, err
	}
	if err := assignValues(api, circuit.Outputs, res.outputs); err != nil {
		return nil, err
	}
	if prog.Kind == isa.KindContract {
		if err := assignValues(api, circuit.StoragePre, res.storagePre); err != nil {
			return nil, err
		}
		if err := assignValues(api, circuit.StoragePost, res.storagePost); err != nil {
			return nil, err
		}
	}

	fullWitness, err := frontend.NewWitness(circuit, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("vm: build witness: %w", err)
	}

	proof, err := groth16.Prove(keys.CS, keys.ProvingKey, fullWitness)
	if err != nil {
		return nil, fmt.Errorf("vm: groth16 prove: %w", err)
	}

	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, fmt.Errorf("vm: extract public witness: %w", err)
	}

	return &ProofResult{Proof: proof, PublicWitness: publicWitness, Result: resultJSON}, nil
}

// Verify checks pr.Proof against keys.VerifyingKey and pr.PublicWitness.
func Verify(keys *Keys, pr *ProofResult) error {
	if err := groth16.Verify(pr.Proof, keys.VerifyingKey, pr.PublicWitness); err != nil {
		return fmt.Errorf("vm: proof verification failed: %w", err)
	}
	return nil
}

func assignValues(api *cs.DebugBackend, dst []frontend.Variable, src []gadget.Scalar) error {
	if len(dst) != len(src) {
		return fmt.Errorf("vm: assignment length mismatch: %d wires, %d scalars", len(dst), len(src))
	}
	for i, s := range src {
		v, err := api.Value(s.Wire)
		if err != nil {
			return err
		}
		dst[i] = new(big.Int).Set(v)
	}
	return nil
}
