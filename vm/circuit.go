package vm

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/zinc-lang/zinc/config"
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/storage"
)

// Circuit adapts one compiled Program into a gnark frontend.Circuit: the
// generic bridge between bytecode and Groth16 that spec.md §6 describes
// only at its interface ("a black box with setup/prove/verify"). It is
// sized dynamically from the program's own input/output/storage
// signatures rather than a fixed field list, unlike prover/wrapper.go's
// WrapperCircuit (which this is grounded on) — a bytecode VM's circuit
// shape is only known once a Program exists, not at Go compile time.
//
// Program is excluded from gnark's struct-reflection witness walk
// (`gnark:"-"`): it is configuration, not a circuit variable.
type Circuit struct {
	Program *isa.Program `gnark:"-"`
	Method  string       `gnark:"-"` // contract method name; "" for a bare circuit

	Inputs  []frontend.Variable
	Outputs []frontend.Variable `gnark:",public"`

	// StoragePre/StoragePost are only populated for KindContract programs:
	// the pre- and post-invocation storage tuple, flattened field-major.
	// Both are public so a verifier can pair the proof with the on-chain
	// pre/post roots' declared pre-image (spec.md §4.4's "batched store,
	// single output root wire" design, generalized one level: the VM
	// proves the whole flattened tuple is consistent with the committed
	// roots via the storage gadget's own Merkle constraints).
	StoragePre  []frontend.Variable `gnark:",public"`
	StoragePost []frontend.Variable `gnark:",public"`
}

// NewCircuit allocates a Circuit shaped for prog. method must be "" for a
// Circuit-kind program, or a declared method name for a Contract-kind
// program.
func NewCircuit(prog *isa.Program, method string) (*Circuit, error) {
	inSig, outSig, err := signaturesFor(prog, method)
	if err != nil {
		return nil, err
	}
	c := &Circuit{
		Program: prog,
		Method:  method,
		Inputs:  make([]frontend.Variable, inSig.Size()),
		Outputs: make([]frontend.Variable, outSig.Size()),
	}
	if prog.Kind == isa.KindContract {
		n := prog.StorageSize()
		c.StoragePre = make([]frontend.Variable, n)
		c.StoragePost = make([]frontend.Variable, n)
	}
	return c, nil
}

func signaturesFor(prog *isa.Program, method string) (isa.TypeTree, isa.TypeTree, error) {
	if prog.Kind == isa.KindCircuit {
		return prog.Input, prog.Output, nil
	}
	m, err := prog.Method(method)
	if err != nil {
		return isa.TypeTree{}, isa.TypeTree{}, err
	}
	return m.Input, m.Output, nil
}

// storageTupleTypes returns the ordered leaf types of a contract's
// storage tuple, one per flattened StoragePre/StoragePost cell.
func storageTupleTypes(prog *isa.Program) []isa.ScalarType {
	var out []isa.ScalarType
	for _, f := range prog.StorageFields {
		out = append(out, f.LeafTypes()...)
	}
	return out
}

// Define builds the R1CS for one invocation of Program (or, for a
// contract, of its one named Method): wrap every input/storage wire into
// a range-checked gadget.Scalar, run the Machine exactly as the
// Debug/Counting backends do, and assert each output/post-storage wire
// equals what the VM computed. This is the only place a raw
// frontend.Variable is converted to a gadget.Scalar and back — everywhere
// else (gadget, vm dispatch, storage) is backend-agnostic.
func (c *Circuit) Define(api frontend.API) error {
	backend := NewProvingBackend(api)

	inSig, _, err := signaturesFor(c.Program, c.Method)
	if err != nil {
		return err
	}

	inputs, err := wireScalars(backend, c.Inputs, inSig.LeafTypes())
	if err != nil {
		return err
	}

	var st *storage.Tree
	if c.Program.Kind == isa.KindContract {
		st = storage.NewTree(backend, config.Load().StorageDepth, c.Program.StorageSize())
		types := storageTupleTypes(c.Program)
		pre, err := wireScalars(backend, c.StoragePre, types)
		if err != nil {
			return err
		}
		if err := st.Seed(backend, 0, pre); err != nil {
			return err
		}
	}

	m := New(backend, c.Program, inputs, st)

	var outputs []gadget.Scalar
	if c.Program.Kind == isa.KindContract {
		method, err := c.Program.Method(c.Method)
		if err != nil {
			return err
		}
		outputs, err = m.RunMethod(method, inputs)
		if err != nil {
			return fmt.Errorf("vm: method %q: %w", c.Method, err)
		}
	} else {
		outputs, err = m.Run(0)
		if err != nil {
			return fmt.Errorf("vm: run: %w", err)
		}
	}

	if len(outputs) != len(c.Outputs) {
		return fmt.Errorf("vm: program produced %d outputs, circuit declares %d", len(outputs), len(c.Outputs))
	}
	for i, o := range outputs {
		api.AssertIsEqual(o.Wire, c.Outputs[i])
	}

	if c.Program.Kind == isa.KindContract {
		post, err := st.Load(backend, m.location, 0)
		if err != nil {
			return err
		}
		if len(post) != len(c.StoragePost) {
			return fmt.Errorf("vm: storage tuple has %d fields, circuit declares %d", len(post), len(c.StoragePost))
		}
		for i, f := range post {
			api.AssertIsEqual(f.Wire, c.StoragePost[i])
		}
	}

	return nil
}

func wireScalars(backend *ProvingBackend, wires []frontend.Variable, types []isa.ScalarType) ([]gadget.Scalar, error) {
	if len(wires) != len(types) {
		return nil, fmt.Errorf("vm: %d wires for %d typed leaves", len(wires), len(types))
	}
	out := make([]gadget.Scalar, len(wires))
	for i, w := range wires {
		if err := gadget.RangeCheck(backend, w, types[i]); err != nil {
			return nil, err
		}
		out[i] = gadget.Scalar{Wire: w, Type: types[i]}
	}
	return out, nil
}
