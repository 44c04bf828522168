package storage

import (
	"fmt"
	"math/big"

	"github.com/zinc-lang/zinc/cs"
	"github.com/zinc-lang/zinc/gadget"
	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vmerr"
)

// Tree is the contract storage gadget: a dense Merkle tree of fixed
// depth, one leaf per storage index, each leaf a tuple of `width` typed
// scalars (the contract's storage fields, in field-major order). Depth
// is small by design (the config package's default storage tree depth
// bounds the number of distinct storage indices a single contract
// invocation can address), so the whole tree is kept in memory rather
// than as a sparse zero-subtree structure.
type Tree struct {
	depth int
	width int

	leaves [][]gadget.Scalar // len 1<<depth
	levels [][]cs.Wire       // levels[0] = per-leaf folded hash, levels[depth] = [root]
}

// NewTree builds an empty tree (every leaf the all-zero tuple) of the
// given depth, each leaf holding `width` Field-typed scalars.
func NewTree(api cs.API, depth, width int) *Tree {
	t := &Tree{depth: depth, width: width}
	n := 1 << uint(depth)
	t.leaves = make([][]gadget.Scalar, n)
	zero, _ := gadget.Const(api, 0, isa.Field())
	for i := range t.leaves {
		fields := make([]gadget.Scalar, width)
		for j := range fields {
			fields[j] = zero
		}
		t.leaves[i] = fields
	}
	t.recomputeAll(api)
	return t
}

// Seed overwrites index's stored fields directly, with no constraint and
// no prior-root authentication, used once before a contract invocation
// begins to load an externally supplied pre-state image into an
// otherwise freshly constructed tree (spec.md §6's "externally supplied
// storage pre-image"). Unlike Store it is not predicated: the whole
// point is to establish the state Store's old-path checks are verified
// against.
func (t *Tree) Seed(api cs.API, index int, fields []gadget.Scalar) error {
	if index < 0 || index >= len(t.leaves) {
		return fmt.Errorf("storage: seed index %d out of range (depth %d)", index, t.depth)
	}
	if len(fields) != t.width {
		return fmt.Errorf("storage: seed field count %d, want %d", len(fields), t.width)
	}
	t.leaves[index] = append([]gadget.Scalar(nil), fields...)
	t.recomputeAll(api)
	return nil
}

// Root returns the wire equal to the tree's current root.
func (t *Tree) Root() cs.Wire { return t.levels[t.depth][0] }

func (t *Tree) foldLeaf(api cs.API, fields []gadget.Scalar) cs.Wire {
	if len(fields) == 0 {
		return api.NewConstant(big.NewInt(0))
	}
	acc := fields[0].Wire
	for _, f := range fields[1:] {
		acc = MimcHash2(api, acc, f.Wire)
	}
	return acc
}

func (t *Tree) recomputeAll(api cs.API) {
	n := 1 << uint(t.depth)
	leafHashes := make([]cs.Wire, n)
	for i, fields := range t.leaves {
		leafHashes[i] = t.foldLeaf(api, fields)
	}
	t.levels = make([][]cs.Wire, t.depth+1)
	t.levels[0] = leafHashes
	for l := 1; l <= t.depth; l++ {
		prev := t.levels[l-1]
		cur := make([]cs.Wire, len(prev)/2)
		for i := range cur {
			cur[i] = MimcHash2(api, prev[2*i], prev[2*i+1])
		}
		t.levels[l] = cur
	}
}

// recomputePath recomputes only the ancestors of `index` after its leaf
// hash has changed — the incremental counterpart of recomputeAll, used
// by Store so a single update costs O(depth) hashes, not O(2^depth).
func (t *Tree) recomputePath(api cs.API, index int) {
	t.levels[0][index] = t.foldLeaf(api, t.leaves[index])
	idx := index
	for l := 1; l <= t.depth; l++ {
		idx /= 2
		prev := t.levels[l-1]
		t.levels[l][idx] = MimcHash2(api, prev[2*idx], prev[2*idx+1])
	}
}

// authPath returns, for each level, the sibling wire on the path from
// leaf `index` to the root.
func (t *Tree) authPath(index int) []cs.Wire {
	path := make([]cs.Wire, t.depth)
	idx := index
	for l := 0; l < t.depth; l++ {
		sibling := idx ^ 1
		path[l] = t.levels[l][sibling]
		idx /= 2
	}
	return path
}

// verify recomputes the root from a leaf hash and its authentication
// path and asserts it equals the tree's current root wire — the
// Merkle-authentication-path constraint both Load and Store emit.
func (t *Tree) verify(api cs.API, index int, leafHash cs.Wire, path []cs.Wire) {
	ns := api.Namespace("merkle_auth")
	cur := leafHash
	idx := index
	for l := 0; l < t.depth; l++ {
		if idx%2 == 0 {
			cur = MimcHash2(ns, cur, path[l])
		} else {
			cur = MimcHash2(ns, path[l], cur)
		}
		idx /= 2
	}
	ns.AssertIsEqual(cur, t.Root())
}

// Load returns index's stored fields, emitting a Merkle-authentication-
// path constraint against the root wire.
func (t *Tree) Load(api cs.API, loc isa.Location, index int) ([]gadget.Scalar, error) {
	if index < 0 || index >= len(t.leaves) {
		return nil, vmerr.New(vmerr.IndexOutOfBounds, loc, "storage index %d out of range (depth %d)", index, t.depth)
	}
	leafHash := t.levels[0][index]
	t.verify(api, index, leafHash, t.authPath(index))
	out := make([]gadget.Scalar, len(t.leaves[index]))
	copy(out, t.leaves[index])
	return out, nil
}

// Store writes newFields to index under effective condition cond:
// per-field, the stored value becomes select(cond, newFields[i], old),
// so a statically- or witness-false condition leaves storage bit-for-
// bit unchanged (§4.3 predicated writes). The root wire advances to the
// newly-selected tree's root; the in-memory tree tracks the selected
// state too; the old-path authentication is checked before the update
// so a tampered tree is caught either way.
func (t *Tree) Store(api cs.API, loc isa.Location, index int, newFields []gadget.Scalar, cond gadget.Scalar) error {
	if index < 0 || index >= len(t.leaves) {
		return vmerr.New(vmerr.IndexOutOfBounds, loc, "storage index %d out of range (depth %d)", index, t.depth)
	}
	if len(newFields) != len(t.leaves[index]) {
		return vmerr.New(vmerr.TypeMismatch, loc, "storage field count %d, want %d", len(newFields), len(t.leaves[index]))
	}

	oldHash := t.levels[0][index]
	t.verify(api, index, oldHash, t.authPath(index))

	oldRoot := t.Root()
	selected := make([]gadget.Scalar, len(newFields))
	ns := api.Namespace("storage_store")
	for i, nf := range newFields {
		old := t.leaves[index][i]
		if !nf.Type.Equal(old.Type) {
			return vmerr.New(vmerr.TypeMismatch, loc, "storage field %d type %s, want %s", i, nf.Type, old.Type)
		}
		w := ns.Select(cond.Wire, nf.Wire, old.Wire)
		selected[i] = gadget.Scalar{Wire: w, Type: old.Type}
	}
	t.leaves[index] = selected
	t.recomputePath(api, index)

	newRoot := t.Root()
	root := ns.Select(cond.Wire, newRoot, oldRoot)
	t.levels[t.depth][0] = root
	return nil
}
