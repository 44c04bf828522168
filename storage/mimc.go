// Package storage implements the contract storage gadget: a fixed-depth
// sparse Merkle tree whose leaves are tuples of typed scalars (§4.4).
package storage

import (
	"crypto/sha256"
	"math/big"

	"github.com/zinc-lang/zinc/cs"
)

// roundConstants are the MiMC round constants, derived once at init time
// by repeatedly hashing a fixed seed — deterministic across every run of
// the same binary, which is all a Merkle gadget needs (unlike a
// production MiMC instance, these are not drawn from a nothing-up-my-
// sleeve ceremony).
var roundConstants = generateRoundConstants(91)

func generateRoundConstants(n int) []*big.Int {
	out := make([]*big.Int, n)
	seed := []byte("zinc-vm/storage/mimc-round-constant")
	h := sha256.Sum256(seed)
	for i := 0; i < n; i++ {
		h = sha256.Sum256(h[:])
		out[i] = new(big.Int).SetBytes(h[:])
	}
	return out
}

// MimcHash2 folds two wires into one via a Miyaguchi-Preneel MiMC
// permutation (round function x -> (x+k+c_i)^5, feed-forward x+k at the
// end). It is written purely against cs.API so the identical sequence of
// Add/Mul constraints is emitted under the Debug, Counting, and Proving
// backends, matching the determinism requirement in §4.3. Grounded in
// shape on the teacher's zkcompile/gnark_integration_test.go mimcHash
// helper (gnark's std/hash/mimc), reimplemented against the abstract API
// since that package only accepts a concrete gnark frontend.API.
func MimcHash2(api cs.API, left, right cs.Wire) cs.Wire {
	ns := api.Namespace("mimc")
	x, k := left, right
	for _, c := range roundConstants {
		t := ns.Add(x, ns.Add(k, ns.NewConstant(c)))
		t2 := ns.Mul(t, t)
		t4 := ns.Mul(t2, t2)
		x = ns.Mul(t4, t)
	}
	return ns.Add(x, k)
}
