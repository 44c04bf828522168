package storage

import "math/big"

// Transfer is the record the zksync::transfer library call appends to
// the output buffer (§3 data model).
type Transfer struct {
	Recipient [20]byte
	Token     *big.Int
	Amount    *big.Int
}
