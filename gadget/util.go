package gadget

import "math/big"

func bigIntOne() *big.Int { return big.NewInt(1) }

func bigIntPow2(n int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(n))
}
