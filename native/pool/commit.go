package pool

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// CommitHash derives the commitment digest for a swap of amountIn salted with
// salt. Both values are encoded as 32-byte big-endian words before hashing so
// the preimage layout is fixed; clients must produce the identical encoding
// for the reveal to match.
func CommitHash(amountIn, salt *uint256.Int) [32]byte {
	var preimage [64]byte
	if amountIn != nil {
		amountBytes := amountIn.Bytes32()
		copy(preimage[:32], amountBytes[:])
	}
	if salt != nil {
		saltBytes := salt.Bytes32()
		copy(preimage[32:], saltBytes[:])
	}
	return [32]byte(ethcrypto.Keccak256Hash(preimage[:]))
}
