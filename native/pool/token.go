package pool

import "github.com/holiman/uint256"

// TokenLedger is the engine's view of the two token contracts. Transfer moves
// funds out of the pool's module account; TransferFrom pulls approved funds
// into it. Implementations must fail on shortfall rather than clamp.
type TokenLedger interface {
	Transfer(token, to [20]byte, amount *uint256.Int) error
	TransferFrom(token, from, to [20]byte, amount *uint256.Int) error
	BalanceOf(token, account [20]byte) (*uint256.Int, error)
}

// FlashBorrower receives the borrowed funds and must return them, plus fee,
// before the callback completes. The engine verifies repayment by invariant,
// not by trusting the return value.
type FlashBorrower interface {
	OnFlashSwap(amount0, amount1 *uint256.Int, data []byte) error
}
