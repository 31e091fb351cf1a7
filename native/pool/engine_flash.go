package pool

import (
	"fmt"

	"github.com/holiman/uint256"
)

// FlashSwap lends amount0 of token0 and amount1 of token1 to borrower,
// invokes the callback, and verifies repayment by re-reading the pool's own
// balances. Each side must come back with the borrowed amount plus the flash
// fee; anything less reverts the whole call, outbound transfers included.
// Whatever the borrower repays above the requirement stays in the reserves.
// The token0 fee is split into the treasury and LP accruals like a regular
// swap fee.
//
// The callback runs under the reentrancy lock, so the borrower cannot reveal,
// move liquidity or trigger another flash swap while holding the loan.
func (e *Engine) FlashSwap(borrower [20]byte, callback FlashBorrower, amount0, amount1 *uint256.Int, data []byte) error {
	return e.transact(func() error {
		if borrower == ([20]byte{}) {
			return ErrInvalidAddress
		}
		if callback == nil {
			return errNilBorrower
		}
		amount0 = ensureAmount(amount0)
		amount1 = ensureAmount(amount1)
		if amount0.IsZero() && amount1.IsZero() {
			return ErrZeroAmount
		}
		record, err := e.loadPool()
		if err != nil {
			return err
		}
		if record.Paused {
			return ErrPaused
		}
		if amount0.Gt(record.Reserve0) || amount1.Gt(record.Reserve1) {
			return ErrInsufficientLiquidity
		}
		lent0 := new(uint256.Int).Sub(record.Reserve0, amount0)
		lent1 := new(uint256.Int).Sub(record.Reserve1, amount1)
		// The loan may not dip the pool below the seeded liquidity floor.
		if lent0.Lt(record.MinLiquidity) || lent1.Lt(record.MinLiquidity) {
			return ErrInsufficientLiquidity
		}
		kBefore, overflow := new(uint256.Int).MulOverflow(record.Reserve0, record.Reserve1)
		if overflow {
			return ErrOverflow
		}

		owed0, err := owedWithFee(amount0, record.FlashFeeBps)
		if err != nil {
			return err
		}
		owed1, err := owedWithFee(amount1, record.FlashFeeBps)
		if err != nil {
			return err
		}

		if !amount0.IsZero() {
			if err := e.tokens.Transfer(e.token0, borrower, amount0); err != nil {
				return err
			}
		}
		if !amount1.IsZero() {
			if err := e.tokens.Transfer(e.token1, borrower, amount1); err != nil {
				return err
			}
		}
		if err := callback.OnFlashSwap(owed0, owed1, data); err != nil {
			return fmt.Errorf("pool: flash borrower: %w", err)
		}

		balance0, err := e.tokens.BalanceOf(e.token0, e.address)
		if err != nil {
			return err
		}
		balance1, err := e.tokens.BalanceOf(e.token1, e.address)
		if err != nil {
			return err
		}
		required0, overflow := new(uint256.Int).AddOverflow(lent0, owed0)
		if overflow {
			return ErrOverflow
		}
		required1, overflow := new(uint256.Int).AddOverflow(lent1, owed1)
		if overflow {
			return ErrOverflow
		}
		if balance0.Lt(required0) || balance1.Lt(required1) {
			return ErrInvariantViolation
		}
		kAfter, overflow := new(uint256.Int).MulOverflow(balance0, balance1)
		if overflow {
			return ErrOverflow
		}
		if kAfter.Lt(kBefore) {
			return ErrInvariantViolation
		}

		// Adopt the observed balances so over-repayment accrues to the
		// reserves.
		record.Reserve0 = balance0
		record.Reserve1 = balance1
		if record.TotalVolume0, overflow = new(uint256.Int).AddOverflow(record.TotalVolume0, amount0); overflow {
			return ErrOverflow
		}
		if record.TotalVolume1, overflow = new(uint256.Int).AddOverflow(record.TotalVolume1, amount1); overflow {
			return ErrOverflow
		}
		if !amount0.IsZero() {
			split, err := SplitFee(amount0, record.FlashFeeBps)
			if err != nil {
				return err
			}
			if record.AccruedTreasuryFees0, overflow = new(uint256.Int).AddOverflow(record.AccruedTreasuryFees0, split.Treasury); overflow {
				return ErrOverflow
			}
			if record.AccruedLPFees0, overflow = new(uint256.Int).AddOverflow(record.AccruedLPFees0, split.LP); overflow {
				return ErrOverflow
			}
		}
		if err := e.state.PoolPut(record); err != nil {
			return err
		}
		e.emit(NewFlashSwapEvent(borrower, amount0, amount1, record.Reserve0, record.Reserve1))
		return nil
	})
}

func owedWithFee(amount *uint256.Int, flashFeeBps uint64) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return uint256.NewInt(0), nil
	}
	fee, err := flashFee(amount, flashFeeBps)
	if err != nil {
		return nil, err
	}
	owed, overflow := new(uint256.Int).AddOverflow(amount, fee)
	if overflow {
		return nil, ErrOverflow
	}
	return owed, nil
}
