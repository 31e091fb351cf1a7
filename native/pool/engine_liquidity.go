package pool

import "github.com/holiman/uint256"

// AddLiquidity deposits both tokens into the pool. The first deposit seeds
// the minimum-liquidity floor and its combined value must clear it; later
// deposits accept any positive amounts and move the price accordingly.
func (e *Engine) AddLiquidity(provider [20]byte, amount0, amount1 *uint256.Int) error {
	return e.transact(func() error {
		if provider == ([20]byte{}) {
			return ErrInvalidAddress
		}
		if amount0 == nil || amount0.IsZero() || amount1 == nil || amount1.IsZero() {
			return ErrZeroAmount
		}
		record, err := e.loadPool()
		if err != nil {
			return err
		}
		if record.Paused {
			return ErrPaused
		}
		newReserve0, overflow := new(uint256.Int).AddOverflow(record.Reserve0, amount0)
		if overflow {
			return ErrOverflow
		}
		newReserve1, overflow := new(uint256.Int).AddOverflow(record.Reserve1, amount1)
		if overflow {
			return ErrOverflow
		}
		if record.MinLiquidity.IsZero() {
			// First deposit seeds the floor and must clear it in total.
			floor := uint256.NewInt(MinimumLiquidity)
			record.MinLiquidity = floor
			total, overflow := new(uint256.Int).AddOverflow(amount0, amount1)
			if overflow {
				return ErrOverflow
			}
			if total.Lt(floor) {
				return ErrInsufficientLiquidity
			}
		} else if newReserve0.Lt(record.MinLiquidity) || newReserve1.Lt(record.MinLiquidity) {
			return ErrInsufficientLiquidity
		}
		record.Reserve0 = newReserve0
		record.Reserve1 = newReserve1
		if err := e.state.PoolPut(record); err != nil {
			return err
		}
		if err := e.tokens.TransferFrom(e.token0, provider, e.address, amount0); err != nil {
			return err
		}
		if err := e.tokens.TransferFrom(e.token1, provider, e.address, amount1); err != nil {
			return err
		}
		e.emit(NewLiquidityAddedEvent(provider, amount0, amount1, record.Reserve0, record.Reserve1))
		return nil
	})
}

// WithdrawTreasuryFees pays the accrued token0 treasury fees to the treasury
// account. Owner only. The withdrawn amount leaves reserve0 as well as the
// accrual counter so the reserve keeps matching the pool's real holdings.
func (e *Engine) WithdrawTreasuryFees(caller [20]byte) error {
	return e.transact(func() error {
		record, err := e.loadPool()
		if err != nil {
			return err
		}
		if caller != record.Owner {
			return ErrNotOwner
		}
		amount := record.AccruedTreasuryFees0
		if amount.IsZero() {
			return ErrNothingToWithdraw
		}
		if record.Reserve0.Lt(amount) {
			return ErrInsufficientLiquidity
		}
		record.Reserve0 = new(uint256.Int).Sub(record.Reserve0, amount)
		record.AccruedTreasuryFees0 = uint256.NewInt(0)
		if err := e.state.PoolPut(record); err != nil {
			return err
		}
		if err := e.tokens.Transfer(e.token0, record.Treasury, amount); err != nil {
			return err
		}
		e.emit(NewTreasuryWithdrawnEvent(record.Treasury, amount, record.Reserve0))
		return nil
	})
}
