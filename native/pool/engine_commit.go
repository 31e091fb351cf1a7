package pool

import "github.com/holiman/uint256"

// CommitSwap records the commitment hash for user's upcoming swap. A prior
// un-revealed commitment is overwritten. Only the hash and the current block
// height are persisted; the swap parameters stay private until reveal. The
// operation writes nothing but the caller's own commitment slot, so it runs
// without the execution lock.
func (e *Engine) CommitSwap(user [20]byte, hash [32]byte) error {
	return e.transactUnlocked(func() error {
		if user == ([20]byte{}) {
			return ErrInvalidAddress
		}
		if hash == ([32]byte{}) {
			return ErrZeroHash
		}
		record, err := e.loadPool()
		if err != nil {
			return err
		}
		if record.Paused {
			return ErrPaused
		}
		commitment := &Commitment{
			Hash:           hash,
			BlockCommitted: e.blockHeight,
			Activated:      true,
		}
		if err := e.state.CommitmentPut(user, commitment); err != nil {
			return err
		}
		e.emit(NewSwapCommittedEvent(user, hash, e.blockHeight))
		return nil
	})
}

// RevealSwap opens user's commitment and executes the token0-for-token1 swap
// it described. The commitment is consumed before any funds move, so a
// reentrant reveal observes it as already spent. A zero deadline disables the
// caller's expiry check, and a nil or zero minAmountOut accepts any quote;
// both relaxations are the caller's own risk to take.
func (e *Engine) RevealSwap(user [20]byte, amountIn, salt, minAmountOut *uint256.Int, deadline uint64) error {
	return e.transact(func() error {
		if user == ([20]byte{}) {
			return ErrInvalidAddress
		}
		if amountIn == nil || amountIn.IsZero() {
			return ErrZeroAmount
		}
		record, err := e.loadPool()
		if err != nil {
			return err
		}
		if record.Paused {
			return ErrPaused
		}
		commitment, ok, err := e.state.CommitmentGet(user)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoCommitment
		}
		// The preimage is verified before the window checks so timing
		// errors are only ever reported for the committed swap.
		if CommitHash(amountIn, salt) != commitment.Hash {
			return ErrHashMismatch
		}
		if e.blockHeight > commitment.BlockCommitted+MaxCommitmentAge {
			return ErrCommitmentExpired
		}
		if e.blockHeight < commitment.BlockCommitted+CommitRevealDelay {
			return ErrTooEarly
		}
		if deadline != 0 && e.blockHeight > deadline {
			return ErrExpired
		}

		amountOut, err := QuoteOutput(amountIn, record.Reserve0, record.Reserve1, record.FeeBps)
		if err != nil {
			return err
		}
		if minAmountOut != nil && amountOut.Lt(minAmountOut) {
			return ErrSlippageExceeded
		}
		split, err := SplitFee(amountIn, record.FeeBps)
		if err != nil {
			return err
		}

		// The full input enters reserve0, treasury portion included, so
		// the reserve always equals the pool's real token0 holdings. The
		// treasury share is carved back out when it is withdrawn.
		newReserve0, overflow := new(uint256.Int).AddOverflow(record.Reserve0, amountIn)
		if overflow {
			return ErrOverflow
		}
		record.Reserve0 = newReserve0
		record.Reserve1 = new(uint256.Int).Sub(record.Reserve1, amountOut)
		// The swap may not drain either side below the seeded floor.
		if record.Reserve0.Lt(record.MinLiquidity) || record.Reserve1.Lt(record.MinLiquidity) {
			return ErrInsufficientLiquidity
		}
		if record.AccruedTreasuryFees0, overflow = new(uint256.Int).AddOverflow(record.AccruedTreasuryFees0, split.Treasury); overflow {
			return ErrOverflow
		}
		if record.AccruedLPFees0, overflow = new(uint256.Int).AddOverflow(record.AccruedLPFees0, split.LP); overflow {
			return ErrOverflow
		}
		if record.TotalVolume0, overflow = new(uint256.Int).AddOverflow(record.TotalVolume0, amountIn); overflow {
			return ErrOverflow
		}
		if record.TotalVolume1, overflow = new(uint256.Int).AddOverflow(record.TotalVolume1, amountOut); overflow {
			return ErrOverflow
		}

		// Consume the commitment before funds move.
		if err := e.state.CommitmentDelete(user); err != nil {
			return err
		}
		if err := e.state.PoolPut(record); err != nil {
			return err
		}
		if err := e.tokens.TransferFrom(e.token0, user, e.address, amountIn); err != nil {
			return err
		}
		if err := e.tokens.Transfer(e.token1, user, amountOut); err != nil {
			return err
		}
		e.emit(NewSwapRevealedEvent(user, amountIn, amountOut, split.Treasury, split.LP))
		return nil
	})
}

// CancelCommitment discards user's un-revealed commitment. Cancellation stays
// available while the pool-level pause is set so funds committed before a
// pause are never stranded.
func (e *Engine) CancelCommitment(user [20]byte) error {
	return e.transact(func() error {
		if user == ([20]byte{}) {
			return ErrInvalidAddress
		}
		if _, err := e.loadPool(); err != nil {
			return err
		}
		commitment, ok, err := e.state.CommitmentGet(user)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoCommitment
		}
		if !cancelWindowOpen(commitment.BlockCommitted, e.blockHeight) {
			return ErrTooEarly
		}
		if err := e.state.CommitmentDelete(user); err != nil {
			return err
		}
		e.emit(NewCommitmentCancelledEvent(user, commitment.Hash))
		return nil
	})
}

// cancelWindowOpen decides when a commitment may be withdrawn. The policy is
// kept in one place: a commitment is cancellable once its reveal window has
// opened, and always once it has aged out entirely.
func cancelWindowOpen(committedAt, height uint64) bool {
	if height >= committedAt+CommitRevealDelay {
		return true
	}
	return height > committedAt+MaxCommitmentAge
}
