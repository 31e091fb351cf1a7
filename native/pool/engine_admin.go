package pool

import "github.com/holiman/uint256"

// Init creates the pool aggregate. It may run exactly once; the fee rates are
// fixed relative to MaxFeeBps and the flash fee cannot change after this
// call.
func (e *Engine) Init(owner, treasury [20]byte, feeBps, flashFeeBps uint64) error {
	return e.transact(func() error {
		if owner == ([20]byte{}) || treasury == ([20]byte{}) {
			return ErrInvalidAddress
		}
		if feeBps > MaxFeeBps || flashFeeBps > MaxFeeBps {
			return ErrFeeTooHigh
		}
		if _, ok, err := e.state.PoolGet(); err != nil {
			return err
		} else if ok {
			return ErrAlreadyInitialized
		}
		record := &Pool{
			Owner:       owner,
			Treasury:    treasury,
			FeeBps:      feeBps,
			FlashFeeBps: flashFeeBps,
		}
		return e.state.PoolPut(record)
	})
}

// SetFee updates the trading fee. Owner only; the new rate must not exceed
// the protocol maximum.
func (e *Engine) SetFee(caller [20]byte, feeBps uint64) error {
	return e.transact(func() error {
		record, err := e.loadPool()
		if err != nil {
			return err
		}
		if caller != record.Owner {
			return ErrNotOwner
		}
		if feeBps > MaxFeeBps {
			return ErrFeeTooHigh
		}
		oldBps := record.FeeBps
		record.FeeBps = feeBps
		if err := e.state.PoolPut(record); err != nil {
			return err
		}
		e.emit(NewFeeUpdatedEvent(oldBps, feeBps))
		return nil
	})
}

// Pause halts commits, reveals, liquidity adds and flash swaps. Owner only.
// Cancellations stay available so users are never trapped mid-commit.
func (e *Engine) Pause(caller [20]byte) error {
	return e.setPaused(caller, true)
}

// Unpause re-enables trading. Owner only.
func (e *Engine) Unpause(caller [20]byte) error {
	return e.setPaused(caller, false)
}

func (e *Engine) setPaused(caller [20]byte, paused bool) error {
	return e.transact(func() error {
		record, err := e.loadPool()
		if err != nil {
			return err
		}
		if caller != record.Owner {
			return ErrNotOwner
		}
		if record.Paused == paused {
			return nil
		}
		record.Paused = paused
		if err := e.state.PoolPut(record); err != nil {
			return err
		}
		e.emit(NewPauseChangedEvent(paused))
		return nil
	})
}

// Quote prices a hypothetical token0-for-token1 swap against the current
// reserves without mutating state.
func (e *Engine) Quote(amountIn *uint256.Int) (*uint256.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	return QuoteOutput(amountIn, record.Reserve0, record.Reserve1, record.FeeBps)
}
