package pool

import (
	"encoding/hex"
	"strconv"

	"github.com/holiman/uint256"

	"veilswap/core/types"
)

const (
	EventTypeSwapCommitted       = "pool.swap_committed"
	EventTypeSwapRevealed        = "pool.swap_revealed"
	EventTypeCommitmentCancelled = "pool.commitment_cancelled"
	EventTypeLiquidityAdded      = "pool.liquidity_added"
	EventTypeTreasuryWithdrawn   = "pool.treasury_withdrawn"
	EventTypeFlashSwap           = "pool.flash_swap"
	EventTypeFeeUpdated          = "pool.fee_updated"
	EventTypePauseChanged        = "pool.pause_changed"
)

// poolEvent adapts the canonical payload to the module event interface.
type poolEvent struct {
	evt *types.Event
}

func (e poolEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

// NewSwapCommittedEvent returns the payload emitted when a commitment is
// recorded. The hash is the only swap detail published at commit time.
func NewSwapCommittedEvent(user [20]byte, hash [32]byte, block uint64) *types.Event {
	return &types.Event{
		Type: EventTypeSwapCommitted,
		Attributes: map[string]string{
			"user":  hexAddr(user),
			"hash":  hex.EncodeToString(hash[:]),
			"block": strconv.FormatUint(block, 10),
		},
	}
}

// NewSwapRevealedEvent returns the payload emitted when a reveal settles.
func NewSwapRevealedEvent(user [20]byte, amountIn, amountOut, treasuryFee, lpFee *uint256.Int) *types.Event {
	return &types.Event{
		Type: EventTypeSwapRevealed,
		Attributes: map[string]string{
			"user":        hexAddr(user),
			"amountIn":    amountStr(amountIn),
			"amountOut":   amountStr(amountOut),
			"treasuryFee": amountStr(treasuryFee),
			"lpFee":       amountStr(lpFee),
		},
	}
}

// NewCommitmentCancelledEvent returns the payload emitted when a user
// withdraws a commitment without revealing.
func NewCommitmentCancelledEvent(user [20]byte, hash [32]byte) *types.Event {
	return &types.Event{
		Type: EventTypeCommitmentCancelled,
		Attributes: map[string]string{
			"user": hexAddr(user),
			"hash": hex.EncodeToString(hash[:]),
		},
	}
}

// NewLiquidityAddedEvent returns the payload emitted after a deposit.
func NewLiquidityAddedEvent(provider [20]byte, amount0, amount1, reserve0, reserve1 *uint256.Int) *types.Event {
	return &types.Event{
		Type: EventTypeLiquidityAdded,
		Attributes: map[string]string{
			"provider": hexAddr(provider),
			"amount0":  amountStr(amount0),
			"amount1":  amountStr(amount1),
			"reserve0": amountStr(reserve0),
			"reserve1": amountStr(reserve1),
		},
	}
}

// NewTreasuryWithdrawnEvent returns the payload emitted when accrued treasury
// fees leave the pool.
func NewTreasuryWithdrawnEvent(treasury [20]byte, amount, reserve0 *uint256.Int) *types.Event {
	return &types.Event{
		Type: EventTypeTreasuryWithdrawn,
		Attributes: map[string]string{
			"treasury": hexAddr(treasury),
			"amount":   amountStr(amount),
			"reserve0": amountStr(reserve0),
		},
	}
}

// NewFlashSwapEvent returns the payload emitted after a flash swap settles.
func NewFlashSwapEvent(borrower [20]byte, amount0, amount1, reserve0, reserve1 *uint256.Int) *types.Event {
	return &types.Event{
		Type: EventTypeFlashSwap,
		Attributes: map[string]string{
			"borrower": hexAddr(borrower),
			"amount0":  amountStr(amount0),
			"amount1":  amountStr(amount1),
			"reserve0": amountStr(reserve0),
			"reserve1": amountStr(reserve1),
		},
	}
}

// NewFeeUpdatedEvent returns the payload emitted when the owner changes the
// trading fee.
func NewFeeUpdatedEvent(oldBps, newBps uint64) *types.Event {
	return &types.Event{
		Type: EventTypeFeeUpdated,
		Attributes: map[string]string{
			"oldFeeBps": strconv.FormatUint(oldBps, 10),
			"newFeeBps": strconv.FormatUint(newBps, 10),
		},
	}
}

// NewPauseChangedEvent returns the payload emitted when the owner toggles the
// pause flag.
func NewPauseChangedEvent(paused bool) *types.Event {
	return &types.Event{
		Type: EventTypePauseChanged,
		Attributes: map[string]string{
			"paused": strconv.FormatBool(paused),
		},
	}
}

func hexAddr(addr [20]byte) string {
	return hex.EncodeToString(addr[:])
}

func amountStr(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
