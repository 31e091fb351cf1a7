package pool

import "github.com/holiman/uint256"

var (
	bpsDenominator = uint256.NewInt(FeeDenominator)
	treasuryShare  = uint256.NewInt(TreasuryShareBps)
	lpShare        = uint256.NewInt(LPShareBps)
)

// QuoteOutput prices a swap against the constant-product curve with the fee
// taken from the input side:
//
//	out = in*(10000-fee)*reserveOut / (reserveIn*10000 + in*(10000-fee))
//
// Division truncates toward the pool, so the product of reserves can only
// grow. The returned amount is strictly less than reserveOut.
func QuoteOutput(amountIn, reserveIn, reserveOut *uint256.Int, feeBps uint64) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroAmount
	}
	// Empty reserves are a zero-value input like a zero amountIn, not a
	// liquidity shortfall. Draining the output side below the quote is the
	// liquidity error.
	if reserveIn == nil || reserveOut == nil || reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrZeroAmount
	}
	if feeBps > FeeDenominator {
		return nil, ErrFeeTooHigh
	}
	keep := uint256.NewInt(FeeDenominator - feeBps)
	effectiveIn, overflow := new(uint256.Int).MulOverflow(amountIn, keep)
	if overflow {
		return nil, ErrOverflow
	}
	numerator, overflow := new(uint256.Int).MulOverflow(effectiveIn, reserveOut)
	if overflow {
		return nil, ErrOverflow
	}
	scaledReserve, overflow := new(uint256.Int).MulOverflow(reserveIn, bpsDenominator)
	if overflow {
		return nil, ErrOverflow
	}
	denominator, overflow := new(uint256.Int).AddOverflow(scaledReserve, effectiveIn)
	if overflow {
		return nil, ErrOverflow
	}
	if denominator.IsZero() {
		return nil, ErrDivisionByZero
	}
	out := new(uint256.Int).Div(numerator, denominator)
	if !out.Lt(reserveOut) {
		return nil, ErrInsufficientLiquidity
	}
	return out, nil
}

// FeeSplit breaks the total fee charged on amountIn into the treasury and
// liquidity-provider portions. Each portion is computed directly from its
// share of the fee rate; truncation may leave up to one unit of the total
// unassigned, which stays in the reserves.
type FeeSplit struct {
	Total    *uint256.Int
	Treasury *uint256.Int
	LP       *uint256.Int
}

// SplitFee computes the fee breakdown for a swap input. The treasury and LP
// portions are checked against the total before being reported; a split that
// exceeds the total is an arithmetic fault, never silently clamped.
func SplitFee(amountIn *uint256.Int, feeBps uint64) (FeeSplit, error) {
	if amountIn == nil {
		return FeeSplit{}, ErrZeroAmount
	}
	if feeBps > FeeDenominator {
		return FeeSplit{}, ErrFeeTooHigh
	}
	rate := uint256.NewInt(feeBps)
	scaled, overflow := new(uint256.Int).MulOverflow(amountIn, rate)
	if overflow {
		return FeeSplit{}, ErrOverflow
	}
	total := new(uint256.Int).Div(scaled, bpsDenominator)

	split := FeeSplit{
		Total:    total,
		Treasury: uint256.NewInt(0),
		LP:       uint256.NewInt(0),
	}
	if feeBps == 0 || total.IsZero() {
		return split, nil
	}
	feeRate := uint256.NewInt(feeBps)
	treasuryScaled, overflow := new(uint256.Int).MulOverflow(total, treasuryShare)
	if overflow {
		return FeeSplit{}, ErrOverflow
	}
	split.Treasury = treasuryScaled.Div(treasuryScaled, feeRate)
	lpScaled, overflow := new(uint256.Int).MulOverflow(total, lpShare)
	if overflow {
		return FeeSplit{}, ErrOverflow
	}
	split.LP = lpScaled.Div(lpScaled, feeRate)

	assigned, overflow := new(uint256.Int).AddOverflow(split.Treasury, split.LP)
	if overflow {
		return FeeSplit{}, ErrOverflow
	}
	if assigned.Gt(total) {
		return FeeSplit{}, ErrFeeSplitInvariant
	}
	return split, nil
}

// flashFee charges the flash premium on the borrowed amount. Division
// truncates, matching the trading fee math.
func flashFee(amount *uint256.Int, flashFeeBps uint64) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return uint256.NewInt(0), nil
	}
	scaled, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(flashFeeBps))
	if overflow {
		return nil, ErrOverflow
	}
	return scaled.Div(scaled, bpsDenominator), nil
}
