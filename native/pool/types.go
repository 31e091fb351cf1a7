package pool

import "github.com/holiman/uint256"

// Pool is the singleton aggregate holding all persistent state for the
// two-token pair. Reserves are tracked by the ledger, never queried live:
// every path that moves tokens in or out of the pool adjusts the matching
// reserve within the same state transition.
type Pool struct {
	Owner    [20]byte
	Treasury [20]byte

	Reserve0 *uint256.Int
	Reserve1 *uint256.Int

	// MinLiquidity is zero until the first liquidity add seeds it.
	MinLiquidity *uint256.Int

	FeeBps      uint64
	FlashFeeBps uint64
	Paused      bool

	AccruedTreasuryFees0 *uint256.Int
	AccruedLPFees0       *uint256.Int

	TotalVolume0 *uint256.Int
	TotalVolume1 *uint256.Int
}

// Initialized reports whether Init has run; the owner slot doubles as the
// initialization marker.
func (p *Pool) Initialized() bool {
	return p != nil && p.Owner != ([20]byte{})
}

// Clone returns a deep copy so callers cannot mutate shared pointers.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Reserve0 = cloneAmount(p.Reserve0)
	clone.Reserve1 = cloneAmount(p.Reserve1)
	clone.MinLiquidity = cloneAmount(p.MinLiquidity)
	clone.AccruedTreasuryFees0 = cloneAmount(p.AccruedTreasuryFees0)
	clone.AccruedLPFees0 = cloneAmount(p.AccruedLPFees0)
	clone.TotalVolume0 = cloneAmount(p.TotalVolume0)
	clone.TotalVolume1 = cloneAmount(p.TotalVolume1)
	return &clone
}

func (p *Pool) normalize() {
	p.Reserve0 = ensureAmount(p.Reserve0)
	p.Reserve1 = ensureAmount(p.Reserve1)
	p.MinLiquidity = ensureAmount(p.MinLiquidity)
	p.AccruedTreasuryFees0 = ensureAmount(p.AccruedTreasuryFees0)
	p.AccruedLPFees0 = ensureAmount(p.AccruedLPFees0)
	p.TotalVolume0 = ensureAmount(p.TotalVolume0)
	p.TotalVolume1 = ensureAmount(p.TotalVolume1)
}

// Commitment is the per-address commit-reveal record. At most one live
// commitment exists per address; a new commit overwrites the old one.
type Commitment struct {
	Hash           [32]byte
	BlockCommitted uint64
	Activated      bool
}

// Clone returns a copy of the commitment record.
func (c *Commitment) Clone() *Commitment {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func cloneAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(v)
}

func ensureAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	return v
}
