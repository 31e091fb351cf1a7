package pool

// moduleName keys the node-level pause switch for this module.
const moduleName = "pool"

const (
	// FeeDenominator is the basis-point denominator (10000 = 100%).
	FeeDenominator = 10_000
	// DefaultFeeBps is the default total trading fee (0.3%).
	DefaultFeeBps = 30
	// MaxFeeBps caps the configurable fee at 10%.
	MaxFeeBps = 1_000
	// TreasuryShareBps is the treasury's share of the total fee rate (0.12%).
	TreasuryShareBps = 12
	// LPShareBps is the liquidity providers' share of the total fee rate (0.18%).
	LPShareBps = 18
	// MinimumLiquidity is the floor seeded on the first liquidity add so the
	// pool can never be drained to zero.
	MinimumLiquidity = 1_000
	// CommitRevealDelay is the minimum number of blocks between commit and
	// reveal.
	CommitRevealDelay = 5
	// MaxCommitmentAge bounds how long a commitment may remain un-revealed.
	MaxCommitmentAge = 1_000_000
)
