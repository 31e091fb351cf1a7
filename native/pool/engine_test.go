package pool

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"veilswap/core/events"
	"veilswap/core/state"
	"veilswap/native/bank"
	nativecommon "veilswap/native/common"
	"veilswap/storage"
)

var (
	token0Addr   = [20]byte{0x01}
	token1Addr   = [20]byte{0x02}
	poolAddr     = [20]byte{0x0a}
	ownerAddr    = [20]byte{0x11}
	treasuryAddr = [20]byte{0x12}
	userAddr     = [20]byte{0x21}
	borrowerAddr = [20]byte{0x22}
)

type fixture struct {
	engine   *Engine
	manager  *state.Manager
	ledger   *bank.Ledger
	recorder *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	ledger := bank.NewLedger(manager)
	recorder := &events.Recorder{}

	engine := NewEngine(poolAddr, token0Addr, token1Addr)
	engine.SetState(NewStore(manager))
	engine.SetTokens(bank.NewVault(ledger, poolAddr))
	engine.SetEmitter(recorder)
	engine.SetBlockHeight(100)

	if err := engine.Init(ownerAddr, treasuryAddr, DefaultFeeBps, DefaultFeeBps); err != nil {
		t.Fatalf("init: %v", err)
	}
	return &fixture{engine: engine, manager: manager, ledger: ledger, recorder: recorder}
}

func (f *fixture) mint(t *testing.T, token, account [20]byte, amount uint64) {
	t.Helper()
	if err := f.ledger.Mint(token, account, uint256.NewInt(amount)); err != nil {
		t.Fatalf("mint: %v", err)
	}
}

func (f *fixture) balance(t *testing.T, token, account [20]byte) *uint256.Int {
	t.Helper()
	bal, err := f.ledger.BalanceOf(token, account)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal
}

func (f *fixture) seedLiquidity(t *testing.T, amount0, amount1 uint64) {
	t.Helper()
	f.mint(t, token0Addr, ownerAddr, amount0)
	f.mint(t, token1Addr, ownerAddr, amount1)
	if err := f.engine.AddLiquidity(ownerAddr, uint256.NewInt(amount0), uint256.NewInt(amount1)); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
}

func (f *fixture) lastEventType() string {
	recorded := f.recorder.Events()
	if len(recorded) == 0 {
		return ""
	}
	return recorded[len(recorded)-1].EventType()
}

func TestInitOnce(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.Init(ownerAddr, treasuryAddr, DefaultFeeBps, DefaultFeeBps); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestInitValidation(t *testing.T) {
	manager := state.NewManager(storage.NewMemDB())
	engine := NewEngine(poolAddr, token0Addr, token1Addr)
	engine.SetState(NewStore(manager))
	engine.SetTokens(bank.NewVault(bank.NewLedger(manager), poolAddr))

	if err := engine.Init([20]byte{}, treasuryAddr, DefaultFeeBps, DefaultFeeBps); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("zero owner: expected ErrInvalidAddress, got %v", err)
	}
	if err := engine.Init(ownerAddr, [20]byte{}, DefaultFeeBps, DefaultFeeBps); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("zero treasury: expected ErrInvalidAddress, got %v", err)
	}
	if err := engine.Init(ownerAddr, treasuryAddr, MaxFeeBps+1, DefaultFeeBps); !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("fee too high: expected ErrFeeTooHigh, got %v", err)
	}
}

func TestCommitRevealRoundtrip(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.mint(t, token0Addr, userAddr, 50_000)

	amountIn := uint256.NewInt(10_000)
	salt := uint256.NewInt(424242)
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := f.lastEventType(); got != EventTypeSwapCommitted {
		t.Fatalf("expected %s event, got %q", EventTypeSwapCommitted, got)
	}

	expectedOut, err := f.engine.Quote(amountIn)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	f.engine.SetBlockHeight(100 + CommitRevealDelay)
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, nil, 0); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	if got := f.balance(t, token0Addr, userAddr); got.Uint64() != 40_000 {
		t.Fatalf("user token0: expected 40000, got %s", got)
	}
	if got := f.balance(t, token1Addr, userAddr); !got.Eq(expectedOut) {
		t.Fatalf("user token1: expected %s, got %s", expectedOut, got)
	}

	record, err := f.engine.PoolView()
	if err != nil {
		t.Fatalf("pool view: %v", err)
	}
	wantReserve0 := uint256.NewInt(1_010_000)
	if !record.Reserve0.Eq(wantReserve0) {
		t.Fatalf("reserve0: expected %s, got %s", wantReserve0, record.Reserve0)
	}
	wantReserve1 := new(uint256.Int).Sub(uint256.NewInt(1_000_000), expectedOut)
	if !record.Reserve1.Eq(wantReserve1) {
		t.Fatalf("reserve1: expected %s, got %s", wantReserve1, record.Reserve1)
	}
	// amountIn*30/10000 = 30 total; shares 12/30 and 18/30 of that.
	if record.AccruedTreasuryFees0.Uint64() != 12 {
		t.Fatalf("treasury accrual: expected 12, got %s", record.AccruedTreasuryFees0)
	}
	if record.AccruedLPFees0.Uint64() != 18 {
		t.Fatalf("lp accrual: expected 18, got %s", record.AccruedLPFees0)
	}
	if !record.TotalVolume0.Eq(amountIn) {
		t.Fatalf("volume0: expected %s, got %s", amountIn, record.TotalVolume0)
	}

	// The commitment is consumed; a second reveal has nothing to open.
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, nil, 0); !errors.Is(err, ErrNoCommitment) {
		t.Fatalf("expected ErrNoCommitment, got %v", err)
	}
}

func TestRevealTooEarly(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.mint(t, token0Addr, userAddr, 1_000)

	amountIn := uint256.NewInt(100)
	salt := uint256.NewInt(7)
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	f.engine.SetBlockHeight(100 + CommitRevealDelay - 1)
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, nil, 0); !errors.Is(err, ErrTooEarly) {
		t.Fatalf("expected ErrTooEarly, got %v", err)
	}
	// A wrong preimage is reported as such even before the window opens.
	if err := f.engine.RevealSwap(userAddr, amountIn, uint256.NewInt(8), nil, 0); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}
}

func TestRevealHashMismatchKeepsCommitment(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.mint(t, token0Addr, userAddr, 1_000)

	amountIn := uint256.NewInt(100)
	salt := uint256.NewInt(7)
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	f.engine.SetBlockHeight(100 + CommitRevealDelay)
	if err := f.engine.RevealSwap(userAddr, amountIn, uint256.NewInt(8), nil, 0); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}
	if _, ok, err := f.engine.CommitmentView(userAddr); err != nil || !ok {
		t.Fatalf("commitment should survive a failed reveal (ok=%v err=%v)", ok, err)
	}
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, nil, 0); err != nil {
		t.Fatalf("reveal with correct salt: %v", err)
	}
}

func TestRevealDeadline(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.mint(t, token0Addr, userAddr, 1_000)

	amountIn := uint256.NewInt(100)
	salt := uint256.NewInt(7)
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	f.engine.SetBlockHeight(110)
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, nil, 109); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	// Deadline zero disables the check.
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, nil, 0); err != nil {
		t.Fatalf("reveal without deadline: %v", err)
	}
}

func TestRevealAgedOutCommitment(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.mint(t, token0Addr, userAddr, 1_000)

	amountIn := uint256.NewInt(100)
	salt := uint256.NewInt(7)
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	f.engine.SetBlockHeight(100 + MaxCommitmentAge + 1)
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, nil, 0); !errors.Is(err, ErrCommitmentExpired) {
		t.Fatalf("expected ErrCommitmentExpired, got %v", err)
	}
	// The stale record can still be cancelled.
	if err := f.engine.CancelCommitment(userAddr); err != nil {
		t.Fatalf("cancel aged commitment: %v", err)
	}
}

func TestRevealSlippage(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.mint(t, token0Addr, userAddr, 1_000)

	amountIn := uint256.NewInt(100)
	salt := uint256.NewInt(7)
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	f.engine.SetBlockHeight(100 + CommitRevealDelay)
	quote, err := f.engine.Quote(amountIn)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	min := new(uint256.Int).AddUint64(quote, 1)
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, min, 0); !errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("expected ErrSlippageExceeded, got %v", err)
	}
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, quote, 0); err != nil {
		t.Fatalf("reveal at exact quote: %v", err)
	}
}

func TestCommitOverwritesPrior(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.mint(t, token0Addr, userAddr, 1_000)

	oldAmount := uint256.NewInt(100)
	newAmount := uint256.NewInt(200)
	salt := uint256.NewInt(7)
	if err := f.engine.CommitSwap(userAddr, CommitHash(oldAmount, salt)); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := f.engine.CommitSwap(userAddr, CommitHash(newAmount, salt)); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	f.engine.SetBlockHeight(100 + CommitRevealDelay)
	if err := f.engine.RevealSwap(userAddr, oldAmount, salt, nil, 0); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("old preimage: expected ErrHashMismatch, got %v", err)
	}
	if err := f.engine.RevealSwap(userAddr, newAmount, salt, nil, 0); err != nil {
		t.Fatalf("new preimage: %v", err)
	}
}

func TestCancelCommitmentWindow(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)

	amountIn := uint256.NewInt(100)
	salt := uint256.NewInt(7)
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := f.engine.CancelCommitment(userAddr); !errors.Is(err, ErrTooEarly) {
		t.Fatalf("expected ErrTooEarly, got %v", err)
	}
	f.engine.SetBlockHeight(100 + CommitRevealDelay)
	if err := f.engine.CancelCommitment(userAddr); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := f.lastEventType(); got != EventTypeCommitmentCancelled {
		t.Fatalf("expected %s event, got %q", EventTypeCommitmentCancelled, got)
	}
	if err := f.engine.CancelCommitment(userAddr); !errors.Is(err, ErrNoCommitment) {
		t.Fatalf("expected ErrNoCommitment, got %v", err)
	}
}

func TestPauseGatesTradingNotCancel(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.mint(t, token0Addr, userAddr, 1_000)

	amountIn := uint256.NewInt(100)
	salt := uint256.NewInt(7)
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := f.engine.Pause(userAddr); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("non-owner pause: expected ErrNotOwner, got %v", err)
	}
	if err := f.engine.Pause(ownerAddr); err != nil {
		t.Fatalf("pause: %v", err)
	}

	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); !errors.Is(err, ErrPaused) {
		t.Fatalf("commit while paused: expected ErrPaused, got %v", err)
	}
	f.engine.SetBlockHeight(100 + CommitRevealDelay)
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, nil, 0); !errors.Is(err, ErrPaused) {
		t.Fatalf("reveal while paused: expected ErrPaused, got %v", err)
	}
	if err := f.engine.AddLiquidity(ownerAddr, uint256.NewInt(1), uint256.NewInt(1)); !errors.Is(err, ErrPaused) {
		t.Fatalf("add liquidity while paused: expected ErrPaused, got %v", err)
	}
	if err := f.engine.CancelCommitment(userAddr); err != nil {
		t.Fatalf("cancel while paused: %v", err)
	}

	if err := f.engine.Unpause(ownerAddr); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit after unpause: %v", err)
	}
}

type stuckPauses struct{}

func (stuckPauses) IsPaused(module string) bool { return module == moduleName }

func TestNodePauseSwitch(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.engine.SetPauses(stuckPauses{})
	err := f.engine.CommitSwap(userAddr, CommitHash(uint256.NewInt(1), uint256.NewInt(2)))
	if !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
}

func TestSetFee(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.SetFee(userAddr, 50); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := f.engine.SetFee(ownerAddr, MaxFeeBps+1); !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("expected ErrFeeTooHigh, got %v", err)
	}
	if err := f.engine.SetFee(ownerAddr, 50); err != nil {
		t.Fatalf("set fee: %v", err)
	}
	record, err := f.engine.PoolView()
	if err != nil {
		t.Fatalf("pool view: %v", err)
	}
	if record.FeeBps != 50 {
		t.Fatalf("expected fee 50, got %d", record.FeeBps)
	}
	if got := f.lastEventType(); got != EventTypeFeeUpdated {
		t.Fatalf("expected %s event, got %q", EventTypeFeeUpdated, got)
	}
}

func TestAddLiquidityFirstDepositFloor(t *testing.T) {
	f := newFixture(t)
	f.mint(t, token0Addr, ownerAddr, 10_000)
	f.mint(t, token1Addr, ownerAddr, 10_000)

	// 400 + 500 falls short of the combined floor.
	err := f.engine.AddLiquidity(ownerAddr, uint256.NewInt(400), uint256.NewInt(500))
	if !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity, got %v", err)
	}
	if err := f.engine.AddLiquidity(ownerAddr, uint256.NewInt(MinimumLiquidity), uint256.NewInt(MinimumLiquidity)); err != nil {
		t.Fatalf("seed deposit: %v", err)
	}
	// Later deposits may be below the floor on their own.
	f.mint(t, token0Addr, ownerAddr, 10)
	f.mint(t, token1Addr, ownerAddr, 10)
	if err := f.engine.AddLiquidity(ownerAddr, uint256.NewInt(1), uint256.NewInt(1)); err != nil {
		t.Fatalf("follow-up deposit: %v", err)
	}
}

func TestAddLiquidityRejectsZeroSide(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.AddLiquidity(ownerAddr, uint256.NewInt(0), uint256.NewInt(10)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
}

func TestAddLiquidityInsufficientFundsReverts(t *testing.T) {
	f := newFixture(t)
	f.mint(t, token0Addr, ownerAddr, 2_000)
	// No token1 balance: the second transfer fails and the whole deposit
	// must unwind, reserves included.
	err := f.engine.AddLiquidity(ownerAddr, uint256.NewInt(2_000), uint256.NewInt(2_000))
	if !errors.Is(err, bank.ErrInsufficientBalance) {
		t.Fatalf("expected bank.ErrInsufficientBalance, got %v", err)
	}
	record, err := f.engine.PoolView()
	if err != nil {
		t.Fatalf("pool view: %v", err)
	}
	if !record.Reserve0.IsZero() || !record.Reserve1.IsZero() {
		t.Fatalf("reserves not reverted: %s / %s", record.Reserve0, record.Reserve1)
	}
	if got := f.balance(t, token0Addr, ownerAddr); got.Uint64() != 2_000 {
		t.Fatalf("owner token0 not restored: %s", got)
	}
}

func TestWithdrawTreasuryFees(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	f.mint(t, token0Addr, userAddr, 50_000)

	amountIn := uint256.NewInt(10_000)
	salt := uint256.NewInt(9)
	if err := f.engine.CommitSwap(userAddr, CommitHash(amountIn, salt)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	f.engine.SetBlockHeight(100 + CommitRevealDelay)
	if err := f.engine.RevealSwap(userAddr, amountIn, salt, nil, 0); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	quoteBefore, err := f.engine.Quote(uint256.NewInt(1_000))
	if err != nil {
		t.Fatalf("quote before: %v", err)
	}

	if err := f.engine.WithdrawTreasuryFees(userAddr); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := f.engine.WithdrawTreasuryFees(ownerAddr); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	if got := f.balance(t, token0Addr, treasuryAddr); got.Uint64() != 12 {
		t.Fatalf("treasury balance: expected 12, got %s", got)
	}
	record, err := f.engine.PoolView()
	if err != nil {
		t.Fatalf("pool view: %v", err)
	}
	if record.Reserve0.Uint64() != 1_010_000-12 {
		t.Fatalf("reserve0: expected %d, got %s", 1_010_000-12, record.Reserve0)
	}
	if !record.AccruedTreasuryFees0.IsZero() {
		t.Fatalf("accrual not cleared: %s", record.AccruedTreasuryFees0)
	}
	// Pricing reflects the withdrawn reserve immediately: a smaller input
	// reserve can only raise the output for the same input.
	quoteAfter, err := f.engine.Quote(uint256.NewInt(1_000))
	if err != nil {
		t.Fatalf("quote after: %v", err)
	}
	if quoteAfter.Lt(quoteBefore) {
		t.Fatalf("quote regressed after reserve0 shrank: before %s after %s", quoteBefore, quoteAfter)
	}

	if err := f.engine.WithdrawTreasuryFees(ownerAddr); !errors.Is(err, ErrNothingToWithdraw) {
		t.Fatalf("expected ErrNothingToWithdraw, got %v", err)
	}
}

func TestPoolViewIsACopy(t *testing.T) {
	f := newFixture(t)
	f.seedLiquidity(t, 1_000_000, 1_000_000)
	view, err := f.engine.PoolView()
	if err != nil {
		t.Fatalf("pool view: %v", err)
	}
	view.Reserve0.SetUint64(1)
	fresh, err := f.engine.PoolView()
	if err != nil {
		t.Fatalf("pool view: %v", err)
	}
	if fresh.Reserve0.Uint64() != 1_000_000 {
		t.Fatalf("view mutation leaked into state: %s", fresh.Reserve0)
	}
}
