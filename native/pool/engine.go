package pool

import (
	"veilswap/core/events"
	"veilswap/core/types"
	nativecommon "veilswap/native/common"
)

// engineState is the narrow slice of state the engine mutates. *Store
// implements it over the journaled manager; tests may substitute their own.
type engineState interface {
	PoolGet() (*Pool, bool, error)
	PoolPut(*Pool) error
	CommitmentGet(addr [20]byte) (*Commitment, bool, error)
	CommitmentPut(addr [20]byte, c *Commitment) error
	CommitmentDelete(addr [20]byte) error
	Snapshot() int
	RevertToSnapshot(id int)
}

// Engine executes pool transitions against the configured state. All mutating
// entry points run inside a journal snapshot; any error reverts every write
// and token movement made during the call.
type Engine struct {
	state   engineState
	tokens  TokenLedger
	emitter events.Emitter
	pauses  nativecommon.PauseView

	// address is the pool's own account, the endpoint of every deposit and
	// withdrawal it performs.
	address [20]byte

	token0 [20]byte
	token1 [20]byte

	blockHeight uint64
	guard       executionGuard
}

// NewEngine creates a pool engine bound to its module account and the two
// token contracts it trades. The emitter defaults to a no-op.
func NewEngine(moduleAddr, token0, token1 [20]byte) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		address: moduleAddr,
		token0:  token0,
		token1:  token1,
	}
}

// SetState wires the persistence layer used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetTokens wires the token ledger used for all fund movement.
func (e *Engine) SetTokens(tokens TokenLedger) { e.tokens = tokens }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses wires the node-level pause view consulted before every mutating
// call.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetBlockHeight records the current block height used for commit-reveal
// windows.
func (e *Engine) SetBlockHeight(height uint64) { e.blockHeight = height }

// BlockHeight returns the height the engine is executing at.
func (e *Engine) BlockHeight() uint64 { return e.blockHeight }

// ModuleAddress returns the pool's own account address.
func (e *Engine) ModuleAddress() [20]byte { return e.address }

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.tokens == nil {
		return errNilTokens
	}
	return nil
}

// transact wraps fn in the reentrancy lock and a journal snapshot. Errors
// from fn revert the snapshot so no partial transition survives.
func (e *Engine) transact(fn func() error) error {
	if err := e.guard.lock(); err != nil {
		return err
	}
	defer e.guard.unlock()
	return e.transactUnlocked(fn)
}

// transactUnlocked is transact without the lock. CommitSwap uses it: the
// operation touches only the caller's own commitment slot, so it stays legal
// inside a flash callback.
func (e *Engine) transactUnlocked(fn func() error) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	snapshot := e.state.Snapshot()
	if err := fn(); err != nil {
		e.state.RevertToSnapshot(snapshot)
		return err
	}
	return nil
}

// loadPool fetches the aggregate, failing when Init has not run.
func (e *Engine) loadPool() (*Pool, error) {
	record, ok, err := e.state.PoolGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	return record, nil
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(poolEvent{evt: event})
}

// PoolView returns a copy of the current pool aggregate for read-only
// consumers.
func (e *Engine) PoolView() (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// CommitmentView returns a copy of the live commitment for addr, if any.
func (e *Engine) CommitmentView(addr [20]byte) (*Commitment, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	record, ok, err := e.state.CommitmentGet(addr)
	if err != nil || !ok {
		return nil, ok, err
	}
	return record.Clone(), true, nil
}
