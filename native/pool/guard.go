package pool

// executionGuard is the reentrancy latch shared by all state-mutating entry
// points. It is plain state rather than a mutex: a locked guard means the
// caller re-entered through an external callback, which must fail rather
// than block.
type executionGuard struct {
	locked bool
}

func (g *executionGuard) lock() error {
	if g.locked {
		return ErrReentrantCall
	}
	g.locked = true
	return nil
}

func (g *executionGuard) unlock() {
	g.locked = false
}
