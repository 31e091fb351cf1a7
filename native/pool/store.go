package pool

import "fmt"

// KV is the slice of the state manager the pool store needs: typed slot
// access plus the journal controls that make multi-slot updates atomic.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	Snapshot() int
	RevertToSnapshot(id int)
}

// Store persists the pool aggregate and commitment records in dedicated
// state slots. All records are RLP encoded by the underlying manager.
type Store struct {
	kv KV
}

// NewStore binds a store to the supplied key-value state.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// PoolGet loads the pool aggregate. The boolean reports whether Init has ever
// persisted one.
func (s *Store) PoolGet() (*Pool, bool, error) {
	if s == nil || s.kv == nil {
		return nil, false, fmt.Errorf("pool: store not initialised")
	}
	var record Pool
	ok, err := s.kv.KVGet(poolKey, &record)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	record.normalize()
	return &record, true, nil
}

// PoolPut persists the pool aggregate.
func (s *Store) PoolPut(p *Pool) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("pool: store not initialised")
	}
	if p == nil {
		return fmt.Errorf("pool: nil pool record")
	}
	p.normalize()
	return s.kv.KVPut(poolKey, p)
}

// CommitmentGet loads the live commitment for addr, if any.
func (s *Store) CommitmentGet(addr [20]byte) (*Commitment, bool, error) {
	if s == nil || s.kv == nil {
		return nil, false, fmt.Errorf("pool: store not initialised")
	}
	var record Commitment
	ok, err := s.kv.KVGet(commitmentKey(addr), &record)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &record, true, nil
}

// CommitmentPut stores the commitment for addr, replacing any prior record.
func (s *Store) CommitmentPut(addr [20]byte, c *Commitment) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("pool: store not initialised")
	}
	if c == nil {
		return fmt.Errorf("pool: nil commitment record")
	}
	return s.kv.KVPut(commitmentKey(addr), c)
}

// CommitmentDelete removes the commitment for addr. Deleting an absent record
// is not an error.
func (s *Store) CommitmentDelete(addr [20]byte) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("pool: store not initialised")
	}
	return s.kv.KVDelete(commitmentKey(addr))
}

// Snapshot marks the current journal position.
func (s *Store) Snapshot() int {
	return s.kv.Snapshot()
}

// RevertToSnapshot unwinds every write made since the matching Snapshot call.
func (s *Store) RevertToSnapshot(id int) {
	s.kv.RevertToSnapshot(id)
}
