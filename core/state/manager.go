package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"veilswap/storage"
)

var errNoSuchSnapshot = errors.New("state: unknown snapshot id")

// Manager layers an in-memory write overlay with an undo journal on top of a
// durable key-value database. State transitions read and write through the
// overlay; Snapshot/RevertToSnapshot give callers the all-or-nothing semantics
// the execution host guarantees, and Commit flushes the surviving overlay to
// the backing store.
type Manager struct {
	db      storage.Database
	overlay map[string]overlayEntry
	journal []journalEntry
	marks   []int
}

type overlayEntry struct {
	value   []byte
	deleted bool
}

// journalEntry records the overlay state of a key before a write so a revert
// can restore it exactly.
type journalEntry struct {
	key      string
	existed  bool
	previous overlayEntry
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db, overlay: make(map[string]overlayEntry)}
}

// KVGet reads the value stored under key into out via RLP decoding. It reports
// whether the key was present.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil {
		return false, fmt.Errorf("state: manager not initialised")
	}
	raw, ok, err := m.rawGet(key)
	if err != nil || !ok {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

// KVPut RLP-encodes value and stages it in the overlay under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil {
		return fmt.Errorf("state: manager not initialised")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	m.stage(key, overlayEntry{value: encoded})
	return nil
}

// KVDelete stages a tombstone for key.
func (m *Manager) KVDelete(key []byte) error {
	if m == nil {
		return fmt.Errorf("state: manager not initialised")
	}
	m.stage(key, overlayEntry{deleted: true})
	return nil
}

// Snapshot marks the current journal position and returns an identifier that
// can be passed to RevertToSnapshot.
func (m *Manager) Snapshot() int {
	m.marks = append(m.marks, len(m.journal))
	return len(m.marks) - 1
}

// RevertToSnapshot unwinds every overlay write performed since the matching
// Snapshot call. Reverting an unknown id panics: it signals a programming
// error in the caller, never a recoverable runtime condition.
func (m *Manager) RevertToSnapshot(id int) {
	if id < 0 || id >= len(m.marks) {
		panic(errNoSuchSnapshot)
	}
	mark := m.marks[id]
	for i := len(m.journal) - 1; i >= mark; i-- {
		entry := m.journal[i]
		if entry.existed {
			m.overlay[entry.key] = entry.previous
		} else {
			delete(m.overlay, entry.key)
		}
	}
	m.journal = m.journal[:mark]
	m.marks = m.marks[:id]
}

// Commit flushes the overlay to the backing database and clears the journal.
// A failed flush leaves the overlay intact so the caller can retry.
func (m *Manager) Commit() error {
	if m == nil {
		return fmt.Errorf("state: manager not initialised")
	}
	for key, entry := range m.overlay {
		if entry.deleted {
			if err := m.db.Delete([]byte(key)); err != nil {
				return fmt.Errorf("state: delete %q: %w", key, err)
			}
			continue
		}
		if err := m.db.Put([]byte(key), entry.value); err != nil {
			return fmt.Errorf("state: put %q: %w", key, err)
		}
	}
	m.overlay = make(map[string]overlayEntry)
	m.journal = m.journal[:0]
	m.marks = m.marks[:0]
	return nil
}

func (m *Manager) rawGet(key []byte) ([]byte, bool, error) {
	if entry, ok := m.overlay[string(key)]; ok {
		if entry.deleted {
			return nil, false, nil
		}
		return entry.value, true, nil
	}
	raw, err := m.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func (m *Manager) stage(key []byte, entry overlayEntry) {
	k := string(key)
	prev, existed := m.overlay[k]
	m.journal = append(m.journal, journalEntry{key: k, existed: existed, previous: prev})
	m.overlay[k] = entry
}
