// Package memory implements the ability to keep node snapshots in memory.
package memory

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Memory represents the storage implementation for keeping the last
// snapshot in memory. This implements the database.Storage interface.
type Memory struct {
	mu       sync.RWMutex
	snapshot *database.Snapshot
	saves    int
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Save keeps a copy of the snapshot.
func (m *Memory) Save(snapshot database.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := clone(snapshot)
	m.snapshot = &cp
	m.saves++

	return nil
}

// Load returns a copy of the last snapshot saved.
func (m *Memory) Load() (database.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return database.Snapshot{}, database.ErrNoSnapshot
	}

	return clone(*m.snapshot), nil
}

// Saves returns the number of times a snapshot was saved.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.saves
}

// =============================================================================

func clone(snapshot database.Snapshot) database.Snapshot {
	chain := make([]database.Block, len(snapshot.Chain))
	for i, block := range snapshot.Chain {
		block.Submissions = append([]database.Submission{}, block.Submissions...)
		chain[i] = block
	}

	return database.Snapshot{
		Chain: chain,
		Pool:  append([]database.Submission{}, snapshot.Pool...),
		Peers: append([]string{}, snapshot.Peers...),
	}
}
