// Package mempool maintains the pending submissions waiting to be mined.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mempool represents an ordered list of pending submissions. Duplicates
// are kept, the order of arrival is the order of mining.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Submission
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of submissions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Append adds a submission to the end of the pool.
func (mp *Mempool) Append(sub database.Submission) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, sub)

	return len(mp.pool)
}

// Copy returns the submissions in the pool in order.
func (mp *Mempool) Copy() []database.Submission {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	subs := make([]database.Submission, len(mp.pool))
	copy(subs, mp.pool)
	return subs
}

// RemoveMatching removes every pooled submission that equals, on all five
// fields, any of the specified submissions. It returns the number removed.
func (mp *Mempool) RemoveMatching(subs []database.Submission) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	kept := mp.pool[:0]
	for _, pooled := range mp.pool {
		if !contains(subs, pooled) {
			kept = append(kept, pooled)
		}
	}

	removed := len(mp.pool) - len(kept)
	clear(mp.pool[len(kept):])
	mp.pool = kept

	return removed
}

// Replace swaps the content of the pool for the specified submissions.
func (mp *Mempool) Replace(subs []database.Submission) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make([]database.Submission, len(subs))
	copy(mp.pool, subs)
}

// Truncate clears all the submissions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}

// =============================================================================

func contains(subs []database.Submission, sub database.Submission) bool {
	for _, s := range subs {
		if s.Equals(sub) {
			return true
		}
	}
	return false
}
