package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// Snapshot returns the durable state of the node.
func (s *State) Snapshot() database.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Restore replaces the state of the node with the snapshot. The chain is
// validated first and pooled submissions with bad signatures are dropped.
func (s *State) Restore(snapshot database.Snapshot) error {
	chain := snapshot.Chain
	if len(chain) == 0 {
		chain = []database.Block{database.GenesisBlock(s.genesis)}
	}

	if err := database.ValidateChain(chain, s.genesis); err != nil {
		return fmt.Errorf("restoring chain: %w", err)
	}

	pool := make([]database.Submission, 0, len(snapshot.Pool))
	for _, sub := range snapshot.Pool {
		if err := sub.Validate(); err != nil {
			s.evHandler("state: Restore: dropping pooled submission[%s]: %s", sub, err)
			continue
		}
		pool = append(pool, sub)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Replace(chain); err != nil {
		return err
	}
	s.mempool.Replace(pool)

	for _, host := range snapshot.Peers {
		pr := peer.New(host)
		if !pr.Match(s.host) {
			s.knownPeers.Add(pr)
		}
	}

	return nil
}

// =============================================================================

func (s *State) snapshot() database.Snapshot {
	return database.Snapshot{
		Chain: s.db.Copy(),
		Pool:  s.mempool.Copy(),
		Peers: s.knownPeers.Hosts(),
	}
}
