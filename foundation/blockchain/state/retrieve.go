package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveIdentity returns the identity of the node, empty when the node
// has no key.
func (s *State) RetrieveIdentity() database.PublicKeyIdentity {
	return s.identity
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveChain returns a copy of the chain.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Copy()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Submission {
	return s.mempool.Copy()
}

// RetrieveWindow returns the state of the reward window.
func (s *State) RetrieveWindow() Window {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.window
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrievePeerStatus returns the status this node reports to its peers.
func (s *State) RetrievePeerStatus() peer.PeerStatus {
	latest := s.db.LatestBlock()

	return peer.PeerStatus{
		LatestBlockHash:  latest.Hash(),
		LatestBlockIndex: latest.Index,
		KnownPeers:       s.RetrieveKnownPeers(),
	}
}

// =============================================================================

// Balance returns the balance of the participant. An empty participant
// means the node identity.
func (s *State) Balance(participant database.PublicKeyIdentity) (float64, error) {
	if participant == "" {
		if s.identity == "" {
			return 0, ErrUnavailable
		}
		participant = s.identity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Balance(s.mempool.Copy(), participant), nil
}

// =============================================================================

// AddKnownPeer provides the ability to add a new peer to
// the known peer list.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.knownPeers.Add(pr) {
		return false
	}

	s.persist()
	return true
}

// RemoveKnownPeer provides the ability to remove a peer from
// the known peer list.
func (s *State) RemoveKnownPeer(pr peer.Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.knownPeers.Remove(pr) {
		return false
	}

	s.persist()
	return true
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QuerySubmissionProof returns the inclusion proof of the submission with
// the specified signature in the block at the specified index.
func (s *State) QuerySubmissionProof(index uint64, sig string) (database.InclusionProof, error) {
	block, err := s.db.GetBlock(index)
	if err != nil {
		return database.InclusionProof{}, err
	}

	for _, sub := range block.Submissions {
		if sub.Signature == sig {
			return block.ProveSubmission(sub)
		}
	}

	return database.InclusionProof{}, fmt.Errorf("%w: no submission with signature %s in block %d", database.ErrNotFound, sig, index)
}
