package state

import (
	"context"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// ChainFetcher represents the behavior required to retrieve the chain held
// by a peer.
type ChainFetcher interface {
	FetchChain(ctx context.Context, pr peer.Peer) ([]database.Block, error)
}

// Resolve asks every known peer for its chain and replaces the local chain
// with the longest valid one, if it is strictly longer than ours. The pool
// is cleared when the chain is replaced. Peers that can't be reached are
// skipped.
func (s *State) Resolve(ctx context.Context, fetcher ChainFetcher) (bool, error) {
	s.evHandler("state: Resolve: started")
	defer s.evHandler("state: Resolve: completed")

	peers := s.RetrieveKnownPeers()
	chains := s.fetchChains(ctx, fetcher, peers)

	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Whatever the outcome, the chain is now as resolved as the peers allow.
	defer s.resolvePending.Store(false)

	var candidate []database.Block
	length := s.db.Length()

	for i, chain := range chains {
		if chain == nil {
			continue
		}

		if len(chain) <= length {
			s.evHandler("state: Resolve: peer[%s]: not longer: len[%d]", peers[i].Host, len(chain))
			continue
		}

		if err := database.ValidateChain(chain, s.genesis); err != nil {
			s.evHandler("state: Resolve: peer[%s]: invalid chain: %s", peers[i].Host, err)
			continue
		}

		candidate = chain
		length = len(chain)
	}

	if candidate == nil {
		return false, nil
	}

	if err := s.db.Replace(candidate); err != nil {
		return false, err
	}

	s.mempool.Truncate()
	s.persist()

	s.evHandler("viewer: chain: replaced: len[%d]: latest[%s]", len(candidate), candidate[len(candidate)-1])

	return true, nil
}

// fetchChains retrieves the chain of every peer concurrently, each request
// bounded by the peer timeout. A nil entry marks a peer that failed.
func (s *State) fetchChains(ctx context.Context, fetcher ChainFetcher, peers []peer.Peer) [][]database.Block {
	chains := make([][]database.Block, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			chain, err := fetcher.FetchChain(ctx, pr)
			if err != nil {
				s.evHandler("state: Resolve: peer[%s]: WARNING: %s", pr.Host, err)
				return
			}

			chains[i] = chain
		}()
	}

	wg.Wait()

	return chains
}
