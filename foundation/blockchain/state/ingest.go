package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/patrickmn/go-cache"
)

// IngestBlock takes a block proposed by a peer, validates it and if that
// passes, adds the block to the local chain. A block that is more than one
// ahead of the local chain returns ErrChainBehind and flags a resolve.
func (s *State) IngestBlock(block database.Block) error {
	s.evHandler("state: IngestBlock: started: blk[%s]", block)
	defer s.evHandler("state: IngestBlock: completed: blk[%d]", block.Index)

	// The memo is keyed on the full wire form so a copy with a broken
	// signature can't shadow the block it was copied from.
	fingerprint := block.Fingerprint()
	if reason, found := s.rejected.Get(fingerprint); found {
		return fmt.Errorf("%w: previously rejected: %s", database.ErrInvalidBlock, reason)
	}

	// Any local mining operation needs to stop so the lock can be taken.
	s.Worker.SignalCancelMining()

	err := s.ingestBlock(block, fingerprint)
	if errors.Is(err, database.ErrChainBehind) {
		s.evHandler("state: IngestBlock: chain behind: blk[%d]", block.Index)
		s.FlagResolvePending()
	}

	return err
}

func (s *State) ingestBlock(block database.Block, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.db.LatestBlock()

	switch {
	case block.Index > latest.Index+1:
		return database.ErrChainBehind

	case block.Index <= latest.Index:
		return fmt.Errorf("%w: stale block, got %d, latest %d", database.ErrInvalidBlock, block.Index, latest.Index)
	}

	// Failures in the content of the block will never change so they are
	// remembered for a while.
	if err := block.ValidateContent(s.genesis, s.evHandler); err != nil {
		s.rejected.Set(fingerprint, err.Error(), cache.DefaultExpiration)
		return err
	}

	if err := s.db.Append(block, s.evHandler); err != nil {
		return err
	}

	removed := s.mempool.RemoveMatching(block.Submissions)
	s.persist()

	s.evHandler("viewer: block: ingested: blk[%s]: removed[%d]", block, removed)

	return nil
}
