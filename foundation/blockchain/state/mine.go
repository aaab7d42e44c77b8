package state

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// MineNewBlock drains the pool into a new block, solves the puzzle and
// appends the block to the chain. The lock is held for the whole operation
// so no submission can be admitted while the pool is being mined.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	if s.privateKey == nil {
		return database.Block{}, ErrNoIdentity
	}

	block, err := s.mineNewBlock(ctx)
	if err != nil {
		return database.Block{}, err
	}

	s.Worker.SignalShareBlock(block)

	return block, nil
}

func (s *State) mineNewBlock(ctx context.Context) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevBlock := s.db.LatestBlock()
	countdown := s.genesis.CountdownAfter(prevBlock.Index, time.Now())

	s.evHandler("state: MineNewBlock: MINING: check pool signatures")

	subs := s.mempool.Copy()
	for i, sub := range subs {
		if err := sub.Verify(); err != nil {
			return database.Block{}, fmt.Errorf("%w: position %d: %s", ErrInvalidPooledSubmission, i, err)
		}
	}

	var amount float64
	if s.window == WindowOpen {
		amount = s.genesis.Reward
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: subs[%d]: window[%s]", len(subs), s.window)

	block, err := database.POW(ctx, database.POWArgs{
		Genesis:     s.genesis,
		PrevBlock:   prevBlock,
		Submissions: subs,
		Reward:      database.NewReward(s.identity, countdown, amount),
		Workers:     s.powWorkers,
		EvHandler:   s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: update database")

	if err := s.db.Append(block, s.evHandler); err != nil {
		return database.Block{}, err
	}

	s.window = WindowClosed
	s.mempool.Truncate()
	s.persist()

	s.evHandler("viewer: block: mined: blk[%s]: subs[%d]", block, len(block.Submissions))

	return block, nil
}
