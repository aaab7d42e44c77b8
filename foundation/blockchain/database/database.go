// Package database handles the chain of blocks and the rules for validating
// and reading it.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// ErrNotFound is returned when a block can't be located.
var ErrNotFound = errors.New("not found")

// Database manages the chain of blocks that has been agreed on.
type Database struct {
	mu sync.RWMutex

	genesis genesis.Genesis
	blocks  []Block
}

// New constructs a new database that starts with the genesis block.
func New(gen genesis.Genesis) *Database {
	return &Database{
		genesis: gen,
		blocks:  []Block{GenesisBlock(gen)},
	}
}

// Genesis returns the genesis parameters of the chain.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1]
}

// Length returns the number of blocks in the chain including genesis.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(index uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if index >= uint64(len(db.blocks)) {
		return Block{}, fmt.Errorf("block %d: %w", index, ErrNotFound)
	}

	return db.blocks[index], nil
}

// Append validates the block against the latest block and adds it to the
// end of the chain.
func (db *Database) Append(block Block, evHandler func(v string, args ...any)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := block.ValidateBlock(db.blocks[len(db.blocks)-1], db.genesis, evHandler); err != nil {
		return err
	}

	db.blocks = append(db.blocks, block)
	return nil
}

// Replace validates the chain and replaces the current chain with it.
func (db *Database) Replace(chain []Block) error {
	if err := ValidateChain(chain, db.genesis); err != nil {
		return err
	}

	blocks := make([]Block, len(chain))
	copy(blocks, chain)

	db.mu.Lock()
	defer db.mu.Unlock()

	db.blocks = blocks
	return nil
}

// Reset re-initializes the database back to the genesis block.
func (db *Database) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.blocks = []Block{GenesisBlock(db.genesis)}
}

// Copy returns a copy of the chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)
	return blocks
}

// Balance calculates the balance of the participant against the chain and
// the specified pending submissions.
func (db *Database) Balance(pending []Submission, id PublicKeyIdentity) float64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return Balance(db.blocks, pending, id)
}
