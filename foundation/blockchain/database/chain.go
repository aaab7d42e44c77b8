package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// ValidateChain checks every block links to the one before it and carries a
// valid proof. The first block must be the genesis block, which is never
// validated any further.
func ValidateChain(chain []Block, gen genesis.Genesis) error {
	if len(chain) == 0 {
		return errors.New("empty chain")
	}

	if !chain[0].IsGenesis(gen) {
		return fmt.Errorf("%w: first block is not the genesis block", ErrInvalidBlock)
	}

	for i := 1; i < len(chain); i++ {
		if err := chain[i].ValidateBlock(chain[i-1], gen, nil); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}

	return nil
}

// Balance calculates what the participant holds: everything received in the
// chain minus everything sent in the chain and in the pending submissions.
func Balance(chain []Block, pending []Submission, id PublicKeyIdentity) float64 {
	var balance float64

	for _, block := range chain {
		for _, sub := range block.Submissions {
			if sub.Target == id {
				balance += sub.Amount
			}
			if sub.Origin == id {
				balance -= sub.Amount
			}
		}
	}

	for _, sub := range pending {
		if sub.Origin == id {
			balance -= sub.Amount
		}
	}

	return balance
}
