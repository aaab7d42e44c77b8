package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// ErrInvalidBlock is returned when a block fails validation against the
// block it is supposed to follow.
var ErrInvalidBlock = errors.New("invalid block")

// ErrChainBehind is returned from ValidateBlock when the block is two or more
// blocks ahead of ours. The local chain needs to be resolved against peers.
var ErrChainBehind = errors.New("chain is behind, resolve required")

// =============================================================================

// Block represents a group of submissions sealed by a proof of work.
type Block struct {
	Index        uint64       `json:"index"`         // Position of the block in the chain, genesis is 0.
	PreviousHash string       `json:"previous_hash"` // Hash of the previous block, empty for genesis.
	Submissions  []Submission `json:"submissions"`   // Ordered submissions, the last one is the reward.
	Proof        uint64       `json:"proof"`         // Value that solves the puzzle for this block.
	TimeStamp    int64        `json:"timestamp"`     // Time the block was mined in seconds.
}

// GenesisBlock constructs the fixed first block of every chain.
func GenesisBlock(gen genesis.Genesis) Block {
	return Block{
		Index:        0,
		PreviousHash: "",
		Submissions:  []Submission{},
		Proof:        gen.DayLength,
		TimeStamp:    gen.TimeStamp,
	}
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Genesis     genesis.Genesis
	PrevBlock   Block
	Submissions []Submission
	Reward      Submission
	Workers     int
	EvHandler   func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find the proof that
// solves the puzzle over the submissions and the hash of the previous block.
// The reward is appended after the proof is found and is not part of it.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	prevHash := args.PrevBlock.Hash()

	proof, err := pow.Solve(ctx, pow.Args{
		Difficulty: args.Genesis.Difficulty,
		Data:       CanonicalBytes(args.Submissions),
		PrevHash:   prevHash,
		Workers:    args.Workers,
		EvHandler:  args.EvHandler,
	})
	if err != nil {
		return Block{}, err
	}

	subs := make([]Submission, 0, len(args.Submissions)+1)
	subs = append(subs, args.Submissions...)
	subs = append(subs, args.Reward)

	nb := Block{
		Index:        args.PrevBlock.Index + 1,
		PreviousHash: prevHash,
		Submissions:  subs,
		Proof:        proof,
		TimeStamp:    time.Now().UTC().Unix(),
	}

	return nb, nil
}

// Hash returns the unique hash for the Block. Signatures are not part of
// the hash.
func (b Block) Hash() string {
	bh := struct {
		Index        uint64                `json:"index"`
		PreviousHash string                `json:"previous_hash"`
		Submissions  []canonicalSubmission `json:"submissions"`
		Proof        uint64                `json:"proof"`
		TimeStamp    int64                 `json:"timestamp"`
	}{
		Index:        b.Index,
		PreviousHash: b.PreviousHash,
		Submissions:  canonicalize(b.Submissions),
		Proof:        b.Proof,
		TimeStamp:    b.TimeStamp,
	}

	return signature.Hash(bh)
}

// Fingerprint returns the hash of the full wire form of the block,
// signatures included. Two blocks with the same Hash can still differ in
// their fingerprint.
func (b Block) Fingerprint() string {
	return signature.Hash(b)
}

// IsGenesis reports whether the block is the genesis block for the
// specified parameters.
func (b Block) IsGenesis(gen genesis.Genesis) bool {
	return b.Index == 0 && len(b.Submissions) == 0 && b.Hash() == GenesisBlock(gen).Hash()
}

// ValidateBlock takes a block and validates it to be included into the chain
// after the specified previous block.
func (b Block) ValidateBlock(previousBlock Block, gen genesis.Genesis, evHandler func(v string, args ...any)) error {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: chain is not behind", b.Index)

	// The node who sent this block has a chain that is two or more blocks
	// ahead of ours.
	nextIndex := previousBlock.Index + 1
	if b.Index > nextIndex {
		return ErrChainBehind
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block index is the next index", b.Index)

	if b.Index != nextIndex {
		return fmt.Errorf("%w: not the next index, got %d, exp %d", ErrInvalidBlock, b.Index, nextIndex)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: previous hash does match previous block", b.Index)

	prevHash := previousBlock.Hash()
	if b.PreviousHash != prevHash {
		return fmt.Errorf("%w: previous hash doesn't match, got %s, exp %s", ErrInvalidBlock, b.PreviousHash, prevHash)
	}

	return b.ValidateContent(gen, evHandler)
}

// ValidateContent checks the parts of the block that don't depend on the
// chain it is added to: the proof over its own previous hash and the
// submissions it carries.
func (b Block) ValidateContent(gen genesis.Genesis, evHandler func(v string, args ...any)) error {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	evHandler("database: ValidateContent: validate: blk[%d]: check: proof solves the puzzle", b.Index)

	var sealed []Submission
	if n := len(b.Submissions); n > 0 {
		sealed = b.Submissions[:n-1]
	}

	if !pow.Verify(gen.Difficulty, CanonicalBytes(sealed), b.PreviousHash, b.Proof) {
		return fmt.Errorf("%w: proof %d does not solve the puzzle", ErrInvalidBlock, b.Proof)
	}

	evHandler("database: ValidateContent: validate: blk[%d]: check: submissions are signed", b.Index)

	for i, sub := range b.Submissions {
		last := i == len(b.Submissions)-1

		if sub.Origin.IsIssuer() {
			if !last {
				return fmt.Errorf("%w: issuer submission at position %d", ErrInvalidBlock, i)
			}
			if sub.Amount > gen.Reward {
				return fmt.Errorf("%w: reward %v is larger than %v", ErrInvalidBlock, sub.Amount, gen.Reward)
			}
		}

		if err := sub.Validate(); err != nil {
			return fmt.Errorf("%w: submission %d: %s", ErrInvalidBlock, i, err)
		}
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%d:%s", b.Index, b.Hash())
}
