package database

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// InclusionProof carries what a client needs to check a submission is part
// of a block without holding the block.
type InclusionProof struct {
	Index      uint64     `json:"index"`
	Submission Submission `json:"submission"`
	MerkleRoot string     `json:"merkle_root"`
	Proof      []string   `json:"proof"`
	Order      []int64    `json:"order"`
}

// Hash returns the leaf hash of the submission, signature included, for
// use in the merkle tree of a block.
func (s Submission) Hash() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	h := sha256.Sum256(data)
	return h[:], nil
}

// MerkleRoot returns the root of the merkle tree built from the block's
// submissions. The genesis block has no submissions and no root.
func (b Block) MerkleRoot() (string, error) {
	if len(b.Submissions) == 0 {
		return "", errors.New("block has no submissions")
	}

	tree, err := merkle.NewTree(b.Submissions)
	if err != nil {
		return "", err
	}

	return tree.RootHex(), nil
}

// ProveSubmission builds the inclusion proof of the submission in the block.
func (b Block) ProveSubmission(sub Submission) (InclusionProof, error) {
	if len(b.Submissions) == 0 {
		return InclusionProof{}, fmt.Errorf("%w: block %d has no submissions", ErrNotFound, b.Index)
	}

	tree, err := merkle.NewTree(b.Submissions)
	if err != nil {
		return InclusionProof{}, err
	}

	proof, order, err := tree.Proof(sub)
	if err != nil {
		return InclusionProof{}, fmt.Errorf("%w: submission is not in block %d", ErrNotFound, b.Index)
	}

	hashes := make([]string, len(proof))
	for i, p := range proof {
		hashes[i] = hexutil.Encode(p)
	}

	ip := InclusionProof{
		Index:      b.Index,
		Submission: sub,
		MerkleRoot: tree.RootHex(),
		Proof:      hashes,
		Order:      order,
	}

	return ip, nil
}

// Verify checks the proof links the submission to the merkle root.
func (ip InclusionProof) Verify() bool {
	leaf, err := ip.Submission.Hash()
	if err != nil {
		return false
	}

	root, err := hexutil.Decode(ip.MerkleRoot)
	if err != nil {
		return false
	}

	proof := make([][]byte, len(ip.Proof))
	for i, p := range ip.Proof {
		if proof[i], err = hexutil.Decode(p); err != nil {
			return false
		}
	}

	return merkle.VerifyProof(leaf, proof, ip.Order, root, nil)
}
