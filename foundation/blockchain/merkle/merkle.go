// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides an implementation of a merkle tree used to prove
// a submission is part of a block.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"hash"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Order values returned with a proof.
const (
	ProofFirst  int64 = 0 // The proof hash is concatenated before the running hash.
	ProofSecond int64 = 1 // The proof hash is concatenated after the running hash.
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash() ([]byte, error)
	Equals(other T) bool
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root         *Node[T]
	Leafs        []*Node[T]
	MerkleRoot   []byte
	hashStrategy func() hash.Hash
}

// WithHashStrategy is used to change the default hash strategy of using sha256
// when constructing a new tree.
func WithHashStrategy[T Hashable[T]](hashStrategy func() hash.Hash) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable[T]](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	t := Tree[T]{
		hashStrategy: sha256.New,
	}

	for _, option := range options {
		option(&t)
	}

	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch. An odd number of leafs is padded with a copy of the last.
func (t *Tree[T]) Generate(values []T) error {
	if len(values) == 0 {
		return errors.New("cannot construct tree with no content")
	}

	leafs := make([]*Node[T], 0, len(values)+1)
	for _, value := range values {
		hash, err := value.Hash()
		if err != nil {
			return err
		}

		leafs = append(leafs, &Node[T]{
			Hash:  hash,
			Value: value,
			leaf:  true,
			Tree:  t,
		})
	}

	if len(leafs)%2 == 1 {
		last := leafs[len(leafs)-1]
		leafs = append(leafs, &Node[T]{
			Hash:  last.Hash,
			Value: last.Value,
			leaf:  true,
			dup:   true,
			Tree:  t,
		})
	}

	root, err := buildIntermediate(leafs, t)
	if err != nil {
		return err
	}

	t.Root = root
	t.Leafs = leafs
	t.MerkleRoot = root.Hash

	return nil
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving a value is in the tree. Starting with the hash of the
// value, each proof hash is concatenated before (ProofFirst) or after
// (ProofSecond) the running hash and hashed again. The final hash must
// match the merkle root. VerifyProof performs these steps.
func (t *Tree[T]) Proof(data T) ([][]byte, []int64, error) {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		var merkleProof [][]byte
		var order []int64

		for parent := node.Parent; parent != nil; parent = parent.Parent {
			if parent.Left == node {
				merkleProof = append(merkleProof, parent.Right.Hash)
				order = append(order, ProofSecond)
			} else {
				merkleProof = append(merkleProof, parent.Left.Hash)
				order = append(order, ProofFirst)
			}
			node = parent
		}

		return merkleProof, order, nil
	}

	return nil, nil, errors.New("unable to find data in tree")
}

// Verify recalculates the hashes at each level of the tree and checks the
// result matches the stored merkle root.
func (t *Tree[T]) Verify() error {
	calculatedMerkleRoot, err := t.Root.verify()
	if err != nil {
		return err
	}

	if !bytes.Equal(t.MerkleRoot, calculatedMerkleRoot) {
		return errors.New("root hash invalid")
	}

	return nil
}

// Values returns a slice of the values stored in the tree without the
// padding leaf.
func (t *Tree[T]) Values() []T {
	values := make([]T, 0, len(t.Leafs))
	for _, node := range t.Leafs {
		if node.dup {
			continue
		}
		values = append(values, node.Value)
	}

	return values
}

// RootHex converts the merkle root byte hash to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return hexutil.Encode(t.MerkleRoot)
}

// =============================================================================

// VerifyProof checks the leaf hash combined with the proof hashes in the
// specified order produces the root. A nil hashStrategy means sha256.
func VerifyProof(leaf []byte, proof [][]byte, order []int64, root []byte, hashStrategy func() hash.Hash) bool {
	if len(proof) != len(order) {
		return false
	}

	if hashStrategy == nil {
		hashStrategy = sha256.New
	}

	current := leaf
	for i, p := range proof {
		h := hashStrategy()
		switch order[i] {
		case ProofFirst:
			h.Write(p)
			h.Write(current)
		case ProofSecond:
			h.Write(current)
			h.Write(p)
		default:
			return false
		}
		current = h.Sum(nil)
	}

	return bytes.Equal(current, root)
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   []byte
	Value  T
	leaf   bool
	dup    bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() ([]byte, error) {
	if n.leaf {
		return n.Value.Hash()
	}

	leftBytes, err := n.Left.verify()
	if err != nil {
		return nil, err
	}

	rightBytes, err := n.Right.verify()
	if err != nil {
		return nil, err
	}

	return n.Tree.combine(leftBytes, rightBytes), nil
}

// combine hashes the concatenation of the two hashes.
func (t *Tree[T]) combine(left []byte, right []byte) []byte {
	h := t.hashStrategy()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

// buildIntermediate is a helper function that for a given list of leaf nodes,
// constructs the intermediate and root levels of the tree. Returns the resulting
// root node of the tree.
func buildIntermediate[T Hashable[T]](nl []*Node[T], t *Tree[T]) (*Node[T], error) {
	var nodes []*Node[T]

	for i := 0; i < len(nl); i += 2 {
		left, right := i, i+1
		if i+1 == len(nl) {
			right = i
		}

		n := Node[T]{
			Left:  nl[left],
			Right: nl[right],
			Hash:  t.combine(nl[left].Hash, nl[right].Hash),
			Tree:  t,
		}

		nodes = append(nodes, &n)
		nl[left].Parent = &n
		nl[right].Parent = &n

		if len(nl) == 2 {
			return &n, nil
		}
	}

	return buildIntermediate(nodes, t)
}
