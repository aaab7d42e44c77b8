package merkle_test

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// data uses the sha256 hashing algorithm for its leaf hash.
type data struct {
	x string
}

func (d data) Hash() ([]byte, error) {
	h := sha256.Sum256([]byte(d.x))
	return h[:], nil
}

func (d data) Equals(other data) bool {
	return d.x == other.x
}

func values(n int) []data {
	vs := make([]data, n)
	for i := range vs {
		vs[i] = data{x: fmt.Sprintf("submission %d", i)}
	}
	return vs
}

// =============================================================================

func Test_Proof(t *testing.T) {
	t.Log("Given the need to prove values belong to a tree.")
	{
		for testID, n := range []int{1, 2, 3, 5, 8} {
			tf := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a tree of %d values.", testID, n)
				{
					vs := values(n)

					tree, err := merkle.NewTree(vs)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to build the tree: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to build the tree.", success, testID)

					if err := tree.Verify(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould verify the tree: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould verify the tree.", success, testID)

					if got := len(tree.Values()); got != n {
						t.Fatalf("\t%s\tTest %d:\tShould return the values without padding: %d", failed, testID, got)
					}
					t.Logf("\t%s\tTest %d:\tShould return the values without padding.", success, testID)

					for _, v := range vs {
						proof, order, err := tree.Proof(v)
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould get a proof for %q: %v", failed, testID, v.x, err)
						}

						leaf, _ := v.Hash()
						if !merkle.VerifyProof(leaf, proof, order, tree.MerkleRoot, nil) {
							t.Fatalf("\t%s\tTest %d:\tShould verify the proof for %q.", failed, testID, v.x)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould verify the proof of every value.", success, testID)

					if _, _, err := tree.Proof(data{x: "missing"}); err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould not prove a missing value.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not prove a missing value.", success, testID)
				}
			}

			t.Run(fmt.Sprintf("values%d", n), tf)
		}
	}
}

func Test_ProofTampered(t *testing.T) {
	t.Log("Given the need to reject proofs that don't match the root.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the leaf or the proof is changed.", testID)
		{
			vs := values(4)
			tree, err := merkle.NewTree(vs)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build the tree: %v", failed, testID, err)
			}

			proof, order, err := tree.Proof(vs[2])
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould get a proof: %v", failed, testID, err)
			}

			other, _ := vs[1].Hash()
			if merkle.VerifyProof(other, proof, order, tree.MerkleRoot, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the proof for another leaf.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the proof for another leaf.", success, testID)

			leaf, _ := vs[2].Hash()
			if merkle.VerifyProof(leaf, proof, order[:1], tree.MerkleRoot, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a proof with a short order.", failed, testID)
			}

			flipped := make([]int64, len(order))
			for i, o := range order {
				flipped[i] = 1 - o
			}
			if merkle.VerifyProof(leaf, proof, flipped, tree.MerkleRoot, nil) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a proof with the wrong order.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a malformed proof.", success, testID)
		}
	}
}

func Test_HashStrategy(t *testing.T) {
	t.Log("Given the need to change the hash used for the nodes.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen using md5 for the nodes.", testID)
		{
			vs := values(3)

			tree, err := merkle.NewTree(vs, merkle.WithHashStrategy[data](md5.New))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build the tree: %v", failed, testID, err)
			}

			if len(tree.MerkleRoot) != md5.Size {
				t.Fatalf("\t%s\tTest %d:\tShould produce an md5 root: %d bytes", failed, testID, len(tree.MerkleRoot))
			}
			t.Logf("\t%s\tTest %d:\tShould produce an md5 root.", success, testID)

			proof, order, err := tree.Proof(vs[0])
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould get a proof: %v", failed, testID, err)
			}

			leaf, _ := vs[0].Hash()
			if !merkle.VerifyProof(leaf, proof, order, tree.MerkleRoot, md5.New) {
				t.Fatalf("\t%s\tTest %d:\tShould verify the proof with the same strategy.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould verify the proof with the same strategy.", success, testID)
		}
	}
}
