package state

import (
	"context"
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_MineInvalidPool(t *testing.T) {
	pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		t.Fatalf("Should be able to load the private key: %v", err)
	}

	st, err := New(Config{PrivateKey: pk, Genesis: genesis.Default()})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}

	a := database.PublicKeyToIdentity(pk.PublicKey)
	valid, err := database.NewSubmission(a, a, 365, 0).Sign(pk)
	if err != nil {
		t.Fatalf("Should be able to sign the submission: %v", err)
	}

	tampered := valid
	tampered.Amount = 5

	// Pooled directly so admission checks are skipped.
	st.mempool.Append(valid)
	st.mempool.Append(tampered)

	t.Log("Given the need to refuse mining a pool holding a bad signature.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the second pooled submission was altered.", testID)
		{
			_, err := st.MineNewBlock(context.Background())
			if !errors.Is(err, ErrInvalidPooledSubmission) {
				t.Fatalf("\t%s\tTest %d:\tShould fail with an invalid pooled submission: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail with an invalid pooled submission.", success, testID)

			pool := st.mempool.Copy()
			if len(pool) != 2 || !pool[0].Equals(valid) || !pool[1].Equals(tampered) {
				t.Fatalf("\t%s\tTest %d:\tShould leave the pool untouched: %v", failed, testID, pool)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the pool untouched.", success, testID)

			if n := st.db.Length(); n != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould not append a block, got length %d.", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould not append a block.", success, testID)

			if st.window != WindowOpen {
				t.Fatalf("\t%s\tTest %d:\tShould leave the reward window open.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the reward window open.", success, testID)
		}
	}
}
