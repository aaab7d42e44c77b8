package mempool_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func sign(target database.PublicKeyIdentity, amount float64) (database.Submission, error) {
	pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		return database.Submission{}, err
	}

	origin := database.PublicKeyToIdentity(pk.PublicKey)
	return database.NewSubmission(origin, target, 365, amount).Sign(pk)
}

func TestCRUD(t *testing.T) {
	const target = database.PublicKeyIdentity("0x03c3b6a3b8e8d1c0f5a9e6f1a0c1d8b2e6f0a1b2c3d4e5f60718293a4b5c6d7e8f")

	type table struct {
		name    string
		amounts []float64
		mined   []int
		left    []float64
	}

	tt := []table{
		{name: "basic", amounts: []float64{1, 2, 3, 4}, mined: []int{1, 3}, left: []float64{1, 3}},
		{name: "duplicates", amounts: []float64{1, 2, 1, 5}, mined: []int{0}, left: []float64{2, 5}},
		{name: "none", amounts: []float64{1, 2}, mined: nil, left: []float64{1, 2}},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a set of submissions.", testID)
				{
					mp := mempool.New()

					var subs []database.Submission
					for _, amount := range tst.amounts {
						sub, err := sign(target, amount)
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to sign submission: %v", failed, testID, err)
						}
						subs = append(subs, sub)
						mp.Append(sub)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to add submissions.", success, testID)

					if mp.Count() != len(tst.amounts) {
						t.Fatalf("\t%s\tTest %d:\tShould keep duplicates, got %d.", failed, testID, mp.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould keep duplicates.", success, testID)

					for i, sub := range mp.Copy() {
						if !sub.Equals(subs[i]) {
							t.Fatalf("\t%s\tTest %d:\tShould keep the order of arrival.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould keep the order of arrival.", success, testID)

					var block []database.Submission
					for _, i := range tst.mined {
						block = append(block, subs[i])
					}
					block = append(block, database.NewReward(target, 365, 1))

					mp.RemoveMatching(block)

					left := mp.Copy()
					if len(left) != len(tst.left) {
						t.Fatalf("\t%s\tTest %d:\tShould remove mined submissions, got %d left.", failed, testID, len(left))
					}
					for i, sub := range left {
						if sub.Amount != tst.left[i] {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, sub.Amount)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.left[i])
							t.Fatalf("\t%s\tTest %d:\tShould keep the right submissions.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould remove mined submissions.", success, testID)

					mp.Replace(subs[:1])
					if mp.Count() != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould replace the pool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould replace the pool.", success, testID)

					mp.Truncate()
					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould truncate the pool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould truncate the pool.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
