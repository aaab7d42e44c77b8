package pow_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_SolveVerify(t *testing.T) {
	type table struct {
		name       string
		difficulty uint16
		data       []byte
		prevHash   string
	}

	tt := []table{
		{name: "empty", difficulty: 2, data: []byte("[]"), prevHash: ""},
		{name: "genesis", difficulty: 2, data: []byte("[]"), prevHash: "3a1f0c"},
		{name: "submissions", difficulty: 2, data: []byte(`[{"origin":"0x02aa","target":"0x03bb","countdown":365,"amount":5}]`), prevHash: "ffee"},
		{name: "odd", difficulty: 3, data: []byte(`[{"origin":"STATION"}]`), prevHash: "00ab"},
	}

	t.Log("Given the need to solve and verify proof of work puzzles.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen solving puzzle %s.", testID, tst.name)

				proof, err := pow.Solve(context.Background(), pow.Args{
					Difficulty: tst.difficulty,
					Data:       tst.data,
					PrevHash:   tst.prevHash,
				})
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to solve the puzzle: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to solve the puzzle: proof[%d]", success, testID, proof)

				if !pow.Verify(tst.difficulty, tst.data, tst.prevHash, proof) {
					t.Fatalf("\t%s\tTest %d:\tShould verify the proof that was solved.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould verify the proof that was solved.", success, testID)

				guess := pow.Guess(tst.data, tst.prevHash, proof)
				if !strings.HasPrefix(guess, strings.Repeat("0", int(tst.difficulty))) {
					t.Fatalf("\t%s\tTest %d:\tShould have leading zeros in the hash: %s", failed, testID, guess)
				}
				t.Logf("\t%s\tTest %d:\tShould have leading zeros in the hash.", success, testID)

				for p := uint64(0); p < proof; p++ {
					if pow.Verify(tst.difficulty, tst.data, tst.prevHash, p) {
						t.Fatalf("\t%s\tTest %d:\tShould not find a smaller proof: %d", failed, testID, p)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould not find a smaller proof.", success, testID)

				sharded, err := pow.Solve(context.Background(), pow.Args{
					Difficulty: tst.difficulty,
					Data:       tst.data,
					PrevHash:   tst.prevHash,
					Workers:    4,
				})
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to solve with workers: %v", failed, testID, err)
				}
				if sharded != proof {
					t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, sharded)
					t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, proof)
					t.Fatalf("\t%s\tTest %d:\tShould get the same proof with workers.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get the same proof with workers.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_SolveCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := pow.Solve(ctx, pow.Args{
		Difficulty: 64,
		Data:       []byte("[]"),
		PrevHash:   "never",
		Workers:    2,
	})
	if err == nil {
		t.Fatalf("Should get an error when the search is cancelled.")
	}
}

func Test_VerifyDifficulty(t *testing.T) {
	if pow.Verify(65, []byte("[]"), "", 0) {
		t.Fatalf("Should not solve a difficulty larger than the hash.")
	}

	if !pow.Verify(0, []byte("[]"), "", 0) {
		t.Fatalf("Should solve a zero difficulty with any proof.")
	}
}
