// Package pow implements the proof of work puzzle that seals every block in
// the chain. The same predicate is used to solve and to validate.
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
)

// cancelCheck is how many attempts a worker makes between checks of the
// context for cancellation.
const cancelCheck = 1 << 12

// Args contains the values needed to solve a puzzle.
type Args struct {
	Difficulty uint16                      // Number of leading hex zeros the hash must have.
	Data       []byte                      // Canonical encoding of the submissions being sealed.
	PrevHash   string                      // Hash of the block the new block links to.
	Workers    int                         // Number of goroutines sharing the search space.
	EvHandler  func(v string, args ...any) // Optional event handler for logging.
}

// Solve performs the linear search for the smallest proof that solves the
// puzzle. When more than one worker is requested the search space is
// sharded by residue and the numerically smallest solution found is kept,
// so the result does not depend on the number of workers.
func Solve(ctx context.Context, args Args) (uint64, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	workers := args.Workers
	if workers < 1 {
		workers = 1
	}

	ev("pow: Solve: MINING: started: workers[%d]: difficulty[%d]", workers, args.Difficulty)
	defer ev("pow: Solve: MINING: completed")

	prefix := puzzle(args.Data, args.PrevHash)
	step := uint64(workers)

	var best atomic.Uint64
	best.Store(math.MaxUint64)

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := range workers {
		go func(start uint64) {
			defer wg.Done()

			buf := make([]byte, len(prefix), len(prefix)+20)
			copy(buf, prefix)

			var attempts uint64
			for proof := start; proof < best.Load(); proof += step {
				attempts++
				if attempts%cancelCheck == 0 && ctx.Err() != nil {
					return
				}

				if !isSolved(args.Difficulty, sum(buf, proof)) {
					continue
				}

				// Keep the smaller of this proof and any proof found by
				// another worker.
				for {
					current := best.Load()
					if proof >= current || best.CompareAndSwap(current, proof) {
						break
					}
				}
				return
			}
		}(uint64(w))
	}

	wg.Wait()

	// A cancelled search can't prove minimality, so the result is dropped.
	if ctx.Err() != nil {
		ev("pow: Solve: MINING: CANCELLED")
		return 0, ctx.Err()
	}

	proof := best.Load()
	ev("pow: Solve: MINING: SOLVED: prevHash[%s]: proof[%d]", args.PrevHash, proof)

	return proof, nil
}

// Verify recomputes the puzzle hash for the proof and checks it is solved.
func Verify(difficulty uint16, data []byte, prevHash string, proof uint64) bool {
	return isSolved(difficulty, sum(puzzle(data, prevHash), proof))
}

// Guess returns the hex encoded puzzle hash for the specified proof.
func Guess(data []byte, prevHash string, proof uint64) string {
	hash := sum(puzzle(data, prevHash), proof)
	return hex.EncodeToString(hash[:])
}

// =============================================================================

// puzzle builds the fixed part of the puzzle input.
func puzzle(data []byte, prevHash string) []byte {
	b := make([]byte, 0, len(data)+len(prevHash)+20)
	b = append(b, data...)
	b = append(b, prevHash...)
	return b
}

// sum appends the decimal proof to the puzzle prefix held in buf and
// hashes the result. The prefix part of buf is left untouched.
func sum(buf []byte, proof uint64) [sha256.Size]byte {
	return sha256.Sum256(strconv.AppendUint(buf, proof, 10))
}

// isSolved checks the hash has difficulty leading zero characters in its
// hex form.
func isSolved(difficulty uint16, hash [sha256.Size]byte) bool {
	if int(difficulty) > 2*sha256.Size {
		return false
	}

	full := int(difficulty / 2)
	for i := range full {
		if hash[i] != 0 {
			return false
		}
	}

	if difficulty%2 == 1 && hash[full]>>4 != 0 {
		return false
	}

	return true
}
