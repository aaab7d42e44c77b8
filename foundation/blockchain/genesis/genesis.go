// Package genesis maintains access to the genesis parameters.
package genesis

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// Defaults for the fixed genesis block. Every node in a network must agree
// on these values since they are hashed into block one.
const (
	DefaultTimeStamp  = 1577836799 // 2019-12-31T23:59:59Z
	DefaultDayLength  = 86400      // Seconds in a day, also the genesis proof.
	DefaultDifficulty = 2          // Leading hex zeros required by the proof of work.
	DefaultCountdown  = 365        // Countdown used for the reward of block one.
	DefaultReward     = 1          // Reward while the submission window is open.
)

// Genesis represents the genesis file.
type Genesis struct {
	TimeStamp  int64   `json:"timestamp"`  // Fixed time of the genesis block.
	DayLength  uint64  `json:"day_length"` // Stored as the genesis proof and used as the countdown divisor.
	Difficulty uint16  `json:"difficulty"` // How difficult it needs to be to solve the work problem.
	Countdown  float64 `json:"countdown"`  // Reward countdown when the previous block is genesis.
	Reward     float64 `json:"reward"`     // Amount of the reward submission while the window is open.
}

// Default returns the genesis parameters every node uses unless a genesis
// file is provided.
func Default() Genesis {
	return Genesis{
		TimeStamp:  DefaultTimeStamp,
		DayLength:  DefaultDayLength,
		Difficulty: DefaultDifficulty,
		Countdown:  DefaultCountdown,
		Reward:     DefaultReward,
	}
}

// CountdownAfter calculates the countdown carried by submissions made on top
// of the block with the specified index. Submissions following the genesis
// block use the configured countdown, later ones count whole days between
// now and the genesis time.
func (g Genesis) CountdownAfter(index uint64, now time.Time) float64 {
	if index == 0 {
		return g.Countdown
	}

	return math.Floor(float64(g.TimeStamp-now.Unix()) / float64(g.DayLength))
}

// =============================================================================

// Load opens and consumes the genesis file. An empty path returns the
// default parameters. Missing values in the file fall back to the defaults.
func Load(path string) (Genesis, error) {
	genesis := Default()
	if path == "" {
		return genesis, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if genesis.DayLength == 0 {
		return Genesis{}, fmt.Errorf("genesis day length must be greater than zero")
	}

	if genesis.Difficulty > 64 {
		return Genesis{}, fmt.Errorf("genesis difficulty %d is larger than a hash", genesis.Difficulty)
	}

	return genesis, nil
}
