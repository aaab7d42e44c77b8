package memory_test

import (
	"context"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	s := memory.New()

	_, err := s.Load()
	assert.ErrorIs(t, err, database.ErrNoSnapshot, "empty store should have no snapshot")

	snap := newSnapshot(t)
	require.NoError(t, s.Save(snap))

	got, err := s.Load()
	require.NoError(t, err)
	assertSnapshot(t, snap, got)

	// Saving again with a new pool only rewrites what changed.
	snap.Pool = nil
	require.NoError(t, s.Save(snap))

	got, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Pool, "pool should be empty")
	assert.Len(t, got.Chain, 2, "chain should be kept")

	// A shorter chain removes the blocks past its end.
	short := database.Snapshot{Chain: snap.Chain[:1], Peers: snap.Peers}
	require.NoError(t, s.Save(short))

	assert.Equal(t, 3, s.Saves(), "every save should be counted")

	got, err = s.Load()
	require.NoError(t, err)
	assert.Len(t, got.Chain, 1, "chain should be truncated")
	assert.True(t, got.Chain[0].IsGenesis(genesis.Default()), "first block should be genesis")
	assert.Equal(t, snap.Peers, got.Peers, "peers should be kept")
}

// =============================================================================

func newSnapshot(t *testing.T) database.Snapshot {
	gen := genesis.Default()

	pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	require.NoError(t, err)
	id := database.PublicKeyToIdentity(pk.PublicKey)

	g := database.GenesisBlock(gen)
	b1, err := database.POW(context.Background(), database.POWArgs{
		Genesis:   gen,
		PrevBlock: g,
		Reward:    database.NewReward(id, 365, 1),
	})
	require.NoError(t, err)

	sub, err := database.NewSubmission(id, id, 364, 0.5).Sign(pk)
	require.NoError(t, err)

	return database.Snapshot{
		Chain: []database.Block{g, b1},
		Pool:  []database.Submission{sub},
		Peers: []string{"localhost:9180", "localhost:9280"},
	}
}

func assertSnapshot(t *testing.T, exp database.Snapshot, got database.Snapshot) {
	t.Helper()

	require.Len(t, got.Chain, len(exp.Chain), "chain length should match")
	for i := range exp.Chain {
		assert.Equal(t, exp.Chain[i].Hash(), got.Chain[i].Hash(), "block %d should match", i)
	}
	assert.NoError(t, database.ValidateChain(got.Chain, genesis.Default()), "chain should be valid")

	require.Len(t, got.Pool, len(exp.Pool), "pool length should match")
	for i := range exp.Pool {
		assert.True(t, exp.Pool[i].Equals(got.Pool[i]), "submission %d should match", i)
	}

	assert.Equal(t, exp.Peers, got.Peers, "peers should match")
}
