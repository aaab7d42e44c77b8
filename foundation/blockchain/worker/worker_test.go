package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Workflows(t *testing.T) {
	gen := genesis.Default()

	nodeB := newState(t, "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0", gen, nil)
	srv := httptest.NewServer(nodeAPI(nodeB))
	defer srv.Close()

	peers := peer.NewPeerSet()
	peers.Add(peer.New(srv.URL))
	nodeA := newState(t, "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959", gen, peers)

	w := worker.Run(nodeA, worker.Config{MiningInterval: 20 * time.Millisecond, PeerInterval: time.Hour}, nil)
	defer w.Shutdown()

	t.Log("Given the need to run the background workflows.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining and sharing with a peer.", testID)
		{
			if _, err := nodeA.MineNewBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %v", failed, testID, err)
			}

			waitFor(t, func() bool { return len(nodeB.RetrieveChain()) == 2 })
			t.Logf("\t%s\tTest %d:\tShould share the mined block.", success, testID)

			if _, err := nodeA.SignAndSubmit(nodeB.RetrieveIdentity(), 1); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit: %v", failed, testID, err)
			}

			waitFor(t, func() bool { return len(nodeA.RetrieveChain()) == 3 })
			t.Logf("\t%s\tTest %d:\tShould mine the pool on the interval.", success, testID)

			waitFor(t, func() bool {
				return len(nodeB.RetrieveChain()) == 3 && len(nodeB.RetrieveMempool()) == 0
			})
			t.Logf("\t%s\tTest %d:\tShould share the second block.", success, testID)

			bal, err := nodeB.Balance("")
			if err != nil || bal != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have a balance of 1 on node B, got %v: %v", failed, testID, bal, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have moved the value.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen a new node starts behind its peer.", testID)
		{
			peers := peer.NewPeerSet()
			peers.Add(peer.New(srv.URL))
			nodeC := newState(t, "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93", gen, peers)

			wc := worker.Run(nodeC, worker.Config{}, nil)
			defer wc.Shutdown()

			if nodeC.RetrieveLatestBlock().Hash() != nodeB.RetrieveLatestBlock().Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould sync the chain at startup.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould sync the chain at startup.", success, testID)
		}
	}
}

// =============================================================================

func newState(t *testing.T, hex string, gen genesis.Genesis, peers *peer.PeerSet) *state.State {
	pk, err := crypto.HexToECDSA(hex)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %v", err)
	}

	st, err := state.New(state.Config{
		PrivateKey: pk,
		Genesis:    gen,
		KnownPeers: peers,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}

	return st
}

func waitFor(t *testing.T, fn func() bool) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("\t%s\tShould reach the expected state in time.", failed)
}

// nodeAPI provides the node routes needed for the workflows.
func nodeAPI(st *state.State) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/node/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(st.RetrievePeerStatus())
	})

	mux.HandleFunc("GET /v1/node/chain", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(st.RetrieveChain())
	})

	mux.HandleFunc("POST /v1/node/block", func(w http.ResponseWriter, r *http.Request) {
		block, err := database.DecodeBlock(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		err = st.IngestBlock(block)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, database.ErrChainBehind):
			w.WriteHeader(http.StatusAccepted)
		default:
			http.Error(w, err.Error(), http.StatusConflict)
		}
	})

	mux.HandleFunc("POST /v1/node/submission", func(w http.ResponseWriter, r *http.Request) {
		var sub database.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := st.SubmitNodeSubmission(sub); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}
