// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"crypto/ecdsa"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/patrickmn/go-cache"
)

// Set of error variables for the core operations.
var (
	ErrRejectedSubmission      = errors.New("submission rejected")
	ErrInvalidPooledSubmission = errors.New("invalid submission in pool")
	ErrNoIdentity              = errors.New("node has no identity")
	ErrUnavailable             = errors.New("unavailable")
)

// defaultPeerTimeout is used when no peer timeout is configured.
const defaultPeerTimeout = 5 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
	SignalShareSubmission(sub database.Submission)
	SignalShareBlock(block database.Block)
	SignalResolve()
}

// Window tracks whether the one time reward is still available to the
// local miner.
type Window int

// Set of window states.
const (
	WindowOpen Window = iota
	WindowClosed
)

// String implements the fmt.Stringer interface.
func (w Window) String() string {
	if w == WindowOpen {
		return "open"
	}
	return "closed"
}

// =============================================================================

// Config represents the configuration required to start
// the ledger node.
type Config struct {
	PrivateKey  *ecdsa.PrivateKey
	Host        string
	Genesis     genesis.Genesis
	Storage     database.Storage
	KnownPeers  *peer.PeerSet
	PowWorkers  int
	PeerTimeout time.Duration
	EvHandler   EventHandler
}

// State manages the ledger. The chain, the pool and the reward window are
// guarded by a single mutex so no operation can observe or leave a partial
// update.
type State struct {
	mu sync.Mutex

	privateKey  *ecdsa.PrivateKey
	identity    database.PublicKeyIdentity
	host        string
	evHandler   EventHandler
	powWorkers  int
	peerTimeout time.Duration

	genesis    genesis.Genesis
	db         *database.Database
	mempool    *mempool.Mempool
	knownPeers *peer.PeerSet
	storage    database.Storage
	window     Window
	rejected   *cache.Cache

	resolvePending atomic.Bool

	Worker Worker
}

// New constructs a new ledger for data management. If storage is provided
// the last snapshot is loaded and restored.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = defaultPeerTimeout
	}

	var identity database.PublicKeyIdentity
	if cfg.PrivateKey != nil {
		identity = database.PublicKeyToIdentity(cfg.PrivateKey.PublicKey)
	}

	state := State{
		privateKey:  cfg.PrivateKey,
		identity:    identity,
		host:        cfg.Host,
		evHandler:   ev,
		powWorkers:  cfg.PowWorkers,
		peerTimeout: peerTimeout,

		genesis:    cfg.Genesis,
		db:         database.New(cfg.Genesis),
		mempool:    mempool.New(),
		knownPeers: knownPeers,
		storage:    cfg.Storage,
		window:     WindowOpen,
		rejected:   cache.New(10*time.Minute, 20*time.Minute),

		// The Worker is not set here. The call to worker.Run will assign
		// itself and start everything up and running for the node.
		Worker: noWorker{},
	}

	if cfg.Storage != nil {
		snapshot, err := cfg.Storage.Load()
		switch {
		case errors.Is(err, database.ErrNoSnapshot):
			ev("state: New: no snapshot, starting from genesis")

		case err != nil:
			return nil, err

		default:
			if err := state.Restore(snapshot); err != nil {
				return nil, err
			}
			ev("state: New: restored snapshot: blocks[%d]: pool[%d]: peers[%d]", len(snapshot.Chain), len(snapshot.Pool), len(snapshot.Peers))
		}
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Stop all ledger writing activity.
	s.Worker.Shutdown()

	if s.storage == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Close()
}

// IsResolvePending reports whether a peer has signaled our chain is behind
// and a resolve has not run since.
func (s *State) IsResolvePending() bool {
	return s.resolvePending.Load()
}

// FlagResolvePending marks the chain as needing a resolve and asks the
// worker to run one.
func (s *State) FlagResolvePending() {
	s.resolvePending.Store(true)
	s.Worker.SignalResolve()
}

// =============================================================================

// persist saves the current snapshot. Storage failures don't undo the
// operation that triggered them, they are reported through the event
// handler. The caller must hold the lock.
func (s *State) persist() {
	if s.storage == nil {
		return
	}

	if err := s.storage.Save(s.snapshot()); err != nil {
		s.evHandler("state: persist: ERROR: %s", err)
	}
}

// =============================================================================

// noWorker is used until a worker registers itself.
type noWorker struct{}

func (noWorker) Shutdown() {}
func (noWorker) SignalStartMining() {}
func (noWorker) SignalCancelMining() {}
func (noWorker) SignalShareSubmission(database.Submission) {}
func (noWorker) SignalShareBlock(database.Block) {}
func (noWorker) SignalResolve() {}
