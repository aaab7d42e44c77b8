// Package worker implements mining, peer updates, resolution and sharing
// for the ledger.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// defaultPeerInterval represents the interval of finding new peer nodes
// and letting them know this node exists.
const defaultPeerInterval = time.Minute

// maxShareRequests represents the max number of pending share requests
// that can be outstanding before share requests are dropped.
const maxShareRequests = 100

// =============================================================================

// Config represents the settings for the background operations.
type Config struct {
	MiningInterval time.Duration // Zero turns periodic mining off.
	PeerInterval   time.Duration
	ResolveTimeout time.Duration
}

// Worker manages the POW workflows for the ledger.
type Worker struct {
	state          *state.State
	wg             sync.WaitGroup
	peerTicker     *time.Ticker
	miningTicker   *time.Ticker
	resolveTimeout time.Duration
	shut           chan struct{}
	startMining    chan bool
	cancelMining   chan bool
	resolve        chan bool
	subSharing     chan database.Submission
	blockSharing   chan database.Block
	evHandler      state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, cfg Config, evHandler state.EventHandler) *Worker {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	peerInterval := cfg.PeerInterval
	if peerInterval <= 0 {
		peerInterval = defaultPeerInterval
	}

	resolveTimeout := cfg.ResolveTimeout
	if resolveTimeout <= 0 {
		resolveTimeout = time.Minute
	}

	w := Worker{
		state:          st,
		peerTicker:     time.NewTicker(peerInterval),
		resolveTimeout: resolveTimeout,
		shut:           make(chan struct{}),
		startMining:    make(chan bool, 1),
		cancelMining:   make(chan bool, 1),
		resolve:        make(chan bool, 1),
		subSharing:     make(chan database.Submission, maxShareRequests),
		blockSharing:   make(chan database.Block, maxShareRequests),
		evHandler:      evHandler,
	}

	if cfg.MiningInterval > 0 {
		w.miningTicker = time.NewTicker(cfg.MiningInterval)
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
		w.miningOperations,
		w.shareSubmissionOperations,
		w.shareBlockOperations,
		w.resolveOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop tickers")
	w.peerTicker.Stop()
	if w.miningTicker != nil {
		w.miningTicker.Stop()
	}

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	if w.state.IsResolvePending() {
		w.evHandler("worker: SignalStartMining: resolve pending, mining skipped")
		return
	}

	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// SignalShareSubmission signals a share submission operation. If
// maxShareRequests signals exist in the channel, we won't send these.
func (w *Worker) SignalShareSubmission(sub database.Submission) {
	select {
	case w.subSharing <- sub:
		w.evHandler("worker: SignalShareSubmission: share submission signaled")
	default:
		w.evHandler("worker: SignalShareSubmission: queue full, submission won't be shared.")
	}
}

// SignalShareBlock signals a share block operation.
func (w *Worker) SignalShareBlock(block database.Block) {
	select {
	case w.blockSharing <- block:
		w.evHandler("worker: SignalShareBlock: share block signaled")
	default:
		w.evHandler("worker: SignalShareBlock: queue full, block won't be shared.")
	}
}

// SignalResolve signals a resolve operation. If there is already a signal
// pending in the channel, just return since a resolve will run.
func (w *Worker) SignalResolve() {
	select {
	case w.resolve <- true:
	default:
	}
	w.evHandler("worker: SignalResolve: resolve signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
