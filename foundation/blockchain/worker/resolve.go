package worker

import (
	"context"
)

// resolveOperations handles conflict resolution with peers.
func (w *Worker) resolveOperations() {
	w.evHandler("worker: resolveOperations: G started")
	defer w.evHandler("worker: resolveOperations: G completed")

	for {
		select {
		case <-w.resolve:
			if !w.isShutdown() {
				w.runResolveOperation()
			}
		case <-w.shut:
			w.evHandler("worker: resolveOperations: received shut signal")
			return
		}
	}
}

// runResolveOperation replaces the chain with a longer valid chain held by
// a peer, if there is one.
func (w *Worker) runResolveOperation() {
	w.evHandler("worker: runResolveOperation: started")
	defer w.evHandler("worker: runResolveOperation: completed")

	ctx, cancel := context.WithTimeout(context.Background(), w.resolveTimeout)
	defer cancel()

	replaced, err := w.state.Resolve(ctx, w.state.NetChainFetcher())
	if err != nil {
		w.evHandler("worker: runResolveOperation: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runResolveOperation: replaced[%t]", replaced)
}
