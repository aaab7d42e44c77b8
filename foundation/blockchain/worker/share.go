package worker

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// shareSubmissionOperations handles sharing new submissions.
func (w *Worker) shareSubmissionOperations() {
	w.evHandler("worker: shareSubmissionOperations: G started")
	defer w.evHandler("worker: shareSubmissionOperations: G completed")

	for {
		select {
		case sub := <-w.subSharing:
			if !w.isShutdown() {
				w.runShareSubmissionOperation(sub)
			}
		case <-w.shut:
			w.evHandler("worker: shareSubmissionOperations: received shut signal")
			return
		}
	}
}

// runShareSubmissionOperation shares a new submission with the known peers.
func (w *Worker) runShareSubmissionOperation(sub database.Submission) {
	w.evHandler("worker: runShareSubmissionOperation: started")
	defer w.evHandler("worker: runShareSubmissionOperation: completed")

	w.state.NetSendSubmissionToPeers(context.Background(), sub)
}

// shareBlockOperations handles proposing mined blocks to the network.
func (w *Worker) shareBlockOperations() {
	w.evHandler("worker: shareBlockOperations: G started")
	defer w.evHandler("worker: shareBlockOperations: G completed")

	for {
		select {
		case block := <-w.blockSharing:
			if !w.isShutdown() {
				w.runShareBlockOperation(block)
			}
		case <-w.shut:
			w.evHandler("worker: shareBlockOperations: received shut signal")
			return
		}
	}
}

// runShareBlockOperation proposes the block to the known peers.
func (w *Worker) runShareBlockOperation(block database.Block) {
	w.evHandler("worker: runShareBlockOperation: started: blk[%s]", block)
	defer w.evHandler("worker: runShareBlockOperation: completed")

	w.state.NetSendBlockToPeers(context.Background(), block)
}
