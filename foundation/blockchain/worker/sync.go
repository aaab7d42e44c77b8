package worker

import (
	"context"
)

// Sync updates the peer list and resolves the chain if any peer is ahead
// of this node.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	latest := w.state.RetrieveLatestBlock()

	var behind bool
	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(context.Background(), pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		if peerStatus.LatestBlockIndex > latest.Index {
			w.evHandler("worker: sync: peer[%s] is ahead: latestBlockIndex[%d]", pr.Host, peerStatus.LatestBlockIndex)
			behind = true
		}
	}

	w.announce()

	// If a peer has blocks we don't have, we need to resolve.
	if behind {
		w.runResolveOperation()
	}
}
