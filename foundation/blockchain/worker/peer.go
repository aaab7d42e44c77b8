package worker

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// peerOperations handles finding new peers.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.peerTicker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation updates the peer list.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(context.Background(), pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)
	}

	// Get the latest peers and let them know this node is available to chat.
	w.announce()
}

// announce lets every known peer know this node is available.
func (w *Worker) announce() {
	if w.state.RetrieveHost() == "" {
		return
	}

	for _, pr := range w.state.RetrieveKnownPeers() {
		if err := w.state.NetRequestAddPeer(context.Background(), pr); err != nil {
			w.evHandler("worker: announce: addPeer: %s: ERROR: %s", pr.Host, err)
		}
	}
}

// addNewPeers takes the list of known peers and makes sure they are included
// in the nodes list of know peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	w.evHandler("worker: addNewPeers: started")
	defer w.evHandler("worker: addNewPeers: completed")

	for _, pr := range knownPeers {

		// Don't add this running node to the known peer list.
		if pr.Match(w.state.RetrieveHost()) {
			continue
		}

		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: addNewPeers: add peer nodes: adding peer-node %s", pr.Host)
		}
	}
}
