package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// StatusError is returned when a peer responds with an unexpected status.
type StatusError struct {
	Status int
	Msg    string
}

// Error implements the error interface.
func (se *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", se.Status, se.Msg)
}

// =============================================================================

// NetSendBlockToPeers takes the new mined block and sends it to all known
// peers. A peer rejecting the block as invalid means the chains diverged
// and a resolve is flagged.
func (s *State) NetSendBlockToPeers(ctx context.Context, block database.Block) {
	s.evHandler("state: NetSendBlockToPeers: started")
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	s.broadcast(ctx, func(ctx context.Context, pr peer.Peer) {
		url := fmt.Sprintf("%s/block", fmt.Sprintf(baseURL, pr.Host))

		err := s.send(ctx, http.MethodPost, url, block, nil)

		var se *StatusError
		switch {
		case err == nil:
			s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]", pr.Host)

		case errors.As(err, &se) && se.Status == http.StatusConflict:
			s.evHandler("state: NetSendBlockToPeers: peer[%s]: rejected block: %s", pr.Host, se.Msg)
			s.FlagResolvePending()

		default:
			s.evHandler("state: NetSendBlockToPeers: peer[%s]: WARNING: %s", pr.Host, err)
		}
	})
}

// NetSendSubmissionToPeers shares a new submission with the known peers.
func (s *State) NetSendSubmissionToPeers(ctx context.Context, sub database.Submission) {
	s.evHandler("state: NetSendSubmissionToPeers: started")
	defer s.evHandler("state: NetSendSubmissionToPeers: completed")

	s.broadcast(ctx, func(ctx context.Context, pr peer.Peer) {
		url := fmt.Sprintf("%s/submission", fmt.Sprintf(baseURL, pr.Host))
		if err := s.send(ctx, http.MethodPost, url, sub, nil); err != nil {
			s.evHandler("state: NetSendSubmissionToPeers: peer[%s]: WARNING: %s", pr.Host, err)
		}
	})
}

// NetRequestPeerStatus looks for new nodes on the network by asking
// known nodes for their peer list.
func (s *State) NetRequestPeerStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr.Host)

	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := s.send(ctx, http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: latest-blkidx[%d]: peer-list[%s]", pr.Host, ps.LatestBlockIndex, ps.KnownPeers)

	return ps, nil
}

// NetRequestPeerChain asks the peer for its full chain.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var raw json.RawMessage
	if err := s.send(ctx, http.MethodGet, url, nil, &raw); err != nil {
		return nil, err
	}

	chain, err := database.DecodeChain(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerChain: peer-node[%s]: len[%d]", pr.Host, len(chain))

	return chain, nil
}

// NetRequestAddPeer lets the peer know this node is available.
func (s *State) NetRequestAddPeer(ctx context.Context, pr peer.Peer) error {
	s.evHandler("state: NetRequestAddPeer: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestAddPeer: completed: %s", pr.Host)

	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/peers", fmt.Sprintf(baseURL, pr.Host))

	return s.send(ctx, http.MethodPost, url, peer.New(s.host), nil)
}

// NetChainFetcher returns a ChainFetcher that retrieves chains from peers
// over the node API.
func (s *State) NetChainFetcher() ChainFetcher {
	return netFetcher{state: s}
}

type netFetcher struct {
	state *State
}

// FetchChain implements the ChainFetcher interface.
func (nf netFetcher) FetchChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	return nf.state.NetRequestPeerChain(ctx, pr)
}

// =============================================================================

// broadcast runs the function against every known peer concurrently, each
// call bounded by the peer timeout.
func (s *State) broadcast(ctx context.Context, fn func(ctx context.Context, pr peer.Peer)) {
	peers := s.RetrieveKnownPeers()

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for _, pr := range peers {
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			fn(ctx, pr)
		}()
	}

	wg.Wait()
}

// send is a helper function to send an HTTP request to a node.
func (s *State) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil

	case http.StatusOK, http.StatusCreated, http.StatusAccepted:

	default:
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return err
		}
		return &StatusError{Status: resp.StatusCode, Msg: strings.TrimSpace(string(msg))}
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
