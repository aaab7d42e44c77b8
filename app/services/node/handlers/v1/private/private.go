// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrievePeerStatus(), http.StatusOK)
}

// Chain returns the full chain held by the node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// SubmitNodeSubmission adds a submission relayed by a peer to the pool.
func (h Handlers) SubmitNodeSubmission(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var sub database.Submission
	if err := web.Decode(r, &sub); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("add node submission", "traceid", v.TraceID, "sub", sub)

	if err := h.State.SubmitNodeSubmission(sub); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "submission added to pool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeBlock takes a block received from a peer, validates it and if that
// passes, adds the block to the local chain. A block from further ahead is
// answered with 202 and the node resolves in the background.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	block, err := database.DecodeBlock(r.Body)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode block: %w", err), http.StatusBadRequest)
	}

	h.Log.Infow("propose block", "traceid", v.TraceID, "index", block.Index, "hash", block.Hash())

	if err := h.State.IngestBlock(block); err != nil {
		if errors.Is(err, database.ErrChainBehind) {
			resp := struct {
				Status string `json:"status"`
			}{
				Status: "chain behind, resolving",
			}
			return web.Respond(ctx, w, resp, http.StatusAccepted)
		}

		return errs.NewTrusted(fmt.Errorf("block not accepted: %w", err), http.StatusConflict)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AddPeer records a peer announcing itself to this node.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	pr = peer.New(pr.Host)
	if !h.State.AddKnownPeer(pr) {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, pr, http.StatusCreated)
}
