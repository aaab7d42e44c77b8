// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the node.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// This keeps the connection alive.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis parameters and the genesis block.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()

	info := genesisInfo{
		Genesis: gen,
		Block:   database.GenesisBlock(gen),
		Window:  h.State.RetrieveWindow().String(),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Chain returns the full chain held by the node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// Balance returns the balance of the specified identity, or of the node
// identity when none is specified. Pending submissions are included.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var id database.PublicKeyIdentity

	if param := web.Param(r, "identity"); param != "" {
		var err error
		if id, err = h.toIdentity(param); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	balance, err := h.State.Balance(id)
	if err != nil {
		if errors.Is(err, state.ErrUnavailable) {
			return errs.NewTrusted(state.ErrNoIdentity, http.StatusBadRequest)
		}
		return err
	}

	if id == "" {
		id = h.State.RetrieveIdentity()
	}

	info := balanceInfo{
		Identity:    id,
		Name:        h.NS.Lookup(id),
		Balance:     balance,
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted: h.State.QueryMempoolLength(),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Submissions returns the set of uncommitted submissions.
func (h Handlers) Submissions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pool := h.State.RetrieveMempool()

	subs := make([]submission, len(pool))
	for i, sub := range pool {
		subs[i] = h.toSubmission(sub)
	}

	return web.Respond(ctx, w, subs, http.StatusOK)
}

// SignAndSubmit signs a transfer from the node identity with the node key
// and adds it to the pool.
func (h Handlers) SignAndSubmit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ns NewSubmission
	if err := web.Decode(r, &ns); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	target, err := h.toIdentity(ns.Target)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("sign submission", "traceid", v.TraceID, "target", target, "amount", ns.Amount)

	sub, err := h.State.SignAndSubmit(target, ns.Amount)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.toSubmission(sub), http.StatusCreated)
}

// SubmitWalletSubmission adds a submission signed by a wallet to the pool.
func (h Handlers) SubmitWalletSubmission(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var sub database.Submission
	if err := web.Decode(r, &sub); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("add wallet submission", "traceid", v.TraceID, "sub", sub)

	if err := h.State.SubmitWalletSubmission(sub); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.toSubmission(sub), http.StatusCreated)
}

// Mine mines a block from the current pool. Mining is refused while the
// node knows its chain is behind a peer.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.IsResolvePending() {
		return errs.NewTrusted(errors.New("chain is behind a peer, resolve pending"), http.StatusConflict)
	}

	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoIdentity):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, state.ErrInvalidPooledSubmission):
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	return web.Respond(ctx, w, block, http.StatusCreated)
}

// Resolve replaces the chain with the longest valid chain held by the
// known peers.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, err := h.State.Resolve(ctx, h.State.NetChainFetcher())
	if err != nil {
		return err
	}

	info := resolveInfo{
		Replaced: replaced,
		Length:   len(h.State.RetrieveChain()),
		Latest:   h.State.RetrieveLatestBlock().Hash(),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Proof returns the inclusion proof of the submission with the specified
// signature in the block at the specified index.
func (h Handlers) Proof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block index: %w", err), http.StatusBadRequest)
	}

	ip, err := h.State.QuerySubmissionProof(index, web.Param(r, "signature"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, ip, http.StatusOK)
}

// Peers returns the set of known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// AddPeer adds a peer to the set of known peers.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	pr = peer.New(pr.Host)
	if !h.State.AddKnownPeer(pr) {
		return web.Respond(ctx, w, pr, http.StatusOK)
	}

	return web.Respond(ctx, w, pr, http.StatusCreated)
}

// RemovePeer removes a peer from the set of known peers.
func (h Handlers) RemovePeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pr := peer.New(web.Param(r, "host"))

	if !h.State.RemoveKnownPeer(pr) {
		return errs.NewTrusted(fmt.Errorf("peer %q is not known", pr.Host), http.StatusNotFound)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// =============================================================================

// toIdentity accepts an identity or a name registered with the name service.
func (h Handlers) toIdentity(s string) (database.PublicKeyIdentity, error) {
	if id, ok := h.NS.Resolve(s); ok {
		return id, nil
	}
	return database.ToIdentity(s)
}

func (h Handlers) toSubmission(sub database.Submission) submission {
	return submission{
		Origin:     sub.Origin,
		OriginName: h.NS.Lookup(sub.Origin),
		Target:     sub.Target,
		TargetName: h.NS.Lookup(sub.Target),
		Countdown:  sub.Countdown,
		Amount:     sub.Amount,
		Signature:  sub.Signature,
	}
}
