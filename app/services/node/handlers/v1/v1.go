// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/business/web/mid"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *zap.SugaredLogger
	State     *state.State
	NS        *nameservice.NameService
	Evts      *events.Events
	RateLimit float64
	RateBurst int
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	// Writes share one limiter.
	var limit web.Middleware
	if cfg.RateLimit > 0 {
		limit = mid.RateLimit(cfg.RateLimit, cfg.RateBurst)
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/balance", pbl.Balance)
	app.Handle(http.MethodGet, version, "/balance/:identity", pbl.Balance)
	app.Handle(http.MethodGet, version, "/submissions", pbl.Submissions)
	app.Handle(http.MethodGet, version, "/proof/:index/:signature", pbl.Proof)
	app.Handle(http.MethodPost, version, "/submission", pbl.SignAndSubmit, limit)
	app.Handle(http.MethodPost, version, "/submission/submit", pbl.SubmitWalletSubmission, limit)
	app.Handle(http.MethodPost, version, "/mine", pbl.Mine, limit)
	app.Handle(http.MethodPost, version, "/resolve", pbl.Resolve, limit)
	app.Handle(http.MethodGet, version, "/peers", pbl.Peers)
	app.Handle(http.MethodPost, version, "/peers", pbl.AddPeer, limit)
	app.Handle(http.MethodDelete, version, "/peers/:host", pbl.RemovePeer, limit)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/chain", prv.Chain)
	app.Handle(http.MethodPost, version, "/node/submission", prv.SubmitNodeSubmission)
	app.Handle(http.MethodPost, version, "/node/block", prv.ProposeBlock)
	app.Handle(http.MethodPost, version, "/node/peers", prv.AddPeer)
}
