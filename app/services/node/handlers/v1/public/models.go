package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

type genesisInfo struct {
	Genesis genesis.Genesis `json:"genesis"`
	Block   database.Block  `json:"block"`
	Window  string          `json:"reward_window"`
}

type balanceInfo struct {
	Identity    database.PublicKeyIdentity `json:"identity"`
	Name        string                     `json:"name"`
	Balance     float64                    `json:"balance"`
	LatestBlock string                     `json:"latest_block"`
	Uncommitted int                        `json:"uncommitted"`
}

type submission struct {
	Origin     database.PublicKeyIdentity `json:"origin"`
	OriginName string                     `json:"origin_name"`
	Target     database.PublicKeyIdentity `json:"target"`
	TargetName string                     `json:"target_name"`
	Countdown  float64                    `json:"countdown"`
	Amount     float64                    `json:"amount"`
	Signature  string                     `json:"signature"`
}

// NewSubmission is what a client provides to have the node sign and submit
// a transfer from the node identity. The target is an identity or a name
// known to the name service.
type NewSubmission struct {
	Target string  `json:"target" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

type resolveInfo struct {
	Replaced bool   `json:"replaced"`
	Length   int    `json:"length"`
	Latest   string `json:"latest_block"`
}
