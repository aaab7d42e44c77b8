package cmd

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and send a submission",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Identity or key name of the target.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Amount to send.")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	target, err := resolveTarget(to)
	if err != nil {
		log.Fatal(err)
	}

	// The countdown depends on the chain the node currently holds.
	var info struct {
		Genesis genesis.Genesis `json:"genesis"`
	}
	if err := call(http.MethodGet, "/v1/genesis", nil, &info); err != nil {
		log.Fatal(err)
	}

	var chain []database.Block
	if err := call(http.MethodGet, "/v1/chain", nil, &chain); err != nil {
		log.Fatal(err)
	}
	if len(chain) == 0 {
		log.Fatal("node returned an empty chain")
	}

	countdown := info.Genesis.CountdownAfter(chain[len(chain)-1].Index, time.Now())
	origin := database.PublicKeyToIdentity(privateKey.PublicKey)

	sub, err := database.NewSubmission(origin, target, countdown, amount).Sign(privateKey)
	if err != nil {
		log.Fatal(err)
	}

	if err := call(http.MethodPost, "/v1/submission/submit", sub, nil); err != nil {
		log.Fatal(err)
	}

	fmt.Println(sub)
}

// resolveTarget accepts an identity or the name of a key file in the
// account path.
func resolveTarget(s string) (database.PublicKeyIdentity, error) {
	ns, err := nameservice.New(accountPath)
	if err == nil {
		if id, ok := ns.Resolve(s); ok {
			return id, nil
		}
	}

	id, err := database.ToIdentity(s)
	if err != nil {
		return "", fmt.Errorf("target %q is not an identity or a known name", s)
	}

	return id, nil
}
