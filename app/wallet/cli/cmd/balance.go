package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

type balance struct {
	Identity    string  `json:"identity"`
	Name        string  `json:"name"`
	Balance     float64 `json:"balance"`
	LatestBlock string  `json:"latest_block"`
	Uncommitted int     `json:"uncommitted"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	id := database.PublicKeyToIdentity(privateKey.PublicKey)
	fmt.Println("For Identity:", id)

	var bal balance
	if err := call(http.MethodGet, "/v1/balance/"+string(id), nil, &bal); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Latest Block:", bal.LatestBlock)
	fmt.Println("Uncommitted :", bal.Uncommitted)
	fmt.Println(bal.Balance)
}
