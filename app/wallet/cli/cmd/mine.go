package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine a block now",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) {
	var block database.Block
	if err := call(http.MethodPost, "/v1/mine", nil, &block); err != nil {
		log.Fatal(err)
	}

	fmt.Println(block)
}
