// Program wallet manages ledger keys and talks to a node on behalf of the
// key owner.
package main

import "github.com/ardanlabs/ledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
