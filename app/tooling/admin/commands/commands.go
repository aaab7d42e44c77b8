// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/leveldb"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Genesis writes the default genesis parameters to the specified file.
func Genesis(path string) error {
	if path == "" {
		path = "zblock/genesis.json"
	}

	data, err := json.MarshalIndent(genesis.Default(), "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	fmt.Println("genesis written to", path)
	return nil
}

// Blocks prints every block held in storage in order.
func Blocks(engine string, dbPath string) error {
	if engine == "disk" {
		d, err := disk.New(dbPath)
		if err != nil {
			return err
		}
		defer d.Close()

		iter := d.ForEach()
		for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
			if err != nil {
				return err
			}
			fmt.Println(block)
		}
		return nil
	}

	snapshot, err := load(engine, dbPath)
	if err != nil {
		return err
	}

	for _, block := range snapshot.Chain {
		fmt.Println(block)
	}

	return nil
}

// Validate loads the chain held in storage and checks its integrity.
func Validate(engine string, dbPath string, gen genesis.Genesis) error {
	snapshot, err := load(engine, dbPath)
	if err != nil {
		return err
	}

	if err := database.ValidateChain(snapshot.Chain, gen); err != nil {
		return err
	}

	fmt.Printf("chain of %d blocks is valid, latest block %s\n", len(snapshot.Chain), snapshot.Chain[len(snapshot.Chain)-1].Hash())
	return nil
}

// Balances prints the balance of every participant found in the chain, or
// of the specified identity only. Pending submissions are included.
func Balances(engine string, dbPath string, identity string) error {
	snapshot, err := load(engine, dbPath)
	if err != nil {
		return err
	}

	if identity != "" {
		id, err := database.ToIdentity(identity)
		if err != nil {
			return err
		}
		fmt.Printf("Identity: %s  Balance: %v\n", id, database.Balance(snapshot.Chain, snapshot.Pool, id))
		return nil
	}

	seen := make(map[database.PublicKeyIdentity]bool)
	for _, block := range snapshot.Chain {
		for _, sub := range block.Submissions {
			for _, id := range []database.PublicKeyIdentity{sub.Origin, sub.Target} {
				if id.IsIssuer() || seen[id] {
					continue
				}
				seen[id] = true
				fmt.Printf("Identity: %s  Balance: %v\n", id, database.Balance(snapshot.Chain, snapshot.Pool, id))
			}
		}
	}

	return nil
}

// =============================================================================

func load(engine string, dbPath string) (database.Snapshot, error) {
	var strg database.Storage

	switch engine {
	case "disk":
		d, err := disk.New(dbPath)
		if err != nil {
			return database.Snapshot{}, err
		}
		strg = d

	case "leveldb":
		l, err := leveldb.New(dbPath)
		if err != nil {
			return database.Snapshot{}, err
		}
		strg = l

	default:
		return database.Snapshot{}, fmt.Errorf("unknown storage engine %q", engine)
	}
	defer strg.Close()

	return strg.Load()
}
