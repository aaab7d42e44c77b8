// This program performs administrative tasks against a stopped node's
// snapshot storage.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

type config struct {
	conf.Version
	Args conf.Args
	DB   struct {
		Engine string `conf:"default:disk"`
		Path   string `conf:"default:zblock/ledger"`
	}
	GenesisPath string
}

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "ledger admin tooling",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	return processCommands(cfg.Args, cfg)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, cfg config) error {
	gen, err := genesis.Load(cfg.GenesisPath)
	if err != nil {
		return fmt.Errorf("loading genesis: %w", err)
	}

	switch args.Num(0) {
	case "genesis":
		if err := commands.Genesis(args.Num(1)); err != nil {
			return fmt.Errorf("writing genesis: %w", err)
		}

	case "blocks":
		if err := commands.Blocks(cfg.DB.Engine, cfg.DB.Path); err != nil {
			return fmt.Errorf("listing blocks: %w", err)
		}

	case "validate":
		if err := commands.Validate(cfg.DB.Engine, cfg.DB.Path, gen); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}

	case "bals":
		if err := commands.Balances(cfg.DB.Engine, cfg.DB.Path, args.Num(1)); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	default:
		fmt.Println("genesis <file>: write the default genesis parameters")
		fmt.Println("blocks:         list the blocks held in storage")
		fmt.Println("validate:       validate the chain held in storage")
		fmt.Println("bals [id]:      print the balances from the chain held in storage")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
