// Command divvy-bootstrap creates and initializes divvy pools.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/divvyexchange/bootstrap/pkg/app"
	"github.com/divvyexchange/bootstrap/pkg/bootstrap"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML configuration file",
		Value: "config.yaml",
	}
	envFileFlag = &cli.StringFlag{
		Name:  "env-file",
		Usage: "dotenv file loaded before the configuration",
		Value: app.DefaultEnvFile,
	}
	clusterFlag = &cli.StringFlag{
		Name:  "cluster",
		Usage: "devnet, testnet or mainnet-beta",
	}
	rpcURLFlag = &cli.StringFlag{
		Name:  "rpc-url",
		Usage: "JSON-RPC endpoint, overriding the cluster's public endpoint",
	}
	commitmentFlag = &cli.StringFlag{
		Name:  "commitment",
		Usage: "processed, confirmed or finalized",
	}
	keypairFlag = &cli.StringFlag{
		Name:  "keypair",
		Usage: "payer keypair file written by solana-keygen",
	}
	programFlag = &cli.StringFlag{
		Name:  "program-id",
		Usage: "base58 address of the divvy program",
	}
	schemaFlag = &cli.StringFlag{
		Name:  "schema",
		Usage: "pool or house-pool",
	}
	seedFlag = &cli.StringFlag{
		Name:  "seed",
		Usage: "pool address seed, defaults to the seed the schema's program expects",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "trace, debug, info, warn or error",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "text or json",
	}

	dryRunFlag = &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "build and sign every transaction but apply them to an in-memory copy of the ledger",
	}
	noVerifyFlag = &cli.BoolFlag{
		Name:  "no-verify",
		Usage: "skip reading the pool state back after initialization",
	}
	decimalsFlag = &cli.UintFlag{
		Name:  "decimals",
		Usage: "decimals of created house pool mints",
	}
	stableMintFlag = &cli.StringFlag{
		Name:  "stable-mint",
		Usage: "existing stable asset mint for house pool token accounts",
	}
	foundationOwnerFlag = &cli.StringFlag{
		Name:  "foundation-owner",
		Usage: "owner of the foundation proceeds token account, defaults to the payer",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "divvy-bootstrap",
		Usage: "create and initialize divvy pools",
		Flags: []cli.Flag{
			configFlag,
			envFileFlag,
			clusterFlag,
			rpcURLFlag,
			commitmentFlag,
			keypairFlag,
			programFlag,
			schemaFlag,
			seedFlag,
			logLevelFlag,
			logFormatFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "create the pool state account and initialize the pool",
				Action: initCmd,
				Flags: []cli.Flag{
					dryRunFlag,
					noVerifyFlag,
					decimalsFlag,
					stableMintFlag,
					foundationOwnerFlag,
				},
			},
			{
				Name:   "derive",
				Usage:  "print the pool address and bump",
				Action: deriveCmd,
			},
			{
				Name:      "inspect",
				Usage:     "decode a pool state account",
				ArgsUsage: "<state-account>",
				Action:    inspectCmd,
			},
		},
	}
}

// bootstrapFlagEnv maps init flags onto the bootstrap package's environment
// config.
var bootstrapFlagEnv = map[string]string{
	dryRunFlag.Name:          bootstrap.DisableSubmissionConfigEnvName,
	decimalsFlag.Name:        bootstrap.TokenDecimalsConfigEnvName,
	stableMintFlag.Name:      bootstrap.StableMintConfigEnvName,
	foundationOwnerFlag.Name: bootstrap.FoundationOwnerConfigEnvName,
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
