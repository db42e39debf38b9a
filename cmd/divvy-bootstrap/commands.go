package main

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/divvyexchange/bootstrap/pkg/app"
	"github.com/divvyexchange/bootstrap/pkg/bootstrap"
	"github.com/divvyexchange/bootstrap/pkg/ledger"
	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/divvy"
)

// loadConfig resolves the base config and applies global flag overrides on
// top of it. Flags win over the environment, which wins over the file.
func loadConfig(c *cli.Context) (app.BaseConfig, error) {
	config, err := app.LoadConfig(c.String(envFileFlag.Name), c.String(configFlag.Name))
	if err != nil {
		return config, err
	}

	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{clusterFlag.Name, &config.Cluster},
		{rpcURLFlag.Name, &config.RPCURL},
		{commitmentFlag.Name, &config.Commitment},
		{keypairFlag.Name, &config.KeypairPath},
		{programFlag.Name, &config.ProgramID},
		{schemaFlag.Name, &config.Schema},
		{seedFlag.Name, &config.PoolSeed},
		{logLevelFlag.Name, &config.LogLevel},
		{logFormatFlag.Name, &config.LogFormat},
	} {
		if c.IsSet(o.flag) {
			*o.dst = c.String(o.flag)
		}
	}

	app.ConfigureLogger(config, c.App.ErrWriter)
	return config, nil
}

type connection struct {
	cluster solana.Cluster
	client  solana.Client
	ledger  ledger.Ledger
}

func connect(config app.BaseConfig) (*connection, error) {
	cluster, endpoint, err := config.Endpoint()
	if err != nil {
		return nil, err
	}

	commitment, err := config.SolanaCommitment()
	if err != nil {
		return nil, err
	}

	client := solana.New(endpoint, solana.WithRequestsPerSecond(config.RequestsPerSecond))
	return &connection{
		cluster: cluster,
		client:  client,
		ledger:  ledger.New(client, commitment),
	}, nil
}

func initCmd(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	if err := applyBootstrapFlags(c); err != nil {
		return err
	}

	payer, err := config.Keypair()
	if err != nil {
		return err
	}
	program, err := config.Program()
	if err != nil {
		return err
	}
	version, err := config.SchemaVersion()
	if err != nil {
		return err
	}

	conn, err := connect(config)
	if err != nil {
		return err
	}

	payerAddress := payer.Public().(ed25519.PublicKey)
	log := logrus.StandardLogger().WithFields(logrus.Fields{
		"cluster": conn.cluster,
		"payer":   base58.Encode(payerAddress),
		"program": base58.Encode(program),
		"schema":  version,
	})

	balance, err := conn.client.GetBalance(c.Context, payerAddress)
	switch err {
	case nil:
		log.WithField("lamports", balance).Info("payer balance")
	case solana.ErrNoBalance:
		log.Warn("payer account does not exist")
	default:
		log.WithError(err).Warn("failed to get payer balance")
	}

	req := bootstrap.Request{
		Payer:   payer,
		Program: program,
		Version: version,
	}
	if len(config.PoolSeed) > 0 {
		req.Seed = []byte(config.PoolSeed)
	}

	res, err := bootstrap.New(conn.ledger, nil, bootstrap.WithEnvConfigs()).Run(c.Context, req)
	if res != nil {
		printResult(c, conn.cluster, res)
	}
	return err
}

// applyBootstrapFlags exports the init flags that were set as the bootstrap
// package's environment config.
func applyBootstrapFlags(c *cli.Context) error {
	set := func(name, value string) error {
		return errors.Wrapf(os.Setenv(name, value), "failed to set %s", name)
	}

	for flag, name := range bootstrapFlagEnv {
		if !c.IsSet(flag) {
			continue
		}

		var value string
		switch flag {
		case dryRunFlag.Name:
			value = strconv.FormatBool(c.Bool(flag))
		case decimalsFlag.Name:
			value = strconv.FormatUint(uint64(c.Uint(flag)), 10)
		default:
			if _, err := solana.ParsePublicKey(c.String(flag)); err != nil {
				return errors.Wrapf(err, "invalid --%s", flag)
			}
			value = c.String(flag)
		}

		if err := set(name, value); err != nil {
			return err
		}
	}

	if c.IsSet(noVerifyFlag.Name) {
		return set(bootstrap.VerifyStateConfigEnvName, strconv.FormatBool(!c.Bool(noVerifyFlag.Name)))
	}
	return nil
}

func printResult(c *cli.Context, cluster solana.Cluster, res *bootstrap.Result) {
	w := c.App.Writer

	fmt.Fprintf(w, "run:           %s\n", res.RunID)
	fmt.Fprintf(w, "schema:        %s\n", res.Version)
	fmt.Fprintf(w, "pool address:  %s (bump %d)\n", base58.Encode(res.PoolAddress), res.PoolBump)
	fmt.Fprintf(w, "state account: %s\n", base58.Encode(res.StateAccount))

	if t := res.Tokens; t != nil {
		fmt.Fprintf(w, "house mint:    %s\n", base58.Encode(t.HouseTokenMint))
		fmt.Fprintf(w, "stable mint:   %s\n", base58.Encode(t.StableMint))
		fmt.Fprintf(w, "pool tokens:   %s\n", base58.Encode(t.PoolTokenAccount))
		fmt.Fprintf(w, "insurance:     %s\n", base58.Encode(t.InsuranceFundTokenAccount))
		fmt.Fprintf(w, "foundation:    %s\n", base58.Encode(t.FoundationProceedsTokenAccount))
	}

	fmt.Fprintf(w, "signature:     %s\n", res.Signature)
	if res.Simulated {
		fmt.Fprintln(w, "simulated:     nothing was submitted")
	} else {
		fmt.Fprintf(w, "explorer:      %s\n", cluster.ExplorerURL(res.Signature))
	}

	if res.State != nil {
		fmt.Fprintf(w, "state:         %s\n", res.State)
	}
}

func deriveCmd(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	program, err := config.Program()
	if err != nil {
		return err
	}
	seed, err := config.Seed()
	if err != nil {
		return err
	}

	address, bump, err := divvy.GetPoolAddress(program, seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s %d\n", base58.Encode(address), bump)
	return nil
}

func inspectCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}

	account, err := solana.ParsePublicKey(c.Args().First())
	if err != nil {
		return err
	}

	config, err := loadConfig(c)
	if err != nil {
		return err
	}
	version, err := config.SchemaVersion()
	if err != nil {
		return err
	}

	conn, err := connect(config)
	if err != nil {
		return err
	}

	info, err := conn.ledger.GetAccountInfo(c.Context, account)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return errors.Errorf("account %s does not exist", c.Args().First())
	} else if err != nil {
		return err
	}

	if program, err := config.Program(); err == nil && !program.Equal(info.Owner) {
		logrus.StandardLogger().WithFields(logrus.Fields{
			"owner":   base58.Encode(info.Owner),
			"program": base58.Encode(program),
		}).Warn("account is not owned by the configured program")
	}

	record, err := divvy.UnmarshalState(version, info.Data)
	if err != nil {
		return errors.Wrapf(err, "failed to decode %s state", version)
	}

	fmt.Fprintf(c.App.Writer, "owner:    %s\n", base58.Encode(info.Owner))
	fmt.Fprintf(c.App.Writer, "lamports: %d\n", info.Lamports)
	fmt.Fprintf(c.App.Writer, "%s\n", record)
	return nil
}
