package app

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/divvy"
)

// BaseConfig is what every command needs to reach a cluster and sign for it.
type BaseConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Cluster string `mapstructure:"cluster"`
	// RPCURL overrides the public endpoint of Cluster.
	RPCURL            string  `mapstructure:"rpc_url"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Commitment        string  `mapstructure:"commitment"`

	KeypairPath string `mapstructure:"keypair_path"`

	ProgramID string `mapstructure:"program_id"`
	Schema    string `mapstructure:"schema"`
	// PoolSeed overrides the seed the program for Schema expects.
	PoolSeed string `mapstructure:"pool_seed"`
}

var defaultConfig = BaseConfig{
	LogLevel:  "info",
	LogFormat: "text",

	Cluster:           string(solana.ClusterDevnet),
	RequestsPerSecond: 5,
	Commitment:        solana.CommitmentConfirmed.Commitment,

	KeypairPath: solana.DefaultKeypairPath,

	Schema: divvy.SchemaVersionPool.String(),
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_format", "LOG_FORMAT")

	_ = v.BindEnv("cluster", "CLUSTER")
	_ = v.BindEnv("rpc_url", "RPC_URL")
	_ = v.BindEnv("requests_per_second", "REQUESTS_PER_SECOND")
	_ = v.BindEnv("commitment", "COMMITMENT")

	_ = v.BindEnv("keypair_path", "KEYPAIR_PATH")

	_ = v.BindEnv("program_id", "PROGRAM_ID")
	_ = v.BindEnv("schema", "SCHEMA")
	_ = v.BindEnv("pool_seed", "POOL_SEED")
}

// Endpoint returns the JSON-RPC endpoint to use. The cluster name is
// validated even when RPCURL overrides it, since it also selects explorer
// links.
func (c BaseConfig) Endpoint() (solana.Cluster, string, error) {
	cluster, err := solana.ParseCluster(c.Cluster)
	if err != nil {
		return "", "", err
	}

	if len(c.RPCURL) > 0 {
		return cluster, c.RPCURL, nil
	}
	return cluster, string(cluster.Endpoint()), nil
}

func (c BaseConfig) SolanaCommitment() (solana.Commitment, error) {
	return solana.ParseCommitment(c.Commitment)
}

func (c BaseConfig) SchemaVersion() (divvy.SchemaVersion, error) {
	return divvy.ParseSchemaVersion(c.Schema)
}

func (c BaseConfig) Program() (ed25519.PublicKey, error) {
	if len(c.ProgramID) == 0 {
		return nil, errors.New("program id is required")
	}
	return solana.ParsePublicKey(c.ProgramID)
}

// Seed returns the configured pool seed, or the default seed of the schema.
func (c BaseConfig) Seed() ([]byte, error) {
	if len(c.PoolSeed) > 0 {
		return []byte(c.PoolSeed), nil
	}

	version, err := c.SchemaVersion()
	if err != nil {
		return nil, err
	}
	return version.DefaultSeed()
}

func (c BaseConfig) Keypair() (ed25519.PrivateKey, error) {
	return solana.LoadKeypairFile(c.KeypairPath)
}
