package solana

import (
	"github.com/pkg/errors"
)

// ErrInvalidClusterName is returned for a cluster name outside of the public
// Solana clusters.
var ErrInvalidClusterName = errors.New("invalid cluster name")

type Environment string

const (
	EnvironmentDev  Environment = "https://api.devnet.solana.com"
	EnvironmentTest Environment = "https://api.testnet.solana.com"
	EnvironmentProd Environment = "https://api.mainnet-beta.solana.com"
)

// Cluster is one of the public Solana clusters.
type Cluster string

const (
	ClusterDevnet      Cluster = "devnet"
	ClusterTestnet     Cluster = "testnet"
	ClusterMainnetBeta Cluster = "mainnet-beta"
)

// ParseCluster validates a cluster name.
func ParseCluster(name string) (Cluster, error) {
	switch c := Cluster(name); c {
	case ClusterDevnet, ClusterTestnet, ClusterMainnetBeta:
		return c, nil
	}
	return "", errors.Wrapf(ErrInvalidClusterName, "%q", name)
}

// Endpoint returns the public JSON-RPC endpoint of the cluster.
func (c Cluster) Endpoint() Environment {
	switch c {
	case ClusterTestnet:
		return EnvironmentTest
	case ClusterMainnetBeta:
		return EnvironmentProd
	default:
		return EnvironmentDev
	}
}

// ExplorerURL links to the transaction in the Solana explorer.
func (c Cluster) ExplorerURL(sig Signature) string {
	return "https://explorer.solana.com/tx/" + sig.String() + "?cluster=" + string(c)
}

func (c Cluster) String() string {
	return string(c)
}
