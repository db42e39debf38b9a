// Package divvy builds instructions for, and decodes state of, the divvy
// house pool program.
package divvy

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrMissingAccount         = errors.New("missing required account")
	ErrUnknownSchemaVersion   = errors.New("unknown schema version")
)

// Command selects the program operation. It is the first byte of every
// instruction.
type Command uint8

// CommandInitialize hands the pool state, and for the house pool its token
// accounts, over to the program.
const CommandInitialize Command = 10

// SchemaVersion selects which state layout a pool uses. It never appears on
// the wire; callers carry it alongside the account.
type SchemaVersion uint8

const (
	SchemaVersionUnknown SchemaVersion = iota
	SchemaVersionPool
	SchemaVersionHousePool
)

// Seeds used by the deployed programs to derive their pool authority.
const (
	PoolSeed      = "divvyexchange"
	HousePoolSeed = "divvyhouse"
)

// ParseSchemaVersion accepts the names produced by SchemaVersion.String.
func ParseSchemaVersion(name string) (SchemaVersion, error) {
	switch name {
	case "pool":
		return SchemaVersionPool, nil
	case "house-pool":
		return SchemaVersionHousePool, nil
	}
	return SchemaVersionUnknown, errors.Wrapf(ErrUnknownSchemaVersion, "%q", name)
}

func (v SchemaVersion) String() string {
	switch v {
	case SchemaVersionPool:
		return "pool"
	case SchemaVersionHousePool:
		return "house-pool"
	default:
		return "unknown"
	}
}

// DefaultSeed returns the seed the deployed program for the schema expects.
func (v SchemaVersion) DefaultSeed() ([]byte, error) {
	switch v {
	case SchemaVersionPool:
		return []byte(PoolSeed), nil
	case SchemaVersionHousePool:
		return []byte(HousePoolSeed), nil
	}
	return nil, errors.Wrapf(ErrUnknownSchemaVersion, "%d", v)
}
