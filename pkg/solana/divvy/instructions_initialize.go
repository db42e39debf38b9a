package divvy

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/divvyexchange/bootstrap/pkg/solana"
)

// InitArgs is the payload of the initialize instruction.
type InitArgs struct {
	Action   Command
	BumpSeed uint8
}

func NewInitArgs(bump uint8) InitArgs {
	return InitArgs{Action: CommandInitialize, BumpSeed: bump}
}

func (obj InitArgs) Marshal() ([]byte, error) {
	return InitArgsLayout.Encode(Values{
		fieldAction:   uint8(obj.Action),
		fieldBumpSeed: obj.BumpSeed,
	})
}

func (obj *InitArgs) Unmarshal(data []byte) error {
	v, err := InitArgsLayout.Decode(data)
	if err != nil {
		return err
	}

	obj.Action = Command(v[fieldAction].(uint8))
	obj.BumpSeed = v[fieldBumpSeed].(uint8)
	return nil
}

// InitializeInstructionAccounts lists the accounts of the initialize
// instruction. The token accounts are only used by the house pool.
type InitializeInstructionAccounts struct {
	Payer ed25519.PublicKey
	State ed25519.PublicKey

	HouseTokenMint                 ed25519.PublicKey
	PoolTokenAccount               ed25519.PublicKey
	InsuranceFundTokenAccount      ed25519.PublicKey
	FoundationProceedsTokenAccount ed25519.PublicKey
}

// List returns the accounts in the order the program reads them.
//
//	0. [WRITE, SIGNER] payer
//	1. [WRITE] pool state
//	2. [WRITE] house token mint            (house pool)
//	3. [WRITE] pool stable token account   (house pool)
//	4. [WRITE] insurance fund token account (house pool)
//	5. [WRITE] foundation proceeds token account (house pool)
func (a *InitializeInstructionAccounts) List(version SchemaVersion) ([]solana.AccountMeta, error) {
	if len(a.Payer) == 0 || len(a.State) == 0 {
		return nil, errors.Wrap(ErrMissingAccount, "payer and state are required")
	}

	metas := []solana.AccountMeta{
		solana.NewAccountMeta(a.Payer, true),
		solana.NewAccountMeta(a.State, false),
	}

	switch version {
	case SchemaVersionPool:
		return metas, nil
	case SchemaVersionHousePool:
	default:
		return nil, errors.Wrapf(ErrUnknownSchemaVersion, "%d", version)
	}

	for _, acc := range []struct {
		name string
		key  ed25519.PublicKey
	}{
		{"house token mint", a.HouseTokenMint},
		{"pool token account", a.PoolTokenAccount},
		{"insurance fund token account", a.InsuranceFundTokenAccount},
		{"foundation proceeds token account", a.FoundationProceedsTokenAccount},
	} {
		if len(acc.key) == 0 {
			return nil, errors.Wrap(ErrMissingAccount, acc.name)
		}
		metas = append(metas, solana.NewAccountMeta(acc.key, false))
	}

	return metas, nil
}

// NewInitializeInstruction builds the initialize instruction for a pool of
// the given schema. bump must be the bump of the pool address derived for
// program.
func NewInitializeInstruction(
	program ed25519.PublicKey,
	version SchemaVersion,
	accounts *InitializeInstructionAccounts,
	bump uint8,
) (solana.Instruction, error) {
	if accounts == nil {
		return solana.Instruction{}, ErrMissingAccount
	}

	metas, err := accounts.List(version)
	if err != nil {
		return solana.Instruction{}, err
	}

	args, err := NewInitArgs(bump).Marshal()
	if err != nil {
		return solana.Instruction{}, err
	}

	// The args record leads with the opcode already.
	return solana.BuildInstruction(program, args[0], args[1:], metas...), nil
}

type DecompiledInitialize struct {
	Version  SchemaVersion
	Accounts InitializeInstructionAccounts
	Args     InitArgs
}

// DecompileInitialize recovers an initialize instruction from a compiled
// message. The schema is inferred from the number of accounts.
func DecompileInitialize(m solana.Message, index int, program ed25519.PublicKey) (*DecompiledInitialize, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], program) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 || Command(i.Data[0]) != CommandInitialize {
		return nil, solana.ErrIncorrectInstruction
	}

	v := &DecompiledInitialize{}
	if err := v.Args.Unmarshal(i.Data); err != nil {
		return nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}

	key := func(pos int) ed25519.PublicKey {
		return m.Accounts[i.Accounts[pos]]
	}

	switch len(i.Accounts) {
	case 2:
		v.Version = SchemaVersionPool
	case 6:
		v.Version = SchemaVersionHousePool
		v.Accounts.HouseTokenMint = key(2)
		v.Accounts.PoolTokenAccount = key(3)
		v.Accounts.InsuranceFundTokenAccount = key(4)
		v.Accounts.FoundationProceedsTokenAccount = key(5)
	default:
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	v.Accounts.Payer = key(0)
	v.Accounts.State = key(1)

	return v, nil
}
