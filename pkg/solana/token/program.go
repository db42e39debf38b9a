package token

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/pkg/errors"

	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/system"
)

// ProgramKey is the address of the token program that should be used.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

type Command byte

const (
	CommandInitializeMint Command = iota
	CommandInitializeAccount
	// nolint:varcheck,deadcode,unused
	CommandInitializeMultisig
	// nolint:varcheck,deadcode,unused
	CommandTransfer
	// nolint:varcheck,deadcode,unused
	CommandApprove
	// nolint:varcheck,deadcode,unused
	CommandRevoke
	// nolint:varcheck,deadcode,unused
	CommandSetAuthority
	CommandMintTo

	CommandUnknown = Command(math.MaxUint8)
)

func GetCommand(m solana.Message, index int) (Command, error) {
	if index >= len(m.Instructions) {
		return CommandUnknown, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}

	return Command(i.Data[0]), nil
}

// InitializeMint sets up a freshly allocated mint account. A nil freezeAuthority
// leaves the mint without one.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L26-L40
func InitializeMint(mint, mintAuthority, freezeAuthority ed25519.PublicKey, decimals byte) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	//   1. `[]` Rent sysvar
	data := make([]byte, 0, 3+2*ed25519.PublicKeySize)
	data = append(data, byte(CommandInitializeMint), decimals)
	data = append(data, mintAuthority...)
	if len(freezeAuthority) > 0 {
		data = append(data, 1)
		data = append(data, freezeAuthority...)
	} else {
		data = append(data, 0)
	}

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}

type DecompiledInitializeMint struct {
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey
	Decimals        byte
}

func DecompileInitializeMint(m solana.Message, index int) (*DecompiledInitializeMint, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, []byte{byte(CommandInitializeMint)}) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if !bytes.Equal(system.RentSysVar, m.Accounts[i.Accounts[1]]) {
		return nil, errors.Errorf("invalid rent program")
	}

	const base = 2 + ed25519.PublicKeySize + 1
	if len(i.Data) < base {
		return nil, errors.Errorf("invalid data size: %d (expect at least %d)", len(i.Data), base)
	}

	hasFreeze := i.Data[base-1] == 1
	if (hasFreeze && len(i.Data) != base+ed25519.PublicKeySize) || (!hasFreeze && len(i.Data) != base) {
		return nil, errors.Errorf("invalid data size: %d", len(i.Data))
	}

	decompiled := &DecompiledInitializeMint{
		Mint:          m.Accounts[i.Accounts[0]],
		Decimals:      i.Data[1],
		MintAuthority: i.Data[2 : 2+ed25519.PublicKeySize],
	}
	if hasFreeze {
		decompiled.FreezeAuthority = i.Data[base:]
	}

	return decompiled, nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L41-L55
func InitializeAccount(account, mint, owner ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]`  The account to initialize.
	//   1. `[]` The mint this account will be associated with.
	//   2. `[]` The new account's owner/multisignature.
	//   3. `[]` Rent sysvar
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandInitializeAccount)},
		solana.NewAccountMeta(account, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(owner, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}

type DecompiledInitializeAccount struct {
	Account ed25519.PublicKey
	Mint    ed25519.PublicKey
	Owner   ed25519.PublicKey
}

func DecompileInitializeAccount(m solana.Message, index int) (*DecompiledInitializeAccount, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.Equal([]byte{byte(CommandInitializeAccount)}, i.Data) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 4 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if !bytes.Equal(system.RentSysVar, m.Accounts[i.Accounts[3]]) {
		return nil, errors.Errorf("invalid rent program")
	}

	return &DecompiledInitializeAccount{
		Account: m.Accounts[i.Accounts[0]],
		Mint:    m.Accounts[i.Accounts[1]],
		Owner:   m.Accounts[i.Accounts[2]],
	}, nil
}
