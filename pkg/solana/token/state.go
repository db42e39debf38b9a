package token

import (
	"crypto/ed25519"

	"github.com/divvyexchange/bootstrap/pkg/solana/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L125
const AccountSize = 165

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L39
const MintSize = 82

const optionSize = 4

type Account struct {
	// The mint associated with this account
	Mint ed25519.PublicKey
	// The owner of this account.
	Owner ed25519.PublicKey
	// The amount of tokens this account holds.
	Amount uint64
	// If set, then the 'DelegatedAmount' represents the amount
	// authorized by the delegate.
	Delegate ed25519.PublicKey
	/// The account's state
	State AccountState
	// If set, this is a native token, and the value logs the rent-exempt reserve.
	IsNative *uint64
	// The amount delegated
	DelegatedAmount uint64
	// Optional authority to close the account.
	CloseAuthority ed25519.PublicKey
}

func (a *Account) Marshal() []byte {
	b := make([]byte, AccountSize)

	w := binary.NewWriter(b)
	w.Key32(a.Mint)
	w.Key32(a.Owner)
	w.Uint64(a.Amount)
	w.OptionalKey32(a.Delegate, optionSize)
	w.Uint8(byte(a.State))
	w.OptionalUint64(a.IsNative, optionSize)
	w.Uint64(a.DelegatedAmount)
	w.OptionalKey32(a.CloseAuthority, optionSize)

	return b
}

func (a *Account) Unmarshal(b []byte) bool {
	if len(b) != AccountSize {
		return false
	}

	r := binary.NewReader(b)
	a.Mint = r.Key32()
	a.Owner = r.Key32()
	a.Amount = r.Uint64()
	a.Delegate = r.OptionalKey32(optionSize)
	a.State = AccountState(r.Uint8())
	a.IsNative = r.OptionalUint64(optionSize)
	a.DelegatedAmount = r.Uint64()
	a.CloseAuthority = r.OptionalKey32(optionSize)

	return r.Err() == nil
}

// Mint is the state held by a token mint account.
type Mint struct {
	// Optional authority used to mint new tokens. Without one the supply is fixed.
	MintAuthority ed25519.PublicKey
	// Total supply of tokens.
	Supply uint64
	// Number of base 10 digits to the right of the decimal place.
	Decimals byte
	IsInitialized bool
	// Optional authority to freeze token accounts.
	FreezeAuthority ed25519.PublicKey
}

func (m *Mint) Marshal() []byte {
	b := make([]byte, MintSize)

	var initialized uint8
	if m.IsInitialized {
		initialized = 1
	}

	w := binary.NewWriter(b)
	w.OptionalKey32(m.MintAuthority, optionSize)
	w.Uint64(m.Supply)
	w.Uint8(m.Decimals)
	w.Uint8(initialized)
	w.OptionalKey32(m.FreezeAuthority, optionSize)

	return b
}

func (m *Mint) Unmarshal(b []byte) bool {
	if len(b) != MintSize {
		return false
	}

	r := binary.NewReader(b)
	m.MintAuthority = r.OptionalKey32(optionSize)
	m.Supply = r.Uint64()
	m.Decimals = r.Uint8()
	m.IsInitialized = r.Uint8() != 0
	m.FreezeAuthority = r.OptionalKey32(optionSize)

	return r.Err() == nil
}
