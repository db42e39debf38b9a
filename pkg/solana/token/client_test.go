package token

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvyexchange/bootstrap/pkg/solana"
)

type accountMap map[string]solana.AccountInfo

func (m accountMap) GetAccountInfo(_ context.Context, account ed25519.PublicKey) (solana.AccountInfo, error) {
	info, ok := m[string(account)]
	if !ok {
		return solana.AccountInfo{}, errors.Wrap(solana.ErrNoAccountInfo, "lookup")
	}
	return info, nil
}

func TestClient(t *testing.T) {
	keys := generateKeys(t, 5)
	mint, owner, holder, otherHolder, missing := keys[0], keys[1], keys[2], keys[3], keys[4]

	mintState := Mint{MintAuthority: owner, Decimals: 6, IsInitialized: true}
	account := Account{Mint: mint, Owner: owner, State: AccountStateInitialized}
	foreign := Account{Mint: owner, Owner: owner, State: AccountStateInitialized}

	accounts := accountMap{
		string(mint):        {Owner: ProgramKey, Data: mintState.Marshal()},
		string(holder):      {Owner: ProgramKey, Data: account.Marshal()},
		string(otherHolder): {Owner: ProgramKey, Data: foreign.Marshal()},
		string(owner):       {Owner: make(ed25519.PublicKey, ed25519.PublicKeySize), Data: account.Marshal()},
	}

	client := NewClient(accounts, mint)
	assert.EqualValues(t, mint, client.Token())

	m, err := client.GetMint(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 6, m.Decimals)
	assert.EqualValues(t, owner, m.MintAuthority)

	a, err := client.GetAccount(context.Background(), holder)
	require.NoError(t, err)
	assert.EqualValues(t, owner, a.Owner)

	_, err = client.GetAccount(context.Background(), otherHolder)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = client.GetAccount(context.Background(), owner)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = client.GetAccount(context.Background(), missing)
	assert.Equal(t, ErrAccountNotFound, err)

	_, err = NewClient(accounts, holder).GetMint(context.Background())
	assert.Equal(t, ErrInvalidMint, err)
}
