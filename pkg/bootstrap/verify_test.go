package bootstrap

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvyexchange/bootstrap/pkg/ledger/memory"
	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/divvy"
	"github.com/divvyexchange/bootstrap/pkg/testutil"
)

// reassigningProcessor moves the state account to another owner instead of
// initializing it.
func reassigningProcessor(program, owner ed25519.PublicKey) memory.Processor {
	return func(accounts *memory.Accounts, m solana.Message, index int) error {
		init, err := divvy.DecompileInitialize(m, index, program)
		if err != nil {
			return err
		}

		info, _ := accounts.Get(init.Accounts.State)
		info.Owner = owner
		accounts.Put(init.Accounts.State, info)
		return nil
	}
}

// hijackingProvisioner hands out token accounts owned by someone other than
// the pool.
type hijackingProvisioner struct {
	TokenProvisioner
	owner ed25519.PublicKey
}

func (p *hijackingProvisioner) CreateTokenAccount(ctx context.Context, payer ed25519.PrivateKey, mint, _ ed25519.PublicKey) (ed25519.PublicKey, error) {
	return p.TokenProvisioner.CreateTokenAccount(ctx, payer, mint, p.owner)
}

func TestVerify_WrongOwner(t *testing.T) {
	env := setup(t)
	other := testutil.GenerateSolanaKeys(t, 1)[0]
	env.ledger.RegisterProgram(env.program, reassigningProcessor(env.program, other))

	res, err := env.newBootstrapper(nil).Run(env.ctx, env.request(divvy.SchemaVersionPool))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStateVerificationFailed))

	// The transaction confirmed, so the run is still reported.
	require.NotNil(t, res)
	assert.Equal(t, env.ledger.Transactions()[0].Signature(), res.Signature)
	assert.Nil(t, res.State)
}

func TestVerify_TokenOwnership(t *testing.T) {
	env := setup(t)
	tokens := &hijackingProvisioner{
		TokenProvisioner: NewTokenProvisioner(env.ledger),
		owner:            testutil.GenerateSolanaKeys(t, 1)[0],
	}

	b := New(env.ledger, tokens, withManualTestOverrides(&testOverrides{}))
	res, err := b.Run(env.ctx, env.request(divvy.SchemaVersionHousePool))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStateVerificationFailed))

	// The state itself decoded fine.
	require.NotNil(t, res)
	assert.NotNil(t, res.State)
}

func TestVerify_MissingStateAccount(t *testing.T) {
	env := setup(t)
	b := env.newBootstrapper(nil)

	res := &Result{
		StateAccount: testutil.GenerateSolanaKeys(t, 1)[0],
		InitialState: &divvy.PoolState{},
	}

	_, err := b.verify(env.ctx, b.log, env.request(divvy.SchemaVersionPool), res)
	assert.True(t, errors.Is(err, ErrStateVerificationFailed))
}
