package bootstrap

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/divvyexchange/bootstrap/pkg/ledger/memory"
	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/divvy"
	"github.com/divvyexchange/bootstrap/pkg/testutil"
)

type testEnv struct {
	ctx     context.Context
	ledger  *memory.Ledger
	payer   ed25519.PrivateKey
	program ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	env := &testEnv{
		ctx:     context.Background(),
		ledger:  memory.New(),
		payer:   testutil.GenerateSolanaKeypair(t),
		program: testutil.GenerateSolanaKeys(t, 1)[0],
	}

	env.ledger.RegisterProgram(env.program, initializeProcessor(env.program))
	return env
}

func (e *testEnv) newBootstrapper(overrides *testOverrides) *Bootstrapper {
	if overrides == nil {
		overrides = &testOverrides{}
	}
	return New(e.ledger, nil, withManualTestOverrides(overrides))
}

func (e *testEnv) request(version divvy.SchemaVersion) Request {
	return Request{
		Payer:   e.payer,
		Program: e.program,
		Version: version,
	}
}

func (e *testEnv) payerAddress() ed25519.PublicKey {
	return e.payer.Public().(ed25519.PublicKey)
}

// initializeProcessor stands in for the deployed program: it writes the
// initial state into a freshly allocated state account.
func initializeProcessor(program ed25519.PublicKey) memory.Processor {
	return func(accounts *memory.Accounts, m solana.Message, index int) error {
		init, err := divvy.DecompileInitialize(m, index, program)
		if err != nil {
			return err
		}

		info, ok := accounts.Get(init.Accounts.State)
		if !ok || !bytes.Equal(info.Owner, program) {
			return errors.New("InvalidAccountData")
		}

		layout, err := divvy.StateLayout(init.Version)
		if err != nil {
			return err
		}
		if len(info.Data) != layout.Span() {
			return errors.New("InvalidAccountData")
		}
		if !bytes.Equal(info.Data, make([]byte, layout.Span())) {
			return solana.CustomError(divvy.ErrHpLiquidityAlreadyInitialized)
		}

		state, err := divvy.NewInitialState(init.Version, &init.Accounts)
		if err != nil {
			return err
		}
		info.Data, err = state.Marshal()
		if err != nil {
			return err
		}

		accounts.Put(init.Accounts.State, info)
		return nil
	}
}

// failingProcessor rejects every instruction for the program with code.
func failingProcessor(code divvy.ProgramError) memory.Processor {
	return func(_ *memory.Accounts, _ solana.Message, _ int) error {
		return solana.CustomError(code)
	}
}

func requireTransaction(t *testing.T, l *memory.Ledger, sig solana.Signature) solana.Transaction {
	for _, tx := range l.Transactions() {
		if tx.Signature() == sig {
			return tx
		}
	}
	require.FailNow(t, "transaction not found", sig.String())
	return solana.Transaction{}
}
