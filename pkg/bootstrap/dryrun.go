package bootstrap

import (
	"context"
	"crypto/ed25519"

	"github.com/divvyexchange/bootstrap/pkg/ledger"
	"github.com/divvyexchange/bootstrap/pkg/ledger/memory"
	"github.com/divvyexchange/bootstrap/pkg/solana"
)

// simulatedLedger reads rent and existing accounts from the wrapped ledger
// but applies submissions to an in-memory copy.
type simulatedLedger struct {
	ledger.Ledger
	sim *memory.Ledger
}

func newSimulatedLedger(l ledger.Ledger) *simulatedLedger {
	return &simulatedLedger{
		Ledger: l,
		sim:    memory.New(memory.WithAccountSource(l)),
	}
}

func (l *simulatedLedger) SubmitTransaction(ctx context.Context, payer ed25519.PrivateKey, instructions []solana.Instruction, signers ...ed25519.PrivateKey) (solana.Signature, error) {
	return l.sim.SubmitTransaction(ctx, payer, instructions, signers...)
}

func (l *simulatedLedger) GetAccountInfo(ctx context.Context, account ed25519.PublicKey) (solana.AccountInfo, error) {
	return l.sim.GetAccountInfo(ctx, account)
}
