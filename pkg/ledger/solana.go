package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/system"
)

type rpcLedger struct {
	log        *logrus.Entry
	client     solana.Client
	commitment solana.Commitment
}

// New returns a Ledger backed by a Solana JSON-RPC client. Reads and
// confirmation use the given commitment.
func New(client solana.Client, commitment solana.Commitment) Ledger {
	return &rpcLedger{
		log:        logrus.StandardLogger().WithField("type", "ledger/solana"),
		client:     client,
		commitment: commitment,
	}
}

func (l *rpcLedger) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return l.client.GetMinimumBalanceForRentExemption(ctx, size)
}

func (l *rpcLedger) CreateStorageAccount(payer, newAccount ed25519.PublicKey, size, lamports uint64, owner ed25519.PublicKey) solana.Instruction {
	return system.CreateAccount(payer, newAccount, owner, lamports, size)
}

func (l *rpcLedger) SubmitTransaction(ctx context.Context, payer ed25519.PrivateKey, instructions []solana.Instruction, signers ...ed25519.PrivateKey) (solana.Signature, error) {
	tx, err := compile(ctx, l.client.GetLatestBlockhash, payer, instructions, signers)
	if err != nil {
		return solana.Signature{}, err
	}

	sig := tx.Signature()
	log := l.log.WithFields(logrus.Fields{
		"method":       "SubmitTransaction",
		"signature":    sig.String(),
		"instructions": len(instructions),
	})

	if _, err := l.client.SubmitTransaction(ctx, tx, l.commitment); err != nil {
		log.WithError(err).Warn("transaction rejected")
		return sig, NewSubmissionError(sig, err)
	}

	log.Debug("transaction submitted, awaiting confirmation")

	status, err := l.client.GetSignatureStatus(ctx, sig, l.commitment)
	if err != nil {
		log.WithError(err).Warn("transaction not confirmed")
		return sig, NewSubmissionError(sig, err)
	}
	if status.ErrorResult != nil {
		log.WithError(status.ErrorResult).Warn("transaction failed")
		return sig, NewSubmissionError(sig, status.ErrorResult)
	}

	log.WithField("slot", status.Slot).Debug("transaction confirmed")
	return sig, nil
}

func (l *rpcLedger) GetAccountInfo(ctx context.Context, account ed25519.PublicKey) (solana.AccountInfo, error) {
	return l.client.GetAccountInfo(ctx, account, l.commitment)
}

// compile builds and signs a legacy transaction. The payer always signs
// first, and every required signer must be present.
func compile(
	ctx context.Context,
	blockhash func(context.Context) (solana.Blockhash, error),
	payer ed25519.PrivateKey,
	instructions []solana.Instruction,
	signers []ed25519.PrivateKey,
) (solana.Transaction, error) {
	if len(instructions) == 0 {
		return solana.Transaction{}, errors.New("no instructions to submit")
	}

	bh, err := blockhash(ctx)
	if err != nil {
		return solana.Transaction{}, errors.Wrap(err, "failed to get recent blockhash")
	}

	tx := solana.NewTransaction(payer.Public().(ed25519.PublicKey), instructions...)
	tx.SetBlockhash(bh)

	if err := tx.Sign(append([]ed25519.PrivateKey{payer}, signers...)...); err != nil {
		return solana.Transaction{}, errors.Wrap(err, "failed to sign transaction")
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Transaction{}, err
	}
	if err := tx.CheckSize(); err != nil {
		return solana.Transaction{}, err
	}

	return tx, nil
}
