package bootstrap

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/divvyexchange/bootstrap/pkg/ledger"
	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/token"
)

// TokenProvisioner creates the SPL token accounts a house pool is initialized
// with. Each call submits its own transaction and returns the new address.
type TokenProvisioner interface {
	// CreateMint creates a mint. A nil freezeAuthority creates a mint that
	// cannot freeze accounts.
	CreateMint(ctx context.Context, payer ed25519.PrivateKey, authority, freezeAuthority ed25519.PublicKey, decimals uint8) (ed25519.PublicKey, error)

	// CreateTokenAccount creates a token account for mint owned by owner.
	CreateTokenAccount(ctx context.Context, payer ed25519.PrivateKey, mint, owner ed25519.PublicKey) (ed25519.PublicKey, error)
}

type ledgerTokenProvisioner struct {
	log    *logrus.Entry
	ledger ledger.Ledger
}

// NewTokenProvisioner returns a TokenProvisioner that submits through l.
func NewTokenProvisioner(l ledger.Ledger) TokenProvisioner {
	return &ledgerTokenProvisioner{
		log:    logrus.StandardLogger().WithField("type", "bootstrap/tokens"),
		ledger: l,
	}
}

func (p *ledgerTokenProvisioner) CreateMint(ctx context.Context, payer ed25519.PrivateKey, authority, freezeAuthority ed25519.PublicKey, decimals uint8) (ed25519.PublicKey, error) {
	return p.create(ctx, "CreateMint", payer, token.MintSize, func(mint ed25519.PublicKey) solana.Instruction {
		return token.InitializeMint(mint, authority, freezeAuthority, decimals)
	})
}

func (p *ledgerTokenProvisioner) CreateTokenAccount(ctx context.Context, payer ed25519.PrivateKey, mint, owner ed25519.PublicKey) (ed25519.PublicKey, error) {
	return p.create(ctx, "CreateTokenAccount", payer, token.AccountSize, func(account ed25519.PublicKey) solana.Instruction {
		return token.InitializeAccount(account, mint, owner)
	})
}

// create allocates a fresh token program account and initializes it in the
// same transaction.
func (p *ledgerTokenProvisioner) create(
	ctx context.Context,
	method string,
	payer ed25519.PrivateKey,
	size int,
	initialize func(ed25519.PublicKey) solana.Instruction,
) (ed25519.PublicKey, error) {
	address, addressKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate account key")
	}

	log := p.log.WithFields(logrus.Fields{
		"method":  method,
		"address": base58.Encode(address),
	})

	lamports, err := p.ledger.GetMinimumBalanceForRentExemption(ctx, uint64(size))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rent exemption")
	}

	instructions := []solana.Instruction{
		p.ledger.CreateStorageAccount(payer.Public().(ed25519.PublicKey), address, uint64(size), lamports, token.ProgramKey),
		initialize(address),
	}

	sig, err := p.ledger.SubmitTransaction(ctx, payer, instructions, addressKey)
	if err != nil {
		log.WithError(err).Warn("failed to create token account")
		return nil, err
	}

	log.WithField("signature", sig.String()).Debug("token account created")
	return address, nil
}
