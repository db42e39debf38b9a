package bootstrap

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/divvyexchange/bootstrap/pkg/retry"
	"github.com/divvyexchange/bootstrap/pkg/retry/backoff"
	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/divvy"
	"github.com/divvyexchange/bootstrap/pkg/solana/token"
)

var (
	ErrStateVerificationFailed = errors.New("state verification failed")
)

const verifyAttempts = 5

// verify reads the state account back and checks it is the account the
// program will use. Token accounts of a house pool are checked against the
// pool address.
func (b *Bootstrapper) verify(ctx context.Context, log *logrus.Entry, req Request, res *Result) (divvy.StateRecord, error) {
	interval := b.conf.verifyPollInterval.Get(ctx)

	var info solana.AccountInfo
	_, err := retry.Retry(
		ctx,
		func(ctx context.Context) error {
			var err error
			info, err = b.ledger.GetAccountInfo(ctx, res.StateAccount)
			return err
		},
		retry.RetriableErrors(solana.ErrNoAccountInfo),
		retry.Limit(verifyAttempts),
		retry.Backoff(backoff.Constant(interval)),
	)
	if err != nil {
		return nil, errors.Wrapf(ErrStateVerificationFailed, "state account unavailable: %v", err)
	}

	if !bytes.Equal(info.Owner, req.Program) {
		return nil, errors.Wrapf(ErrStateVerificationFailed, "state account owned by %s", base58.Encode(info.Owner))
	}

	layout, err := divvy.StateLayout(req.Version)
	if err != nil {
		return nil, err
	}
	if len(info.Data) != layout.Span() {
		return nil, errors.Wrapf(ErrStateVerificationFailed, "state account holds %d bytes, expected %d", len(info.Data), layout.Span())
	}

	record, err := divvy.UnmarshalState(req.Version, info.Data)
	if err != nil {
		return nil, errors.Wrapf(ErrStateVerificationFailed, "undecodable state: %v", err)
	}

	log = log.WithField("state_record", record.String())
	if expected, err := res.InitialState.Marshal(); err == nil && !bytes.Equal(expected, info.Data) {
		log.Warn("pool state differs from the expected initial state")
	} else {
		log.Info("verified pool state")
	}

	if res.Tokens != nil {
		if err := b.verifyTokens(ctx, res.PoolAddress, res.Tokens); err != nil {
			return record, err
		}
	}

	return record, nil
}

func (b *Bootstrapper) verifyTokens(ctx context.Context, pool ed25519.PublicKey, tokens *PoolTokens) error {
	mint, err := token.NewClient(b.ledger, tokens.HouseTokenMint).GetMint(ctx)
	if err != nil {
		return errors.Wrapf(ErrStateVerificationFailed, "house token mint: %v", err)
	}
	if !bytes.Equal(mint.MintAuthority, pool) || !bytes.Equal(mint.FreezeAuthority, pool) {
		return errors.Wrap(ErrStateVerificationFailed, "house token mint is not controlled by the pool")
	}

	stable := token.NewClient(b.ledger, tokens.StableMint)
	for _, acc := range []struct {
		name    string
		address ed25519.PublicKey
		owner   ed25519.PublicKey
	}{
		{"pool", tokens.PoolTokenAccount, pool},
		{"insurance fund", tokens.InsuranceFundTokenAccount, pool},
		{"foundation proceeds", tokens.FoundationProceedsTokenAccount, nil},
	} {
		account, err := stable.GetAccount(ctx, acc.address)
		if err != nil {
			return errors.Wrapf(ErrStateVerificationFailed, "%s token account: %v", acc.name, err)
		}
		if acc.owner != nil && !bytes.Equal(account.Owner, acc.owner) {
			return errors.Wrapf(ErrStateVerificationFailed, "%s token account is not owned by the pool", acc.name)
		}
	}

	return nil
}
