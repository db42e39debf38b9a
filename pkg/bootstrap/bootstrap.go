// Package bootstrap creates and initializes divvy pools.
package bootstrap

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"math"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/divvyexchange/bootstrap/pkg/ledger"
	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/divvy"
)

var (
	ErrInvalidRequest = errors.New("invalid bootstrap request")
)

// Request describes one bootstrap run.
type Request struct {
	Payer   ed25519.PrivateKey
	Program ed25519.PublicKey
	Version divvy.SchemaVersion

	// Seed for the pool address. Empty selects the seed the deployed
	// program for Version expects.
	Seed []byte
}

// PoolTokens are the token accounts a house pool is initialized with.
type PoolTokens struct {
	HouseTokenMint                 ed25519.PublicKey
	StableMint                     ed25519.PublicKey
	PoolTokenAccount               ed25519.PublicKey
	InsuranceFundTokenAccount      ed25519.PublicKey
	FoundationProceedsTokenAccount ed25519.PublicKey
}

type Result struct {
	RunID   uuid.UUID
	Version divvy.SchemaVersion

	PoolAddress  ed25519.PublicKey
	PoolBump     uint8
	StateAccount ed25519.PublicKey

	Signature solana.Signature
	Simulated bool

	// Tokens is only set for house pools.
	Tokens *PoolTokens

	// InitialState is the record initialization is expected to produce.
	InitialState divvy.StateRecord
	// State is the record read back after initialization. It is nil when
	// verification is disabled.
	State divvy.StateRecord
}

// Bootstrapper runs pool bootstraps. It holds no state between runs, and
// every run allocates a new state account.
type Bootstrapper struct {
	log    *logrus.Entry
	conf   *conf
	ledger ledger.Ledger
	tokens TokenProvisioner

	simulated bool
}

// New returns a Bootstrapper. A nil tokens provisions house pool tokens
// through l.
func New(l ledger.Ledger, tokens TokenProvisioner, configProvider ConfigProvider) *Bootstrapper {
	b := &Bootstrapper{
		log:  logrus.StandardLogger().WithField("type", "bootstrap"),
		conf: configProvider(),
	}

	if b.conf.disableSubmission.Get(context.Background()) {
		b.simulated = true
		l = newSimulatedLedger(l)
	}

	if tokens == nil {
		tokens = NewTokenProvisioner(l)
	}

	b.ledger = l
	b.tokens = tokens
	return b
}

// Run derives the pool address, provisions house pool tokens when needed,
// then creates and initializes the state account in a single transaction.
//
// Any error ends the run. Accounts created before the failure are not
// reused by later runs. When only verification fails, the result of the
// confirmed transaction is returned alongside ErrStateVerificationFailed.
func (b *Bootstrapper) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.New(),
		Version:   req.Version,
		Simulated: b.simulated,
	}

	payer := req.Payer.Public().(ed25519.PublicKey)
	log := b.log.WithFields(logrus.Fields{
		"method":    "Run",
		"run_id":    res.RunID.String(),
		"schema":    req.Version.String(),
		"program":   base58.Encode(req.Program),
		"payer":     base58.Encode(payer),
		"simulated": b.simulated,
	})

	seed := req.Seed
	if len(seed) == 0 {
		seed, _ = req.Version.DefaultSeed()
	}

	var err error
	res.PoolAddress, res.PoolBump, err = divvy.GetPoolAddress(req.Program, seed)
	if err != nil {
		log.WithError(err).Warn("failed to derive pool address")
		return nil, errors.Wrap(err, "failed to derive pool address")
	}

	log = log.WithFields(logrus.Fields{
		"pool":      base58.Encode(res.PoolAddress),
		"pool_bump": res.PoolBump,
	})
	log.Info("derived pool address")

	layout, err := divvy.StateLayout(req.Version)
	if err != nil {
		return nil, err
	}

	if req.Version == divvy.SchemaVersionHousePool {
		res.Tokens, err = b.provisionTokens(ctx, log, req.Payer, res.PoolAddress)
		if err != nil {
			log.WithError(err).Warn("failed to provision pool tokens")
			return nil, err
		}
	}

	state, stateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate state account key")
	}
	res.StateAccount = state
	log = log.WithField("state", base58.Encode(state))

	accounts := &divvy.InitializeInstructionAccounts{
		Payer: payer,
		State: state,
	}
	if res.Tokens != nil {
		accounts.HouseTokenMint = res.Tokens.HouseTokenMint
		accounts.PoolTokenAccount = res.Tokens.PoolTokenAccount
		accounts.InsuranceFundTokenAccount = res.Tokens.InsuranceFundTokenAccount
		accounts.FoundationProceedsTokenAccount = res.Tokens.FoundationProceedsTokenAccount
	}

	res.InitialState, err = divvy.NewInitialState(req.Version, accounts)
	if err != nil {
		return nil, err
	}
	if _, err := res.InitialState.Marshal(); err != nil {
		return nil, errors.Wrap(err, "failed to encode initial state")
	}

	initialize, err := divvy.NewInitializeInstruction(req.Program, req.Version, accounts, res.PoolBump)
	if err != nil {
		return nil, err
	}

	size := uint64(layout.Span())
	lamports, err := b.ledger.GetMinimumBalanceForRentExemption(ctx, size)
	if err != nil {
		log.WithError(err).Warn("failed to get rent exemption")
		return nil, errors.Wrap(err, "failed to get rent exemption")
	}

	instructions := []solana.Instruction{
		b.ledger.CreateStorageAccount(payer, state, size, lamports, req.Program),
		initialize,
	}

	log = log.WithFields(logrus.Fields{
		"state_size": size,
		"lamports":   lamports,
	})
	log.Info("submitting pool initialization")

	res.Signature, err = b.ledger.SubmitTransaction(ctx, req.Payer, instructions, stateKey)
	if err != nil {
		if programErr, ok := divvy.GetProgramError(err, len(instructions)-1); ok {
			log = log.WithField("program_error", programErr.Error())
		}
		log.WithError(err).Warn("pool initialization failed")
		return nil, err
	}

	log = log.WithField("signature", res.Signature.String())
	log.Info("pool initialized")

	if b.conf.verifyState.Get(ctx) {
		res.State, err = b.verify(ctx, log, req, res)
		if err != nil {
			log.WithError(err).Warn("pool state verification failed")
			return res, err
		}
	}

	return res, nil
}

func (b *Bootstrapper) provisionTokens(ctx context.Context, log *logrus.Entry, payer ed25519.PrivateKey, pool ed25519.PublicKey) (*PoolTokens, error) {
	decimals := b.conf.tokenDecimals.Get(ctx)
	if decimals > math.MaxUint8 {
		return nil, errors.Wrapf(ErrInvalidRequest, "token decimals %d out of range", decimals)
	}

	payerAddress := payer.Public().(ed25519.PublicKey)
	tokens := &PoolTokens{}

	var err error

	// The pool address mints, and may freeze, house tokens.
	tokens.HouseTokenMint, err = b.tokens.CreateMint(ctx, payer, pool, pool, uint8(decimals))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create house token mint")
	}

	tokens.StableMint = b.conf.stableMint.Get(ctx)
	if len(tokens.StableMint) == 0 {
		tokens.StableMint, err = b.tokens.CreateMint(ctx, payer, payerAddress, payerAddress, uint8(decimals))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create stable mint")
		}
	}

	foundationOwner := b.conf.foundationOwner.Get(ctx)
	if len(foundationOwner) == 0 {
		foundationOwner = payerAddress
	}

	for _, acc := range []struct {
		name  string
		owner ed25519.PublicKey
		dst   *ed25519.PublicKey
	}{
		{"pool", pool, &tokens.PoolTokenAccount},
		{"insurance fund", pool, &tokens.InsuranceFundTokenAccount},
		{"foundation proceeds", foundationOwner, &tokens.FoundationProceedsTokenAccount},
	} {
		*acc.dst, err = b.tokens.CreateTokenAccount(ctx, payer, tokens.StableMint, acc.owner)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create %s token account", acc.name)
		}
	}

	log.WithFields(logrus.Fields{
		"house_token_mint":    base58.Encode(tokens.HouseTokenMint),
		"stable_mint":         base58.Encode(tokens.StableMint),
		"pool_token_account":  base58.Encode(tokens.PoolTokenAccount),
		"insurance_fund":      base58.Encode(tokens.InsuranceFundTokenAccount),
		"foundation_proceeds": base58.Encode(tokens.FoundationProceedsTokenAccount),
	}).Info("provisioned pool tokens")

	return tokens, nil
}

func (r *Request) validate() error {
	if len(r.Payer) != ed25519.PrivateKeySize {
		return errors.Wrap(ErrInvalidRequest, "payer keypair is required")
	}
	if len(r.Program) != ed25519.PublicKeySize {
		return errors.Wrap(ErrInvalidRequest, "program id is required")
	}
	if _, err := divvy.StateLayout(r.Version); err != nil {
		return errors.Wrap(ErrInvalidRequest, err.Error())
	}
	return nil
}
