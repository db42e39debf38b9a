// Package memory provides an in-process Ledger that executes the system and
// token programs against a local account map.
package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/divvyexchange/bootstrap/pkg/ledger"
	"github.com/divvyexchange/bootstrap/pkg/solana"
	"github.com/divvyexchange/bootstrap/pkg/solana/system"
	"github.com/divvyexchange/bootstrap/pkg/solana/token"
)

const (
	rentLamportsPerByteYear = 3480
	rentExemptionYears      = 2
	accountStorageOverhead  = 128
)

// system program custom error for an address that already holds an account.
const errAccountAlreadyInUse = solana.CustomError(0)

// Processor executes the instruction at index of m for a registered program.
type Processor func(accounts *Accounts, m solana.Message, index int) error

// AccountSource supplies accounts the ledger has not seen yet.
type AccountSource interface {
	GetAccountInfo(ctx context.Context, account ed25519.PublicKey) (solana.AccountInfo, error)
}

// Accounts is the account view a Processor mutates. Changes are only kept
// when every instruction in the transaction succeeds.
type Accounts struct {
	byKey map[string]solana.AccountInfo
	fetch func(ed25519.PublicKey) (solana.AccountInfo, bool)
}

func (a *Accounts) Get(key ed25519.PublicKey) (solana.AccountInfo, bool) {
	info, ok := a.byKey[string(key)]
	if ok || a.fetch == nil {
		return info, ok
	}

	info, ok = a.fetch(key)
	if ok {
		a.byKey[string(key)] = info
	}
	return info, ok
}

func (a *Accounts) Put(key ed25519.PublicKey, info solana.AccountInfo) {
	a.byKey[string(key)] = info
}

func (a *Accounts) clone() *Accounts {
	c := &Accounts{byKey: make(map[string]solana.AccountInfo, len(a.byKey))}
	for k, v := range a.byKey {
		v.Data = append([]byte(nil), v.Data...)
		c.byKey[k] = v
	}
	return c
}

type Option func(*Ledger)

// WithAccountSource makes accounts missing from the ledger readable from
// source. Fetched accounts are copied in on first use and never written back.
func WithAccountSource(source AccountSource) Option {
	return func(l *Ledger) {
		l.source = source
	}
}

type Ledger struct {
	log    *logrus.Entry
	source AccountSource

	mu           sync.Mutex
	accounts     *Accounts
	processors   map[string]Processor
	transactions []solana.Transaction
	submitErr    error
	blockhash    uint64
}

// New returns an empty Ledger. Instructions for programs without a
// registered Processor are accepted and ignored.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		log:        logrus.StandardLogger().WithField("type", "ledger/memory"),
		accounts:   &Accounts{byKey: make(map[string]solana.AccountInfo)},
		processors: make(map[string]Processor),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.processors[string(system.ProgramKey[:])] = processSystem
	l.processors[string(token.ProgramKey)] = processToken
	return l
}

// RegisterProgram installs a Processor for program.
func (l *Ledger) RegisterProgram(program ed25519.PublicKey, p Processor) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.processors[string(program)] = p
}

// FailSubmissions makes every following submission fail with err. A nil err
// restores normal behaviour.
func (l *Ledger) FailSubmissions(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.submitErr = err
}

// Transactions returns every transaction that was submitted, in order,
// including failed ones.
func (l *Ledger) Transactions() []solana.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]solana.Transaction(nil), l.transactions...)
}

func (l *Ledger) GetMinimumBalanceForRentExemption(_ context.Context, size uint64) (uint64, error) {
	return (accountStorageOverhead + size) * rentLamportsPerByteYear * rentExemptionYears, nil
}

func (l *Ledger) CreateStorageAccount(payer, newAccount ed25519.PublicKey, size, lamports uint64, owner ed25519.PublicKey) solana.Instruction {
	return system.CreateAccount(payer, newAccount, owner, lamports, size)
}

func (l *Ledger) SubmitTransaction(ctx context.Context, payer ed25519.PrivateKey, instructions []solana.Instruction, signers ...ed25519.PrivateKey) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}
	if len(instructions) == 0 {
		return solana.Signature{}, errors.New("no instructions to submit")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := solana.NewTransaction(payer.Public().(ed25519.PublicKey), instructions...)
	tx.SetBlockhash(l.nextBlockhash())
	if err := tx.Sign(append([]ed25519.PrivateKey{payer}, signers...)...); err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to sign transaction")
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, err
	}
	if err := tx.CheckSize(); err != nil {
		return solana.Signature{}, err
	}

	sig := tx.Signature()
	l.transactions = append(l.transactions, tx)

	log := l.log.WithFields(logrus.Fields{
		"method":    "SubmitTransaction",
		"signature": sig.String(),
	})

	if l.submitErr != nil {
		log.WithError(l.submitErr).Debug("failing submission")
		return sig, ledger.NewSubmissionError(sig, l.submitErr)
	}

	staged := l.accounts.clone()
	staged.fetch = l.fetcher(ctx)
	for i := range tx.Message.Instructions {
		program := tx.Message.Accounts[tx.Message.Instructions[i].ProgramIndex]

		p, ok := l.processors[string(program)]
		if !ok {
			continue
		}

		if err := p(staged, tx.Message, i); err != nil {
			log.WithError(err).WithField("instruction", i).Debug("transaction failed")
			return sig, ledger.NewSubmissionError(sig, solana.NewInstructionTransactionError(i, err))
		}
	}

	staged.fetch = nil
	l.accounts = staged
	log.Debug("transaction applied")
	return sig, nil
}

func (l *Ledger) GetAccountInfo(ctx context.Context, account ed25519.PublicKey) (solana.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.accounts.byKey[string(account)]
	if !ok && l.source != nil {
		return l.source.GetAccountInfo(ctx, account)
	}
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}

	info.Data = append([]byte(nil), info.Data...)
	return info, nil
}

// SetAccount stores info at key, replacing any existing account.
func (l *Ledger) SetAccount(key ed25519.PublicKey, info solana.AccountInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info.Data = append([]byte(nil), info.Data...)
	l.accounts.Put(key, info)
}

func (l *Ledger) fetcher(ctx context.Context) func(ed25519.PublicKey) (solana.AccountInfo, bool) {
	if l.source == nil {
		return nil
	}

	return func(key ed25519.PublicKey) (solana.AccountInfo, bool) {
		info, err := l.source.GetAccountInfo(ctx, key)
		if err != nil {
			if !errors.Is(err, solana.ErrNoAccountInfo) {
				l.log.WithError(err).Warn("failed to fetch account from source")
			}
			return solana.AccountInfo{}, false
		}
		return info, true
	}
}

func (l *Ledger) nextBlockhash() solana.Blockhash {
	l.blockhash++

	var bh solana.Blockhash
	binary.LittleEndian.PutUint64(bh[:], l.blockhash)
	return bh
}

func processSystem(accounts *Accounts, m solana.Message, index int) error {
	create, err := system.DecompileCreateAccount(m, index)
	if err == solana.ErrIncorrectInstruction {
		transfer, err := system.DecompileTransfer(m, index)
		if err != nil {
			return err
		}
		return processTransfer(accounts, transfer)
	} else if err != nil {
		return err
	}

	if _, exists := accounts.Get(create.Address); exists {
		return errAccountAlreadyInUse
	}

	accounts.Put(create.Address, solana.AccountInfo{
		Data:     make([]byte, create.Size),
		Owner:    create.Owner,
		Lamports: create.Lamports,
	})
	return nil
}

func processTransfer(accounts *Accounts, transfer *system.DecompiledTransfer) error {
	to, _ := accounts.Get(transfer.To)
	if len(to.Owner) == 0 {
		to.Owner = system.ProgramKey[:]
	}
	to.Lamports += transfer.Lamports
	accounts.Put(transfer.To, to)
	return nil
}

func processToken(accounts *Accounts, m solana.Message, index int) error {
	cmd, err := token.GetCommand(m, index)
	if err != nil {
		return err
	}

	switch cmd {
	case token.CommandInitializeMint:
		init, err := token.DecompileInitializeMint(m, index)
		if err != nil {
			return err
		}

		info, err := uninitializedTokenAccount(accounts, init.Mint, token.MintSize)
		if err != nil {
			return err
		}

		mint := token.Mint{
			MintAuthority:   init.MintAuthority,
			Decimals:        init.Decimals,
			IsInitialized:   true,
			FreezeAuthority: init.FreezeAuthority,
		}
		info.Data = mint.Marshal()
		accounts.Put(init.Mint, info)
		return nil
	case token.CommandInitializeAccount:
		init, err := token.DecompileInitializeAccount(m, index)
		if err != nil {
			return err
		}

		mintInfo, ok := accounts.Get(init.Mint)
		var mint token.Mint
		if !ok || !bytes.Equal(mintInfo.Owner, token.ProgramKey) || !mint.Unmarshal(mintInfo.Data) || !mint.IsInitialized {
			return errors.New("InvalidAccountData")
		}

		info, err := uninitializedTokenAccount(accounts, init.Account, token.AccountSize)
		if err != nil {
			return err
		}

		account := token.Account{
			Mint:  init.Mint,
			Owner: init.Owner,
			State: token.AccountStateInitialized,
		}
		info.Data = account.Marshal()
		accounts.Put(init.Account, info)
		return nil
	default:
		return errors.Errorf("unsupported token command %d", cmd)
	}
}

func uninitializedTokenAccount(accounts *Accounts, key ed25519.PublicKey, size int) (solana.AccountInfo, error) {
	info, ok := accounts.Get(key)
	if !ok {
		return info, errors.New("UninitializedAccount")
	}
	if !bytes.Equal(info.Owner, token.ProgramKey) {
		return info, errors.New("IncorrectProgramId")
	}
	if len(info.Data) != size {
		return info, errors.New("InvalidAccountData")
	}
	if !bytes.Equal(info.Data, make([]byte, size)) {
		return info, errors.New("AccountAlreadyInitialized")
	}
	return info, nil
}
