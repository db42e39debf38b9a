package solana

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"
	"golang.org/x/time/rate"

	"github.com/divvyexchange/bootstrap/pkg/retry"
	"github.com/divvyexchange/bootstrap/pkg/retry/backoff"
)

const (
	// todo: we can retrieve these from the Syscall account
	//       but they're unlikely to change.
	ticksPerSec  = 160
	ticksPerSlot = 64
	slotsPerSec  = ticksPerSec / ticksPerSlot

	// PollRate is the rate at which blocks should be polled at.
	PollRate = (time.Second / slotsPerSec) / 2

	// Poll rate is ~2x the slot rate, and we want to wait ~32 slots
	sigStatusPollLimit = 2 * 32

	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	invalidParamCode = -32602
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// ParseCommitment maps a commitment level name onto a Commitment.
func ParseCommitment(name string) (Commitment, error) {
	switch name {
	case confirmationStatusProcessed:
		return CommitmentProcessed, nil
	case confirmationStatusConfirmed:
		return CommitmentConfirmed, nil
	case confirmationStatusFinalized:
		return CommitmentFinalized, nil
	}
	return Commitment{}, errors.Errorf("invalid commitment: %q", name)
}

var (
	ErrNoAccountInfo     = errors.New("no account info")
	ErrSignatureNotFound = errors.New("signature not found")
	ErrNoBalance         = errors.New("no balance")
)

// AccountInfo contains the Solana account information (not to be confused with a TokenAccount)
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Confirmations will be nil if the transaction has been rooted.
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Confirmed() bool {
	if s.Finalized() {
		return true
	}

	if s.ConfirmationStatus == confirmationStatusConfirmed {
		return true
	}

	return *s.Confirmations >= 1
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

// Reached reports whether the status satisfies the commitment level.
func (s SignatureStatus) Reached(commitment Commitment) bool {
	switch commitment {
	case CommitmentConfirmed:
		return s.Confirmed()
	case CommitmentFinalized:
		return s.Finalized()
	default:
		return true
	}
}

// Client provides an interaction with the Solana JSON RPC API.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(context.Context, ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetBalance(context.Context, ed25519.PublicKey) (uint64, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (lamports uint64, err error)
	GetLatestBlockhash(context.Context) (Blockhash, error)
	GetSignatureStatus(context.Context, Signature, Commitment) (*SignatureStatus, error)
	GetSignatureStatuses(context.Context, []Signature) ([]*SignatureStatus, error)
	SubmitTransaction(context.Context, Transaction, Commitment) (Signature, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type rpcResponse struct {
	Context struct {
		Slot int64 `json:"slot"`
	} `json:"context"`
	Value interface{} `json:"value"`
}

// Option configures a Client.
type Option func(*client)

// WithRPCOptions sets the underlying JSON-RPC client options.
func WithRPCOptions(opts *jsonrpc.RPCClientOpts) Option {
	return func(c *client) {
		c.rpcOpts = opts
	}
}

// WithRequestsPerSecond throttles outgoing requests. Public cluster endpoints
// enforce per-IP limits.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type client struct {
	log     *logrus.Entry
	client  jsonrpc.RPCClient
	rpcOpts *jsonrpc.RPCClientOpts
	retrier retry.Retrier
	limiter *rate.Limiter

	blockMu   sync.RWMutex
	blockhash Blockhash
	lastWrite time.Time
}

// New returns a client using the specified endpoint.
func New(endpoint string, opts ...Option) Client {
	c := &client{
		log: logrus.StandardLogger().WithField("type", "solana/client"),
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.Backoff(backoff.Jittered(backoff.Capped(backoff.BinaryExponential(time.Second), 10*time.Second), 0.1)),
		),
	}

	for _, o := range opts {
		o(c)
	}

	c.client = jsonrpc.NewClientWithOpts(endpoint, c.rpcOpts)
	return c
}

func (c *client) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// call performs a read-only request, retrying on rate limits and node errors.
func (c *client) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(ctx, func(ctx context.Context) error {
		if err := c.wait(ctx); err != nil {
			return err
		}

		err := c.client.CallFor(out, method, params...)
		if err == nil {
			return nil
		}

		return c.handleRpcError(method, err)
	})

	return err
}

func (c *client) handleRpcError(method string, err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return err
	}
	if rpcErr.Code == 429 {
		c.log.WithField("method", method).Warn("rate limited")
		return errRateLimited
	}
	if rpcErr.Code >= 500 || rpcErr.Code == rpcNodeUnhealthyCode {
		return errServiceError
	}

	return err
}

func (c *client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (lamports uint64, err error) {
	if err := c.call(ctx, &lamports, "getMinimumBalanceForRentExemption", dataSize); err != nil {
		return 0, errors.Wrapf(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) GetLatestBlockhash(ctx context.Context) (hash Blockhash, err error) {
	// Refresh at a randomized interval so concurrent callers don't all hit
	// the node at the same moment.
	window := time.Duration(float64(2*time.Second) * (0.8 + rand.Float64()))

	c.blockMu.RLock()
	if time.Since(c.lastWrite) < window {
		hash = c.blockhash
	}
	c.blockMu.RUnlock()

	if hash != (Blockhash{}) {
		return hash, nil
	}

	type response struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}

	var resp response
	if err := c.call(ctx, &resp, "getLatestBlockhash"); err != nil {
		return hash, errors.Wrapf(err, "getLatestBlockhash() failed to send request")
	}

	hashBytes, err := base58.Decode(resp.Value.Blockhash)
	if err != nil {
		return hash, errors.Wrap(err, "invalid base58 encoded hash in response")
	}
	if len(hashBytes) != len(hash) {
		return hash, errors.Errorf("invalid blockhash length: %d", len(hashBytes))
	}

	copy(hash[:], hashBytes)

	c.blockMu.Lock()
	c.blockhash = hash
	c.lastWrite = time.Now()
	c.blockMu.Unlock()

	return hash, nil
}

func (c *client) GetBalance(ctx context.Context, account ed25519.PublicKey) (uint64, error) {
	var resp rpcResponse
	if err := c.call(ctx, &resp, "getBalance", base58.Encode(account[:]), CommitmentProcessed); err != nil {
		jsonRPCErr, ok := errors.Cause(err).(*jsonrpc.RPCError)
		if ok && jsonRPCErr.Code == invalidParamCode {
			return 0, ErrNoBalance
		}

		return 0, errors.Wrapf(err, "getBalance() failed to send request")
	}

	if balance, ok := resp.Value.(float64); ok {
		return uint64(balance), nil
	}

	return 0, errors.Errorf("invalid value in response")
}

// SubmitTransaction sends the signed transaction once. Submission is never
// retried here; callers decide what to do with a failure.
func (c *client) SubmitTransaction(ctx context.Context, txn Transaction, commitment Commitment) (Signature, error) {
	sig := txn.Signature()
	txnBytes := txn.Marshal()

	config := struct {
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
	}{
		SkipPreflight:       true,
		PreflightCommitment: commitment.Commitment,
	}

	if err := c.wait(ctx); err != nil {
		return sig, err
	}

	var sigStr string
	err := c.client.CallFor(&sigStr, "sendTransaction", base58.Encode(txnBytes), config)
	if err == nil {
		return sig, nil
	}

	jsonRPCErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return sig, errors.Wrapf(err, "sendTransaction() failed to send request")
	}

	txResult, parseErr := ParseRPCError(jsonRPCErr)
	if parseErr != nil || txResult == nil {
		return sig, errors.Wrap(err, "sendTransaction() rejected")
	}

	c.log.WithFields(logrus.Fields{
		"method":    "sendTransaction",
		"signature": sig.String(),
	}).WithError(txResult).Debug("transaction rejected")

	return sig, txResult
}

func (c *client) GetAccountInfo(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (accountInfo AccountInfo, err error) {
	type rpcResponse struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"`
			Executable bool     `json:"executable"`
		} `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp rpcResponse
	if err := c.call(ctx, &resp, "getAccountInfo", base58.Encode(account[:]), rpcConfig); err != nil {
		return accountInfo, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return accountInfo, ErrNoAccountInfo
	}

	accountInfo.Owner, err = base58.Decode(resp.Value.Owner)
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base58 encoded owner")
	}

	if len(resp.Value.Data) == 0 {
		return accountInfo, errors.New("missing account data in response")
	}
	accountInfo.Data, err = base64.StdEncoding.DecodeString(resp.Value.Data[0])
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base64 encoded data")
	}

	accountInfo.Lamports = resp.Value.Lamports
	accountInfo.Executable = resp.Value.Executable

	return accountInfo, nil
}

// GetSignatureStatus polls until the signature reaches the commitment level,
// the transaction fails, or the poll limit is hit.
func (c *client) GetSignatureStatus(ctx context.Context, sig Signature, commitment Commitment) (*SignatureStatus, error) {
	var s *SignatureStatus
	errConfirmationsNotReached := errors.New("confirmations not reached")
	_, err := retry.Retry(
		ctx,
		func(ctx context.Context) error {
			statuses, err := c.GetSignatureStatuses(ctx, []Signature{sig})
			if err != nil {
				return err
			}

			s = statuses[0]
			if s == nil {
				return ErrSignatureNotFound
			}

			// A failed transaction will never reach the commitment.
			if s.ErrorResult != nil {
				return nil
			}

			if s.Reached(commitment) {
				return nil
			}

			return errConfirmationsNotReached
		},
		retry.RetriableErrors(ErrSignatureNotFound, errConfirmationsNotReached),
		retry.Limit(sigStatusPollLimit),
		retry.Backoff(backoff.Constant(PollRate)),
	)

	return s, err
}

func (c *client) GetSignatureStatuses(ctx context.Context, sigs []Signature) ([]*SignatureStatus, error) {
	b58Sigs := make([]string, len(sigs))
	for i := range sigs {
		b58Sigs[i] = base58.Encode(sigs[i][:])
	}

	req := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: true,
	}

	type signatureStatus struct {
		Slot               uint64          `json:"slot"`
		Confirmations      *int            `json:"confirmations"`
		ConfirmationStatus string          `json:"confirmationStatus"`
		Err                json.RawMessage `json:"err"`
	}

	type rpcResp struct {
		Context struct {
			Slot int `json:"slot"`
		} `json:"context"`
		Value []*signatureStatus `json:"value"`
	}

	var resp rpcResp
	if err := c.call(ctx, &resp, "getSignatureStatuses", b58Sigs, req); err != nil {
		return nil, errors.Wrap(err, "getSignatureStatuses() failed to send request")
	}

	statuses := make([]*SignatureStatus, len(sigs))
	for i, v := range resp.Value {
		if v == nil || i >= len(statuses) {
			continue
		}

		statuses[i] = &SignatureStatus{
			Slot:               v.Slot,
			Confirmations:      v.Confirmations,
			ConfirmationStatus: v.ConfirmationStatus,
		}

		if len(v.Err) > 0 && !bytes.Equal(v.Err, []byte("null")) {
			var txError interface{}
			d := json.NewDecoder(bytes.NewBuffer(v.Err))
			d.UseNumber()
			if err := d.Decode(&txError); err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}

			parsed, err := ParseTransactionError(txError)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}
			statuses[i].ErrorResult = parsed
		}
	}

	return statuses, nil
}
