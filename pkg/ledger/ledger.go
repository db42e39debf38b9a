// Package ledger is the narrow set of chain operations a pool bootstrap
// needs.
package ledger

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/pkg/errors"

	"github.com/divvyexchange/bootstrap/pkg/solana"
)

var (
	// ErrRemoteSubmissionFailure is matched by every error returned when a
	// submitted transaction did not confirm.
	ErrRemoteSubmissionFailure = errors.New("remote submission failure")
)

type Ledger interface {
	// GetMinimumBalanceForRentExemption returns the lamports an account of
	// size bytes needs to be rent exempt.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	// CreateStorageAccount returns the instruction that allocates size bytes
	// at newAccount, funded by payer and owned by owner. Both payer and
	// newAccount must sign the transaction carrying it.
	CreateStorageAccount(payer, newAccount ed25519.PublicKey, size, lamports uint64, owner ed25519.PublicKey) solana.Instruction

	// SubmitTransaction submits the instructions as a single transaction paid
	// for by payer, and blocks until it confirms or fails.
	SubmitTransaction(ctx context.Context, payer ed25519.PrivateKey, instructions []solana.Instruction, signers ...ed25519.PrivateKey) (solana.Signature, error)

	// GetAccountInfo returns solana.ErrNoAccountInfo for missing accounts.
	GetAccountInfo(ctx context.Context, account ed25519.PublicKey) (solana.AccountInfo, error)
}

// SubmissionError reports a transaction that did not confirm.
type SubmissionError struct {
	Signature solana.Signature
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: transaction %s: %v", ErrRemoteSubmissionFailure, e.Signature, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrRemoteSubmissionFailure
}

// NewSubmissionError wraps the cause of a failed submission.
func NewSubmissionError(sig solana.Signature, err error) error {
	return &SubmissionError{Signature: sig, Err: err}
}
