package token

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/divvyexchange/bootstrap/pkg/solana"
)

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTokenAccount indicates that a Solana account exists at the
	// given address, but it is either not initialized, or not configured correctly.
	ErrInvalidTokenAccount = errors.New("invalid token account")
	// ErrInvalidMint indicates that the mint account exists but does not hold
	// an initialized mint.
	ErrInvalidMint = errors.New("invalid mint")
)

// AccountReader fetches raw account state. It must return
// solana.ErrNoAccountInfo (optionally wrapped) for missing accounts.
type AccountReader interface {
	GetAccountInfo(ctx context.Context, account ed25519.PublicKey) (solana.AccountInfo, error)
}

// Client provides utilities for accessing token accounts for a given token.
type Client struct {
	accounts AccountReader
	token    ed25519.PublicKey
}

// NewClient creates a new Client.
func NewClient(accounts AccountReader, token ed25519.PublicKey) *Client {
	return &Client{
		accounts: accounts,
		token:    token,
	}
}

func (c *Client) Token() ed25519.PublicKey {
	return c.token
}

// GetMint returns the mint state of the client's token.
func (c *Client) GetMint(ctx context.Context) (*Mint, error) {
	info, err := c.get(ctx, c.token)
	if err != nil {
		return nil, err
	}

	var mint Mint
	if !mint.Unmarshal(info.Data) || !mint.IsInitialized {
		return nil, ErrInvalidMint
	}

	return &mint, nil
}

// GetAccount returns the token account info for the specified account.
//
// If the account is not initialized, or belongs to a different
// mint, then ErrInvalidTokenAccount is returned.
func (c *Client) GetAccount(ctx context.Context, accountID ed25519.PublicKey) (*Account, error) {
	info, err := c.get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var account Account
	if !account.Unmarshal(info.Data) {
		return nil, ErrInvalidTokenAccount
	}

	if account.State == AccountStateUninitialized || !bytes.Equal(c.token, account.Mint) {
		return nil, ErrInvalidTokenAccount
	}

	return &account, nil
}

func (c *Client) get(ctx context.Context, account ed25519.PublicKey) (solana.AccountInfo, error) {
	info, err := c.accounts.GetAccountInfo(ctx, account)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return info, ErrAccountNotFound
	} else if err != nil {
		return info, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(info.Owner, ProgramKey) {
		return info, ErrInvalidTokenAccount
	}

	return info, nil
}
