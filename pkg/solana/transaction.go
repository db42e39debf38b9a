package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

var (
	ErrMissingSignature = errors.New("transaction is missing a signature")
	ErrInvalidSignature = errors.New("transaction has an invalid signature")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is a legacy transaction message.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into a legacy transaction paid for
// by payer. Instructions keep their relative order, so they are applied in
// sequence and atomically by the cluster.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	accounts := []AccountMeta{
		{
			PublicKey:  payer,
			IsSigner:   true,
			IsWritable: true,
			isPayer:    true,
		},
	}

	for _, i := range instructions {
		accounts = append(accounts, AccountMeta{
			PublicKey: i.Program,
			isProgram: true,
		})
		accounts = append(accounts, i.Accounts...)
	}

	// Account ordering:
	//   1. Payer is always the first account and signer
	//   2. Signers before non-signers
	//   3. Writable before read-only
	//   4. Programs last
	accounts = filterUnique(accounts)
	sort.Sort(SortableAccountMeta(accounts))

	var m Message
	for _, account := range accounts {
		key := account.PublicKey
		if len(key) == 0 {
			key = make([]byte, ed25519.PublicKeySize)
		}
		m.Accounts = append(m.Accounts, key)

		if account.IsSigner {
			m.Header.NumSignatures++

			if !account.IsWritable {
				m.Header.NumReadonlySigned++
			}
		} else if !account.IsWritable {
			m.Header.NumReadOnly++
		}
	}

	for _, i := range instructions {
		c := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, i.Program)),
			Data:         i.Data,
			Accounts:     make([]byte, 0, len(i.Accounts)),
		}

		for _, a := range i.Accounts {
			c.Accounts = append(c.Accounts, byte(indexOf(m.Accounts, a.PublicKey)))
		}

		m.Instructions = append(m.Instructions, c)
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// Signature returns the first signature, which identifies the transaction.
func (t *Transaction) Signature() Signature {
	if len(t.Signatures) == 0 {
		return Signature{}
	}
	return t.Signatures[0]
}

// Signers returns the accounts that are required to sign the transaction.
func (t *Transaction) Signers() []ed25519.PublicKey {
	return t.Message.Accounts[:t.Message.Header.NumSignatures]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)
		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, messageBytes))
	}

	return nil
}

// VerifySignatures checks that every required signer produced a valid
// signature over the message.
func (t *Transaction) VerifySignatures() error {
	if len(t.Signatures) != int(t.Message.Header.NumSignatures) {
		return errors.Wrapf(ErrMissingSignature, "expected %d signatures, got %d", t.Message.Header.NumSignatures, len(t.Signatures))
	}

	messageBytes := t.Message.Marshal()
	for i, signer := range t.Signers() {
		if t.Signatures[i] == (Signature{}) {
			return errors.Wrapf(ErrMissingSignature, "account %s", base58.Encode(signer))
		}
		if !ed25519.Verify(signer, messageBytes, t.Signatures[i][:]) {
			return errors.Wrapf(ErrInvalidSignature, "account %s", base58.Encode(signer))
		}
	}

	return nil
}

func (t *Transaction) String() string {
	var sb strings.Builder
	sb.WriteString("Signatures:\n")
	for i, s := range t.Signatures {
		sb.WriteString(fmt.Sprintf("  %d: %s\n", i, s.String()))
	}
	sb.WriteString("Message:\n")
	sb.WriteString("  Header:\n")
	sb.WriteString(fmt.Sprintf("    NumSignatures: %d\n", t.Message.Header.NumSignatures))
	sb.WriteString(fmt.Sprintf("    NumReadOnly: %d\n", t.Message.Header.NumReadOnly))
	sb.WriteString(fmt.Sprintf("    NumReadOnlySigned: %d\n", t.Message.Header.NumReadonlySigned))
	sb.WriteString(fmt.Sprintf("  RecentBlockhash: %s\n", t.Message.RecentBlockhash.String()))
	sb.WriteString("  Accounts:\n")
	for i, a := range t.Message.Accounts {
		sb.WriteString(fmt.Sprintf("    %d: %s\n", i, base58.Encode(a)))
	}
	sb.WriteString("  Instructions:\n")
	for i, c := range t.Message.Instructions {
		sb.WriteString(fmt.Sprintf("    %d:\n", i))
		sb.WriteString(fmt.Sprintf("      ProgramIndex: %d\n", c.ProgramIndex))
		sb.WriteString(fmt.Sprintf("      Accounts: %v\n", c.Accounts))
		sb.WriteString(fmt.Sprintf("      Data: %v\n", c.Data))
	}
	return sb.String()
}

func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))

	for i := range accounts {
		seen := false
		for j := range filtered {
			if !bytes.Equal(accounts[i].PublicKey, filtered[j].PublicKey) {
				continue
			}

			// Promote permissions when the same account is referenced twice.
			filtered[j].IsSigner = filtered[j].IsSigner || accounts[i].IsSigner
			filtered[j].IsWritable = filtered[j].IsWritable || accounts[i].IsWritable
			filtered[j].isPayer = filtered[j].isPayer || accounts[i].isPayer
			seen = true
			break
		}

		if !seen {
			filtered = append(filtered, accounts[i])
		}
	}

	return filtered
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	if len(item) == 0 {
		item = make([]byte, ed25519.PublicKeySize)
	}

	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}
