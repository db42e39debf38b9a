package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/divvyexchange/bootstrap/pkg/solana/shortvec"
)

var ErrTransactionTooLarge = errors.New("transaction exceeds maximum size")

func (t Transaction) Marshal() []byte {
	w := &wireWriter{}
	w.compactLen(len(t.Signatures))
	for _, s := range t.Signatures {
		w.raw(s[:])
	}
	w.raw(t.Message.Marshal())
	return w.Bytes()
}

// CheckSize returns ErrTransactionTooLarge if t would be rejected by a node
// for its serialized size.
func (t Transaction) CheckSize() error {
	if size := len(t.Marshal()); size > MaxTransactionSize {
		return errors.Wrapf(ErrTransactionTooLarge, "%d bytes", size)
	}
	return nil
}

func (t *Transaction) Unmarshal(b []byte) error {
	r := newWireReader(b)

	n := r.compactLen("signature count")
	t.Signatures = make([]Signature, n)
	for i := range t.Signatures {
		r.into(t.Signatures[i][:], "signature")
	}
	if r.err != nil {
		return r.err
	}

	return (&t.Message).Unmarshal(r.rest())
}

// Marshal encodes the message in the legacy wire format.
func (m Message) Marshal() []byte {
	w := &wireWriter{}
	w.raw([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	w.compactLen(len(m.Accounts))
	for _, a := range m.Accounts {
		w.raw(a)
	}

	w.raw(m.RecentBlockhash[:])

	w.compactLen(len(m.Instructions))
	for _, i := range m.Instructions {
		w.raw([]byte{i.ProgramIndex})
		w.prefixed(i.Accounts)
		w.prefixed(i.Data)
	}

	return w.Bytes()
}

func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}

	// Versioned messages set the high bit of the first byte.
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	r := newWireReader(b)

	var header [3]byte
	r.into(header[:], "header")
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	m.Accounts = make([]ed25519.PublicKey, r.compactLen("account count"))
	for i := range m.Accounts {
		m.Accounts[i] = r.bytes(ed25519.PublicKeySize, "account")
	}

	r.into(m.RecentBlockhash[:], "recent blockhash")

	m.Instructions = make([]CompiledInstruction, r.compactLen("instruction count"))
	for i := range m.Instructions {
		var c CompiledInstruction

		programIndex := r.bytes(1, "program index")
		c.Accounts = r.bytes(r.compactLen("instruction account count"), "instruction accounts")
		c.Data = r.bytes(r.compactLen("instruction data length"), "instruction data")
		if r.err != nil {
			return errors.Wrapf(r.err, "instruction %d", i)
		}

		c.ProgramIndex = programIndex[0]
		if int(c.ProgramIndex) >= len(m.Accounts) {
			return errors.Errorf("program index out of range: %d:%d", i, c.ProgramIndex)
		}
		for _, index := range c.Accounts {
			if int(index) >= len(m.Accounts) {
				return errors.Errorf("account index out of range: %d:%d", i, index)
			}
		}

		m.Instructions[i] = c
	}

	return r.err
}

type wireWriter struct {
	bytes.Buffer
}

func (w *wireWriter) raw(b []byte) {
	_, _ = w.Write(b)
}

func (w *wireWriter) compactLen(n int) {
	_, _ = shortvec.EncodeLen(w, n)
}

func (w *wireWriter) prefixed(b []byte) {
	w.compactLen(len(b))
	w.raw(b)
}

// wireReader records the first failure. Reads after a failure are no-ops
// returning zero values.
type wireReader struct {
	buf *bytes.Buffer
	err error
}

func newWireReader(b []byte) *wireReader {
	return &wireReader{buf: bytes.NewBuffer(b)}
}

func (r *wireReader) compactLen(field string) int {
	if r.err != nil {
		return 0
	}

	n, err := shortvec.DecodeLen(r.buf)
	if err != nil {
		r.err = errors.Wrapf(err, "failed to read %s", field)
		return 0
	}
	if n > r.buf.Len() {
		// Every counted item takes at least a byte.
		r.err = errors.Errorf("%s %d exceeds remaining %d bytes", field, n, r.buf.Len())
		return 0
	}
	return n
}

func (r *wireReader) into(dst []byte, field string) {
	if r.err != nil {
		return
	}
	if _, err := io.ReadFull(r.buf, dst); err != nil {
		r.err = errors.Wrapf(err, "failed to read %s", field)
	}
}

func (r *wireReader) bytes(n int, field string) []byte {
	b := make([]byte, n)
	r.into(b, field)
	if r.err != nil {
		return nil
	}
	return b
}

func (r *wireReader) rest() []byte {
	return r.buf.Bytes()
}
