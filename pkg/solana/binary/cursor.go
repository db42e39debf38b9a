// Package binary reads and writes the packed little endian layouts used by
// Solana account and instruction data.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	Uint8Size  = 1
	Uint32Size = 4
	Uint64Size = 8
	Key32Size  = ed25519.PublicKeySize
)

var ErrShortBuffer = errors.New("buffer too short for layout")

// Writer fills a caller sized buffer front to back. Writing past the end of
// the buffer panics; layouts size their buffers up front.
type Writer struct {
	buf []byte
	off int
}

func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Offset is the number of bytes written so far.
func (w *Writer) Offset() int {
	return w.off
}

func (w *Writer) next(n int) []byte {
	b := w.buf[w.off : w.off+n]
	w.off += n
	return b
}

func (w *Writer) Uint8(v uint8) {
	w.next(Uint8Size)[0] = v
}

func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.next(Uint32Size), v)
}

func (w *Writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.next(Uint64Size), v)
}

// Key32 writes key into a 32 byte field. Shorter keys are zero padded.
func (w *Writer) Key32(key []byte) {
	copy(w.next(Key32Size), key)
}

// OptionalKey32 writes a C style option: an optionSize tag that is 1 when
// key is set, followed by the key field.
func (w *Writer) OptionalKey32(key []byte, optionSize int) {
	if len(key) > 0 {
		w.next(optionSize)[0] = 1
	} else {
		w.next(optionSize)
	}
	w.Key32(key)
}

func (w *Writer) OptionalUint64(v *uint64, optionSize int) {
	tag := w.next(optionSize)
	if v == nil {
		w.next(Uint64Size)
		return
	}

	tag[0] = 1
	w.Uint64(*v)
}

// Reader consumes a buffer front to back. The first read past the end sets
// Err, and every later read returns a zero value.
type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf)-r.off < n {
		r.err = errors.Wrapf(ErrShortBuffer, "need %d bytes at offset %d, have %d", n, r.off, len(r.buf)-r.off)
		return nil
	}

	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Uint8() uint8 {
	if b := r.next(Uint8Size); b != nil {
		return b[0]
	}
	return 0
}

func (r *Reader) Uint32() uint32 {
	if b := r.next(Uint32Size); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *Reader) Uint64() uint64 {
	if b := r.next(Uint64Size); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// Key32 returns a copy of the next 32 bytes.
func (r *Reader) Key32() ed25519.PublicKey {
	if b := r.next(Key32Size); b != nil {
		return append(ed25519.PublicKey(nil), b...)
	}
	return nil
}

// OptionalKey32 returns nil when the option tag is unset.
func (r *Reader) OptionalKey32(optionSize int) ed25519.PublicKey {
	tag := r.next(optionSize)
	key := r.Key32()
	if tag == nil || tag[0] != 1 {
		return nil
	}
	return key
}

func (r *Reader) OptionalUint64(optionSize int) *uint64 {
	tag := r.next(optionSize)
	v := r.Uint64()
	if tag == nil || tag[0] != 1 || r.err != nil {
		return nil
	}
	return &v
}
