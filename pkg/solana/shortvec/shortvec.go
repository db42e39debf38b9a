// Package shortvec implements the compact-u16 length prefix used by the
// Solana transaction wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedBytes = 3

var ErrLengthExceeded = errors.Errorf("length exceeds %d", math.MaxUint16)

// EncodeLen encodes the specified length into the writer.
//
// If length > math.MaxUint16, ErrLengthExceeded is returned.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, ErrLengthExceeded
	}

	var buf [maxEncodedBytes]byte
	n := 0
	for {
		buf[n] = byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			n++
			break
		}

		buf[n] |= 0x80
		n++
	}

	return w.Write(buf[:n])
}

// DecodeLen decodes a shortvec encoded length from the reader.
func DecodeLen(r io.Reader) (int, error) {
	var val int
	var b [1]byte

	for i := 0; ; i++ {
		if i >= maxEncodedBytes {
			return 0, errors.Errorf("invalid size: more than %d bytes", maxEncodedBytes)
		}

		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		val |= int(b[0]&0x7f) << (i * 7)
		if b[0]&0x80 == 0 {
			return val, nil
		}
	}
}
