package divvy

import (
	"crypto/ed25519"
	"fmt"

	"github.com/pkg/errors"

	"github.com/divvyexchange/bootstrap/pkg/solana/binary"
)

var (
	ErrMissingField       = errors.New("missing layout field")
	ErrFieldTypeMismatch  = errors.New("layout field type mismatch")
	ErrLayoutOverflow     = errors.New("value exceeds layout field width")
	ErrInvalidFieldWidth  = errors.New("value does not fill layout field")
	ErrInvalidAccountSize = errors.New("invalid account size")
)

// Kind is the encoding of a single layout field.
type Kind uint8

const (
	KindBool Kind = iota
	KindUint8
	KindUint64
	KindKey32
)

// Width is the number of bytes a field of this kind occupies.
func (k Kind) Width() int {
	switch k {
	case KindBool, KindUint8:
		return binary.Uint8Size
	case KindUint64:
		return binary.Uint64Size
	case KindKey32:
		return binary.Key32Size
	default:
		panic(fmt.Sprintf("unknown field kind %d", k))
	}
}

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindUint8:
		return "u8"
	case KindUint64:
		return "u64"
	case KindKey32:
		return "key32"
	default:
		return "unknown"
	}
}

// Flag is a one byte boolean. Any non-zero value reads as true, and the raw
// byte is kept so non-canonical account data re-encodes unchanged.
type Flag uint8

const (
	FlagFalse Flag = 0x00
	FlagTrue  Flag = 0x01
)

func NewFlag(v bool) Flag {
	if v {
		return FlagTrue
	}
	return FlagFalse
}

func (f Flag) Bool() bool {
	return f != FlagFalse
}

type Field struct {
	Name string
	Kind Kind
}

// Values holds a record keyed by field name. Expected Go types per kind:
// Flag (or bool), uint8, uint64 and ed25519.PublicKey (or []byte).
type Values map[string]interface{}

// Layout is an ordered, fixed width record. Offsets and span are computed
// once at construction.
type Layout struct {
	name    string
	fields  []Field
	offsets []int
	index   map[string]int
	span    int
}

// NewLayout panics on duplicate field names.
func NewLayout(name string, fields ...Field) *Layout {
	l := &Layout{
		name:    name,
		fields:  append([]Field(nil), fields...),
		offsets: make([]int, len(fields)),
		index:   make(map[string]int, len(fields)),
	}

	for i, f := range l.fields {
		if _, ok := l.index[f.Name]; ok {
			panic(fmt.Sprintf("layout %s: duplicate field %s", name, f.Name))
		}

		l.index[f.Name] = i
		l.offsets[i] = l.span
		l.span += f.Kind.Width()
	}

	return l
}

func (l *Layout) Name() string {
	return l.name
}

// Span is the encoded size in bytes.
func (l *Layout) Span() int {
	return l.span
}

func (l *Layout) Offset(name string) (int, bool) {
	i, ok := l.index[name]
	if !ok {
		return 0, false
	}
	return l.offsets[i], true
}

func (l *Layout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// Encode writes every field at its offset into a buffer of exactly Span bytes.
func (l *Layout) Encode(v Values) ([]byte, error) {
	b := make([]byte, l.span)

	w := binary.NewWriter(b)
	for _, f := range l.fields {
		raw, ok := v[f.Name]
		if !ok {
			return nil, errors.Wrapf(ErrMissingField, "%s.%s", l.name, f.Name)
		}

		if err := putField(w, f, raw); err != nil {
			return nil, errors.Wrapf(err, "%s.%s", l.name, f.Name)
		}
	}

	return b, nil
}

// Decode is the inverse of Encode. Bool fields accept any byte value.
func (l *Layout) Decode(b []byte) (Values, error) {
	if len(b) != l.span {
		return nil, errors.Wrapf(ErrInvalidAccountSize, "%s: got %d bytes, want %d", l.name, len(b), l.span)
	}

	v := make(Values, len(l.fields))
	r := binary.NewReader(b)
	for _, f := range l.fields {
		switch f.Kind {
		case KindBool:
			v[f.Name] = Flag(r.Uint8())
		case KindUint8:
			v[f.Name] = r.Uint8()
		case KindUint64:
			v[f.Name] = r.Uint64()
		case KindKey32:
			v[f.Name] = r.Key32()
		}
	}

	return v, r.Err()
}

func putField(w *binary.Writer, f Field, raw interface{}) error {
	switch f.Kind {
	case KindBool:
		switch t := raw.(type) {
		case Flag:
			w.Uint8(uint8(t))
		case bool:
			w.Uint8(uint8(NewFlag(t)))
		default:
			return mismatch(f, raw)
		}
	case KindUint8:
		t, ok := raw.(uint8)
		if !ok {
			return mismatch(f, raw)
		}
		w.Uint8(t)
	case KindUint64:
		t, ok := raw.(uint64)
		if !ok {
			return mismatch(f, raw)
		}
		w.Uint64(t)
	case KindKey32:
		var key []byte
		switch t := raw.(type) {
		case ed25519.PublicKey:
			key = t
		case []byte:
			key = t
		default:
			return mismatch(f, raw)
		}

		if len(key) > binary.Key32Size {
			return errors.Wrapf(ErrLayoutOverflow, "%d bytes", len(key))
		}
		if len(key) < binary.Key32Size {
			return errors.Wrapf(ErrInvalidFieldWidth, "%d bytes", len(key))
		}
		w.Key32(key)
	default:
		return errors.Errorf("unknown field kind %d", f.Kind)
	}

	return nil
}

func mismatch(f Field, raw interface{}) error {
	return errors.Wrapf(ErrFieldTypeMismatch, "%s field got %T", f.Kind, raw)
}
