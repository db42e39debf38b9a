package divvy

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutSpans(t *testing.T) {
	assert.Equal(t, 25, PoolStateLayout.Span())
	assert.Equal(t, 163, HousePoolStateLayout.Span())
	assert.Equal(t, 2, InitArgsLayout.Span())

	for _, tc := range []struct {
		layout *Layout
		field  string
		offset int
	}{
		{PoolStateLayout, fieldIsInitialized, 0},
		{PoolStateLayout, fieldAvailableLiquidity, 1},
		{PoolStateLayout, fieldPendingBets, 17},
		{HousePoolStateLayout, fieldHouseTokenMint, 33},
		{HousePoolStateLayout, fieldFoundationProceedsTokenAccount, 129},
		{HousePoolStateLayout, fieldFrozenPool, 161},
		{HousePoolStateLayout, fieldFrozenBetting, 162},
		{InitArgsLayout, fieldBumpSeed, 1},
	} {
		offset, ok := tc.layout.Offset(tc.field)
		require.True(t, ok, tc.field)
		assert.Equal(t, tc.offset, offset, tc.field)
	}

	_, ok := PoolStateLayout.Offset(fieldFrozenPool)
	assert.False(t, ok)

	fields := HousePoolStateLayout.Fields()
	require.Len(t, fields, 11)
	fields[0].Name = "mutated"
	assert.Equal(t, fieldIsInitialized, HousePoolStateLayout.Fields()[0].Name)
}

func TestNewLayout_DuplicateField(t *testing.T) {
	assert.Panics(t, func() {
		NewLayout("dup", Field{"a", KindBool}, Field{"a", KindUint64})
	})
}

func TestLayoutEncode(t *testing.T) {
	key := bytes.Repeat([]byte{0xab}, ed25519.PublicKeySize)
	layout := NewLayout("test",
		Field{"flag", KindBool},
		Field{"small", KindUint8},
		Field{"big", KindUint64},
		Field{"key", KindKey32},
	)

	encoded, err := layout.Encode(Values{
		"flag":  true,
		"small": uint8(7),
		"big":   uint64(0x0102030405060708),
		"key":   ed25519.PublicKey(key),
	})
	require.NoError(t, err)
	require.Len(t, encoded, 1+1+8+32)
	assert.Equal(t, []byte{0x01, 0x07, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, encoded[:10])
	assert.Equal(t, key, encoded[10:])

	decoded, err := layout.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, FlagTrue, decoded["flag"])
	assert.Equal(t, uint8(7), decoded["small"])
	assert.Equal(t, uint64(0x0102030405060708), decoded["big"])
	assert.EqualValues(t, key, decoded["key"])

	reencoded, err := layout.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func TestLayoutEncode_Errors(t *testing.T) {
	valid := func() Values {
		return Values{
			fieldIsInitialized:      FlagTrue,
			fieldAvailableLiquidity: uint64(1),
			fieldBettorBalance:      uint64(2),
			fieldPendingBets:        uint64(3),
		}
	}

	_, err := PoolStateLayout.Encode(valid())
	require.NoError(t, err)

	missing := valid()
	delete(missing, fieldBettorBalance)
	_, err = PoolStateLayout.Encode(missing)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), fieldBettorBalance)

	mismatched := valid()
	mismatched[fieldPendingBets] = 3
	_, err = PoolStateLayout.Encode(mismatched)
	assert.ErrorIs(t, err, ErrFieldTypeMismatch)

	mismatched = valid()
	mismatched[fieldIsInitialized] = uint8(1)
	_, err = PoolStateLayout.Encode(mismatched)
	assert.ErrorIs(t, err, ErrFieldTypeMismatch)

	_, err = InitArgsLayout.Encode(Values{fieldAction: uint8(10), fieldBumpSeed: uint64(255)})
	assert.ErrorIs(t, err, ErrFieldTypeMismatch)
}

func TestLayoutEncode_KeyWidth(t *testing.T) {
	layout := NewLayout("key", Field{"key", KindKey32})

	_, err := layout.Encode(Values{"key": make([]byte, 33)})
	assert.ErrorIs(t, err, ErrLayoutOverflow)

	_, err = layout.Encode(Values{"key": make(ed25519.PublicKey, 65)})
	assert.ErrorIs(t, err, ErrLayoutOverflow)

	_, err = layout.Encode(Values{"key": make([]byte, 31)})
	assert.ErrorIs(t, err, ErrInvalidFieldWidth)

	_, err = layout.Encode(Values{"key": ed25519.PublicKey(nil)})
	assert.ErrorIs(t, err, ErrInvalidFieldWidth)

	_, err = layout.Encode(Values{"key": "not a key"})
	assert.ErrorIs(t, err, ErrFieldTypeMismatch)
}

func TestLayoutDecode(t *testing.T) {
	_, err := PoolStateLayout.Decode(make([]byte, 24))
	assert.ErrorIs(t, err, ErrInvalidAccountSize)

	_, err = PoolStateLayout.Decode(make([]byte, 163))
	assert.ErrorIs(t, err, ErrInvalidAccountSize)

	// Non-canonical bools decode and re-encode unchanged.
	raw := make([]byte, PoolStateLayout.Span())
	raw[0] = 0x02
	raw[1] = 0xff

	decoded, err := PoolStateLayout.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, Flag(0x02), decoded[fieldIsInitialized])
	assert.True(t, decoded[fieldIsInitialized].(Flag).Bool())

	reencoded, err := PoolStateLayout.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, raw, reencoded)
}

func TestFlag(t *testing.T) {
	assert.Equal(t, FlagTrue, NewFlag(true))
	assert.Equal(t, FlagFalse, NewFlag(false))
	assert.False(t, FlagFalse.Bool())
	assert.True(t, FlagTrue.Bool())
	assert.True(t, Flag(0x80).Bool())
}

func TestKind(t *testing.T) {
	assert.Equal(t, 1, KindBool.Width())
	assert.Equal(t, 1, KindUint8.Width())
	assert.Equal(t, 8, KindUint64.Width())
	assert.Equal(t, 32, KindKey32.Width())
	assert.Panics(t, func() { Kind(99).Width() })
	assert.Equal(t, "key32", KindKey32.String())
}
