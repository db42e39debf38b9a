package divvy

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) ed25519.PublicKey {
	return bytes.Repeat([]byte{b}, ed25519.PublicKeySize)
}

func newTestHousePoolState() *HousePoolState {
	return &HousePoolState{
		IsInitialized:                  FlagTrue,
		LockedLiquidity:                1,
		LiveLiquidity:                  2_000_000,
		BettorBalance:                  3 << 40,
		PendingBets:                    ^uint64(0),
		HouseTokenMint:                 testKey(1),
		PoolTokenAccount:               testKey(2),
		InsuranceFundTokenAccount:      testKey(3),
		FoundationProceedsTokenAccount: testKey(4),
		FrozenPool:                     FlagFalse,
		FrozenBetting:                  FlagTrue,
	}
}

func TestPoolState_RoundTrip(t *testing.T) {
	expected := &PoolState{
		IsInitialized:      FlagTrue,
		AvailableLiquidity: 1_000_000,
		BettorBalance:      42,
		PendingBets:        ^uint64(0),
	}

	encoded, err := expected.Marshal()
	require.NoError(t, err)
	require.Len(t, encoded, 25)
	assert.EqualValues(t, 1, encoded[0])

	var actual PoolState
	require.NoError(t, actual.Unmarshal(encoded))
	assert.Equal(t, *expected, actual)
	assert.Equal(t, SchemaVersionPool, actual.Version())
	assert.Equal(t, "PoolState{is_initialized=true, available_liquidity=1000000, bettor_balance=42, pending_bets=18446744073709551615}", actual.String())

	assert.ErrorIs(t, actual.Unmarshal(encoded[:24]), ErrInvalidAccountSize)
}

func TestHousePoolState_RoundTrip(t *testing.T) {
	expected := newTestHousePoolState()

	encoded, err := expected.Marshal()
	require.NoError(t, err)
	require.Len(t, encoded, 163)

	var actual HousePoolState
	require.NoError(t, actual.Unmarshal(encoded))
	assert.Equal(t, *expected, actual)
	assert.Equal(t, SchemaVersionHousePool, actual.Version())
	assert.Contains(t, actual.String(), "frozen_betting=true")

	// Zero state still needs all four keys.
	_, err = (&HousePoolState{}).Marshal()
	assert.ErrorIs(t, err, ErrInvalidFieldWidth)

	overflow := newTestHousePoolState()
	overflow.PoolTokenAccount = make(ed25519.PublicKey, 33)
	_, err = overflow.Marshal()
	assert.ErrorIs(t, err, ErrLayoutOverflow)
}

func TestHousePoolState_FrozenBettingIsLastByte(t *testing.T) {
	state := newTestHousePoolState()

	state.FrozenBetting = FlagFalse
	off, err := state.Marshal()
	require.NoError(t, err)

	state.FrozenBetting = FlagTrue
	on, err := state.Marshal()
	require.NoError(t, err)

	require.Len(t, off, 163)
	require.Len(t, on, 163)
	for i := range off {
		if i == 162 {
			assert.EqualValues(t, 0x00, off[i])
			assert.EqualValues(t, 0x01, on[i])
			continue
		}
		assert.Equal(t, off[i], on[i], "byte %d", i)
	}
}

// borshHousePoolState mirrors the program's own packing of the house pool
// state, decoded with an independent Borsh implementation.
type borshHousePoolState struct {
	IsInitialized                  bool
	LockedLiquidity                uint64
	LiveLiquidity                  uint64
	BettorBalance                  uint64
	PendingBets                    uint64
	HouseTokenMint                 [32]byte
	PoolTokenAccount               [32]byte
	InsuranceFundTokenAccount      [32]byte
	FoundationProceedsTokenAccount [32]byte
	FrozenPool                     bool
	FrozenBetting                  bool
}

type borshPoolState struct {
	IsInitialized      bool
	AvailableLiquidity uint64
	BettorBalance      uint64
	PendingBets        uint64
}

func TestHousePoolState_BorshCompatible(t *testing.T) {
	state := newTestHousePoolState()

	encoded, err := state.Marshal()
	require.NoError(t, err)

	var decoded borshHousePoolState
	require.NoError(t, bin.NewBorshDecoder(encoded).Decode(&decoded))
	assert.True(t, decoded.IsInitialized)
	assert.Equal(t, state.LockedLiquidity, decoded.LockedLiquidity)
	assert.Equal(t, state.LiveLiquidity, decoded.LiveLiquidity)
	assert.Equal(t, state.BettorBalance, decoded.BettorBalance)
	assert.Equal(t, state.PendingBets, decoded.PendingBets)
	assert.EqualValues(t, state.HouseTokenMint, decoded.HouseTokenMint[:])
	assert.EqualValues(t, state.PoolTokenAccount, decoded.PoolTokenAccount[:])
	assert.EqualValues(t, state.InsuranceFundTokenAccount, decoded.InsuranceFundTokenAccount[:])
	assert.EqualValues(t, state.FoundationProceedsTokenAccount, decoded.FoundationProceedsTokenAccount[:])
	assert.False(t, decoded.FrozenPool)
	assert.True(t, decoded.FrozenBetting)

	var buf bytes.Buffer
	require.NoError(t, bin.NewBorshEncoder(&buf).Encode(decoded))
	assert.Equal(t, encoded, buf.Bytes())
}

func TestPoolState_BorshCompatible(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bin.NewBorshEncoder(&buf).Encode(borshPoolState{
		IsInitialized:      true,
		AvailableLiquidity: 5,
		BettorBalance:      6,
		PendingBets:        7,
	}))

	var state PoolState
	require.NoError(t, state.Unmarshal(buf.Bytes()))
	assert.Equal(t, PoolState{IsInitialized: FlagTrue, AvailableLiquidity: 5, BettorBalance: 6, PendingBets: 7}, state)
}

func TestStateLayout(t *testing.T) {
	layout, err := StateLayout(SchemaVersionPool)
	require.NoError(t, err)
	assert.Equal(t, 25, layout.Span())

	layout, err = StateLayout(SchemaVersionHousePool)
	require.NoError(t, err)
	assert.Equal(t, 163, layout.Span())

	_, err = StateLayout(SchemaVersionUnknown)
	assert.ErrorIs(t, err, ErrUnknownSchemaVersion)

	_, err = NewStateRecord(SchemaVersion(9))
	assert.ErrorIs(t, err, ErrUnknownSchemaVersion)
}

func TestNewInitialState(t *testing.T) {
	record, err := NewInitialState(SchemaVersionPool, nil)
	require.NoError(t, err)
	assert.Equal(t, &PoolState{IsInitialized: FlagTrue}, record)

	accounts := &InitializeInstructionAccounts{
		Payer:                          testKey(9),
		State:                          testKey(8),
		HouseTokenMint:                 testKey(1),
		PoolTokenAccount:               testKey(2),
		InsuranceFundTokenAccount:      testKey(3),
		FoundationProceedsTokenAccount: testKey(4),
	}
	record, err = NewInitialState(SchemaVersionHousePool, accounts)
	require.NoError(t, err)

	encoded, err := record.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalState(SchemaVersionHousePool, encoded)
	require.NoError(t, err)
	house := decoded.(*HousePoolState)
	assert.True(t, house.IsInitialized.Bool())
	assert.Zero(t, house.LockedLiquidity)
	assert.EqualValues(t, testKey(1), house.HouseTokenMint)
	assert.EqualValues(t, testKey(4), house.FoundationProceedsTokenAccount)
	assert.False(t, house.FrozenPool.Bool())

	_, err = NewInitialState(SchemaVersionHousePool, nil)
	assert.ErrorIs(t, err, ErrMissingAccount)

	_, err = UnmarshalState(SchemaVersionPool, encoded)
	assert.ErrorIs(t, err, ErrInvalidAccountSize)
}

func TestParseSchemaVersion(t *testing.T) {
	for _, v := range []SchemaVersion{SchemaVersionPool, SchemaVersionHousePool} {
		parsed, err := ParseSchemaVersion(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}

	_, err := ParseSchemaVersion("v3")
	assert.ErrorIs(t, err, ErrUnknownSchemaVersion)

	seed, err := SchemaVersionHousePool.DefaultSeed()
	require.NoError(t, err)
	assert.Equal(t, []byte("divvyhouse"), seed)

	seed, err = SchemaVersionPool.DefaultSeed()
	require.NoError(t, err)
	assert.Equal(t, []byte("divvyexchange"), seed)

	_, err = SchemaVersionUnknown.DefaultSeed()
	assert.ErrorIs(t, err, ErrUnknownSchemaVersion)
}
