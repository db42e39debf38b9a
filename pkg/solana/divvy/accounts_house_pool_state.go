package divvy

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// HousePoolState is the 163 byte layout used once the pool holds its own
// token accounts.
type HousePoolState struct {
	IsInitialized   Flag
	LockedLiquidity uint64
	LiveLiquidity   uint64
	BettorBalance   uint64
	PendingBets     uint64

	HouseTokenMint                 ed25519.PublicKey
	PoolTokenAccount               ed25519.PublicKey
	InsuranceFundTokenAccount      ed25519.PublicKey
	FoundationProceedsTokenAccount ed25519.PublicKey

	FrozenPool    Flag
	FrozenBetting Flag
}

func (obj *HousePoolState) Version() SchemaVersion {
	return SchemaVersionHousePool
}

func (obj *HousePoolState) Marshal() ([]byte, error) {
	return HousePoolStateLayout.Encode(Values{
		fieldIsInitialized:                  obj.IsInitialized,
		fieldLockedLiquidity:                obj.LockedLiquidity,
		fieldLiveLiquidity:                  obj.LiveLiquidity,
		fieldBettorBalance:                  obj.BettorBalance,
		fieldPendingBets:                    obj.PendingBets,
		fieldHouseTokenMint:                 obj.HouseTokenMint,
		fieldPoolTokenAccount:               obj.PoolTokenAccount,
		fieldInsuranceFundTokenAccount:      obj.InsuranceFundTokenAccount,
		fieldFoundationProceedsTokenAccount: obj.FoundationProceedsTokenAccount,
		fieldFrozenPool:                     obj.FrozenPool,
		fieldFrozenBetting:                  obj.FrozenBetting,
	})
}

func (obj *HousePoolState) Unmarshal(data []byte) error {
	v, err := HousePoolStateLayout.Decode(data)
	if err != nil {
		return err
	}

	obj.IsInitialized = v[fieldIsInitialized].(Flag)
	obj.LockedLiquidity = v[fieldLockedLiquidity].(uint64)
	obj.LiveLiquidity = v[fieldLiveLiquidity].(uint64)
	obj.BettorBalance = v[fieldBettorBalance].(uint64)
	obj.PendingBets = v[fieldPendingBets].(uint64)
	obj.HouseTokenMint = keyOrNil(v, fieldHouseTokenMint)
	obj.PoolTokenAccount = keyOrNil(v, fieldPoolTokenAccount)
	obj.InsuranceFundTokenAccount = keyOrNil(v, fieldInsuranceFundTokenAccount)
	obj.FoundationProceedsTokenAccount = keyOrNil(v, fieldFoundationProceedsTokenAccount)
	obj.FrozenPool = v[fieldFrozenPool].(Flag)
	obj.FrozenBetting = v[fieldFrozenBetting].(Flag)
	return nil
}

func (obj *HousePoolState) String() string {
	return fmt.Sprintf(
		"HousePoolState{is_initialized=%t, locked_liquidity=%d, live_liquidity=%d, bettor_balance=%d, pending_bets=%d, "+
			"house_token_mint=%s, pool_token_account=%s, insurance_fund_token_account=%s, foundation_proceeds_token_account=%s, "+
			"frozen_pool=%t, frozen_betting=%t}",
		obj.IsInitialized.Bool(),
		obj.LockedLiquidity,
		obj.LiveLiquidity,
		obj.BettorBalance,
		obj.PendingBets,
		base58.Encode(obj.HouseTokenMint),
		base58.Encode(obj.PoolTokenAccount),
		base58.Encode(obj.InsuranceFundTokenAccount),
		base58.Encode(obj.FoundationProceedsTokenAccount),
		obj.FrozenPool.Bool(),
		obj.FrozenBetting.Bool(),
	)
}
