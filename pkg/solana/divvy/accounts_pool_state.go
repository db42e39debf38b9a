package divvy

import (
	"fmt"
)

// PoolState is the original 25 byte pool layout.
type PoolState struct {
	IsInitialized      Flag
	AvailableLiquidity uint64
	BettorBalance      uint64
	PendingBets        uint64
}

func (obj *PoolState) Version() SchemaVersion {
	return SchemaVersionPool
}

func (obj *PoolState) Marshal() ([]byte, error) {
	return PoolStateLayout.Encode(Values{
		fieldIsInitialized:      obj.IsInitialized,
		fieldAvailableLiquidity: obj.AvailableLiquidity,
		fieldBettorBalance:      obj.BettorBalance,
		fieldPendingBets:        obj.PendingBets,
	})
}

func (obj *PoolState) Unmarshal(data []byte) error {
	v, err := PoolStateLayout.Decode(data)
	if err != nil {
		return err
	}

	obj.IsInitialized = v[fieldIsInitialized].(Flag)
	obj.AvailableLiquidity = v[fieldAvailableLiquidity].(uint64)
	obj.BettorBalance = v[fieldBettorBalance].(uint64)
	obj.PendingBets = v[fieldPendingBets].(uint64)
	return nil
}

func (obj *PoolState) String() string {
	return fmt.Sprintf(
		"PoolState{is_initialized=%t, available_liquidity=%d, bettor_balance=%d, pending_bets=%d}",
		obj.IsInitialized.Bool(),
		obj.AvailableLiquidity,
		obj.BettorBalance,
		obj.PendingBets,
	)
}
