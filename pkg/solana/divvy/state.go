package divvy

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

// Field names as used by the program's client layouts.
const (
	fieldIsInitialized                  = "isInitialized"
	fieldAvailableLiquidity             = "availableLiquidity"
	fieldLockedLiquidity                = "lockedLiquidity"
	fieldLiveLiquidity                  = "liveLiquidity"
	fieldBettorBalance                  = "bettorBalance"
	fieldPendingBets                    = "pendingBets"
	fieldHouseTokenMint                 = "houseTokenMint"
	fieldPoolTokenAccount               = "poolTokenAccount"
	fieldInsuranceFundTokenAccount      = "insuranceFundTokenAccount"
	fieldFoundationProceedsTokenAccount = "foundationProceedsTokenAccount"
	fieldFrozenPool                     = "frozenPool"
	fieldFrozenBetting                  = "frozenBetting"
	fieldAction                         = "action"
	fieldBumpSeed                       = "divvyPdaBumpSeed"
)

var (
	PoolStateLayout = NewLayout("PoolState",
		Field{fieldIsInitialized, KindBool},
		Field{fieldAvailableLiquidity, KindUint64},
		Field{fieldBettorBalance, KindUint64},
		Field{fieldPendingBets, KindUint64},
	)

	HousePoolStateLayout = NewLayout("HousePoolState",
		Field{fieldIsInitialized, KindBool},
		Field{fieldLockedLiquidity, KindUint64},
		Field{fieldLiveLiquidity, KindUint64},
		Field{fieldBettorBalance, KindUint64},
		Field{fieldPendingBets, KindUint64},
		Field{fieldHouseTokenMint, KindKey32},
		Field{fieldPoolTokenAccount, KindKey32},
		Field{fieldInsuranceFundTokenAccount, KindKey32},
		Field{fieldFoundationProceedsTokenAccount, KindKey32},
		Field{fieldFrozenPool, KindBool},
		Field{fieldFrozenBetting, KindBool},
	)

	InitArgsLayout = NewLayout("InitArgs",
		Field{fieldAction, KindUint8},
		Field{fieldBumpSeed, KindUint8},
	)
)

// StateRecord is the decoded data of a pool state account.
type StateRecord interface {
	Version() SchemaVersion
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
	String() string
}

// StateLayout returns the layout of the state account for a schema.
func StateLayout(version SchemaVersion) (*Layout, error) {
	switch version {
	case SchemaVersionPool:
		return PoolStateLayout, nil
	case SchemaVersionHousePool:
		return HousePoolStateLayout, nil
	}
	return nil, errors.Wrapf(ErrUnknownSchemaVersion, "%d", version)
}

// NewStateRecord returns an empty record for the schema.
func NewStateRecord(version SchemaVersion) (StateRecord, error) {
	switch version {
	case SchemaVersionPool:
		return &PoolState{}, nil
	case SchemaVersionHousePool:
		return &HousePoolState{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownSchemaVersion, "%d", version)
}

// UnmarshalState decodes account data for the schema.
func UnmarshalState(version SchemaVersion, data []byte) (StateRecord, error) {
	record, err := NewStateRecord(version)
	if err != nil {
		return nil, err
	}
	if err := record.Unmarshal(data); err != nil {
		return nil, err
	}
	return record, nil
}

// NewInitialState returns the record the program writes when it processes
// the initialize instruction built from the same accounts.
func NewInitialState(version SchemaVersion, accounts *InitializeInstructionAccounts) (StateRecord, error) {
	switch version {
	case SchemaVersionPool:
		return &PoolState{IsInitialized: FlagTrue}, nil
	case SchemaVersionHousePool:
		if accounts == nil {
			return nil, ErrMissingAccount
		}
		return &HousePoolState{
			IsInitialized:                  FlagTrue,
			HouseTokenMint:                 accounts.HouseTokenMint,
			PoolTokenAccount:               accounts.PoolTokenAccount,
			InsuranceFundTokenAccount:      accounts.InsuranceFundTokenAccount,
			FoundationProceedsTokenAccount: accounts.FoundationProceedsTokenAccount,
			FrozenPool:                     FlagFalse,
			FrozenBetting:                  FlagFalse,
		}, nil
	}
	return nil, errors.Wrapf(ErrUnknownSchemaVersion, "%d", version)
}

func keyOrNil(v Values, name string) ed25519.PublicKey {
	key, _ := v[name].(ed25519.PublicKey)
	return key
}
