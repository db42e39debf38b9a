package divvy

import (
	"github.com/pkg/errors"

	"github.com/divvyexchange/bootstrap/pkg/solana"
)

// ProgramError is a custom error code returned by the divvy program.
type ProgramError uint32

const (
	ErrInvalidInstruction ProgramError = iota
	ErrNotValidAuthority
	ErrExpectedAmountMismatch
	ErrExpectedDataMismatch
	ErrAmountOverflow
	ErrMarketAlreadySettled
	ErrMarketNotSettled
	ErrBetAlreadySettled
	ErrNotValidResult
	ErrInvalidFeedAccount
	ErrNotEnoughLiquidity
	ErrBetRiskZero

	ErrHpLiquidityAlreadyInitialized
	ErrMarketNotInitialized
	ErrBetAlreadyInitialized
	ErrFeedNotInitialized

	ErrMarketSideRiskUnderflow
	ErrMarketSidePayoutUnderflow
	ErrMarketSideRiskRemaining
	ErrMarketSidePayoutRemaining
	ErrMarketBettorBalanceRemaining
	ErrHousePoolBettorBalanceRemaining
	ErrUnexpectedAvailableLiquidity
)

var programErrorMessages = map[ProgramError]string{
	ErrInvalidInstruction:     "invalid instruction",
	ErrNotValidAuthority:      "not valid authority",
	ErrExpectedAmountMismatch: "expected amount mismatch",
	ErrExpectedDataMismatch:   "expected data mismatch",
	ErrAmountOverflow:         "amount overflow",
	ErrMarketAlreadySettled:   "market already settled",
	ErrMarketNotSettled:       "market not settled",
	ErrBetAlreadySettled:      "bet already settled",
	ErrNotValidResult:         "not valid result",
	ErrInvalidFeedAccount:     "invalid feed account",
	ErrNotEnoughLiquidity:     "not enough liquidity",
	ErrBetRiskZero:            "bet risk is zero",

	ErrHpLiquidityAlreadyInitialized: "house pool liquidity already initialized",
	ErrMarketNotInitialized:          "market not initialized",
	ErrBetAlreadyInitialized:         "bet already initialized",
	ErrFeedNotInitialized:            "feed not initialized",

	ErrMarketSideRiskUnderflow:         "market side risk underflow",
	ErrMarketSidePayoutUnderflow:       "market side payout underflow",
	ErrMarketSideRiskRemaining:         "all bets in market settled and market side risk is positive",
	ErrMarketSidePayoutRemaining:       "all bets in market settled and market side payout is positive",
	ErrMarketBettorBalanceRemaining:    "all bets in market settled and market bettor balance is positive",
	ErrHousePoolBettorBalanceRemaining: "all bets settled and house pool bettor balance is positive",
	ErrUnexpectedAvailableLiquidity:    "house pool balance does not equal available liquidity",
}

func (e ProgramError) Error() string {
	if msg, ok := programErrorMessages[e]; ok {
		return "divvy: " + msg
	}
	return solana.CustomError(e).Error()
}

// GetProgramError extracts the program error raised by the instruction at
// index of a failed transaction. Custom errors raised by any other
// instruction belong to other programs and are not matched.
func GetProgramError(err error, index int) (ProgramError, bool) {
	var instructionErr solana.InstructionError
	if !errors.As(err, &instructionErr) || instructionErr.Index != index {
		return 0, false
	}

	custom := instructionErr.CustomError()
	if custom == nil {
		return 0, false
	}
	if _, ok := programErrorMessages[ProgramError(*custom)]; !ok {
		return 0, false
	}
	return ProgramError(*custom), true
}
