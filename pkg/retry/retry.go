// Package retry runs actions until they succeed or a strategy gives up.
package retry

import (
	"context"
)

// Action is attempted once per iteration of Retry.
type Action func(ctx context.Context) error

// Retrier retries actions under a fixed set of strategies.
type Retrier interface {
	Retry(ctx context.Context, action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier bound to strategies. With no strategies an
// action is retried until it succeeds or its context is done.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(ctx context.Context, action Action) (uint, error) {
	return Retry(ctx, action, r.strategies...)
}

// Retry runs action until it succeeds, a strategy declines another attempt,
// or ctx is done. It returns the number of attempts alongside the last error
// from action.
//
// Strategies are evaluated in order, so ones that wait belong last.
func Retry(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	for i := uint(1); ; i++ {
		err := action(ctx)
		if err == nil {
			return i, nil
		}
		if ctx.Err() != nil {
			return i, err
		}

		for _, s := range strategies {
			if !s(ctx, i, err) {
				return i, err
			}
		}
	}
}
