package retry

import (
	"context"
	"errors"
	"time"

	"github.com/divvyexchange/bootstrap/pkg/retry/backoff"
)

// Strategy decides whether another attempt follows a failed one. Strategies
// may block, but must return false once ctx is done.
type Strategy func(ctx context.Context, attempts uint, err error) bool

// Limit caps the total number of attempts, including the first.
func Limit(maxAttempts uint) Strategy {
	return func(_ context.Context, attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of retriableErrors.
func RetriableErrors(retriableErrors ...error) Strategy {
	return func(_ context.Context, _ uint, err error) bool {
		for _, e := range retriableErrors {
			if errors.Is(err, e) {
				return true
			}
		}

		return false
	}
}

// Backoff waits out the delay strategy gives for the failed attempt. It
// declines another attempt if ctx is done first.
func Backoff(strategy backoff.Strategy) Strategy {
	return func(ctx context.Context, attempts uint, _ error) bool {
		return wait(ctx, strategy(attempts))
	}
}

var wait = func(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
