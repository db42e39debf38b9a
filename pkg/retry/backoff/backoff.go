// Package backoff provides delay schedules for retry.Backoff.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Strategy maps an attempt number, starting at 1, to the delay before the
// next attempt.
type Strategy func(attempts uint) time.Duration

// Constant always waits interval.
func Constant(interval time.Duration) Strategy {
	return func(uint) time.Duration {
		return interval
	}
}

// Exponential grows the delay by base per attempt.
//
// delay = baseDelay * base^(attempts - 1)
// Ex. Exponential(2*time.Second, 3) = 2s, 6s, 18s, 54s, ...
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		delay := float64(baseDelay) * math.Pow(base, float64(attempts-1))
		if delay >= math.MaxInt64 {
			return math.MaxInt64
		}
		return time.Duration(delay)
	}
}

// BinaryExponential is Exponential with a base of 2.
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}

// Capped never waits longer than maxDelay.
func Capped(s Strategy, maxDelay time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		if delay := s(attempts); delay < maxDelay {
			return delay
		}
		return maxDelay
	}
}

// Jittered spreads each delay of s uniformly over delay +/- fraction*delay.
func Jittered(s Strategy, fraction float64) Strategy {
	return func(attempts uint) time.Duration {
		delay := float64(s(attempts))
		return time.Duration(delay * (1 + fraction*(2*rand.Float64()-1)))
	}
}
