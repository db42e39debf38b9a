package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstant(t *testing.T) {
	s := Constant(100 * time.Millisecond)

	for i := uint(1); i < 10; i++ {
		assert.Equal(t, 100*time.Millisecond, s(i))
	}
}

func TestExponential(t *testing.T) {
	s := Exponential(2*time.Second, 3.0)

	assert.Equal(t, 2*time.Second, s(1))
	assert.Equal(t, 6*time.Second, s(2))
	assert.Equal(t, 18*time.Second, s(3))
	assert.Equal(t, 54*time.Second, s(4))

	// Saturates instead of overflowing.
	assert.Equal(t, time.Duration(1<<63-1), s(100))

	bin := BinaryExponential(time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, []time.Duration{bin(1), bin(2), bin(3)})
}

func TestCapped(t *testing.T) {
	s := Capped(BinaryExponential(time.Second), 5*time.Second)

	assert.Equal(t, time.Second, s(1))
	assert.Equal(t, 4*time.Second, s(3))
	assert.Equal(t, 5*time.Second, s(4))
	assert.Equal(t, 5*time.Second, s(60))
}

func TestJittered(t *testing.T) {
	delay := time.Millisecond
	s := Jittered(Constant(delay), 0.1)

	var total time.Duration
	for i := 0; i < 10000; i++ {
		d := s(1)
		assert.GreaterOrEqual(t, d, 899*time.Microsecond)
		assert.LessOrEqual(t, d, 1101*time.Microsecond)
		total += d
	}

	assert.InDelta(t, float64(delay), float64(total/10000), 0.01*float64(delay))

	assert.Equal(t, delay, Jittered(Constant(delay), 0)(1))
}
