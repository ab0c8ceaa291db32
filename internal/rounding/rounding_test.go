package rounding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "already rounded", in: 710.0, want: 710.0},
		{name: "half rounds up", in: 2.125, want: 2.13},
		{name: "below half rounds down", in: 116.3248, want: 116.32},
		{name: "negative half rounds toward positive", in: -1.125, want: -1.12},
		{name: "zero", in: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round2(tt.in), 1e-9)
		})
	}
}

func TestRound2Idempotent(t *testing.T) {
	values := []float64{0.01, 1.1, 710.0, 268.0, 1012.5, 5720.0, 93.37, 12345.67, -42.42}
	for _, v := range values {
		once := Round2(v)
		assert.Equal(t, once, Round2(once), "re-rounding %v must be a no-op", v)
	}
}

func TestInt(t *testing.T) {
	assert.InDelta(t, 93.0, Int(92.5), 0)
	assert.InDelta(t, 92.0, Int(92.49), 0)
	assert.InDelta(t, 0.0, Int(0.2), 0)
}

func TestFloorZeroAndClamp(t *testing.T) {
	assert.InDelta(t, 0.0, FloorZero(-3), 0)
	assert.InDelta(t, 3.0, FloorZero(3), 0)
	assert.InDelta(t, 100.0, Clamp(140, 0, 100), 0)
	assert.InDelta(t, 0.0, Clamp(-1, 0, 100), 0)
	assert.InDelta(t, 55.0, Clamp(55, 0, 100), 0)
}
