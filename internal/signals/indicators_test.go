package signals

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMASeries(t *testing.T) {
	out := SMASeries([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, []float64{0, 0, 2, 3, 4}, out)
}

func TestRSI(t *testing.T) {
	trend := func(n int, start, step float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = start + float64(i)*step
		}
		return out
	}

	tests := []struct {
		name   string
		closes []float64
		minRSI float64
		maxRSI float64
	}{
		{name: "pure uptrend", closes: trend(30, 100, 1), minRSI: 100, maxRSI: 100},
		{name: "pure downtrend", closes: trend(30, 100, -1), minRSI: 0, maxRSI: 0},
		{name: "flat series", closes: trend(30, 100, 0), minRSI: 50, maxRSI: 50},
		{name: "alternating", closes: []float64{100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100, 101}, minRSI: 40, maxRSI: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi, err := RSI(tt.closes, DefaultRSIPeriod)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, rsi, tt.minRSI)
			assert.LessOrEqual(t, rsi, tt.maxRSI)
		})
	}
}

func TestRSI_KnownValue(t *testing.T) {
	// Classic Wilder worked example, first RSI value is about 70.53
	closes := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28,
	}
	rsi, err := RSI(closes, 14)
	require.NoError(t, err)
	assert.InDelta(t, 70.53, rsi, 0.1)
}

func TestRSI_InsufficientData(t *testing.T) {
	_, err := RSI([]float64{1, 2, 3}, 14)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = RSI([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestClassifyRSI(t *testing.T) {
	assert.Equal(t, "overbought", ClassifyRSI(75))
	assert.Equal(t, "oversold", ClassifyRSI(25))
	assert.Equal(t, "neutral", ClassifyRSI(50))
}
