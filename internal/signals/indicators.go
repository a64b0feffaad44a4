// Package signals provides technical indicator calculations over closing prices.
// Series are ordered oldest first.
package signals

import (
	"errors"
	"fmt"
)

// DefaultRSIPeriod is the conventional RSI lookback
const DefaultRSIPeriod = 14

// ErrInsufficientData is returned when a series is too short for the requested period
var ErrInsufficientData = errors.New("insufficient data")

// SMASeries returns the rolling SMA for each point. The first period-1 entries are zero.
func SMASeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}

	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RSI calculates the Relative Strength Index with Wilder smoothing.
// At least period+1 closes are required.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("invalid RSI period %d", period)
	}
	if len(closes) < period+1 {
		return 0, fmt.Errorf("RSI(%d) needs %d closes, have %d: %w", period, period+1, len(closes), ErrInsufficientData)
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, nil
		}
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}

// ClassifyRSI classifies RSI value
func ClassifyRSI(rsi float64) string {
	if rsi >= 70 {
		return "overbought"
	}
	if rsi <= 30 {
		return "oversold"
	}
	return "neutral"
}
