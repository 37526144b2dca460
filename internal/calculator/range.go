package calculator

import (
	"errors"
	"math"

	"StockSentinel/internal/model"
)

// Default lookbacks for the range helpers.
const (
	SupportWindow    = 20
	PositionWindow   = 30
	PredictionWindow = 30
)

var errNoBars = errors.New("no daily bars provided")

// CalculateRange scans the most recent window bars (fewer when the series is shorter)
// and returns the highest high and the lowest low.
func CalculateRange(dailyBars []model.OHLCV, window int) (high, low float64, err error) {
	if len(dailyBars) == 0 {
		return 0, 0, errNoBars
	}
	n := len(dailyBars)
	start := n - window
	if start < 0 || window <= 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if dailyBars[i].High > high {
			high = dailyBars[i].High
		}
		if dailyBars[i].Low < low {
			low = dailyBars[i].Low
		}
	}
	return high, low, nil
}

// SupportResistance returns the trailing window low (support) and high (resistance).
func SupportResistance(dailyBars []model.OHLCV, window int) (support, resistance float64, err error) {
	high, low, err := CalculateRange(dailyBars, window)
	if err != nil {
		return 0, 0, err
	}
	return low, high, nil
}

// RangePosition returns where current sits within [low, high], clamped to 0..1.
// A zero-width range reads 0.5.
func RangePosition(current, low, high float64) float64 {
	if high <= low {
		return 0.5
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}
