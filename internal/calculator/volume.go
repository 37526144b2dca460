package calculator

import "StockSentinel/internal/model"

// VolumeWindow is the default averaging window for volume comparisons.
const VolumeWindow = 20

// AverageVolume is the mean volume of the window bars preceding the latest one.
func AverageVolume(dailyBars []model.OHLCV, window int) float64 {
	n := len(dailyBars)
	if n < 2 || window <= 0 {
		return 0
	}
	start := n - 1 - window
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for _, b := range dailyBars[start : n-1] {
		sum += b.Volume
	}
	return sum / float64(n-1-start)
}

// VolumeRatio compares the latest volume with AverageVolume. It is 0 when there is
// no earlier bar or the average is 0.
func VolumeRatio(dailyBars []model.OHLCV, window int) float64 {
	avg := AverageVolume(dailyBars, window)
	if avg == 0 {
		return 0
	}
	return dailyBars[len(dailyBars)-1].Volume / avg
}
