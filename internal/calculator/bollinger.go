package calculator

import "math"

// BollingerResult holds the aligned band columns.
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes SMA(window) ± k sample standard deviations of the same window.
// A flat window has zero deviation and the three bands coincide.
func Bollinger(closes []float64, window int, k float64) BollingerResult {
	n := len(closes)
	res := BollingerResult{
		Upper:  nullSeries(n),
		Middle: SMA(closes, window),
		Lower:  nullSeries(n),
	}
	for i := 0; i < n; i++ {
		mid := res.Middle[i]
		if math.IsNaN(mid) {
			continue
		}
		sd := SampleStdDev(closes[i-window+1 : i+1])
		res.Upper[i] = mid + k*sd
		res.Lower[i] = mid - k*sd
	}
	return res
}
