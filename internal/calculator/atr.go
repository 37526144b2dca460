package calculator

import "math"

// TrueRange returns max(h-l, |h-prevClose|, |l-prevClose|) per bar. The first bar
// has no previous close and uses h-l.
func TrueRange(high, low, close []float64) []float64 {
	tr := make([]float64, len(close))
	for i := range close {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		pc := close[i-1]
		tr[i] = math.Max(hl, math.Max(math.Abs(high[i]-pc), math.Abs(low[i]-pc)))
	}
	return tr
}

// ATR is the window SMA of the true range.
func ATR(high, low, close []float64, window int) []float64 {
	return SMA(TrueRange(high, low, close), window)
}
