package calculator

import "math"

// StochasticResult holds %K and %D.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic computes %K = 100*(close-LL)/(HH-LL) over window bars and %D as the
// dWindow SMA of %K. A window with HH == LL reads 50.
func Stochastic(high, low, close []float64, window, dWindow int) StochasticResult {
	n := len(close)
	k := nullSeries(n)
	hh := RollingMax(high, window)
	ll := RollingMin(low, window)
	for i := 0; i < n; i++ {
		if math.IsNaN(hh[i]) || math.IsNaN(ll[i]) {
			continue
		}
		rng := hh[i] - ll[i]
		if rng == 0 {
			k[i] = 50
			continue
		}
		k[i] = 100 * (close[i] - ll[i]) / rng
	}
	return StochasticResult{K: k, D: SMA(k, dWindow)}
}
