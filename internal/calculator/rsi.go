package calculator

import "math"

// rsiResidue is the largest average treated as exactly zero. Rolling sums leave
// rounding residue once a move drops out of the window.
const rsiResidue = 1e-10

// RSI computes the relative strength index using the simple trailing mean of gains
// and losses over window price changes. The first window entries are null.
//
// A window with no losses reads 100 when it has gains and a neutral 50 when the
// price did not move at all.
func RSI(closes []float64, window int) []float64 {
	out := nullSeries(len(closes))
	if window <= 0 || len(closes) == 0 {
		return out
	}
	gains := nullSeries(len(closes))
	losses := nullSeries(len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gains[i] = math.Max(change, 0)
		losses[i] = math.Max(-change, 0)
	}
	avgGain := SMA(gains, window)
	avgLoss := SMA(losses, window)
	for i := range out {
		if IsNull(avgGain[i]) || IsNull(avgLoss[i]) {
			continue
		}
		out[i] = rsiValue(snapResidue(avgGain[i]), snapResidue(avgLoss[i]))
	}
	return out
}

func snapResidue(v float64) float64 {
	if math.Abs(v) < rsiResidue {
		return 0
	}
	return v
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
