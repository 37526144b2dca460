package calculator

// MACDResult holds the three aligned MACD columns.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes EMA(fast) - EMA(slow), its signal EMA and the histogram.
// The line is null for the first slow-1 bars, signal and histogram for the first
// slow+signal-2 bars. Values are taken from the unmasked recursions so they match
// an EMA run over the whole history.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	n := len(closes)
	res := MACDResult{
		Line:      nullSeries(n),
		Signal:    nullSeries(n),
		Histogram: nullSeries(n),
	}
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return res
	}
	start := firstValid(closes)
	if start == n {
		return res
	}
	s := closes[start:]
	fastEMA := emaRaw(s, fast)
	slowEMA := emaRaw(s, slow)
	line := make([]float64, len(s))
	for i := range s {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig := emaRaw(line, signal)

	lineWarmup := max(fast, slow) - 1
	sigWarmup := lineWarmup + signal - 1
	for i := range s {
		if i >= lineWarmup {
			res.Line[start+i] = line[i]
		}
		if i >= sigWarmup {
			res.Signal[start+i] = sig[i]
			res.Histogram[start+i] = line[i] - sig[i]
		}
	}
	return res
}
