package calculator

import (
	"github.com/markcheno/go-talib"
)

// SMA computes the trailing simple moving average of values over window.
// The first window-1 entries (counted from the first non-null input) are null.
func SMA(values []float64, window int) []float64 {
	if window <= 0 {
		return nullSeries(len(values))
	}
	return onValidSuffix(values, func(s []float64) []float64 {
		if window == 1 {
			out := make([]float64, len(s))
			copy(out, s)
			return out
		}
		if len(s) < window {
			return nullSeries(len(s))
		}
		return maskLeading(talib.Sma(s, window), window-1)
	})
}

// EMA computes the exponential moving average with alpha = 2/(span+1), seeded by
// the first value and without bias adjustment. The first span-1 entries are null.
func EMA(values []float64, span int) []float64 {
	if span <= 0 {
		return nullSeries(len(values))
	}
	return onValidSuffix(values, func(s []float64) []float64 {
		return maskLeading(emaRaw(s, span), span-1)
	})
}

// emaRaw is the recursive EMA over every element, warm-up included.
func emaRaw(s []float64, span int) []float64 {
	out := make([]float64, len(s))
	if len(s) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = s[0]
	for i := 1; i < len(s); i++ {
		out[i] = alpha*s[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RollingMax returns the trailing maximum of values over window.
func RollingMax(values []float64, window int) []float64 {
	return rollingExtreme(values, window, talib.Max)
}

// RollingMin returns the trailing minimum of values over window.
func RollingMin(values []float64, window int) []float64 {
	return rollingExtreme(values, window, talib.Min)
}

func rollingExtreme(values []float64, window int, fn func([]float64, int) []float64) []float64 {
	if window <= 0 {
		return nullSeries(len(values))
	}
	return onValidSuffix(values, func(s []float64) []float64 {
		if window == 1 {
			out := make([]float64, len(s))
			copy(out, s)
			return out
		}
		if len(s) < window {
			return nullSeries(len(s))
		}
		return maskLeading(fn(s, window), window-1)
	})
}
