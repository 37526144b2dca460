package calculator

import (
	"math"

	"StockSentinel/internal/model"
)

// IsNull reports whether v marks a missing indicator value.
func IsNull(v float64) bool { return math.IsNaN(v) }

// Last returns the final element of s, or NaN when s is empty.
func Last(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

// Tail returns the last n elements of s (all of s when shorter).
func Tail(s []float64, n int) []float64 {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

func nullSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// maskLeading nulls the first n entries of s in place.
func maskLeading(s []float64, n int) []float64 {
	for i := 0; i < n && i < len(s); i++ {
		s[i] = math.NaN()
	}
	return s
}

// firstValid returns the index of the first non-null value, or len(s).
func firstValid(s []float64) int {
	for i, v := range s {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(s)
}

// onValidSuffix applies fn to the part of s after its leading nulls and re-aligns
// the result to the full length. fn must return a slice as long as its input.
func onValidSuffix(s []float64, fn func([]float64) []float64) []float64 {
	start := firstValid(s)
	out := nullSeries(len(s))
	if start == len(s) {
		return out
	}
	copy(out[start:], fn(s[start:]))
	return out
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func extractHighs(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

func extractLows(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

func mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

// SampleStdDev returns the n-1 standard deviation of s, 0 for fewer than two values.
func SampleStdDev(s []float64) float64 {
	if len(s) < 2 {
		return 0
	}
	m := mean(s)
	ss := 0.0
	for _, v := range s {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(s)-1))
}

// Mean is the arithmetic mean of s, 0 for an empty slice.
func Mean(s []float64) float64 { return mean(s) }
