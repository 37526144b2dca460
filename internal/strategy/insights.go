package strategy

import "math"

// InsightInputs are the latest-bar readings the observations look at.
type InsightInputs struct {
	Price       float64
	RSI         float64
	MACDHist    float64
	BBLower     float64
	StochK      float64
	VolumeRatio float64
	Support     float64
	Resistance  float64
}

// proximity is the relative distance under which price counts as near a level.
const proximity = 0.02

// Insights lists independent observations about the latest bar. Null readings
// never produce an observation.
func Insights(in InsightInputs) []string {
	var out []string
	if in.RSI < 30 && in.MACDHist > 0 {
		out = append(out, "RSI oversold with bullish MACD: strong buy setup")
	}
	if in.Price < in.BBLower {
		out = append(out, "Price below the lower Bollinger band: rebound potential")
	}
	if in.VolumeRatio > 1.5 {
		out = append(out, "High volume: watch the price action")
	}
	if in.StochK < 20 {
		out = append(out, "Stochastic oversold: possible entry")
	}
	if in.Price > 0 && !math.IsNaN(in.Resistance) && math.Abs(in.Price-in.Resistance)/in.Price < proximity {
		out = append(out, "Approaching resistance: watch for rejection")
	}
	if in.Price > 0 && !math.IsNaN(in.Support) && math.Abs(in.Price-in.Support)/in.Price < proximity {
		out = append(out, "Approaching support: watch for a breakdown")
	}
	if len(out) == 0 {
		out = append(out, "Normal market condition, wait for a clearer signal.")
	}
	return out
}
