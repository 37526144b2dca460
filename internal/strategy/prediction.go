package strategy

import (
	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

const (
	returnLookback     = 10
	directionThreshold = 0.01
	maxConfidence      = 85
	sidewaysConfidence = 60
)

// Predict estimates the next move from the mean of the last ten daily returns and the
// position of the close inside its 30-bar range.
func Predict(bars []model.OHLCV) model.Prediction {
	p := model.Prediction{Direction: model.DirectionSideways, Confidence: sidewaysConfidence}
	if len(bars) == 0 {
		return p
	}

	resistance, support, _ := calculator.CalculateRange(bars, calculator.PredictionWindow)
	current := bars[len(bars)-1].Close
	p.Support = support
	p.Resistance = resistance
	p.TargetUp = resistance * 1.02
	p.TargetDown = support * 0.98
	p.RangePosition = calculator.RangePosition(current, support, resistance)

	returns := dailyReturns(bars, returnLookback)
	if len(returns) == 0 {
		return p
	}
	p.MeanReturn = calculator.Mean(returns)
	p.Volatility = calculator.SampleStdDev(returns)

	switch {
	case p.MeanReturn > directionThreshold && p.RangePosition < 0.4:
		p.Direction = model.DirectionUp
		p.Confidence = min(maxConfidence, int(70+(0.4-p.RangePosition)*100))
	case p.MeanReturn < -directionThreshold && p.RangePosition > 0.6:
		p.Direction = model.DirectionDown
		p.Confidence = min(maxConfidence, int(70+(p.RangePosition-0.6)*100))
	}
	return p
}

// dailyReturns returns up to n most recent close-to-close fractional returns.
func dailyReturns(bars []model.OHLCV, n int) []float64 {
	start := len(bars) - n
	if start < 1 {
		start = 1
	}
	out := make([]float64, 0, n)
	for i := start; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		out = append(out, (bars[i].Close-prev)/prev)
	}
	return out
}
