package strategy

import (
	"fmt"
	"math"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// MinBars is the history below which the engine refuses to take a position.
const MinBars = 50

// Rules maps (buyScore, sellScore, overallScore) to a recommendation; first match wins.
var Rules = []struct {
	Match          func(buy, sell, overall int) bool
	Recommendation model.Recommendation
}{
	{
		func(buy, sell, overall int) bool { return buy-sell >= 5 || (buy >= 4 && overall >= 65) },
		model.Recommendation{Label: model.RecStrongBuy, Tier: model.TierPositive,
			Description: "Signals and indicators agree on a strong buy. Good entry opportunity."},
	},
	{
		func(buy, _, _ int) bool { return buy >= 4 },
		model.Recommendation{Label: model.RecBuy, Tier: model.TierPositive,
			Description: "Conditions favour buying. Most indicators are positive."},
	},
	{
		func(buy, sell, overall int) bool { return buy-sell <= -5 || (sell >= 4 && overall <= 35) },
		model.Recommendation{Label: model.RecStrongSell, Tier: model.TierNegative,
			Description: "Signals and indicators agree on a strong sell. Consider cutting loss or taking profit."},
	},
	{
		func(_, sell, _ int) bool { return sell >= 4 },
		model.Recommendation{Label: model.RecSell, Tier: model.TierNegative,
			Description: "Better to sell or wait. Many negative signals."},
	},
	{
		func(buy, sell, _ int) bool { return buy > sell },
		model.Recommendation{Label: model.RecConsiderBuy, Tier: model.TierNeutral,
			Description: "Some positive signals, but not strong yet. Do more research first."},
	},
}

// DefaultRecommendation applies when no rule matches.
var DefaultRecommendation = model.Recommendation{
	Label: model.RecHold, Tier: model.TierNeutral,
	Description: "No clear signal yet. Better to wait for stronger momentum.",
}

// NormalConditionNote is the rationale used when no rule fired.
const NormalConditionNote = "Normal market condition, no special signal."

// MapRecommendation picks the recommendation for the accumulated scores.
func MapRecommendation(buy, sell, overall int) model.Recommendation {
	for _, r := range Rules {
		if r.Match(buy, sell, overall) {
			return r.Recommendation
		}
	}
	return DefaultRecommendation
}

// Inputs are the scorer outputs the recommendation is built from.
type Inputs struct {
	Price      float64
	PrevClose  float64
	RSI        float64
	Signals    model.SignalBundle
	Prediction model.Prediction
	Position   model.PricePosition
	PriceTrend model.TrendVerdict
}

// Recommend accumulates buy and sell points in a fixed order and maps them to a label.
func Recommend(in Inputs) model.Recommendation {
	buy, sell := 0, 0
	var reasons []string

	switch overall := in.Signals.OverallScore; {
	case overall >= 70:
		buy += 3
		reasons = append(reasons, fmt.Sprintf("Signal score %d/100: strong buy signal", overall))
	case overall <= 30:
		sell += 3
		reasons = append(reasons, fmt.Sprintf("Signal score %d/100: strong sell signal", overall))
	}

	switch p := in.Prediction; {
	case p.Direction == model.DirectionUp && p.Confidence > 70:
		buy += 2
		reasons = append(reasons, fmt.Sprintf("Predicted move UP (confidence %d%%)", p.Confidence))
	case p.Direction == model.DirectionDown && p.Confidence > 70:
		sell += 2
		reasons = append(reasons, fmt.Sprintf("Predicted move DOWN (confidence %d%%)", p.Confidence))
	}

	switch {
	case in.Position.Percent < 30:
		buy += 2
		reasons = append(reasons, "Price is cheap, near its 30-day low")
	case in.Position.Percent > 70:
		sell += 2
		reasons = append(reasons, "Price is expensive, near its 30-day high")
	}

	switch in.PriceTrend.Label {
	case model.TrendBullishStrong:
		buy += 2
		reasons = append(reasons, "Strong uptrend: price above MA7 above MA30")
	case model.TrendBearishStrong:
		sell += 2
		reasons = append(reasons, "Strong downtrend: price below MA7 below MA30")
	}

	switch {
	case math.IsNaN(in.RSI):
	case in.RSI < 30:
		buy += 3
		reasons = append(reasons, fmt.Sprintf("RSI oversold at %.1f, rebound likely", in.RSI))
	case in.RSI > 70:
		sell += 3
		reasons = append(reasons, fmt.Sprintf("RSI overbought at %.1f, correction risk", in.RSI))
	}

	switch change := changePercent(in.Price, in.PrevClose); {
	case change > 2:
		reasons = append(reasons, fmt.Sprintf("Up %.2f%% today", change))
	case change < -2:
		reasons = append(reasons, fmt.Sprintf("Down %.2f%% today", -change))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, NormalConditionNote)
	}

	rec := MapRecommendation(buy, sell, in.Signals.OverallScore)
	rec.BuyScore = buy
	rec.SellScore = sell
	rec.Rationale = reasons
	return rec
}

// InsufficientHistory is the HOLD verdict for series shorter than minBars.
func InsufficientHistory(bars, minBars int) model.Recommendation {
	rec := DefaultRecommendation
	rec.Rationale = []string{fmt.Sprintf("Insufficient price history: %d bars, need %d", bars, minBars)}
	return rec
}

// PositionInRange locates price inside the 30-day high/low of bars.
func PositionInRange(bars []model.OHLCV, price float64) model.PricePosition {
	high, low, err := calculator.CalculateRange(bars, calculator.PositionWindow)
	if err != nil {
		return model.PricePosition{Percent: 50, Label: model.PositionFair}
	}
	pct := 50.0
	if rng := high - low; rng > 0 {
		pct = (price - low) / rng * 100
	}
	pos := model.PricePosition{Percent: pct, High30d: high, Low30d: low, Label: model.PositionFair}
	switch {
	case pct < 30:
		pos.Label = model.PositionCheap
	case pct > 70:
		pos.Label = model.PositionExpensive
	}
	return pos
}

func changePercent(price, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (price - prev) / prev * 100
}

// Evaluation gathers every scorer output for the latest bar of a frame.
type Evaluation struct {
	Trend          model.TrendVerdict
	PriceTrend     model.TrendVerdict
	AboveEMA200    *bool
	Position       model.PricePosition
	Momentum       model.MomentumScore
	Signals        model.SignalBundle
	Prediction     model.Prediction
	Recommendation model.Recommendation
	Insights       []string
	VolumeRatio    float64
	Support        float64
	Resistance     float64
	Sufficient     bool
}

// Evaluate runs the scorers and the recommendation over the latest bar of f.
// Frames shorter than minBars still get every score but the verdict is HOLD.
func Evaluate(f *model.IndicatorFrame, minBars int) *Evaluation {
	last := f.LastIndex()
	if last < 0 {
		return nil
	}
	bars := f.Bars
	price := bars[last].Close
	prev := price
	if last > 0 {
		prev = bars[last-1].Close
	}
	at := func(s []float64) float64 { return s[last] }

	ev := &Evaluation{
		Trend:       ClassifyTrend(price, at(f.EMA9), at(f.EMA21), at(f.EMA50)),
		PriceTrend:  ClassifyPriceTrend(price, at(f.SMA7), at(f.SMA30)),
		Position:    PositionInRange(bars, price),
		VolumeRatio: calculator.VolumeRatio(bars, calculator.VolumeWindow),
		Prediction:  Predict(bars),
		Sufficient:  len(bars) >= minBars,
	}
	if ema200 := at(f.EMA200); !math.IsNaN(ema200) {
		above := price > ema200
		ev.AboveEMA200 = &above
	}
	ev.Support, ev.Resistance, _ = calculator.SupportResistance(bars, calculator.SupportWindow)

	ev.Momentum = ScoreMomentum(at(f.RSI), at(f.MACDHist), at(f.StochK), ev.VolumeRatio)
	ev.Signals = ScoreSignals(at(f.EMA9), at(f.EMA21), at(f.EMA50), at(f.RSI), ev.VolumeRatio, at(f.ATR), price)

	if ev.Sufficient {
		ev.Recommendation = Recommend(Inputs{
			Price:      price,
			PrevClose:  prev,
			RSI:        at(f.RSI),
			Signals:    ev.Signals,
			Prediction: ev.Prediction,
			Position:   ev.Position,
			PriceTrend: ev.PriceTrend,
		})
	} else {
		ev.Recommendation = InsufficientHistory(len(bars), minBars)
	}

	ev.Insights = Insights(InsightInputs{
		Price:       price,
		RSI:         at(f.RSI),
		MACDHist:    at(f.MACDHist),
		BBLower:     at(f.BBLower),
		StochK:      at(f.StochK),
		VolumeRatio: ev.VolumeRatio,
		Support:     ev.Support,
		Resistance:  ev.Resistance,
	})
	return ev
}
