package strategy

import (
	"math"

	"StockSentinel/internal/model"
)

func anyNull(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func verdict(label string) model.TrendVerdict {
	switch label {
	case model.TrendBullishStrong, model.TrendBullish:
		return model.TrendVerdict{Label: label, Tier: model.TierPositive}
	case model.TrendBearishStrong, model.TrendBearish:
		return model.TrendVerdict{Label: label, Tier: model.TierNegative}
	default:
		return model.TrendVerdict{Label: model.TrendSideways, Tier: model.TierNeutral}
	}
}

// ClassifyTrend orders the price against EMA9/21/50 of the latest bar.
// Only strict orderings classify; ties, partial orders and nulls read SIDEWAYS.
func ClassifyTrend(price, ema9, ema21, ema50 float64) model.TrendVerdict {
	if anyNull(price, ema9, ema21, ema50) {
		return verdict(model.TrendSideways)
	}
	switch {
	case price > ema9 && ema9 > ema21 && ema21 > ema50:
		return verdict(model.TrendBullishStrong)
	case price > ema9 && ema9 > ema21:
		return verdict(model.TrendBullish)
	case price < ema9 && ema9 < ema21 && ema21 < ema50:
		return verdict(model.TrendBearishStrong)
	case price < ema9 && ema9 < ema21:
		return verdict(model.TrendBearish)
	default:
		return verdict(model.TrendSideways)
	}
}

// ClassifyPriceTrend orders the price against the 7- and 30-bar simple averages.
func ClassifyPriceTrend(price, ma7, ma30 float64) model.TrendVerdict {
	if anyNull(price, ma7, ma30) {
		return verdict(model.TrendSideways)
	}
	switch {
	case price > ma7 && ma7 > ma30:
		return verdict(model.TrendBullishStrong)
	case price > ma30:
		return verdict(model.TrendBullish)
	case price < ma7 && ma7 < ma30:
		return verdict(model.TrendBearishStrong)
	default:
		return verdict(model.TrendSideways)
	}
}

// MomentumStatus labels a momentum score.
func MomentumStatus(score int) string {
	switch {
	case score >= 70:
		return model.MomentumVeryStrong
	case score >= 50:
		return model.MomentumStrong
	case score >= 30:
		return model.MomentumModerate
	default:
		return model.MomentumWeak
	}
}

// ScoreMomentum blends RSI, MACD histogram, stochastic %K and relative volume into
// an additive 0..100 score. Any null oscillator yields a neutral 50.
func ScoreMomentum(rsi, macdHist, stochK, volumeRatio float64) model.MomentumScore {
	if anyNull(rsi, macdHist, stochK) {
		return model.MomentumScore{Value: 50, Status: MomentumStatus(50), Sufficient: false}
	}

	score := 0
	switch {
	case rsi > 40 && rsi < 60:
		score += 20
	case rsi > 30 && rsi < 70:
		score += 10
	}

	if macdHist > 0 {
		score += 30
	}

	switch {
	case stochK > 20 && stochK < 80:
		score += 20
	case stochK < 20:
		score += 30
	}

	switch {
	case volumeRatio > 1.5:
		score += 20
	case volumeRatio > 1.0:
		score += 10
	}

	score = min(score, 100)
	return model.MomentumScore{Value: score, Status: MomentumStatus(score), Sufficient: true}
}

// Signal weights, in percent.
const (
	weightTrend      = 35
	weightMomentum   = 30
	weightVolume     = 20
	weightVolatility = 15
)

// ScoreSignals computes the four-axis signal bundle of the latest bar.
func ScoreSignals(ema9, ema21, ema50, rsi, volumeRatio, atr, price float64) model.SignalBundle {
	var s model.SignalBundle

	switch {
	case anyNull(ema9, ema21, ema50):
		s.TrendStrength = 50
	case ema9 > ema21 && ema21 > ema50:
		s.TrendStrength = 100
	case ema9 < ema21 && ema21 < ema50:
		s.TrendStrength = 0
	default:
		s.TrendStrength = 50
	}

	switch {
	case math.IsNaN(rsi):
		s.MomentumScore = 50
	case rsi < 30:
		s.MomentumScore = 90
	case rsi > 70:
		s.MomentumScore = 10
	default:
		s.MomentumScore = 50
	}

	switch {
	case volumeRatio > 1.5:
		s.VolumeScore = 80
	case volumeRatio > 1.0:
		s.VolumeScore = 60
	default:
		s.VolumeScore = 30
	}

	s.VolatilityScore = 50
	if !math.IsNaN(atr) && price > 0 {
		atrPct := atr / price * 100
		switch {
		case atrPct < 2:
			s.VolatilityScore = 70
		case atrPct > 5:
			s.VolatilityScore = 30
		}
	}

	// Integer percent weights keep the sum exact; halves round to even.
	weighted := s.TrendStrength*weightTrend + s.MomentumScore*weightMomentum +
		s.VolumeScore*weightVolume + s.VolatilityScore*weightVolatility
	s.OverallScore = int(math.RoundToEven(float64(weighted) / 100))
	return s
}
