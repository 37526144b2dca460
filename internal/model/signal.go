package model

// Trend labels shared by the EMA and moving-average classifiers.
const (
	TrendBullishStrong = "BULLISH STRONG"
	TrendBullish       = "BULLISH"
	TrendBearishStrong = "BEARISH STRONG"
	TrendBearish       = "BEARISH"
	TrendSideways      = "SIDEWAYS"
)

// Tier is the display colour class attached to a verdict.
type Tier string

const (
	TierPositive Tier = "positive"
	TierNegative Tier = "negative"
	TierNeutral  Tier = "neutral"
)

// TrendVerdict is the output of a trend classifier.
type TrendVerdict struct {
	Label string `json:"label"`
	Tier  Tier   `json:"tier"`
}

// Bullish reports whether the label is one of the two bullish classes.
func (v TrendVerdict) Bullish() bool {
	return v.Label == TrendBullish || v.Label == TrendBullishStrong
}

// Bearish reports whether the label is one of the two bearish classes.
func (v TrendVerdict) Bearish() bool {
	return v.Label == TrendBearish || v.Label == TrendBearishStrong
}

// Momentum status labels.
const (
	MomentumVeryStrong = "VERY STRONG"
	MomentumStrong     = "STRONG"
	MomentumModerate   = "MODERATE"
	MomentumWeak       = "WEAK"
)

// MomentumScore is the additive 0..100 momentum reading.
type MomentumScore struct {
	Value      int    `json:"score"`
	Status     string `json:"status"`
	Sufficient bool   `json:"sufficient"`
}

// SignalBundle carries the four component scores and their weighted blend, all 0..100.
type SignalBundle struct {
	TrendStrength   int `json:"trend_strength"`
	MomentumScore   int `json:"momentum_score"`
	VolumeScore     int `json:"volume_score"`
	VolatilityScore int `json:"volatility_score"`
	OverallScore    int `json:"overall_score"`
}

// Direction of the next expected move.
type Direction string

const (
	DirectionUp       Direction = "UP"
	DirectionDown     Direction = "DOWN"
	DirectionSideways Direction = "SIDEWAYS"
)

// Prediction is the heuristic next-move estimate.
type Prediction struct {
	Direction     Direction `json:"direction"`
	Confidence    int       `json:"confidence"`
	Support       float64   `json:"support"`
	Resistance    float64   `json:"resistance"`
	TargetUp      float64   `json:"target_up"`
	TargetDown    float64   `json:"target_down"`
	MeanReturn    float64   `json:"mean_return"`
	Volatility    float64   `json:"volatility"`
	RangePosition float64   `json:"range_position"`
}

// Recommendation labels, strongest buy first.
const (
	RecStrongBuy   = "STRONG_BUY"
	RecBuy         = "BUY"
	RecConsiderBuy = "CONSIDER_BUY"
	RecHold        = "HOLD"
	RecSell        = "SELL"
	RecStrongSell  = "STRONG_SELL"
)

// Recommendation is the final verdict with the reasons that produced it.
type Recommendation struct {
	Label       string   `json:"recommendation"`
	Description string   `json:"description"`
	Tier        Tier     `json:"tier"`
	BuyScore    int      `json:"buy_score"`
	SellScore   int      `json:"sell_score"`
	Rationale   []string `json:"reasons"`
}

// PricePosition locates the close inside the 30-day range.
type PricePosition struct {
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
	High30d float64 `json:"high_30d"`
	Low30d  float64 `json:"low_30d"`
}

// Price position labels.
const (
	PositionCheap     = "CHEAP"
	PositionFair      = "FAIR"
	PositionExpensive = "EXPENSIVE"
)
