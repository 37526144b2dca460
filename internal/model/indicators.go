package model

// IndicatorFrame holds the bars of a series and every derived indicator column.
// Columns are aligned with Bars by index; NaN marks insufficient history.
type IndicatorFrame struct {
	Bars []OHLCV

	SMA7  []float64
	SMA20 []float64
	SMA30 []float64
	SMA50 []float64

	EMA9   []float64
	EMA21  []float64
	EMA50  []float64
	EMA200 []float64

	RSI []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	BBUpper  []float64
	BBMiddle []float64
	BBLower  []float64

	StochK []float64
	StochD []float64

	ATR []float64
}

// Len returns the number of bars in the frame.
func (f *IndicatorFrame) Len() int { return len(f.Bars) }

// LastIndex returns the index of the latest bar, or -1 for an empty frame.
func (f *IndicatorFrame) LastIndex() int { return len(f.Bars) - 1 }

// Snapshot is the latest-bar view of the frame. A nil field has no value yet
// and marshals as null.
type Snapshot struct {
	RSI        *float64 `json:"rsi"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	MACDHist   *float64 `json:"macd_histogram"`
	BBUpper    *float64 `json:"bb_upper"`
	BBMiddle   *float64 `json:"bb_middle"`
	BBLower    *float64 `json:"bb_lower"`
	StochK     *float64 `json:"stoch_k"`
	StochD     *float64 `json:"stoch_d"`
	ATR        *float64 `json:"atr"`
	SMA7       *float64 `json:"ma7"`
	SMA20      *float64 `json:"ma20"`
	SMA30      *float64 `json:"ma30"`
	SMA50      *float64 `json:"ma50"`
	EMA9       *float64 `json:"ema9"`
	EMA21      *float64 `json:"ema21"`
	EMA50      *float64 `json:"ema50"`
	EMA200     *float64 `json:"ema200"`
}
