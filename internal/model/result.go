package model

// PriceStats summarises the latest bar against the previous one.
type PriceStats struct {
	Current       float64 `json:"current"`
	PrevClose     float64 `json:"prev_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	AvgVolume20   float64 `json:"avg_volume_20"`
	VolumeRatio   float64 `json:"volume_ratio"`
}

// ChartSeries is the trailing window of the frame prepared for plotting.
// Indicator columns hold nil where the indicator has no value.
type ChartSeries struct {
	Dates      []string   `json:"dates"`
	Close      []float64  `json:"prices"`
	Volume     []int64    `json:"volumes"`
	MA7        []*float64 `json:"ma7"`
	MA30       []*float64 `json:"ma30"`
	RSI        []*float64 `json:"rsi"`
	MACD       []*float64 `json:"macd"`
	MACDSignal []*float64 `json:"macd_signal"`
}

// ResultBundle is the complete analysis of one series.
type ResultBundle struct {
	Symbol     string `json:"ticker"`
	Name       string `json:"name,omitempty"`
	AsOf       string `json:"as_of"`
	Bars       int    `json:"bars"`
	Sufficient bool   `json:"sufficient"`

	Price      PriceStats `json:"price"`
	Support    float64    `json:"support"`
	Resistance float64    `json:"resistance"`

	Indicators  Snapshot      `json:"indicators"`
	Trend       TrendVerdict  `json:"trend"`
	PriceTrend  TrendVerdict  `json:"price_trend"`
	AboveEMA200 *bool         `json:"above_ema200"`
	Position    PricePosition `json:"price_position"`

	Momentum       MomentumScore  `json:"momentum"`
	Signals        SignalBundle   `json:"signals"`
	Prediction     Prediction     `json:"prediction"`
	Recommendation Recommendation `json:"recommendation"`
	Insights       []string       `json:"insights"`

	Chart ChartSeries `json:"chart_data"`
}
