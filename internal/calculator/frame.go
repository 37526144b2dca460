package calculator

import "StockSentinel/internal/model"

// Params holds the window lengths used by ComputeFrame.
type Params struct {
	SMAWindows [4]int // 7, 20, 30, 50
	EMASpans   [4]int // 9, 21, 50, 200

	RSIWindow int

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	BBWindow int
	BBK      float64

	StochWindow  int
	StochDWindow int

	ATRWindow int
}

// DefaultParams returns the conventional daily-chart settings.
func DefaultParams() Params {
	return Params{
		SMAWindows:   [4]int{7, 20, 30, 50},
		EMASpans:     [4]int{9, 21, 50, 200},
		RSIWindow:    14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		BBWindow:     20,
		BBK:          2,
		StochWindow:  14,
		StochDWindow: 3,
		ATRWindow:    14,
	}
}

// ComputeFrame derives every indicator column for bars with the default parameters.
func ComputeFrame(bars []model.OHLCV) *model.IndicatorFrame {
	return ComputeFrameWith(bars, DefaultParams())
}

// ComputeFrameWith derives every indicator column for bars.
func ComputeFrameWith(bars []model.OHLCV, p Params) *model.IndicatorFrame {
	closes := extractCloses(bars)
	highs := extractHighs(bars)
	lows := extractLows(bars)

	f := &model.IndicatorFrame{
		Bars:   bars,
		SMA7:   SMA(closes, p.SMAWindows[0]),
		SMA20:  SMA(closes, p.SMAWindows[1]),
		SMA30:  SMA(closes, p.SMAWindows[2]),
		SMA50:  SMA(closes, p.SMAWindows[3]),
		EMA9:   EMA(closes, p.EMASpans[0]),
		EMA21:  EMA(closes, p.EMASpans[1]),
		EMA50:  EMA(closes, p.EMASpans[2]),
		EMA200: EMA(closes, p.EMASpans[3]),
		RSI:    RSI(closes, p.RSIWindow),
		ATR:    ATR(highs, lows, closes, p.ATRWindow),
	}

	macd := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	f.MACD, f.MACDSignal, f.MACDHist = macd.Line, macd.Signal, macd.Histogram

	bb := Bollinger(closes, p.BBWindow, p.BBK)
	f.BBUpper, f.BBMiddle, f.BBLower = bb.Upper, bb.Middle, bb.Lower

	st := Stochastic(highs, lows, closes, p.StochWindow, p.StochDWindow)
	f.StochK, f.StochD = st.K, st.D

	return f
}

// Snapshot reads the latest value of every column. Null values stay nil.
func Snapshot(f *model.IndicatorFrame) model.Snapshot {
	at := func(s []float64) *float64 { return Nullable(Last(s)) }
	return model.Snapshot{
		RSI:        at(f.RSI),
		MACD:       at(f.MACD),
		MACDSignal: at(f.MACDSignal),
		MACDHist:   at(f.MACDHist),
		BBUpper:    at(f.BBUpper),
		BBMiddle:   at(f.BBMiddle),
		BBLower:    at(f.BBLower),
		StochK:     at(f.StochK),
		StochD:     at(f.StochD),
		ATR:        at(f.ATR),
		SMA7:       at(f.SMA7),
		SMA20:      at(f.SMA20),
		SMA30:      at(f.SMA30),
		SMA50:      at(f.SMA50),
		EMA9:       at(f.EMA9),
		EMA21:      at(f.EMA21),
		EMA50:      at(f.EMA50),
		EMA200:     at(f.EMA200),
	}
}
