package analyzer

import (
	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// BuildChart slices the last n bars of the frame into plot-ready columns.
// Null indicator values are written as nil.
func BuildChart(f *model.IndicatorFrame, n int) model.ChartSeries {
	start := f.Len() - n
	if start < 0 {
		start = 0
	}
	size := f.Len() - start
	c := model.ChartSeries{
		Dates:      make([]string, 0, size),
		Close:      make([]float64, 0, size),
		Volume:     make([]int64, 0, size),
		MA7:        make([]*float64, 0, size),
		MA30:       make([]*float64, 0, size),
		RSI:        make([]*float64, 0, size),
		MACD:       make([]*float64, 0, size),
		MACDSignal: make([]*float64, 0, size),
	}
	for i := start; i < f.Len(); i++ {
		b := f.Bars[i]
		c.Dates = append(c.Dates, b.Time.Format(model.DateLayout))
		c.Close = append(c.Close, b.Close)
		c.Volume = append(c.Volume, calculator.ToSafeInt(b.Volume, 0))
		c.MA7 = append(c.MA7, calculator.Nullable(f.SMA7[i]))
		c.MA30 = append(c.MA30, calculator.Nullable(f.SMA30[i]))
		c.RSI = append(c.RSI, calculator.Nullable(f.RSI[i]))
		c.MACD = append(c.MACD, calculator.Nullable(f.MACD[i]))
		c.MACDSignal = append(c.MACDSignal, calculator.Nullable(f.MACDSignal[i]))
	}
	return c
}
