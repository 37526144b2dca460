// Package analyzer turns a price series into a complete ResultBundle.
package analyzer

import (
	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
	"StockSentinel/internal/strategy"
)

// Options tunes the assembler.
type Options struct {
	ChartBars int
	MinBars   int
	Params    calculator.Params
}

// DefaultOptions returns a 60-bar chart and the engine's minimum history.
func DefaultOptions() Options {
	return Options{
		ChartBars: 60,
		MinBars:   strategy.MinBars,
		Params:    calculator.DefaultParams(),
	}
}

// Analyze validates series and builds its ResultBundle with the default options.
func Analyze(series *model.PriceSeries) (*model.ResultBundle, error) {
	return AnalyzeWith(series, DefaultOptions())
}

// AnalyzeWith validates series and builds its ResultBundle. Structural problems
// (empty series, unordered dates, non-finite values) are returned as errors and no
// bundle is produced.
func AnalyzeWith(series *model.PriceSeries, opts Options) (*model.ResultBundle, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if opts.ChartBars <= 0 {
		opts.ChartBars = DefaultOptions().ChartBars
	}

	frame := calculator.ComputeFrameWith(series.Bars, opts.Params)
	ev := strategy.Evaluate(frame, opts.MinBars)

	bars := series.Bars
	last := bars[len(bars)-1]
	prevClose := last.Close
	if len(bars) > 1 {
		prevClose = bars[len(bars)-2].Close
	}
	change := last.Close - prevClose
	changePct := 0.0
	if prevClose != 0 {
		changePct = change / prevClose * 100
	}

	return &model.ResultBundle{
		Symbol:     series.Symbol,
		Name:       series.Name,
		AsOf:       last.Time.Format(model.DateLayout),
		Bars:       len(bars),
		Sufficient: ev.Sufficient,
		Price: model.PriceStats{
			Current:       last.Close,
			PrevClose:     prevClose,
			Change:        change,
			ChangePercent: changePct,
			Open:          last.Open,
			High:          last.High,
			Low:           last.Low,
			Volume:        calculator.ToSafeInt(last.Volume, 0),
			AvgVolume20:   calculator.AverageVolume(bars, calculator.VolumeWindow),
			VolumeRatio:   ev.VolumeRatio,
		},
		Support:        ev.Support,
		Resistance:     ev.Resistance,
		Indicators:     calculator.Snapshot(frame),
		Trend:          ev.Trend,
		PriceTrend:     ev.PriceTrend,
		AboveEMA200:    ev.AboveEMA200,
		Position:       ev.Position,
		Momentum:       ev.Momentum,
		Signals:        ev.Signals,
		Prediction:     ev.Prediction,
		Recommendation: ev.Recommendation,
		Insights:       ev.Insights,
		Chart:          BuildChart(frame, opts.ChartBars),
	}, nil
}
