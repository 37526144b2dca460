package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"StockSentinel/internal/model"
)

func newTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	t.Style().Title.Align = text.AlignLeft
	return t
}

func price(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

// reading formats an optional indicator value; missing ones print as a dash.
func reading(format string, v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func optPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return price(*v)
}

// render prints a bundle as a set of tables.
func render(out io.Writer, b *model.ResultBundle) {
	header := fmt.Sprintf("%s  %s  (%d bars)", b.Symbol, b.AsOf, b.Bars)
	if !b.Sufficient {
		header += "  [history too short, indicators incomplete]"
	}

	p := newTable(out, header)
	p.AppendHeader(table.Row{"Price", "Change", "Volume", "Vol/avg20", "Support", "Resistance", "30d range"})
	p.AppendRow(table.Row{
		price(b.Price.Current),
		fmt.Sprintf("%+.2f (%+.2f%%)", b.Price.Change, b.Price.ChangePercent),
		humanize.Comma(b.Price.Volume),
		fmt.Sprintf("%.2fx", b.Price.VolumeRatio),
		price(b.Support),
		price(b.Resistance),
		fmt.Sprintf("%s - %s (%.1f%%, %s)", price(b.Position.Low30d), price(b.Position.High30d),
			b.Position.Percent, b.Position.Label),
	})
	p.Render()

	in := b.Indicators
	ind := newTable(out, "Indicators")
	ind.AppendHeader(table.Row{"Indicator", "Value", "Indicator", "Value"})
	ind.AppendRows([]table.Row{
		{"RSI(14)", reading("%.2f", in.RSI), "SMA 7 / 30", optPrice(in.SMA7) + " / " + optPrice(in.SMA30)},
		{"MACD", reading("%.3f", in.MACD), "EMA 9 / 21", optPrice(in.EMA9) + " / " + optPrice(in.EMA21)},
		{"MACD signal", reading("%.3f", in.MACDSignal), "EMA 50 / 200", optPrice(in.EMA50) + " / " + optPrice(in.EMA200)},
		{"MACD hist", reading("%.3f", in.MACDHist), "Bollinger", optPrice(in.BBLower) + " / " + optPrice(in.BBMiddle) + " / " + optPrice(in.BBUpper)},
		{"Stoch %K / %D", reading("%.1f", in.StochK) + " / " + reading("%.1f", in.StochD), "ATR(14)", optPrice(in.ATR)},
	})
	ind.Render()

	s := b.Signals
	sig := newTable(out, "Signals")
	sig.AppendHeader(table.Row{"Trend", "Price trend", "Momentum", "Trend str.", "Volume", "Volatility", "Overall", "Outlook"})
	sig.AppendRow(table.Row{
		b.Trend.Label,
		b.PriceTrend.Label,
		fmt.Sprintf("%s (%d)", b.Momentum.Status, b.Momentum.Value),
		s.TrendStrength,
		s.VolumeScore,
		s.VolatilityScore,
		s.OverallScore,
		fmt.Sprintf("%s %d%%", b.Prediction.Direction, b.Prediction.Confidence),
	})
	sig.Render()

	rec := b.Recommendation
	r := newTable(out, fmt.Sprintf("Recommendation: %s (buy %d / sell %d)",
		strings.ReplaceAll(rec.Label, "_", " "), rec.BuyScore, rec.SellScore))
	r.AppendRow(table.Row{rec.Description})
	for _, reason := range rec.Rationale {
		r.AppendRow(table.Row{"- " + reason})
	}
	for _, insight := range b.Insights {
		r.AppendRow(table.Row{"* " + insight})
	}
	r.Render()
}
