package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"StockSentinel/internal/model"
)

const divider = "━━━━━━━━━━━━━━━━━━━━\n"

func formatPrice(v float64) string {
	return humanize.Commaf(math.Round(v*100) / 100)
}

func signed(v float64) string {
	if v >= 0 {
		return "+" + formatPrice(v)
	}
	return formatPrice(v)
}

// optional formats an indicator reading, or n/a when it has no value.
func optional(format string, v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

func tierIcon(label string, tier model.Tier) string {
	switch {
	case label == model.RecHold:
		return "⚪"
	case tier == model.TierPositive:
		return "🟢"
	case tier == model.TierNegative:
		return "🔴"
	default:
		return "🟡"
	}
}

func conditionText(c model.AlertCondition) string {
	if c == model.ConditionBelow {
		return "falls to or below"
	}
	return "rises to or above"
}

// FormatAnalysis renders a full analysis as a Telegram HTML message.
func FormatAnalysis(b *model.ResultBundle) string {
	var sb strings.Builder
	name := b.Name
	if name == "" {
		name = b.Symbol
	}

	sb.WriteString("📊 <b>STOCK ANALYSIS</b>\n\n")
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(name)))
	sb.WriteString(fmt.Sprintf("Ticker: <code>%s</code> | %s\n\n", html.EscapeString(b.Symbol), b.AsOf))

	sb.WriteString(divider)
	sb.WriteString("💰 <b>PRICE</b>\n\n")
	sb.WriteString(fmt.Sprintf("Current: <b>%s</b>\n", formatPrice(b.Price.Current)))
	sb.WriteString(fmt.Sprintf("Change: <code>%s (%+.2f%%)</code>\n", signed(b.Price.Change), b.Price.ChangePercent))
	sb.WriteString(fmt.Sprintf("30d high: %s | 30d low: %s\n", formatPrice(b.Position.High30d), formatPrice(b.Position.Low30d)))
	sb.WriteString(fmt.Sprintf("Support: %s | Resistance: %s\n\n", formatPrice(b.Support), formatPrice(b.Resistance)))

	sb.WriteString(divider)
	sb.WriteString("📈 <b>ANALYSIS</b>\n\n")
	if !b.Sufficient {
		sb.WriteString(fmt.Sprintf("⚠️ Only %d bars of history, indicators are incomplete.\n\n", b.Bars))
	}
	sb.WriteString(fmt.Sprintf("<b>Position:</b> %s (%.1f%% of 30d range)\n", b.Position.Label, b.Position.Percent))
	sb.WriteString(fmt.Sprintf("<b>Trend:</b> %s | price trend %s\n", b.Trend.Label, b.PriceTrend.Label))
	sb.WriteString(fmt.Sprintf("<b>Momentum:</b> %s (%d/100)\n", b.Momentum.Status, b.Momentum.Value))
	sb.WriteString(fmt.Sprintf("RSI: %s | MACD hist: %s | Stoch %%K: %s\n",
		optional("%.1f", b.Indicators.RSI), optional("%.2f", b.Indicators.MACDHist), optional("%.1f", b.Indicators.StochK)))
	sb.WriteString(fmt.Sprintf("<b>Volume:</b> %s (%.2fx 20d avg)\n", humanize.Comma(b.Price.Volume), b.Price.VolumeRatio))
	sb.WriteString(fmt.Sprintf("<b>Outlook:</b> %s, %d%% confidence\n\n", b.Prediction.Direction, b.Prediction.Confidence))

	sb.WriteString(divider)
	sb.WriteString("🎯 <b>RECOMMENDATION</b>\n\n")
	rec := b.Recommendation
	sb.WriteString(fmt.Sprintf("%s <b>%s</b> (buy %d / sell %d)\n", tierIcon(rec.Label, rec.Tier),
		strings.ReplaceAll(rec.Label, "_", " "), rec.BuyScore, rec.SellScore))
	sb.WriteString(fmt.Sprintf("<i>%s</i>\n", html.EscapeString(rec.Description)))
	for _, r := range rec.Rationale {
		sb.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(r)))
	}

	if len(b.Insights) > 0 {
		sb.WriteString("\n💡 <b>INSIGHTS</b>\n")
		for _, in := range b.Insights {
			sb.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(in)))
		}
	}

	sb.WriteString("\n⚠️ <i>For reference only, not investment advice.</i>")
	return sb.String()
}

// FormatDigest summarises a watchlist scan in one message.
func FormatDigest(bundles []*model.ResultBundle, failed []string) string {
	var sb strings.Builder
	sb.WriteString("📋 <b>WATCHLIST SCAN</b>\n\n")
	if len(bundles) == 0 && len(failed) == 0 {
		sb.WriteString("Watchlist is empty.")
		return sb.String()
	}
	for _, b := range bundles {
		rec := b.Recommendation
		sb.WriteString(fmt.Sprintf("%s <code>%s</code> %s (%+.2f%%) → <b>%s</b>\n",
			tierIcon(rec.Label, rec.Tier), html.EscapeString(b.Symbol),
			formatPrice(b.Price.Current), b.Price.ChangePercent, rec.Label))
	}
	if len(failed) > 0 {
		sb.WriteString(fmt.Sprintf("\n❌ Failed: %s", html.EscapeString(strings.Join(failed, ", "))))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatQuoteList renders one line per quote under title.
func FormatQuoteList(title string, quotes []model.Quote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(title)))
	if len(quotes) == 0 {
		sb.WriteString("No data.")
		return sb.String()
	}
	for _, q := range quotes {
		sb.WriteString(fmt.Sprintf("• <code>%s</code> %s (%+.2f%%)\n",
			html.EscapeString(q.Symbol), formatPrice(q.Price), q.ChangePercent))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatWatchlist lists the watched symbols.
func FormatWatchlist(items []model.WatchItem) string {
	if len(items) == 0 {
		return "👀 Your watchlist is empty.\nAdd a stock with <code>/watch BBCA.JK</code>"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👀 <b>WATCHLIST</b> (%d)\n", len(items)))
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("• <code>%s</code>\n", html.EscapeString(it.Symbol)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatAlerts lists price alerts, pending first as stored.
func FormatAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return "🔔 No price alerts.\nCreate one with <code>/alert BBCA.JK above 10000</code>"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔔 <b>PRICE ALERTS</b> (%d)\n", len(alerts)))
	for _, a := range alerts {
		state := "pending"
		if a.Triggered {
			state = "triggered"
		}
		sb.WriteString(fmt.Sprintf("#%d <code>%s</code> %s %s [%s]\n",
			a.ID, html.EscapeString(a.Symbol), a.Condition, formatPrice(a.TargetPrice), state))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatAlertCreated confirms a new alert to its owner.
func FormatAlertCreated(a model.Alert) string {
	return fmt.Sprintf("✅ Alert #%d created\n• Stock: %s\n• Target: %s\n• You will be notified when the price %s the target.",
		a.ID, a.Symbol, formatPrice(a.TargetPrice), conditionText(a.Condition))
}

// FormatAlertTriggered announces a fired alert.
func FormatAlertTriggered(a model.Alert, price float64) string {
	diff := 0.0
	if a.TargetPrice != 0 {
		diff = (price - a.TargetPrice) / a.TargetPrice * 100
	}
	return fmt.Sprintf("🚨 ALERT TRIGGERED\n\n%s %s its target.\n• Target: %s\n• Current: %s (%+.2f%% vs target)\n\nCheck the latest analysis before acting.",
		a.Symbol, strings.Replace(conditionText(a.Condition), "to or ", "", 1), formatPrice(a.TargetPrice), formatPrice(price), diff)
}

// FormatTopMovers renders gainers and losers.
func FormatTopMovers(gainers, losers []model.Quote) string {
	return FormatQuoteList("🚀 Top gainers", gainers) + "\n\n" + FormatQuoteList("📉 Top losers", losers)
}

// HelpText describes the bot commands.
func HelpText() string {
	return `<b>📚 COMMANDS</b>

<b>Analysis</b>
/analyze BBCA.JK - full technical analysis
Or just send a ticker, e.g. <code>TLKM.JK</code>

<b>Watchlist</b>
/watchlist - show watched stocks with prices
/watch BBCA.JK - add a stock
/unwatch BBCA.JK - remove a stock
/movers - top gainers and losers in the watchlist

<b>Alerts</b>
/alerts - list price alerts
/alert BBCA.JK above 10000 - alert when price crosses a level

<b>Ticker format</b>
• Indonesia: add .JK (BBCA.JK)
• US: plain code (AAPL)
• Crypto: add -USD (BTC-USD)

⚠️ <i>For reference only, not investment advice.</i>`
}
