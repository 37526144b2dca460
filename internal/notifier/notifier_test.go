package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/model"
)

func testTelegram(url string) *TelegramNotifier {
	t := NewTelegramNotifier("TOKEN", "42", "")
	t.BaseURL = url
	t.RetryBase = time.Millisecond
	t.PollInterval = time.Millisecond
	return t
}

func TestTelegramSend(t *testing.T) {
	var got map[string]string
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, testTelegram(srv.URL).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, testTelegram(srv.URL).SendWithRetry(context.Background(), "x", 3))
	assert.Equal(t, int32(3), calls.Load())
}

func TestTelegramSendWithRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testTelegram(srv.URL).SendWithRetry(context.Background(), "x", 2)
	assert.ErrorContains(t, err, "status 500")
	assert.Equal(t, int32(3), calls.Load())
}

func TestTelegramPolling(t *testing.T) {
	var (
		mu      sync.Mutex
		served  bool
		replies = make(chan map[string]string, 1)
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			mu.Lock()
			first := !served
			served = true
			mu.Unlock()
			if first {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /help ","chat":{"id":99}}}]}`)
				return
			}
			assert.Equal(t, "8", r.URL.Query().Get("offset"))
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		testTelegram(srv.URL).StartPolling(ctx, func(_ context.Context, cmd string) string {
			return "reply to " + cmd
		})
		close(done)
	}()

	select {
	case body := <-replies:
		assert.Equal(t, "99", body["chat_id"])
		assert.Equal(t, "reply to /help", body["text"])
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestWhatsAppSendTo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.Equal(t, "62", r.PostForm.Get("countryCode"))
		if r.PostForm.Get("target") == "0811" {
			fmt.Fprint(w, `{"status":false,"reason":"invalid target"}`)
			return
		}
		assert.Equal(t, "08123", r.PostForm.Get("target"))
		assert.Equal(t, "hello", r.PostForm.Get("message"))
		fmt.Fprint(w, `{"status":true}`)
	}))
	defer srv.Close()

	wa := NewWhatsAppNotifier(srv.URL, "secret", "62", "")
	ctx := context.Background()
	require.NoError(t, wa.SendTo(ctx, " 08123 ", "hello"))
	assert.ErrorContains(t, wa.SendTo(ctx, "0811", "hello"), "invalid target")
	assert.Error(t, wa.SendTo(ctx, "", "hello"))
	assert.Error(t, wa.Send(ctx, "hello"))

	wa.Target = "08123"
	assert.NoError(t, wa.Send(ctx, "hello"))
}

func sampleBundle() *model.ResultBundle {
	rsi, hist := 41.27, -12.5
	return &model.ResultBundle{
		Symbol:     "BBCA.JK",
		AsOf:       "2024-05-02",
		Bars:       250,
		Sufficient: true,
		Price: model.PriceStats{
			Current: 9125.5, Change: -74.5, ChangePercent: -0.81,
			Volume: 12345678, VolumeRatio: 1.25,
		},
		Support:    8900,
		Resistance: 9400,
		Indicators: model.Snapshot{RSI: &rsi, MACDHist: &hist},
		Position:   model.PricePosition{Percent: 45.2, Label: model.PositionFair, High30d: 9400, Low30d: 8900},
		Trend:      model.TrendVerdict{Label: model.TrendBullish, Tier: model.TierPositive},
		PriceTrend: model.TrendVerdict{Label: model.TrendSideways, Tier: model.TierNeutral},
		Momentum:   model.MomentumScore{Value: 60, Status: model.MomentumStrong, Sufficient: true},
		Prediction: model.Prediction{Direction: model.DirectionUp, Confidence: 70},
		Recommendation: model.Recommendation{
			Label: model.RecStrongBuy, Tier: model.TierPositive,
			Description: "Strong <buy>", BuyScore: 6, SellScore: 1,
			Rationale: []string{"RSI oversold"},
		},
		Insights: []string{"Price near support"},
	}
}

func TestFormatAnalysis(t *testing.T) {
	msg := FormatAnalysis(sampleBundle())
	assert.Contains(t, msg, "<code>BBCA.JK</code>")
	assert.Contains(t, msg, "Current: <b>9,125.5</b>")
	assert.Contains(t, msg, "-74.5 (-0.81%)")
	assert.Contains(t, msg, "12,345,678")
	assert.Contains(t, msg, "🟢 <b>STRONG BUY</b> (buy 6 / sell 1)")
	assert.Contains(t, msg, "Strong &lt;buy&gt;")
	assert.Contains(t, msg, "• RSI oversold")
	assert.Contains(t, msg, "• Price near support")
	assert.Contains(t, msg, "RSI: 41.3 | MACD hist: -12.50 | Stoch %K: n/a")
	assert.NotContains(t, msg, "incomplete")

	short := sampleBundle()
	short.Sufficient = false
	short.Bars = 20
	short.Indicators = model.Snapshot{}
	msg = FormatAnalysis(short)
	assert.Contains(t, msg, "Only 20 bars")
	assert.Contains(t, msg, "RSI: n/a | MACD hist: n/a")
}

func TestFormatDigest(t *testing.T) {
	msg := FormatDigest([]*model.ResultBundle{sampleBundle()}, []string{"XXXX"})
	assert.Contains(t, msg, "<code>BBCA.JK</code> 9,125.5 (-0.81%) → <b>STRONG_BUY</b>")
	assert.Contains(t, msg, "Failed: XXXX")
	assert.Contains(t, FormatDigest(nil, nil), "empty")
}

func TestFormatLists(t *testing.T) {
	assert.Contains(t, FormatWatchlist(nil), "empty")
	assert.Contains(t, FormatWatchlist([]model.WatchItem{{Symbol: "TLKM.JK"}}), "• <code>TLKM.JK</code>")

	assert.Contains(t, FormatAlerts(nil), "No price alerts")
	alerts := FormatAlerts([]model.Alert{
		{ID: 1, Symbol: "BBRI.JK", TargetPrice: 5000, Condition: model.ConditionAbove},
		{ID: 2, Symbol: "ASII.JK", TargetPrice: 4000, Condition: model.ConditionBelow, Triggered: true},
	})
	assert.Contains(t, alerts, "#1 <code>BBRI.JK</code> above 5,000 [pending]")
	assert.Contains(t, alerts, "#2 <code>ASII.JK</code> below 4,000 [triggered]")

	movers := FormatTopMovers(
		[]model.Quote{{Symbol: "UP", Price: 1200, ChangePercent: 3.5}},
		nil,
	)
	assert.Contains(t, movers, "• <code>UP</code> 1,200 (+3.50%)")
	assert.Contains(t, movers, "Top losers</b>\nNo data.")
}

func TestFormatAlertMessages(t *testing.T) {
	a := model.Alert{ID: 5, Symbol: "BBCA.JK", TargetPrice: 10000, Condition: model.ConditionAbove}
	assert.Contains(t, FormatAlertCreated(a), "rises to or above the target")
	msg := FormatAlertTriggered(a, 10250)
	assert.Contains(t, msg, "BBCA.JK rises above its target")
	assert.Contains(t, msg, "Current: 10,250 (+2.50% vs target)")

	a.Condition = model.ConditionBelow
	assert.Contains(t, FormatAlertTriggered(a, 9000), "falls below")
}

func TestHelpText(t *testing.T) {
	for _, cmd := range []string{"/analyze", "/watch", "/unwatch", "/alerts", "/alert ", "/movers"} {
		assert.Contains(t, HelpText(), cmd)
	}
}
