package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"
	"StockSentinel/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bars(closes ...float64) []model.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		out[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return out
}

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 10*math.Sin(float64(i)/5)
	}
	return out
}

type contactSpy struct {
	mu      sync.Mutex
	targets []string
	texts   []string
	err     error
}

func (s *contactSpy) SendTo(_ context.Context, target, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = append(s.targets, target)
	s.texts = append(s.texts, text)
	return s.err
}

type testEnv struct {
	router   *Router
	store    store.Store
	contacts *contactSpy
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	mock := &collector.MockFetcher{
		Data: map[string][]model.OHLCV{
			"BBCA.JK": bars(wave(120)...),
			"UP.JK":   bars(100, 102, 103, 104, 105, 106, 107, 108, 109, 110, 120),
			"DOWN.JK": bars(100, 99, 98, 97, 96, 95, 94, 93, 92, 91, 90),
			"SHORT":   bars(1, 2, 3),
		},
	}
	m := metrics.NewMetrics()
	col := collector.NewCollector(mock, 365, 1)
	col.Backoff = time.Millisecond
	col.Metrics = m

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	spy := &contactSpy{}
	r := NewRouter(Deps{
		Collector: col,
		Store:     st,
		Contacts:  spy,
		Metrics:   m,
		Symbols:   []string{"UP.JK", "DOWN.JK"},
		ChartBars: 5,
		Version:   "test",
	})
	return &testEnv{router: r, store: st, contacts: spy}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndRequestID(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	e.router.Engine().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/api/analyze", map[string]string{"ticker": "BBCA.JK"})

	w := e.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stocksentinel_analyses_total")
}

func TestAnalyze(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/analyze", map[string]string{"ticker": " bbca.jk "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "BBCA.JK", body["ticker"])
	assert.Equal(t, 120.0, body["bars"])
	assert.Equal(t, true, body["sufficient"])
	assert.Contains(t, body, "recommendation")
	assert.Contains(t, body, "chart_data")
}

func TestAnalyzeErrors(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		name   string
		body   any
		status int
		msg    string
	}{
		{"bad json", "{", http.StatusBadRequest, "invalid JSON body"},
		{"missing ticker", map[string]string{}, http.StatusBadRequest, "ticker is required"},
		{"unknown ticker", map[string]string{"ticker": "NOPE"}, http.StatusNotFound, "not found"},
		{"short history", map[string]string{"ticker": "SHORT"}, http.StatusUnprocessableEntity, "insufficient"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, "/api/analyze", tc.body)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, decode(t, w)["error"], tc.msg)
		})
	}
}

func TestQuote(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/quote/up.jk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "UP.JK", body["ticker"])
	assert.Equal(t, 120.0, body["price"])
	assert.Equal(t, 110.0, body["prev_close"])

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/quote/NOPE", nil).Code)
}

func TestCandlestick(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/candlestick", map[string]any{"ticker": "DOWN.JK", "days": "3"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	candles := body["candles"].([]any)
	require.Len(t, candles, 3)
	assert.Equal(t, 90.0, candles[2].(map[string]any)["close"])

	w = e.do(t, http.MethodPost, "/api/candlestick", map[string]any{"ticker": "DOWN.JK"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, decode(t, w)["days"])

	w = e.do(t, http.MethodPost, "/api/candlestick", map[string]any{"ticker": "DOWN.JK", "days": -2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWatchlistRoutes(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/watchlist/add", map[string]string{"ticker": "up.jk"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "UP.JK", decode(t, w)["ticker"])

	w = e.do(t, http.MethodPost, "/api/watchlist/add", map[string]string{"ticker": "UP.JK"})
	assert.Equal(t, http.StatusConflict, w.Code)

	e.do(t, http.MethodPost, "/api/watchlist/add", map[string]string{"ticker": "NOPE"})

	w = e.do(t, http.MethodGet, "/api/watchlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decode(t, w)["count"])

	w = e.do(t, http.MethodGet, "/api/watchlist/prices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	quotes := decode(t, w)["quotes"].([]any)
	require.Len(t, quotes, 1)
	assert.Equal(t, "UP.JK", quotes[0].(map[string]any)["ticker"])

	w = e.do(t, http.MethodPost, "/api/watchlist/remove", map[string]string{"ticker": "UP.JK"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/watchlist/remove", map[string]string{"ticker": "UP.JK"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAlertRoutes(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/alerts/add", map[string]any{
		"ticker": "up.jk", "price": "115", "condition": "ABOVE", "contact": "0812",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["notified"])
	created := body["alert"].(map[string]any)
	assert.Equal(t, "UP.JK", created["ticker"])
	assert.Equal(t, 115.0, created["target_price"])
	assert.Equal(t, []string{"0812"}, e.contacts.targets)
	assert.Contains(t, e.contacts.texts[0], "Alert #1 created")

	w = e.do(t, http.MethodPost, "/api/alerts/add", map[string]any{
		"ticker": "DOWN.JK", "price": 80, "condition": "below",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, false, decode(t, w)["notified"])

	w = e.do(t, http.MethodPost, "/api/alerts/add", map[string]any{"ticker": "UP.JK", "price": 1, "condition": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(t, http.MethodPost, "/api/alerts/add", map[string]any{"ticker": "UP.JK", "price": "abc", "condition": "above"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/api/alerts", nil)
	assert.Equal(t, 2.0, decode(t, w)["count"])

	w = e.do(t, http.MethodPost, "/api/alerts/check", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, 2.0, body["checked"])
	fired := body["alerts"].([]any)
	require.Len(t, fired, 1)
	assert.Equal(t, "UP.JK", fired[0].(map[string]any)["ticker"])

	w = e.do(t, http.MethodPost, "/api/alerts/remove", map[string]any{"id": 2})
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/alerts/remove", map[string]any{"id": "2"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(t, http.MethodPost, "/api/alerts/remove", map[string]any{"id": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlertConfirmationFailureKeepsAlert(t *testing.T) {
	e := newEnv(t)
	e.contacts.err = errors.New("gateway down")

	w := e.do(t, http.MethodPost, "/api/alerts/add", map[string]any{
		"ticker": "UP.JK", "price": 100, "condition": "above", "contact": "0812",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, false, decode(t, w)["notified"])

	alerts, err := e.store.Alerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestTopMovers(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/top-movers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	gainers := body["gainers"].([]any)
	losers := body["losers"].([]any)
	require.Len(t, gainers, 1)
	require.Len(t, losers, 1)
	assert.Equal(t, "UP.JK", gainers[0].(map[string]any)["ticker"])
	assert.Equal(t, "DOWN.JK", losers[0].(map[string]any)["ticker"])

	w = e.do(t, http.MethodGet, "/api/top-movers?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(decode(t, w)["error"].(string), "limit"))
}

func TestRecoveryAnswers500(t *testing.T) {
	e := newEnv(t)
	e.router.Engine().GET("/boom", func(*gin.Context) { panic("boom") })
	w := e.do(t, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}
