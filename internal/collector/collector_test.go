package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/model"
)

func dailyBars(closes ...float64) []model.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func ramp(n int, from float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)
	}
	return out
}

func TestMockFetcherIsDeterministic(t *testing.T) {
	m := &MockFetcher{Price: 500}
	a, err := m.FetchDailyBars(context.Background(), "BBCA.JK", 120)
	require.NoError(t, err)
	b, err := m.FetchDailyBars(context.Background(), "BBCA.JK", 120)
	require.NoError(t, err)

	assert.Len(t, a, 120)
	assert.Equal(t, a, b)
	series := &model.PriceSeries{Symbol: "BBCA.JK", Bars: a}
	assert.NoError(t, series.Validate())
}

func TestMockFetcherUnknownSymbol(t *testing.T) {
	m := &MockFetcher{Data: map[string][]model.OHLCV{"AAA": dailyBars(1, 2, 3)}}
	_, err := m.FetchDailyBars(context.Background(), "ZZZ", 10)
	assert.ErrorIs(t, err, model.ErrNotFound)

	bars, err := m.FetchDailyBars(context.Background(), "AAA", 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, bars[1].Close)
}

const chartJSON = `{"chart":{"result":[{"timestamp":[1709251200,1709337600,1709424000,1709510400],
"indicators":{"quote":[{"open":[10,11,null,12],"high":[11,12,null,13],"low":[9,10,null,11],
"close":[10.5,11.5,null,12.5],"volume":[100,200,null,null]}]}}],"error":null}}`

func TestYahooFetcherParsesChart(t *testing.T) {
	var gotPath, gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		fmt.Fprint(w, chartJSON)
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, "")
	bars, err := f.FetchDailyBars(context.Background(), " bbca.jk ", 60)
	require.NoError(t, err)

	assert.Equal(t, "/BBCA.JK", gotPath)
	assert.Equal(t, "3mo", gotRange)
	require.Len(t, bars, 3)
	assert.Equal(t, 10.5, bars[0].Close)
	assert.Equal(t, 12.5, bars[2].Close)
	assert.Equal(t, 0.0, bars[2].Volume)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestYahooFetcherTrimsToDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON)
	}))
	defer srv.Close()

	bars, err := NewYahooFetcher(srv.URL, "").FetchDailyBars(context.Background(), "X", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 11.5, bars[0].Close)
}

func TestYahooFetcherMissingColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"open":[1,2],"high":[1,2],"low":[1,2],"close":[1,2]}]}}]}}`)
	}))
	defer srv.Close()

	_, err := NewYahooFetcher(srv.URL, "").FetchDailyBars(context.Background(), "X", 10)
	assert.ErrorIs(t, err, model.ErrMalformedInput)
}

func TestYahooFetcherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/GONE":
			w.WriteHeader(http.StatusNotFound)
		case "/EMPTY":
			fmt.Fprint(w, `{"chart":{"result":[]}}`)
		case "/APIERR":
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Bad","description":"bad symbol"}}}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, "")
	ctx := context.Background()

	_, err := f.FetchDailyBars(ctx, "GONE", 10)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.FetchDailyBars(ctx, "EMPTY", 10)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.FetchDailyBars(ctx, "APIERR", 10)
	assert.ErrorContains(t, err, "bad symbol")
	_, err = f.FetchDailyBars(ctx, "DOWN", 10)
	assert.ErrorContains(t, err, "status 502")
}

func TestYahooRange(t *testing.T) {
	assert.Equal(t, "1mo", yahooRange(10))
	assert.Equal(t, "6mo", yahooRange(120))
	assert.Equal(t, "1y", yahooRange(365))
	assert.Equal(t, "2y", yahooRange(500))
	assert.Equal(t, "5y", yahooRange(1000))
}

func writeCSV(t *testing.T, dir, symbol, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(body), 0644))
}

func TestCSVFetcher(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "TLKM.JK", "Volume,Close,Date,Open,High,Low,Adj Close\n"+
		"300,12,2024-03-03,11,13,10,12\n"+
		"100,10,2024-03-01,10,11,9,10\n"+
		"0,null,2024-03-02,,,,\n"+
		",11,2024-03-04,11,12,10,11\n")

	f := NewCSVFetcher(dir)
	bars, err := f.FetchDailyBars(context.Background(), "tlkm.jk", 30)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, 10.0, bars[0].Close)
	assert.Equal(t, 12.0, bars[1].Close)
	assert.Equal(t, 300.0, bars[1].Volume)
	assert.Equal(t, 0.0, bars[2].Volume)

	bars, err = f.FetchDailyBars(context.Background(), "TLKM.JK", 1)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 11.0, bars[0].Close)
}

func TestCSVFetcherErrors(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "NOVOL", "date,open,high,low,close\n2024-01-01,1,1,1,1\n")
	writeCSV(t, dir, "BADNUM", "date,open,high,low,close,volume\n2024-01-01,1,x,1,1,1\n")
	writeCSV(t, dir, "BADDATE", "date,open,high,low,close,volume\nyesterday,1,1,1,1,1\n")
	writeCSV(t, dir, "EMPTY", "")
	f := NewCSVFetcher(dir)
	ctx := context.Background()

	_, err := f.FetchDailyBars(ctx, "MISSING", 10)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.FetchDailyBars(ctx, "NOVOL", 10)
	assert.ErrorIs(t, err, model.ErrMalformedInput)
	_, err = f.FetchDailyBars(ctx, "BADNUM", 10)
	assert.ErrorIs(t, err, model.ErrMalformedInput)
	_, err = f.FetchDailyBars(ctx, "BADDATE", 10)
	assert.ErrorIs(t, err, model.ErrMalformedInput)
	_, err = f.FetchDailyBars(ctx, "EMPTY", 10)
	assert.ErrorIs(t, err, model.ErrEmptySeries)
}

func TestReadCSVHeaderCase(t *testing.T) {
	bars, err := ReadCSV(strings.NewReader(" DATE , OPEN , HIGH , LOW , CLOSE , VOLUME \n2024-01-02 , 1 , 2 , 0.5 , 1.5 , 10\n"))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 1.5, bars[0].Close)
}

// flakyFetcher fails a fixed number of times before delegating.
type flakyFetcher struct {
	inner    Fetcher
	failures int32
	calls    atomic.Int32
}

func (f *flakyFetcher) Name() string { return "flaky" }

func (f *flakyFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("connection reset")
	}
	return f.inner.FetchDailyBars(ctx, symbol, days)
}

func newTestCollector(f Fetcher) *Collector {
	c := NewCollector(f, 365, 3)
	c.Backoff = time.Millisecond
	return c
}

func TestSeriesRetries(t *testing.T) {
	f := &flakyFetcher{inner: &MockFetcher{Price: 100}, failures: 2}
	series, err := newTestCollector(f).Series(context.Background(), "bbri.jk")
	require.NoError(t, err)
	assert.Equal(t, "BBRI.JK", series.Symbol)
	assert.Len(t, series.Bars, 365)
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestSeriesGivesUpAfterRetries(t *testing.T) {
	f := &flakyFetcher{inner: &MockFetcher{Price: 100}, failures: 5}
	_, err := newTestCollector(f).Series(context.Background(), "BBRI.JK")
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestSeriesDoesNotRetryNotFound(t *testing.T) {
	m := &MockFetcher{Errs: map[string]error{"X": model.ErrNotFound}}
	c := newTestCollector(m)
	_, err := c.Series(context.Background(), "X")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSeriesInsufficientData(t *testing.T) {
	m := &MockFetcher{Data: map[string][]model.OHLCV{"SHORT": dailyBars(1, 2, 3)}}
	_, err := newTestCollector(m).Series(context.Background(), "SHORT")
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	_, err = newTestCollector(m).Series(context.Background(), "  ")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestSeriesHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestCollector(&MockFetcher{}).Series(ctx, "BBCA.JK")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze(t *testing.T) {
	c := newTestCollector(&MockFetcher{Price: 2500})
	bundle, err := c.Analyze(context.Background(), "ASII.JK")
	require.NoError(t, err)
	assert.Equal(t, "ASII.JK", bundle.Symbol)
	assert.True(t, bundle.Sufficient)
	assert.NotEmpty(t, bundle.Recommendation.Label)
	assert.Len(t, bundle.Chart.Dates, 60)
}

func TestQuote(t *testing.T) {
	m := &MockFetcher{Data: map[string][]model.OHLCV{"AAA": dailyBars(100, 110)}}
	q, err := newTestCollector(m).Quote(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "AAA", q.Symbol)
	assert.Equal(t, 110.0, q.Price)
	assert.Equal(t, 100.0, q.PrevClose)
	assert.Equal(t, 10.0, q.Change)
	assert.InDelta(t, 10.0, q.ChangePercent, 1e-9)
	assert.Equal(t, int64(1000), q.Volume)
}

func TestQuoteSingleBar(t *testing.T) {
	q := QuoteFromBars("ONE", dailyBars(50))
	assert.Equal(t, 50.0, q.PrevClose)
	assert.Equal(t, 0.0, q.ChangePercent)
}

func TestQuotesSkipsFailures(t *testing.T) {
	m := &MockFetcher{
		Data: map[string][]model.OHLCV{
			"AAA": dailyBars(100, 105),
			"BBB": dailyBars(100, 90),
		},
		Errs: map[string]error{"BAD": model.ErrNotFound},
	}
	quotes, err := newTestCollector(m).Quotes(context.Background(), []string{"AAA", "BAD", "BBB"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "AAA", quotes[0].Symbol)
	assert.Equal(t, "BBB", quotes[1].Symbol)
}

func TestTopMovers(t *testing.T) {
	m := &MockFetcher{Data: map[string][]model.OHLCV{
		"UP1":  dailyBars(100, 101),
		"UP5":  dailyBars(100, 105),
		"FLAT": dailyBars(100, 100),
		"DN2":  dailyBars(100, 98),
		"DN9":  dailyBars(100, 91),
	}}
	movers, err := newTestCollector(m).TopMovers(context.Background(), []string{"UP1", "UP5", "FLAT", "DN2", "DN9"}, 1)
	require.NoError(t, err)
	require.Len(t, movers.Gainers, 1)
	require.Len(t, movers.Losers, 1)
	assert.Equal(t, "UP5", movers.Gainers[0].Symbol)
	assert.Equal(t, "DN9", movers.Losers[0].Symbol)

	all := RankMovers([]model.Quote{
		{Symbol: "A", ChangePercent: 1},
		{Symbol: "B", ChangePercent: -3},
		{Symbol: "C", ChangePercent: 0},
		{Symbol: "D", ChangePercent: -1},
	}, 5)
	assert.Len(t, all.Gainers, 1)
	require.Len(t, all.Losers, 2)
	assert.Equal(t, "B", all.Losers[0].Symbol)
	assert.Equal(t, "D", all.Losers[1].Symbol)
}

func TestCandles(t *testing.T) {
	m := &MockFetcher{Data: map[string][]model.OHLCV{"AAA": dailyBars(ramp(30, 10)...)}}
	c := newTestCollector(m)
	candles, err := c.Candles(context.Background(), "AAA", 5)
	require.NoError(t, err)
	require.Len(t, candles, 5)
	assert.Equal(t, "2024-03-26", candles[0].Date)
	assert.Equal(t, 39.0, candles[4].Close)
	assert.Equal(t, int64(1000), candles[4].Volume)

	_, err = c.Candles(context.Background(), "AAA", 0)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
