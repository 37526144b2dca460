package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"StockSentinel/internal/analyzer"
	"StockSentinel/internal/calculator"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"
)

const (
	// MinFetchBars is the shortest history worth analysing at all.
	MinFetchBars = 10
	// QuoteDays is how many bars a quote lookup fetches.
	QuoteDays = 10
)

// Movers splits a set of quotes into the day's best and worst performers.
type Movers struct {
	Gainers []model.Quote `json:"gainers"`
	Losers  []model.Quote `json:"losers"`
}

// Collector orchestrates data fetching and analysis.
type Collector struct {
	Fetcher     Fetcher
	Days        int
	Retries     int
	Backoff     time.Duration
	Concurrency int
	Options     analyzer.Options
	Metrics     *metrics.Metrics

	flight singleflight.Group
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, days, retries int) *Collector {
	if retries < 1 {
		retries = 1
	}
	return &Collector{
		Fetcher:     fetcher,
		Days:        days,
		Retries:     retries,
		Backoff:     time.Second,
		Concurrency: 4,
		Options:     analyzer.DefaultOptions(),
	}
}

// permanent reports errors that a retry cannot fix.
func permanent(err error) bool {
	return errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrMalformedInput) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (c *Collector) fetch(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	var lastErr error
	for attempt := 1; attempt <= c.Retries; attempt++ {
		bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, days)
		if err == nil {
			return bars, nil
		}
		lastErr = err
		c.Metrics.FetchError(c.Fetcher.Name())
		if permanent(err) || attempt == c.Retries {
			break
		}
		log.Warn().Err(err).
			Str("symbol", symbol).
			Int("attempt", attempt).
			Msg("Fetch failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Backoff * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), lastErr)
}

// fetchShared collapses concurrent identical fetches into one provider call.
// Callers must treat the returned bars as read-only.
func (c *Collector) fetchShared(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	v, err, _ := c.flight.Do(fmt.Sprintf("%s|%d", symbol, days), func() (any, error) {
		return c.fetch(ctx, symbol, days)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.OHLCV), nil
}

// Series fetches the configured lookback of daily bars for symbol.
func (c *Collector) Series(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", model.ErrInvalidArgument)
	}
	bars, err := c.fetchShared(ctx, symbol, c.Days)
	if err != nil {
		return nil, err
	}
	if len(bars) < MinFetchBars {
		return nil, fmt.Errorf("%s: %d bars: %w", symbol, len(bars), model.ErrInsufficientData)
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Name:      symbol,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// Analyze fetches symbol and runs the full analysis on it.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*model.ResultBundle, error) {
	start := time.Now()
	bundle, err := c.analyze(ctx, symbol)
	label := ""
	if bundle != nil {
		label = bundle.Recommendation.Label
	}
	c.Metrics.ObserveAnalysis(time.Since(start).Seconds(), label, err)
	return bundle, err
}

func (c *Collector) analyze(ctx context.Context, symbol string) (*model.ResultBundle, error) {
	series, err := c.Series(ctx, symbol)
	if err != nil {
		return nil, err
	}
	bundle, err := analyzer.AnalyzeWith(series, c.Options)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", series.Symbol, err)
	}
	log.Debug().
		Str("symbol", bundle.Symbol).
		Str("recommendation", bundle.Recommendation.Label).
		Int("bars", bundle.Bars).
		Msg("Analysis complete")
	return bundle, nil
}

// Quote returns the latest price of symbol against the previous close.
func (c *Collector) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return model.Quote{}, fmt.Errorf("%w: empty ticker", model.ErrInvalidArgument)
	}
	bars, err := c.fetchShared(ctx, symbol, QuoteDays)
	if err != nil {
		return model.Quote{}, err
	}
	if len(bars) == 0 {
		return model.Quote{}, fmt.Errorf("%s: %w", symbol, model.ErrInsufficientData)
	}
	return QuoteFromBars(symbol, bars), nil
}

// QuoteFromBars derives a quote from the last two bars. bars must not be empty.
func QuoteFromBars(symbol string, bars []model.OHLCV) model.Quote {
	last := bars[len(bars)-1]
	prev := last.Close
	if len(bars) > 1 {
		prev = bars[len(bars)-2].Close
	}
	q := model.Quote{
		Symbol:    symbol,
		Price:     last.Close,
		PrevClose: prev,
		Change:    last.Close - prev,
		High:      last.High,
		Low:       last.Low,
		Volume:    calculator.ToSafeInt(last.Volume, 0),
		AsOf:      last.Time,
	}
	if prev != 0 {
		q.ChangePercent = q.Change / prev * 100
	}
	return q
}

// Quotes looks up every symbol concurrently. Symbols that fail are logged and
// left out; the result keeps the input order.
func (c *Collector) Quotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	results := make([]*model.Quote, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}
	for i, sym := range symbols {
		g.Go(func() error {
			q, err := c.Quote(gctx, sym)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn().Err(err).Str("symbol", sym).Msg("Quote failed")
				return nil
			}
			results[i] = &q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quotes := make([]model.Quote, 0, len(symbols))
	for _, q := range results {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	return quotes, nil
}

// TopMovers returns up to n gainers (largest rise first) and n losers (largest
// fall first) among symbols. Unchanged symbols appear in neither list.
func (c *Collector) TopMovers(ctx context.Context, symbols []string, n int) (Movers, error) {
	quotes, err := c.Quotes(ctx, symbols)
	if err != nil {
		return Movers{}, err
	}
	return RankMovers(quotes, n), nil
}

// RankMovers splits quotes into gainers and losers.
func RankMovers(quotes []model.Quote, n int) Movers {
	sorted := append([]model.Quote(nil), quotes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChangePercent > sorted[j].ChangePercent
	})

	m := Movers{Gainers: []model.Quote{}, Losers: []model.Quote{}}
	for _, q := range sorted {
		if q.ChangePercent > 0 && len(m.Gainers) < n {
			m.Gainers = append(m.Gainers, q)
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if q := sorted[i]; q.ChangePercent < 0 && len(m.Losers) < n {
			m.Losers = append(m.Losers, q)
		}
	}
	return m
}

// Candles returns the last days bars of symbol in chart form.
func (c *Collector) Candles(ctx context.Context, symbol string, days int) ([]model.Candle, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", model.ErrInvalidArgument)
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", model.ErrInvalidArgument)
	}
	bars, err := c.fetch(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	candles := make([]model.Candle, len(bars))
	for i, b := range bars {
		candles[i] = model.Candle{
			Date:   b.Time.Format(model.DateLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: calculator.ToSafeInt(b.Volume, 0),
		}
	}
	return candles, nil
}
