package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"StockSentinel/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}

// mockStart anchors generated series so repeated runs see identical bars.
var mockStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Data  map[string][]model.OHLCV
	Errs  map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Data[symbol]; ok {
		if len(bars) > days {
			bars = bars[len(bars)-days:]
		}
		return bars, nil
	}
	if m.Data != nil {
		return nil, fmt.Errorf("mock %s: %w", symbol, model.ErrNotFound)
	}
	price := m.Price
	if price <= 0 {
		price = 1000
	}
	return generateMockBars(symbol, price, days), nil
}

// generateMockBars builds a gently oscillating series whose phase and drift
// depend on the symbol only.
func generateMockBars(symbol string, basePrice float64, count int) []model.OHLCV {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	seed := h.Sum32()
	phase := float64(seed%17) / 3
	drift := (float64(seed%7) - 3) * 0.0005

	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/6+phase) + drift*float64(i))
		bars[i] = model.OHLCV{
			Time:   mockStart.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: float64(1000000 + (seed+uint32(i)*7919)%500000),
		}
	}
	return bars
}
