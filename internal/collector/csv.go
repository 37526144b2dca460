package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

var csvColumns = []string{"date", "open", "high", "low", "close", "volume"}

var csvDateLayouts = []string{model.DateLayout, "2006-01-02 15:04:05", time.RFC3339, "01/02/2006"}

// CSVFetcher reads daily bars from <Dir>/<SYMBOL>.csv exports.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher over a directory of CSV files.
func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = model.NormalizeSymbol(symbol)
	path := filepath.Join(f.Dir, symbol+".csv")
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("csv %s: %w", symbol, model.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	bars, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("csv %s: %w", symbol, err)
	}
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// ReadCSV parses a header-led OHLCV export. Column order and header case are free;
// rows with an empty or null close are skipped. The result is sorted by date.
func ReadCSV(r io.Reader) ([]model.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, model.ErrEmptySeries
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", model.ErrMalformedInput, col)
		}
	}

	var bars []model.OHLCV
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(col string) string {
			if i := index[col]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if c := strings.ToLower(field("close")); c == "" || c == "null" || c == "nan" {
			continue
		}
		t, err := parseCSVDate(field("date"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", model.ErrMalformedInput, line, err)
		}
		bar := model.OHLCV{Time: t}
		for _, col := range []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open}, {"high", &bar.High}, {"low", &bar.Low},
			{"close", &bar.Close}, {"volume", &bar.Volume},
		} {
			raw := field(col.name)
			if raw == "" && col.name == "volume" {
				raw = "0"
			}
			v := calculator.ToScalarOr(raw, math.NaN())
			if math.IsNaN(v) {
				return nil, fmt.Errorf("%w: line %d: bad %s %q", model.ErrMalformedInput, line, col.name, raw)
			}
			*col.dst = v
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func parseCSVDate(s string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
