package model

import (
	"fmt"
	"math"
	"time"
)

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the daily bars of one security, ascending by time.
type PriceSeries struct {
	Symbol    string
	Name      string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Validate checks the structural invariants the indicator engine relies on.
func (s *PriceSeries) Validate() error {
	if s == nil || len(s.Bars) == 0 {
		return ErrEmptySeries
	}
	for i, b := range s.Bars {
		for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite value at bar %d", ErrMalformedInput, i)
			}
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d (%s) is not after %s", ErrMalformedInput, i,
				b.Time.Format(DateLayout), s.Bars[i-1].Time.Format(DateLayout))
		}
	}
	return nil
}

// Last returns the most recent bar. The series must not be empty.
func (s *PriceSeries) Last() OHLCV {
	return s.Bars[len(s.Bars)-1]
}

// Closes extracts the close column.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// DateLayout is the calendar-date format used in every outward record.
const DateLayout = "2006-01-02"

// Quote is the latest price snapshot of a symbol.
type Quote struct {
	Symbol        string    `json:"ticker"`
	Price         float64   `json:"price"`
	PrevClose     float64   `json:"prev_close"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volume        int64     `json:"volume"`
	AsOf          time.Time `json:"as_of"`
}

// Candle is the chart-friendly rendition of a bar.
type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
