// Package store persists the watchlist and price alerts.
package store

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"StockSentinel/internal/model"
)

// Store holds user state shared by the bot and the HTTP API.
type Store interface {
	Watchlist(ctx context.Context) ([]model.WatchItem, error)
	AddWatch(ctx context.Context, symbol string) (model.WatchItem, error)
	RemoveWatch(ctx context.Context, symbol string) error

	Alerts(ctx context.Context) ([]model.Alert, error)
	PendingAlerts(ctx context.Context) ([]model.Alert, error)
	AddAlert(ctx context.Context, a model.Alert) (model.Alert, error)
	RemoveAlert(ctx context.Context, id int64) error
	MarkTriggered(ctx context.Context, id int64, at time.Time) error

	Close() error
}

// Open picks the SQLite store when sqlitePath is set and the JSON file store otherwise.
func Open(sqlitePath, storeFile string) (Store, error) {
	if sqlitePath != "" {
		s, err := NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	if storeFile == "" {
		return nil, fmt.Errorf("%w: neither sqlite path nor store file configured", model.ErrInvalidArgument)
	}
	s, err := NewFileStore(storeFile)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func normalizeWatch(symbol string) (string, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return "", fmt.Errorf("%w: empty ticker", model.ErrInvalidArgument)
	}
	return symbol, nil
}

// normalizeAlert checks a new alert and fills in its defaults.
func normalizeAlert(a model.Alert) (model.Alert, error) {
	a.Symbol = model.NormalizeSymbol(a.Symbol)
	if a.Symbol == "" {
		return a, fmt.Errorf("%w: empty ticker", model.ErrInvalidArgument)
	}
	if a.TargetPrice <= 0 || math.IsNaN(a.TargetPrice) || math.IsInf(a.TargetPrice, 0) {
		return a, fmt.Errorf("%w: target price must be a positive number", model.ErrInvalidArgument)
	}
	cond, ok := model.ParseCondition(string(a.Condition))
	if !ok {
		return a, fmt.Errorf("%w: condition %q is not above or below", model.ErrInvalidArgument, a.Condition)
	}
	a.Condition = cond
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.Triggered = false
	a.TriggeredAt = nil
	return a, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
