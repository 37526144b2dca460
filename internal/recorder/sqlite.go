package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"StockSentinel/internal/model"
	"StockSentinel/internal/store"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := store.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("SQLite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			as_of          TEXT NOT NULL,
			bars           INTEGER,
			price          REAL,
			change_percent REAL,
			rsi            REAL,
			macd_hist      REAL,
			ema9           REAL,
			ema21          REAL,
			ema50          REAL,
			trend          TEXT,
			momentum_score INTEGER,
			overall_score  INTEGER,
			buy_score      INTEGER,
			sell_score     INTEGER,
			recommendation TEXT,
			direction      TEXT,
			confidence     INTEGER,
			support        REAL,
			resistance     REAL,
			payload        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON analysis_snapshots(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alert_events (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			alert_id     INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			condition    TEXT,
			target_price REAL,
			price        REAL,
			contact      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_events_ts ON alert_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", strings.TrimSpace(s)[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(b *model.ResultBundle) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ind := b.Indicators
	_, err = r.db.Exec(`INSERT INTO analysis_snapshots
		(timestamp, symbol, as_of, bars, price, change_percent,
		 rsi, macd_hist, ema9, ema21, ema50,
		 trend, momentum_score, overall_score, buy_score, sell_score,
		 recommendation, direction, confidence, support, resistance, payload)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), b.Symbol, b.AsOf, b.Bars, b.Price.Current, b.Price.ChangePercent,
		ind.RSI, ind.MACDHist, ind.EMA9, ind.EMA21, ind.EMA50,
		b.Trend.Label, b.Momentum.Value, b.Signals.OverallScore,
		b.Recommendation.BuyScore, b.Recommendation.SellScore,
		b.Recommendation.Label, string(b.Prediction.Direction), b.Prediction.Confidence,
		b.Support, b.Resistance, string(payload),
	)
	return err
}

func (r *SQLiteRecorder) RecordAlertTrigger(evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO alert_events
		(timestamp, alert_id, symbol, condition, target_price, price, contact)
		VALUES (?,?,?,?,?,?,?)`,
		at.Unix(), evt.Alert.ID, evt.Alert.Symbol, string(evt.Alert.Condition),
		evt.Alert.TargetPrice, evt.Price, evt.Alert.Contact,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("Closing SQLite recorder")
	return r.db.Close()
}
