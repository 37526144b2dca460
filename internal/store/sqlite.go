package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockSentinel/internal/model"
)

// SQLiteStore keeps the watchlist and alerts in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (or creates) a SQLite database in WAL mode.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL mode lets the API read while the scheduler writes.
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return db, nil
}

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("path", dbPath).Msg("SQLite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS watchlist (
			symbol   TEXT PRIMARY KEY,
			added_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol       TEXT NOT NULL,
			target_price REAL NOT NULL,
			condition    TEXT NOT NULL,
			contact      TEXT NOT NULL DEFAULT '',
			created_at   INTEGER NOT NULL,
			triggered    INTEGER NOT NULL DEFAULT 0,
			triggered_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_pending ON alerts(triggered, symbol)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", strings.TrimSpace(stmt)[:30], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Watchlist(ctx context.Context) ([]model.WatchItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, added_at FROM watchlist ORDER BY added_at, symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.WatchItem{}
	for rows.Next() {
		var (
			item  model.WatchItem
			added int64
		)
		if err := rows.Scan(&item.Symbol, &added); err != nil {
			return nil, err
		}
		item.AddedAt = time.UnixMilli(added)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) AddWatch(ctx context.Context, symbol string) (model.WatchItem, error) {
	symbol, err := normalizeWatch(symbol)
	if err != nil {
		return model.WatchItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item := model.WatchItem{Symbol: symbol, AddedAt: time.Now()}
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO watchlist (symbol, added_at) VALUES (?, ?)`,
		item.Symbol, item.AddedAt.UnixMilli())
	if err != nil {
		return model.WatchItem{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.WatchItem{}, fmt.Errorf("watch %s: %w", symbol, model.ErrAlreadyExists)
	}
	return item, nil
}

func (s *SQLiteStore) RemoveWatch(ctx context.Context, symbol string) error {
	symbol, err := normalizeWatch(symbol)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("watch %s: %w", symbol, model.ErrNotFound)
	}
	return nil
}

const alertColumns = `id, symbol, target_price, condition, contact, created_at, triggered, triggered_at`

func (s *SQLiteStore) Alerts(ctx context.Context) ([]model.Alert, error) {
	return s.queryAlerts(ctx, `SELECT `+alertColumns+` FROM alerts ORDER BY id`)
}

func (s *SQLiteStore) PendingAlerts(ctx context.Context) ([]model.Alert, error) {
	return s.queryAlerts(ctx, `SELECT `+alertColumns+` FROM alerts WHERE triggered = 0 ORDER BY id`)
}

func (s *SQLiteStore) queryAlerts(ctx context.Context, query string) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []model.Alert{}
	for rows.Next() {
		var (
			a           model.Alert
			cond        string
			created     int64
			triggered   int
			triggeredAt sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.Symbol, &a.TargetPrice, &cond, &a.Contact,
			&created, &triggered, &triggeredAt); err != nil {
			return nil, err
		}
		a.Condition = model.AlertCondition(cond)
		a.CreatedAt = time.UnixMilli(created)
		a.Triggered = triggered != 0
		if triggeredAt.Valid {
			t := time.UnixMilli(triggeredAt.Int64)
			a.TriggeredAt = &t
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteStore) AddAlert(ctx context.Context, a model.Alert) (model.Alert, error) {
	a, err := normalizeAlert(a)
	if err != nil {
		return model.Alert{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO alerts
		(symbol, target_price, condition, contact, created_at)
		VALUES (?,?,?,?,?)`,
		a.Symbol, a.TargetPrice, string(a.Condition), a.Contact, a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return model.Alert{}, err
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return model.Alert{}, err
	}
	return a, nil
}

func (s *SQLiteStore) RemoveAlert(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alert %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) MarkTriggered(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET triggered = 1, triggered_at = ?
		WHERE id = ? AND triggered = 0`, at.UnixMilli(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("alert %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("Closing SQLite store")
	return s.db.Close()
}
