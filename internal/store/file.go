package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"StockSentinel/internal/model"
)

// State is the on-disk layout of a FileStore.
type State struct {
	Watchlist []model.WatchItem `json:"watchlist"`
	Alerts    []model.Alert     `json:"alerts"`
	NextID    int64             `json:"next_id"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// LoadState reads the state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{NextID: 1}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	if state.NextID < 1 {
		state.NextID = 1
		for _, a := range state.Alerts {
			if a.ID >= state.NextID {
				state.NextID = a.ID + 1
			}
		}
	}
	return &state, nil
}

// SaveState writes the state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := ensureDir(filePath); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

// FileStore keeps the watchlist and alerts in a single JSON file, rewritten on
// every change.
type FileStore struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewFileStore creates a FileStore, loading or initializing state from disk.
func NewFileStore(filePath string) (*FileStore, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	s := &FileStore{state: state, filePath: filePath}
	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Watchlist(_ context.Context) ([]model.WatchItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.WatchItem{}, s.state.Watchlist...), nil
}

func (s *FileStore) AddWatch(_ context.Context, symbol string) (model.WatchItem, error) {
	symbol, err := normalizeWatch(symbol)
	if err != nil {
		return model.WatchItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.state.Watchlist {
		if w.Symbol == symbol {
			return model.WatchItem{}, fmt.Errorf("watch %s: %w", symbol, model.ErrAlreadyExists)
		}
	}
	item := model.WatchItem{Symbol: symbol, AddedAt: time.Now()}
	s.state.Watchlist = append(s.state.Watchlist, item)
	return item, s.save()
}

func (s *FileStore) RemoveWatch(_ context.Context, symbol string) error {
	symbol, err := normalizeWatch(symbol)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, w := range s.state.Watchlist {
		if w.Symbol == symbol {
			s.state.Watchlist = append(s.state.Watchlist[:i], s.state.Watchlist[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("watch %s: %w", symbol, model.ErrNotFound)
}

func (s *FileStore) Alerts(_ context.Context) ([]model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Alert{}, s.state.Alerts...), nil
}

func (s *FileStore) PendingAlerts(_ context.Context) ([]model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := []model.Alert{}
	for _, a := range s.state.Alerts {
		if !a.Triggered {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

func (s *FileStore) AddAlert(_ context.Context, a model.Alert) (model.Alert, error) {
	a, err := normalizeAlert(a)
	if err != nil {
		return model.Alert{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.state.NextID
	s.state.NextID++
	s.state.Alerts = append(s.state.Alerts, a)
	return a, s.save()
}

func (s *FileStore) RemoveAlert(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.state.Alerts {
		if a.ID == id {
			s.state.Alerts = append(s.state.Alerts[:i], s.state.Alerts[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("alert %d: %w", id, model.ErrNotFound)
}

func (s *FileStore) MarkTriggered(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Alerts {
		a := &s.state.Alerts[i]
		if a.ID != id {
			continue
		}
		if a.Triggered {
			return nil
		}
		a.Triggered = true
		a.TriggeredAt = &at
		return s.save()
	}
	return fmt.Errorf("alert %d: %w", id, model.ErrNotFound)
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *FileStore) save() error {
	return SaveState(s.filePath, s.state)
}
