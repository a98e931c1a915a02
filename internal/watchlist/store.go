/*
Package watchlist persists the tracked tickers as a JSON array on disk.
*/
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/shanehull/earningswatch/internal/types"
)

type Store struct {
	items  []types.WatchItem
	mutex  sync.Mutex
	path   string
	logger *zap.Logger
}

// Open loads the watchlist at path. A missing file is an empty watchlist.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the watchlist file, picking up changes written by other
// processes. The in-memory list is kept when the file cannot be read.
func (s *Store) Reload() error {
	return s.load()
}

func (s *Store) load() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}
	s.items = items

	s.logger.Debug("Loaded watchlist", zap.String("path", s.path), zap.Int("items", len(s.items)))
	return nil
}

func (s *Store) read() ([]types.WatchItem, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Watchlist file not found, starting empty", zap.String("path", s.path))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read watchlist %s: %w", s.path, err)
	}

	raw, err := decode(data)
	if err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return nil, fmt.Errorf("failed to parse watchlist %s: %w", s.path, err)
		}
		if raw, rerr = decode([]byte(repaired)); rerr != nil {
			return nil, fmt.Errorf("failed to parse repaired watchlist %s: %w", s.path, rerr)
		}
		s.logger.Warn("Watchlist file was damaged and has been repaired in memory",
			zap.String("path", s.path), zap.Error(err))
	}

	var items []types.WatchItem
	for _, item := range raw {
		item.Ticker = types.NormalizeTicker(item.Ticker)
		if item.Ticker == "" {
			s.logger.Warn("Skipping watchlist entry without ticker", zap.String("path", s.path))
			continue
		}
		if item.EarningsDate == "" {
			item.EarningsDate = types.NoDate
		}
		if !item.MarketSession.Valid() {
			item.MarketSession = types.SessionUnknown
		}
		items = upsert(items, item)
	}
	return items, nil
}

func decode(data []byte) ([]types.WatchItem, error) {
	var items []types.WatchItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Items returns a snapshot of the watchlist in stored order.
func (s *Store) Items() []types.WatchItem {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.snapshot()
}

func (s *Store) Get(ticker string) (types.WatchItem, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if i := s.index(types.NormalizeTicker(ticker)); i >= 0 {
		return s.items[i], true
	}
	return types.WatchItem{}, false
}

// Upsert replaces any record with the same ticker by item, placed at the end
// of the list, and saves.
func (s *Store) Upsert(item types.WatchItem) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	item.Ticker = types.NormalizeTicker(item.Ticker)
	if item.Ticker == "" {
		return fmt.Errorf("watchlist item has no ticker")
	}
	return s.commit(upsert(s.snapshot(), item))
}

// Update applies fn to the stored record and saves. ok is false
// when the ticker is not tracked.
func (s *Store) Update(ticker string, fn func(*types.WatchItem)) (ok bool, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	i := s.index(types.NormalizeTicker(ticker))
	if i < 0 {
		return false, nil
	}
	next := s.snapshot()
	fn(&next[i])
	return true, s.commit(next)
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) index(ticker string) int {
	for i := range s.items {
		if s.items[i].Ticker == ticker {
			return i
		}
	}
	return -1
}

func upsert(items []types.WatchItem, item types.WatchItem) []types.WatchItem {
	out := items[:0]
	for _, existing := range items {
		if existing.Ticker != item.Ticker {
			out = append(out, existing)
		}
	}
	return append(out, item)
}

// snapshot copies the items; callers hold the mutex.
func (s *Store) snapshot() []types.WatchItem {
	out := make([]types.WatchItem, len(s.items))
	copy(out, s.items)
	return out
}

// commit writes items and adopts them only once they are on disk. Callers
// hold the mutex.
func (s *Store) commit(items []types.WatchItem) error {
	if err := s.save(items); err != nil {
		return err
	}
	s.items = items
	return nil
}

func (s *Store) save(items []types.WatchItem) error {
	if items == nil {
		items = []types.WatchItem{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal watchlist: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create watchlist directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".watchlist-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary watchlist file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write watchlist %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary watchlist file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace watchlist %s: %w", s.path, err)
	}

	s.logger.Debug("Saved watchlist", zap.String("path", s.path), zap.Int("items", len(items)))
	return nil
}
