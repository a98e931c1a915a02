/*
Package history remembers which earnings releases have already been announced
today, so a restarted watcher does not notify twice.
*/
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shanehull/earningswatch/internal/types"
)

type History struct {
	ReportDate string          `json:"report_date"`
	Notified   map[string]bool `json:"notified"`
}

type Manager struct {
	history         History
	mutex           sync.Mutex
	historyFilePath string
	reportLocation  *time.Location
	now             func() time.Time
	logger          *zap.Logger
}

type Option func(*Manager)

// WithClock overrides the clock used to decide the current report day.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(filePath string, loc *time.Location, logger *zap.Logger, opts ...Option) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory for %s: %w", filePath, err)
	}
	if loc == nil {
		loc = time.Local
	}

	m := &Manager{
		historyFilePath: filePath,
		reportLocation:  loc,
		now:             time.Now,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.loadHistory()
	return m, nil
}

func (m *Manager) loadHistory() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	today := m.getCurrentReportDate()
	m.history = History{
		ReportDate: today,
		Notified:   make(map[string]bool),
	}

	data, err := os.ReadFile(m.historyFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Info("History file not found, starting fresh", zap.String("path", m.historyFilePath))
			return
		}
		m.logger.Warn("Failed to read history file, starting fresh", zap.String("path", m.historyFilePath), zap.Error(err))
		return
	}

	var loaded History
	if err := json.Unmarshal(data, &loaded); err != nil {
		m.logger.Warn("Failed to parse history file, starting fresh", zap.String("path", m.historyFilePath), zap.Error(err))
		return
	}

	if loaded.ReportDate == today && loaded.Notified != nil {
		m.history = loaded
		m.logger.Info("Loaded today's notification history", zap.String("date", today), zap.Int("notified", len(loaded.Notified)))
	} else {
		m.logger.Info("History is stale, starting new day", zap.String("history_date", loaded.ReportDate), zap.String("today", today))
	}
}

// rollover resets the history when the report day has changed since the
// last load. Callers hold the mutex.
func (m *Manager) rollover() {
	if today := m.getCurrentReportDate(); m.history.ReportDate != today {
		m.history = History{ReportDate: today, Notified: make(map[string]bool)}
	}
}

func (m *Manager) saveHistory() error {
	data, err := json.MarshalIndent(m.history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(m.historyFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file %s: %w", m.historyFilePath, err)
	}
	m.logger.Debug("Saved notification history", zap.String("path", m.historyFilePath))
	return nil
}

// FilterNew drops the items already announced today.
func (m *Manager) FilterNew(items []types.WatchItem) []types.WatchItem {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.rollover()

	var fresh []types.WatchItem
	for _, item := range items {
		if !m.history.Notified[key(item)] {
			fresh = append(fresh, item)
		}
	}
	return fresh
}

// Record marks the items as announced today and persists the history.
func (m *Manager) Record(items []types.WatchItem) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.rollover()
	for _, item := range items {
		m.history.Notified[key(item)] = true
	}
	return m.saveHistory()
}

func (m *Manager) HistoryFilePath() string {
	return m.historyFilePath
}

// Today is the current report day in the manager's location.
func (m *Manager) Today() string {
	return m.getCurrentReportDate()
}

func (m *Manager) getCurrentReportDate() string {
	return m.now().In(m.reportLocation).Format(types.DateLayout)
}

func key(item types.WatchItem) string {
	return item.Ticker + "|" + item.EarningsDate
}
