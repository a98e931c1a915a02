package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shanehull/earningswatch/internal/types"
)

const DefaultInterval = 25 * time.Second

// DueSource lists the tracked items reporting on a given day. Reload is
// called before every check so edits made while watching are seen.
type DueSource interface {
	Reload() error
	DueOn(day string) []types.WatchItem
}

// Ledger remembers what has been announced on the current day.
type Ledger interface {
	Today() string
	FilterNew(items []types.WatchItem) []types.WatchItem
	Record(items []types.WatchItem) error
}

// Watcher periodically announces items due today, once per item and day.
type Watcher struct {
	due       DueSource
	ledger    Ledger
	notifiers []Notifier
	interval  time.Duration
	logger    *zap.Logger
}

func NewWatcher(due DueSource, ledger Ledger, interval time.Duration, logger *zap.Logger, notifiers ...Notifier) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		due:       due,
		ledger:    ledger,
		notifiers: notifiers,
		interval:  interval,
		logger:    logger,
	}
}

// RunOnce announces the items due today that have not been announced yet
// and returns how many were announced. Items are recorded as announced when
// at least one notifier delivered them.
func (w *Watcher) RunOnce(ctx context.Context) int {
	if err := w.due.Reload(); err != nil {
		w.logger.Warn("Failed to reload watchlist, using the previous copy", zap.Error(err))
	}

	day := w.ledger.Today()
	fresh := w.ledger.FilterNew(w.due.DueOn(day))
	if len(fresh) == 0 {
		w.logger.Debug("Nothing new due", zap.String("day", day))
		return 0
	}

	delivered := false
	for _, n := range w.notifiers {
		if err := n.Notify(ctx, fresh); err != nil {
			w.logger.Error("Notifier failed", zap.String("day", day), zap.Error(err))
			continue
		}
		delivered = true
	}
	if !delivered {
		return 0
	}

	if err := w.ledger.Record(fresh); err != nil {
		w.logger.Error("Failed to record notification history", zap.Error(err))
	}

	w.logger.Info("Announced earnings releases", zap.String("day", day), zap.Int("count", len(fresh)))
	return len(fresh)
}

// Run checks immediately and then on every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Watching for earnings releases", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}
