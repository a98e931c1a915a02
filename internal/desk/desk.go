/*
Package desk ties the resolver, the PDF pipeline and the watchlist store
together into the operations the command line exposes.
*/
package desk

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/shanehull/earningswatch/internal/analysis"
	"github.com/shanehull/earningswatch/internal/types"
)

var (
	ErrEmptyTicker = errors.New("ticker must not be empty")
	ErrNotTracked  = errors.New("ticker is not on the watchlist")
	ErrNoIRURL     = errors.New("no investor relations URL set for ticker")
)

type Resolver interface {
	Resolve(ctx context.Context, ticker string) (types.Resolution, error)
}

type PDFLocator interface {
	DownloadLatest(ctx context.Context, ticker, irURL string) (string, bool, error)
}

type TextAnalyzer interface {
	Analyze(pdfPath, ticker string) (analysis.Result, bool, error)
}

// Store is the persistence the desk needs from the watchlist.
type Store interface {
	Items() []types.WatchItem
	Get(ticker string) (types.WatchItem, bool)
	Upsert(item types.WatchItem) error
	Update(ticker string, fn func(*types.WatchItem)) (bool, error)
	Reload() error
}

type Desk struct {
	store    Store
	resolver Resolver
	locator  PDFLocator
	analyzer TextAnalyzer
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*Desk)

func WithClock(now func() time.Time) Option {
	return func(d *Desk) { d.now = now }
}

func New(store Store, resolver Resolver, locator PDFLocator, analyzer TextAnalyzer, logger *zap.Logger, opts ...Option) *Desk {
	d := &Desk{
		store:    store,
		resolver: resolver,
		locator:  locator,
		analyzer: analyzer,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add resolves the ticker and stores a fresh record for it, replacing any
// existing record with the same ticker. Nothing is stored when resolution
// fails.
func (d *Desk) Add(ctx context.Context, ticker, irURL string) (types.WatchItem, error) {
	ticker = types.NormalizeTicker(ticker)
	if ticker == "" {
		return types.WatchItem{}, ErrEmptyTicker
	}

	res, err := d.resolver.Resolve(ctx, ticker)
	if err != nil {
		return types.WatchItem{}, err
	}

	item := types.WatchItem{IRURL: types.StringPtr(irURL)}
	item.Apply(res, d.now())

	if err := d.store.Upsert(item); err != nil {
		return types.WatchItem{}, fmt.Errorf("failed to save %s: %w", ticker, err)
	}

	d.logger.Info("Added ticker",
		zap.String("ticker", item.Ticker),
		zap.String("earnings_date", item.EarningsDate),
		zap.String("session", string(item.MarketSession)))
	return item, nil
}

// Refresh re-resolves one tracked ticker. On failure the stored record is
// left untouched.
func (d *Desk) Refresh(ctx context.Context, ticker string) (types.WatchItem, error) {
	ticker = types.NormalizeTicker(ticker)
	if _, ok := d.store.Get(ticker); !ok {
		return types.WatchItem{}, fmt.Errorf("%w: %s", ErrNotTracked, ticker)
	}

	res, err := d.resolver.Resolve(ctx, ticker)
	if err != nil {
		return types.WatchItem{}, err
	}

	var updated types.WatchItem
	ok, err := d.store.Update(ticker, func(w *types.WatchItem) {
		w.Apply(res, d.now())
		updated = *w
	})
	if err != nil {
		return types.WatchItem{}, fmt.Errorf("failed to save %s: %w", ticker, err)
	}
	if !ok {
		return types.WatchItem{}, fmt.Errorf("%w: %s", ErrNotTracked, ticker)
	}
	return updated, nil
}

// RefreshAll re-resolves every tracked ticker and returns how many were
// updated. A failing ticker is logged and skipped.
func (d *Desk) RefreshAll(ctx context.Context) int {
	items := d.store.Items()
	refreshed := 0

	for _, item := range items {
		if ctx.Err() != nil {
			d.logger.Warn("Refresh cancelled", zap.Int("refreshed", refreshed), zap.Int("total", len(items)))
			break
		}
		if _, err := d.Refresh(ctx, item.Ticker); err != nil {
			d.logger.Warn("Failed to refresh ticker", zap.String("ticker", item.Ticker), zap.Error(err))
			continue
		}
		refreshed++
	}

	d.logger.Info("Refreshed watchlist", zap.Int("refreshed", refreshed), zap.Int("total", len(items)))
	return refreshed
}

// Items returns the watchlist ordered by earnings date, undated items last.
func (d *Desk) Items() []types.WatchItem {
	items := d.store.Items()
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		return a.EarningsDate < b.EarningsDate
	})
	return items
}

// Reload picks up watchlist changes made by other processes.
func (d *Desk) Reload() error {
	return d.store.Reload()
}

// DueOn returns the tracked items reporting on day (YYYY-MM-DD).
func (d *Desk) DueOn(day string) []types.WatchItem {
	var due []types.WatchItem
	for _, item := range d.Items() {
		if item.EarningsDate == day {
			due = append(due, item)
		}
	}
	return due
}

func (d *Desk) OnDate(day time.Time) []types.WatchItem {
	return d.DueOn(day.Format(types.DateLayout))
}

type PDFReport struct {
	Ticker  string
	PDFPath string
	Found   bool

	Chart    analysis.Result
	HasChart bool
}

// DownloadAndAnalyze fetches the latest earnings PDF from the ticker's IR
// page, records its path and charts its word frequencies.
func (d *Desk) DownloadAndAnalyze(ctx context.Context, ticker string) (PDFReport, error) {
	ticker = types.NormalizeTicker(ticker)
	report := PDFReport{Ticker: ticker}

	item, ok := d.store.Get(ticker)
	if !ok {
		return report, fmt.Errorf("%w: %s", ErrNotTracked, ticker)
	}
	if item.IR() == "" {
		return report, fmt.Errorf("%w: %s", ErrNoIRURL, ticker)
	}

	path, found, err := d.locator.DownloadLatest(ctx, ticker, item.IR())
	if err != nil {
		return report, err
	}
	if !found {
		d.logger.Info("No earnings PDF on IR page", zap.String("ticker", ticker), zap.String("ir_url", item.IR()))
		return report, nil
	}
	report.PDFPath = path
	report.Found = true

	if _, err := d.store.Update(ticker, func(w *types.WatchItem) {
		w.LastPDFPath = types.StringPtr(path)
	}); err != nil {
		return report, fmt.Errorf("failed to save PDF path for %s: %w", ticker, err)
	}

	chart, ok, err := d.analyzer.Analyze(path, ticker)
	if err != nil {
		return report, err
	}
	report.Chart = chart
	report.HasChart = ok
	return report, nil
}
